package events

import "time"

const (
	UserOTPTopic        = "user.otp.v1"
	EventOTPRequested   = "otp_requested"
	OTPPurposeVerify    = "EMAIL_VERIFICATION"
	OTPPurposeResetPass = "PASSWORD_RESET"
)

// OTPRequestedEvent carries the code itself because the consumer is the only
// component that mails it.
type OTPRequestedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	Purpose    string    `json:"purpose"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
