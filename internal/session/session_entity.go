package session

import "time"

// Session is the JSON document stored under session:<id>. Times are unix
// milliseconds.
type Session struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	LoginTime    int64  `json:"loginTime"`
	LastActivity int64  `json:"lastActivity"`
	IPAddress    string `json:"ipAddress,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	DeviceID     string `json:"deviceId,omitempty"`
}

func (s Session) LoginAt() time.Time {
	return time.UnixMilli(s.LoginTime)
}

func (s Session) LastActiveAt() time.Time {
	return time.UnixMilli(s.LastActivity)
}

type CreateInput struct {
	UserID    string
	Email     string
	Role      string
	FirstName string
	LastName  string
	IPAddress string
	UserAgent string
	DeviceID  string
}
