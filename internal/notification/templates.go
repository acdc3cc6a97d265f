package notification

import (
	"bytes"
	"text/template"
)

var (
	otpVerifyTmpl = template.Must(template.New("otp_verify").Parse(
		`Hello {{.FirstName}},

Thank you for registering with the Leave Management System. Use the code below to verify your email address:

    {{.Code}}

This code expires in {{.ExpiresIn}}.
If you didn't create an account, please ignore this email.
`))

	otpResetTmpl = template.Must(template.New("otp_reset").Parse(
		`Hello {{.FirstName}},

You requested to reset your password. Use the code below to choose a new one:

    {{.Code}}

This code expires in {{.ExpiresIn}}.
If you didn't request this, please ignore this email.
`))

	leaveRequestedTmpl = template.Must(template.New("leave_requested").Parse(
		`Hello {{.Recipient}},

{{.Requester}} submitted leave request {{.Reference}}: {{.LeaveType}} from {{.StartDate}} to {{.EndDate}} ({{.Days}} day(s)).
It is waiting for your decision.
`))

	leaveDecidedTmpl = template.Must(template.New("leave_decided").Parse(
		`Hello {{.Recipient}},

Your leave request {{.Reference}} ({{.LeaveType}}, {{.Days}} day(s)) was {{.Decision}}.
{{- if .Comments}}

Comments: {{.Comments}}
{{- end}}
`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
