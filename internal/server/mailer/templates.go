package mailer

import (
	"bytes"
	"html/template"
)

// ResetSubject is the subject line of password reset emails.
const ResetSubject = "Password reset request"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Name}},</p>
<p>We received a request to reset the password of your account.</p>
<p><a href="{{.URL}}">Reset your password</a></p>
<p>The link is valid for {{.ValidFor}} and can be used once.</p>
<p>If you did not ask for this, ignore this email and your password stays the same.</p>
</body>
</html>
`))

// ResetEmail renders the password reset message for name with link url.
func ResetEmail(to, name, url, validFor string) (Message, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name, URL, ValidFor string
	}{name, url, validFor})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: ResetSubject, HTMLBody: buf.String()}, nil
}
