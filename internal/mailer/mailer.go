package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
)

// Mailer delivers the short-lived codes used to prove control of an email
// address. Delivery is an external collaborator; callers only depend on
// this interface.
type Mailer interface {
	SendVerificationCode(to, name, code string) error
	SendEmailChangeCode(to, name, code string) error
}

type templateData struct {
	Name string
	Code string
}

// SMTPMailer sends through a plain SMTP endpoint. Credentials are injected
// at construction.
type SMTPMailer struct {
	addr string
	host string
	from string
	auth smtp.Auth

	verifyTmpl *template.Template
	changeTmpl *template.Template
}

func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr:       host + ":" + port,
		host:       host,
		from:       from,
		auth:       smtp.PlainAuth("", user, password, host),
		verifyTmpl: template.Must(template.New("verify").Parse(verifyTemplate)),
		changeTmpl: template.Must(template.New("change").Parse(changeTemplate)),
	}
}

func (m *SMTPMailer) SendVerificationCode(to, name, code string) error {
	return m.send(to, "Your Organivo Verification Code", m.verifyTmpl, templateData{Name: name, Code: code})
}

func (m *SMTPMailer) SendEmailChangeCode(to, name, code string) error {
	return m.send(to, "Confirm Your New Organivo Email", m.changeTmpl, templateData{Name: name, Code: code})
}

func (m *SMTPMailer) send(to, subject string, tmpl *template.Template, data templateData) error {
	var body bytes.Buffer

	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.from, to, subject, body.String())

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

// LogMailer is used when no SMTP endpoint is configured. Codes end up in
// the process log instead of an inbox, which is enough for local work.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(to, name, code string) error {
	log.Printf("mailer: verification code for %s <%s>: %s", name, to, code)
	return nil
}

func (LogMailer) SendEmailChangeCode(to, name, code string) error {
	log.Printf("mailer: email change code for %s <%s>: %s", name, to, code)
	return nil
}

const verifyTemplate = `<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Welcome to Organivo, {{.Name}}!</h2>
    <p>Here is your verification code:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>Enter this code in the app to complete your sign-up.</p>
    <p>If you didn't request this, please ignore this email.</p>
    <p>- The Organivo Team</p>
  </body>
</html>`

const changeTemplate = `<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>Hello {{.Name}},</h2>
    <p>Use this code to confirm your new email address:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
    <p>Your account email will only change after you enter this code.</p>
    <p>- The Organivo Team</p>
  </body>
</html>`
