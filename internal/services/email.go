package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// SMTPConfig holds the mail transport settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	OrgName  string
	Website  string
}

// EmailNotifier sends the thank-you email after a registration
type EmailNotifier struct {
	cfg  SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewEmailNotifier creates a notifier sending through cfg's SMTP server with STARTTLS
func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	n := &EmailNotifier{cfg: cfg}
	n.send = n.dialAndSend
	return n
}

// Configured reports whether sender credentials are present
func (n *EmailNotifier) Configured() bool {
	return n.cfg.Username != "" && n.cfg.Password != ""
}

func (n *EmailNotifier) Notify(ctx context.Context, rec models.Record) error {
	if !n.Configured() {
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}
	msg, err := n.message(rec)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("email to %s: %w", rec.Email, err)
	}
	return nil
}

func (n *EmailNotifier) message(rec models.Record) (*mail.Msg, error) {
	body, err := n.renderBody(rec)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Username); err != nil {
		return nil, fmt.Errorf("email from: %w", err)
	}
	if err := msg.To(rec.Email); err != nil {
		return nil, fmt.Errorf("email to: %w", err)
	}
	msg.Subject("Thank You for Connecting with " + n.cfg.OrgName)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func (n *EmailNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	c, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

type thankYouData struct {
	Org        string
	Website    string
	Name       string
	Email      string
	BloodGroup string
	Year       int
}

func (n *EmailNotifier) renderBody(rec models.Record) (string, error) {
	blood := rec.BloodGroup
	if blood == "" {
		blood = "Not provided"
	}
	year := rec.Timestamp.Year()
	if rec.Timestamp.IsZero() {
		year = time.Now().Year()
	}

	var buf bytes.Buffer
	err := thankYouTemplate.Execute(&buf, thankYouData{
		Org:        n.cfg.OrgName,
		Website:    n.cfg.Website,
		Name:       rec.Name,
		Email:      rec.Email,
		BloodGroup: blood,
		Year:       year,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

var thankYouTemplate = template.Must(template.New("thank-you").Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background-color: #4CAF50; color: white; padding: 10px; text-align: center; }
  .content { padding: 20px; background-color: #f9f9f9; }
  .footer { text-align: center; margin-top: 20px; font-size: 12px; color: #777; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h2>{{.Org}}</h2></div>
  <div class="content">
    <p>Dear {{.Name}},</p>
    <p>Email: {{.Email}}</p>
    <p>Blood Group: {{.BloodGroup}}</p>
    <p>Thank you for connecting with {{.Org}}!</p>
    <p>We have securely stored your information. Our team will contact you soon.</p>
    {{- if .Website}}
    <p>If you have any questions, feel free to reach out to us at <a href="{{.Website}}">{{.Website}}</a></p>
    {{- end}}
    <p>Best regards,<br>{{.Org}} Team</p>
  </div>
  <div class="footer"><p>&copy; {{.Year}} {{.Org}}. All rights reserved.</p></div>
</div>
</body>
</html>
`))
