package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"sort"
	"strings"
)

// MailerConfig holds SMTP credentials.
type MailerConfig struct {
	Host     string
	Port     string
	From     string
	Password string
	FromName string
}

// Mailer delivers OTP emails over SMTP.
type Mailer struct {
	cfg  MailerConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1e88e5; margin: 0;">%s</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

const otpBlock = `
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
			<h1 style="color: #2c3e50; text-align: center;">%s</h1>
			<p>%s</p>
			<div style="text-align: center; margin: 30px 0;">
				<span style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</span>
			</div>
		</div>`

func (m *Mailer) sendEmail(to []string, subject, body string) error {
	if m.cfg.From == "" || m.cfg.Password == "" || m.cfg.Host == "" || m.cfg.Port == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From),
		"To":           strings.Join(to, ","),
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build message
	var message strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&message, "%s: %s\r\n", k, headers[k])
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, to, []byte(message.String())); err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

func (m *Mailer) otpEmail(to, subject, title, text, otp string) error {
	body := fmt.Sprintf(emailHeader, m.cfg.FromName) +
		fmt.Sprintf(otpBlock, title, text, otp) +
		emailFooter
	return m.sendEmail([]string{to}, subject, body)
}

// SendVerificationOTP emails the account verification code.
func (m *Mailer) SendVerificationOTP(email, otp string) error {
	return m.otpEmail(email,
		"OTP for verification of account",
		"Verify your account",
		"Use the code below to verify your account.",
		otp)
}

// SendPasswordResetOTP emails the password reset code.
func (m *Mailer) SendPasswordResetOTP(email, otp string) error {
	return m.otpEmail(email,
		"OTP to reset password",
		"Reset your password",
		"Use the code below to reset your password.",
		otp)
}
