package email

import (
	"fmt"
	"net/smtp"
	"os"
)

const defaultSender = "no-reply@campusshare.io"

// SendEmail sends a plain text email using SMTP. The sender defaults to the
// platform no-reply address when SMTP_SENDER is unset.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_SENDER")
	if from == "" {
		from = defaultSender
	}
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("From: CampusShare <" + from + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := smtpHost + ":" + smtpPort

	if err := smtp.SendMail(address, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
