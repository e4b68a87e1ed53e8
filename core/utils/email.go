package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"admission-api/core/config"
	"admission-api/core/errors"
)

type EmailMessage struct {
	To      []string
	Subject string
	Body    string
}

func GetEmailConfig() (*config.EmailConfig, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.Email.Host == "" {
		return nil, errors.New("email is not configured")
	}
	return &cfg.Email, nil
}

// SendEmailTLS delivers a plain-text message over SMTP with STARTTLS.
// Notification delivery is best-effort; callers log and move on.
func SendEmailTLS(msg EmailMessage) error {
	cfg, err := GetEmailConfig()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(cfg.From, msg))); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// buildMessage renders the RFC 5322 headers and body sent over DATA. The To
// header mirrors the envelope recipients so clients show who was addressed.
func buildMessage(from string, msg EmailMessage) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		from, strings.Join(msg.To, ", "), msg.Subject, msg.Body)
}
