package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/pkg/logger"
)

// EmailService mails notifications whose recipient is an address.
type EmailService struct {
	cfg config.EmailConfig
}

func NewEmailService(cfg config.EmailConfig) *EmailService {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &EmailService{cfg: cfg}
}

func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.cfg.Host != ""
}

// Deliver sends n by mail when email is enabled and the recipient is an
// address, then records it on the log channel.
func (s *EmailService) Deliver(ctx context.Context, n *Notification) error {
	if s.Enabled() && strings.Contains(n.Recipient, "@") {
		if err := s.sendEmail([]string{n.Recipient}, "[Framewise] "+n.Subject, buildEmailBody(n)); err != nil {
			return fmt.Errorf("mail %s notification: %w", n.Kind, err)
		}
	}
	return DeliverNotification(ctx, n)
}

func buildEmailBody(n *Notification) string {
	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(n.Subject)))
	sb.WriteString(fmt.Sprintf("<p style=\"white-space: pre-wrap;\">%s</p>", html.EscapeString(n.Body)))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Sent by Framewise</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func buildMessage(from string, to []string, subject, body string) string {
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)
	return message.String()
}

func (s *EmailService) sendEmail(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	message := buildMessage(from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendEmailTLS(addr, auth, from, to, message)
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent notification to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	return w.Close()
}
