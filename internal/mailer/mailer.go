// Package mailer delivers notification email over SMTP. Delivery is
// best-effort everywhere it is used: callers log failures and move on.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"rewardshub-backend/internal/config"
	"rewardshub-backend/internal/ports"
)

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTP(cfg config.Config) *SMTPMailer {
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string, attachments ...ports.Attachment) error {
	msg, err := buildMessage(m.From, to, subject, body, attachments)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := m.Host + ":" + m.Port

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.From, []string{to}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to, subject, body string, attachments []ports.Attachment) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/octet-stream")
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, a.Filename))
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(a.Content)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
