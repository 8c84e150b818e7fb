package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/tripshield/tripshield/internal/config"
	"go.uber.org/zap"
)

type smtpProvider struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      *zap.Logger
}

func NewSMTPProvider(cfg config.Config, log *zap.Logger) Provider {
	return &smtpProvider{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		log:      log.Named("email.smtp"),
	}
}

func (p *smtpProvider) Send(_ context.Context, msg Message) error {
	body, err := p.encode(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	if err := smtp.SendMail(addr, auth, p.from, []string{msg.To}, body); err != nil {
		p.log.Warn("smtp send failed",
			zap.String("to", msg.To),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *smtpProvider) encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", p.from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	for _, attachment := range msg.Attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", attachment.ContentType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(attachment.Data)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
