// Package email sends transactional mail. The only production transport is
// SMTP; tests substitute the Provider interface.
package email

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}
