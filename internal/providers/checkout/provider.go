// Package checkout creates hosted payment sessions with the external
// payment provider. The hosted implementation only mints the session and
// redirect URL; confirmation arrives later on the provider webhook.
package checkout

import "context"

type SessionRequest struct {
	QuoteID  string
	Amount   float64
	Currency string
}

type Session struct {
	SessionID string
	URL       string
}

type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}
