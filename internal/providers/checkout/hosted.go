package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tripshield/tripshield/internal/config"
	"go.uber.org/zap"
)

type hostedProvider struct {
	baseURL string
	log     *zap.Logger
}

func NewHostedProvider(cfg config.Config, log *zap.Logger) Provider {
	return &hostedProvider{
		baseURL: cfg.CheckoutBaseURL,
		log:     log.Named("checkout.hosted"),
	}
}

func (p *hostedProvider) CreateSession(_ context.Context, req SessionRequest) (Session, error) {
	sessionID := uuid.NewString()
	session := Session{
		SessionID: sessionID,
		URL:       fmt.Sprintf("%s/session/%s", p.baseURL, sessionID),
	}
	p.log.Info("checkout session created",
		zap.String("session_id", sessionID),
		zap.String("quote_id", req.QuoteID),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)
	return session, nil
}
