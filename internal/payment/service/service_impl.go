package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/metrics"
	"github.com/tripshield/tripshield/internal/payment/domain"
	"github.com/tripshield/tripshield/internal/providers/checkout"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	pkgdb "github.com/tripshield/tripshield/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// amountTolerance absorbs floating-point drift between the provider's
// reported amount and the quoted total.
const amountTolerance = 0.01

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Node        *snowflake.Node
	Repo        domain.Repository
	Quotes      quotedomain.Repository
	Memberships memberdomain.Service
	Documents   documentdomain.Service
	Checkout    checkout.Provider
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	node        *snowflake.Node
	repo        domain.Repository
	quotes      quotedomain.Repository
	memberships memberdomain.Service
	documents   documentdomain.Service
	checkout    checkout.Provider
	metrics     *metrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		node:        p.Node,
		repo:        p.Repo,
		quotes:      p.Quotes,
		memberships: p.Memberships,
		documents:   p.Documents,
		checkout:    p.Checkout,
		metrics:     p.Metrics,
	}
}

func (s *Service) Confirm(ctx context.Context, event domain.ConfirmationEvent) (domain.Outcome, error) {
	if strings.TrimSpace(event.EventID) == "" {
		return "", domain.ErrMissingEventID
	}

	var outcome domain.Outcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := &domain.PaymentEvent{
			ID:       s.node.Generate(),
			Provider: event.Provider,
			EventID:  event.EventID,
			QuoteID:  event.QuoteID,
			Outcome:  string(domain.OutcomeIgnored),
			Payload:  event.Payload,
		}
		inserted, err := s.repo.InsertEventIfAbsent(ctx, tx, record)
		if err != nil {
			return err
		}
		if !inserted {
			// Exact redelivery of an event we already processed.
			outcome = domain.OutcomeDuplicate
			return nil
		}

		quote, err := s.quotes.FindByID(ctx, tx, event.QuoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrUnknownQuote
		}

		if !strings.EqualFold(event.Status, domain.StatusSucceeded) {
			outcome = domain.OutcomeIgnored
			return nil
		}

		if event.Amount != 0 && math.Abs(event.Amount-quote.TotalWithTax) > amountTolerance {
			return domain.ErrInvalidAmount
		}

		moved, err := s.memberships.MarkPaid(ctx, tx, quote.MembershipID)
		if err != nil {
			return err
		}

		recorded, err := s.repo.UpsertPayment(ctx, tx, &domain.Payment{
			ID:           s.node.Generate(),
			QuoteID:      quote.ID,
			MembershipID: quote.MembershipID,
			Provider:     event.Provider,
			SessionID:    event.SessionID,
			Status:       domain.StatusPaid,
			Amount:       quote.TotalWithTax,
			AmountGBP:    quote.TotalGBP,
			Currency:     quote.Currency,
		})
		if err != nil {
			return err
		}

		if moved || recorded {
			outcome = domain.OutcomeConfirmed
		} else {
			// Same payment reported under a fresh event id.
			outcome = domain.OutcomeDuplicate
		}

		if err := s.documents.Enqueue(ctx, tx, quote.MembershipID); err != nil {
			return err
		}

		record.Outcome = string(outcome)
		return tx.Model(&domain.PaymentEvent{}).
			Where("id = ?", record.ID).
			Update("outcome", record.Outcome).Error
	})
	if err != nil {
		s.recordEvent(reconcileFailureLabel(err))
		return "", err
	}

	s.recordEvent(string(outcome))
	s.log.Info("payment event reconciled",
		zap.String("provider", event.Provider),
		zap.String("event_id", event.EventID),
		zap.String("quote_id", event.QuoteID.String()),
		zap.String("outcome", string(outcome)),
	)

	if outcome == domain.OutcomeConfirmed {
		go s.issueDocuments(event.QuoteID)
	}
	return outcome, nil
}

// issueDocuments kicks the first dispatch attempt right after confirmation
// so the customer does not wait for the next outbox drain. Failures are
// retried by the scheduler.
func (s *Service) issueDocuments(quoteID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	quote, err := s.quotes.FindByID(ctx, s.db, quoteID)
	if err != nil || quote == nil {
		return
	}
	if err := s.documents.Issue(ctx, quote.MembershipID); err != nil {
		s.log.Warn("initial document dispatch failed, left for retry",
			zap.String("membership_id", quote.MembershipID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) CreateCheckout(ctx context.Context, quoteID snowflake.ID) (*domain.CheckoutSession, error) {
	quote, err := s.quotes.FindByID(ctx, s.db, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, quotedomain.ErrNotFound
	}

	membership, _, err := s.memberships.Get(ctx, quote.MembershipID)
	if err != nil {
		return nil, err
	}
	if membership.Status != memberdomain.StatusDraft {
		return nil, domain.ErrAlreadyPaid
	}

	existing, err := s.repo.FindSessionByQuoteID(ctx, s.db, quoteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.checkout.CreateSession(ctx, checkout.SessionRequest{
		QuoteID:  quoteID.String(),
		Amount:   quote.TotalWithTax,
		Currency: quote.Currency,
	})
	if err != nil {
		return nil, err
	}

	session := &domain.CheckoutSession{
		ID:        s.node.Generate(),
		QuoteID:   quoteID,
		Provider:  "hosted",
		SessionID: created.SessionID,
		URL:       created.URL,
	}
	if err := s.repo.InsertSession(ctx, s.db, session); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			// Lost the race to a concurrent request; serve its session.
			return s.repo.FindSessionByQuoteID(ctx, s.db, quoteID)
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) recordEvent(outcome string) {
	if s.metrics != nil {
		s.metrics.PaymentEvents.WithLabelValues(outcome).Inc()
	}
}

func reconcileFailureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownQuote):
		return "unknown_quote"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "amount_mismatch"
	default:
		return "error"
	}
}
