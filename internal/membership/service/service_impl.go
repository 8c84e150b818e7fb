package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/membership/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("membership.service"),
		repo: p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Membership, []domain.Member, error) {
	membership, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if membership == nil {
		return nil, nil, domain.ErrNotFound
	}
	members, err := s.repo.ListMembers(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return membership, members, nil
}

func (s *Service) MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID) (bool, error) {
	membership, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, domain.ErrNotFound
	}

	switch membership.Status {
	case domain.StatusDraft:
		now := time.Now().UTC()
		if err := s.repo.UpdateStatus(ctx, tx, id, domain.StatusPaid, now); err != nil {
			return false, err
		}
		return true, nil
	case domain.StatusPaid, domain.StatusSent, domain.StatusActive, domain.StatusExpired:
		// Already past draft: duplicate confirmation, leave unchanged.
		return false, nil
	default:
		return false, domain.ErrInvalidStatus
	}
}

func (s *Service) MarkSent(ctx context.Context, tx *gorm.DB, id snowflake.ID) (bool, error) {
	membership, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, domain.ErrNotFound
	}

	switch membership.Status {
	case domain.StatusPaid:
		now := time.Now().UTC()
		if err := s.repo.UpdateStatus(ctx, tx, id, domain.StatusSent, now); err != nil {
			return false, err
		}
		return true, nil
	case domain.StatusSent:
		// Resend while sent: no further transition.
		return false, nil
	case domain.StatusDraft, domain.StatusActive, domain.StatusExpired:
		return false, domain.ErrInvalidTransition
	default:
		return false, domain.ErrInvalidStatus
	}
}

func (s *Service) ActivateDue(ctx context.Context, now time.Time) (int, error) {
	return s.advanceDue(ctx, now, domain.StatusSent, domain.StatusActive, s.repo.ListDueForActivation)
}

func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	return s.advanceDue(ctx, now, domain.StatusActive, domain.StatusExpired, s.repo.ListDueForExpiry)
}

func (s *Service) advanceDue(
	ctx context.Context,
	now time.Time,
	from domain.Status,
	to domain.Status,
	list func(context.Context, *gorm.DB, time.Time, int) ([]domain.Membership, error),
) (int, error) {
	const batchSize = 200

	due, err := list(ctx, s.db, now, batchSize)
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, membership := range due {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := s.repo.FindByIDForUpdate(ctx, tx, membership.ID)
			if err != nil {
				return err
			}
			if current == nil || current.Status != from {
				return nil
			}
			if err := s.repo.UpdateStatus(ctx, tx, membership.ID, to, now); err != nil {
				return err
			}
			advanced++
			return nil
		})
		if err != nil {
			s.log.Warn("lifecycle advance failed",
				zap.String("membership_id", membership.ID.String()),
				zap.String("to", string(to)),
				zap.Error(err),
			)
			return advanced, err
		}
	}

	if advanced > 0 {
		s.log.Info("memberships advanced",
			zap.String("to", string(to)),
			zap.Int("count", advanced),
		)
	}
	return advanced, nil
}
