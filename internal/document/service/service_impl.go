package service

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/clock"
	"github.com/tripshield/tripshield/internal/config"
	"github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/metrics"
	"github.com/tripshield/tripshield/internal/providers/email"
	"github.com/tripshield/tripshield/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	Config      config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Node        *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	Memberships memberdomain.Service
	PDF         pdf.Provider
	Email       email.Provider
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	node        *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	memberships memberdomain.Service
	pdf         pdf.Provider
	email       email.Provider
	metrics     *metrics.Metrics
	retryMax    int
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("document.service"),
		node:        p.Node,
		clock:       p.Clock,
		repo:        p.Repo,
		memberships: p.Memberships,
		pdf:         p.PDF,
		email:       p.Email,
		metrics:     p.Metrics,
		retryMax:    p.Config.DocumentRetryMax,
	}
}

func (s *Service) Enqueue(ctx context.Context, tx *gorm.DB, membershipID snowflake.ID) error {
	return s.repo.EnqueueIfAbsent(ctx, tx, &domain.DocumentJob{
		ID:           s.node.Generate(),
		MembershipID: membershipID,
		Status:       domain.JobPending,
	})
}

func (s *Service) Issue(ctx context.Context, membershipID snowflake.ID) error {
	if err := s.Enqueue(ctx, s.db, membershipID); err != nil {
		return err
	}
	job, err := s.repo.FindByMembershipID(ctx, s.db, membershipID)
	if err != nil {
		return err
	}
	if job == nil {
		return domain.ErrNotIssuable
	}
	return s.attempt(ctx, *job)
}

func (s *Service) Resend(ctx context.Context, membershipID snowflake.ID) error {
	membership, _, err := s.memberships.Get(ctx, membershipID)
	if err != nil {
		return err
	}
	switch membership.Status {
	case memberdomain.StatusPaid, memberdomain.StatusSent:
	default:
		return domain.ErrNotIssuable
	}
	return s.Issue(ctx, membershipID)
}

func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	const batchSize = 50

	jobs, err := s.repo.ListDispatchable(ctx, s.db, s.retryMax, batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, job := range jobs {
		if err := s.attempt(ctx, job); err != nil {
			s.log.Warn("document dispatch failed",
				zap.String("membership_id", job.MembershipID.String()),
				zap.Int("attempts", job.Attempts+1),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, nil
}

// attempt runs one dispatch for a job and records the outcome. The
// membership status only moves on success; a failed render or send leaves
// it paid so the next drain retries.
func (s *Service) attempt(ctx context.Context, job domain.DocumentJob) error {
	now := s.clock.Now()

	err := s.dispatch(ctx, job.MembershipID)
	if err != nil {
		if markErr := s.repo.MarkAttempt(ctx, s.db, job.ID, domain.JobFailed, err.Error(), now); markErr != nil {
			return markErr
		}
		s.recordOutcome("failed")
		return err
	}

	if err := s.repo.MarkAttempt(ctx, s.db, job.ID, domain.JobSent, "", now); err != nil {
		return err
	}
	s.recordOutcome("sent")
	return nil
}

func (s *Service) dispatch(ctx context.Context, membershipID snowflake.ID) error {
	membership, members, err := s.memberships.Get(ctx, membershipID)
	if err != nil {
		return err
	}

	switch membership.Status {
	case memberdomain.StatusPaid, memberdomain.StatusSent:
	default:
		return domain.ErrNotIssuable
	}

	primary := primaryMember(members)
	if primary == nil || primary.Email == "" {
		return domain.ErrNoRecipient
	}

	data := pdf.CertificateData{
		MembershipNumber: membership.MembershipNumber,
		HolderName:       primary.FirstName + " " + primary.LastName,
		Type:             string(membership.Type),
		CoverageType:     string(membership.CoverageType),
		DurationType:     string(membership.DurationType),
		StartDate:        membership.StartDate,
		EndDate:          membership.EndDate,
	}
	for _, member := range members {
		data.Members = append(data.Members, pdf.CertificateMember{
			Name:        member.FirstName + " " + member.LastName,
			DateOfBirth: member.DateOfBirth,
			IsPrimary:   member.IsPrimary,
		})
	}

	document, err := s.pdf.GenerateCertificate(ctx, data)
	if err != nil {
		return err
	}
	payload, err := io.ReadAll(document)
	if err != nil {
		return err
	}

	err = s.email.Send(ctx, email.Message{
		To:      primary.Email,
		Subject: "Your TripShield membership documents",
		Body: "Thank you for your purchase. Your certificate of membership " +
			"is attached. Keep it with your travel documents.",
		Attachments: []email.Attachment{{
			Filename:    "membership-certificate.pdf",
			ContentType: "application/pdf",
			Data:        payload,
		}},
	})
	if err != nil {
		return err
	}

	if membership.Status == memberdomain.StatusPaid {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.memberships.MarkSent(ctx, tx, membershipID)
			return err
		})
		if err != nil {
			return err
		}
	}

	s.log.Info("membership documents dispatched",
		zap.String("membership_id", membershipID.String()),
		zap.String("to", primary.Email),
	)
	return nil
}

func (s *Service) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.DocumentOutcome.WithLabelValues(outcome).Inc()
	}
}

func primaryMember(members []memberdomain.Member) *memberdomain.Member {
	for i := range members {
		if members[i].IsPrimary {
			return &members[i]
		}
	}
	return nil
}
