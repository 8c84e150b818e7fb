// Package scheduler runs the periodic lifecycle work: advancing sent
// memberships to active, expiring finished ones, and draining the document
// outbox.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tripshield/tripshield/internal/clock"
	"github.com/tripshield/tripshield/internal/config"
	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type SchedulerParam struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	Clock       clock.Clock
	Memberships memberdomain.Service
	Documents   documentdomain.Service
}

type Scheduler struct {
	log         *zap.Logger
	clock       clock.Clock
	memberships memberdomain.Service
	documents   documentdomain.Service

	spec string
	cron *cron.Cron
}

func New(p SchedulerParam) *Scheduler {
	return &Scheduler{
		log:         p.Log.Named("scheduler"),
		clock:       p.Clock,
		memberships: p.Memberships,
		documents:   p.Documents,
		spec:        p.Config.LifecycleCron,
	}
}

func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("lifecycle scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce executes one full sweep. Each stage is independent; a failure in
// one does not stop the others.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := s.clock.Now()

	activated, err := s.memberships.ActivateDue(ctx, now)
	if err != nil {
		s.log.Warn("activation sweep failed", zap.Error(err))
	}

	expired, err := s.memberships.ExpireDue(ctx, now)
	if err != nil {
		s.log.Warn("expiry sweep failed", zap.Error(err))
	}

	dispatched, err := s.documents.DispatchPending(ctx)
	if err != nil {
		s.log.Warn("document drain failed", zap.Error(err))
	}

	if activated+expired+dispatched > 0 {
		s.log.Info("lifecycle sweep done",
			zap.Int("activated", activated),
			zap.Int("expired", expired),
			zap.Int("documents_dispatched", dispatched),
		)
	}
}
