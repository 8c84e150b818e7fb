package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripshield/tripshield/internal/clock"
	"github.com/tripshield/tripshield/internal/config"
	"github.com/tripshield/tripshield/internal/document/domain"
	"github.com/tripshield/tripshield/internal/document/repository"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	memberrepository "github.com/tripshield/tripshield/internal/membership/repository"
	memberservice "github.com/tripshield/tripshield/internal/membership/service"
	"github.com/tripshield/tripshield/internal/providers/email"
	"github.com/tripshield/tripshield/internal/providers/pdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakePDF struct{}

func (fakePDF) GenerateCertificate(context.Context, pdf.CertificateData) (io.Reader, error) {
	return bytes.NewReader([]byte("%PDF-1.7 certificate")), nil
}

type fakeEmail struct {
	sent []email.Message
	fail error
}

func (f *fakeEmail) Send(_ context.Context, msg email.Message) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(strings.ReplaceAll(sql, "FOR UPDATE", ""))
		}
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", stripForUpdate))
	require.NoError(t, db.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", stripForUpdate))

	require.NoError(t, db.AutoMigrate(
		&memberdomain.Membership{},
		&memberdomain.Member{},
		&domain.DocumentJob{},
	))
	return db
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	email *fakeEmail
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	log := zap.NewNop()
	memberships := memberservice.NewService(memberservice.ServiceParam{
		DB:   db,
		Log:  log,
		Repo: memberrepository.Provide(),
	})

	mail := &fakeEmail{}
	svc := NewService(ServiceParam{
		Config:      config.Config{DocumentRetryMax: 3},
		DB:          db,
		Log:         log,
		Node:        node,
		Clock:       clock.NewFakeClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)),
		Repo:        repository.Provide(),
		Memberships: memberships,
		PDF:         fakePDF{},
		Email:       mail,
	})
	return &fixture{svc: svc, db: db, email: mail}
}

func (f *fixture) seedMembership(t *testing.T, id int64, status memberdomain.Status, primaryEmail string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&memberdomain.Membership{
		ID:               snowflake.ID(id),
		UserID:           snowflake.ID(1),
		MembershipNumber: id,
		Type:             memberdomain.TypeIndividual,
		CoverageType:     memberdomain.CoverageEurope,
		DurationType:     memberdomain.DurationAnnual,
		Status:           status,
		StartDate:        now,
		EndDate:          now.AddDate(1, 0, 0),
	}).Error)
	require.NoError(t, f.db.Create(&memberdomain.Member{
		ID:                 snowflake.ID(id*10 + 1),
		MembershipID:       snowflake.ID(id),
		FirstName:          "Ada",
		LastName:           "Byrne",
		Email:              primaryEmail,
		DateOfBirth:        time.Date(1988, 4, 2, 0, 0, 0, 0, time.UTC),
		Nationality:        "IE",
		CountryOfResidence: "IE",
		IsPrimary:          true,
	}).Error)
}

func (f *fixture) job(t *testing.T, membershipID int64) domain.DocumentJob {
	t.Helper()
	var job domain.DocumentJob
	require.NoError(t, f.db.First(&job, "membership_id = ?", membershipID).Error)
	return job
}

func TestIssue_PaidMembershipMovesToSent(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "ada@example.com")

	require.NoError(t, f.svc.Issue(context.Background(), snowflake.ID(10)))

	var membership memberdomain.Membership
	require.NoError(t, f.db.First(&membership, "id = ?", 10).Error)
	assert.Equal(t, memberdomain.StatusSent, membership.Status)

	job := f.job(t, 10)
	assert.Equal(t, domain.JobSent, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.Empty(t, job.LastError)

	require.Len(t, f.email.sent, 1)
	msg := f.email.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.NotEmpty(t, msg.Attachments[0].Data)
}

func TestIssue_SendFailureLeavesMembershipPaid(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "ada@example.com")
	f.email.fail = errors.New("smtp: connection refused")

	err := f.svc.Issue(context.Background(), snowflake.ID(10))
	require.Error(t, err)

	var membership memberdomain.Membership
	require.NoError(t, f.db.First(&membership, "id = ?", 10).Error)
	assert.Equal(t, memberdomain.StatusPaid, membership.Status)

	job := f.job(t, 10)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Equal(t, 1, job.Attempts)
	assert.Contains(t, job.LastError, "connection refused")

	// The next drain retries and succeeds once the provider recovers.
	f.email.fail = nil
	sent, err := f.svc.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.NoError(t, f.db.First(&membership, "id = ?", 10).Error)
	assert.Equal(t, memberdomain.StatusSent, membership.Status)
	assert.Equal(t, domain.JobSent, f.job(t, 10).Status)
}

func TestIssue_MissingRecipientFailsJob(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "")

	err := f.svc.Issue(context.Background(), snowflake.ID(10))
	assert.ErrorIs(t, err, domain.ErrNoRecipient)

	job := f.job(t, 10)
	assert.Equal(t, domain.JobFailed, job.Status)
	assert.Empty(t, f.email.sent)
}

func TestResend_SentMembershipStaysSent(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.Issue(ctx, snowflake.ID(10)))
	require.NoError(t, f.svc.Resend(ctx, snowflake.ID(10)))

	var membership memberdomain.Membership
	require.NoError(t, f.db.First(&membership, "id = ?", 10).Error)
	assert.Equal(t, memberdomain.StatusSent, membership.Status)

	// Both the original dispatch and the resend hit the mailbox.
	assert.Len(t, f.email.sent, 2)
	assert.Equal(t, 2, f.job(t, 10).Attempts)
}

func TestResend_ActiveMembershipRefused(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusActive, "ada@example.com")

	err := f.svc.Resend(context.Background(), snowflake.ID(10))
	assert.ErrorIs(t, err, domain.ErrNotIssuable)
	assert.Empty(t, f.email.sent)

	// The refusal happens before any job is queued.
	var jobs int64
	require.NoError(t, f.db.Model(&domain.DocumentJob{}).Count(&jobs).Error)
	assert.Zero(t, jobs)
}

func TestResend_DraftMembershipRefused(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusDraft, "ada@example.com")

	err := f.svc.Resend(context.Background(), snowflake.ID(10))
	assert.ErrorIs(t, err, domain.ErrNotIssuable)
	assert.Empty(t, f.email.sent)
}

func TestDispatchPending_SkipsExhaustedJobs(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "ada@example.com")
	f.email.fail = errors.New("smtp: mailbox unavailable")
	ctx := context.Background()

	// Burn through every allowed attempt.
	_ = f.svc.Issue(ctx, snowflake.ID(10))
	for i := 0; i < 2; i++ {
		sent, err := f.svc.DispatchPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, sent)
	}
	assert.Equal(t, 3, f.job(t, 10).Attempts)

	// Even a healthy provider no longer reaches the exhausted job.
	f.email.fail = nil
	sent, err := f.svc.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.email.sent)
}

func TestEnqueue_IdempotentPerMembership(t *testing.T) {
	f := newFixture(t)
	f.seedMembership(t, 10, memberdomain.StatusPaid, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.Enqueue(ctx, f.db, snowflake.ID(10)))
	require.NoError(t, f.svc.Enqueue(ctx, f.db, snowflake.ID(10)))

	var jobs int64
	require.NoError(t, f.db.Model(&domain.DocumentJob{}).Count(&jobs).Error)
	assert.EqualValues(t, 1, jobs)
}
