package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/membership/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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

	require.NoError(t, db.AutoMigrate(&domain.Membership{}, &domain.Member{}))
	return db
}

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()
	return NewService(ServiceParam{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
}

func insertMembership(t *testing.T, db *gorm.DB, id int64, status domain.Status, start, end time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Membership{
		ID:               snowflake.ID(id),
		UserID:           snowflake.ID(1),
		MembershipNumber: id,
		Type:             domain.TypeIndividual,
		CoverageType:     domain.CoverageEurope,
		DurationType:     domain.DurationAnnual,
		Status:           status,
		StartDate:        start,
		EndDate:          end,
	}).Error)
}

func TestMarkPaid_DraftMovesOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	now := time.Now().UTC()

	insertMembership(t, db, 10, domain.StatusDraft, now, now.AddDate(1, 0, 0))

	moved, err := svc.MarkPaid(ctx, db, snowflake.ID(10))
	require.NoError(t, err)
	assert.True(t, moved)

	membership, _, err := svc.Get(ctx, snowflake.ID(10))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, membership.Status)
	require.NotNil(t, membership.PaidAt)

	// A duplicate confirmation is a no-op, not an error.
	moved, err = svc.MarkPaid(ctx, db, snowflake.ID(10))
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestMarkPaid_UnknownMembership(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)

	_, err := svc.MarkPaid(context.Background(), db, snowflake.ID(999))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkSent_Transitions(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	now := time.Now().UTC()

	insertMembership(t, db, 20, domain.StatusPaid, now, now.AddDate(1, 0, 0))

	moved, err := svc.MarkSent(ctx, db, snowflake.ID(20))
	require.NoError(t, err)
	assert.True(t, moved)

	// Resend while already sent stays sent.
	moved, err = svc.MarkSent(ctx, db, snowflake.ID(20))
	require.NoError(t, err)
	assert.False(t, moved)

	membership, _, err := svc.Get(ctx, snowflake.ID(20))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, membership.Status)
}

func TestMarkSent_DraftIsInvalid(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)
	now := time.Now().UTC()

	insertMembership(t, db, 30, domain.StatusDraft, now, now.AddDate(1, 0, 0))

	_, err := svc.MarkSent(context.Background(), db, snowflake.ID(30))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestActivateDue_OnlySentWithReachedStart(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	insertMembership(t, db, 40, domain.StatusSent, now.AddDate(0, 0, -1), now.AddDate(1, 0, 0))  // due
	insertMembership(t, db, 41, domain.StatusSent, now.AddDate(0, 0, 5), now.AddDate(1, 0, 0))   // future start
	insertMembership(t, db, 42, domain.StatusDraft, now.AddDate(0, 0, -1), now.AddDate(1, 0, 0)) // wrong status

	advanced, err := svc.ActivateDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)

	membership, _, err := svc.Get(ctx, snowflake.ID(40))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, membership.Status)

	membership, _, err = svc.Get(ctx, snowflake.ID(41))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, membership.Status)
}

func TestExpireDue_OnlyActivePastEnd(t *testing.T) {
	db := newTestDB(t)
	svc := newService(t, db)
	ctx := context.Background()
	now := time.Date(2027, 9, 10, 12, 0, 0, 0, time.UTC)

	insertMembership(t, db, 50, domain.StatusActive, now.AddDate(-1, 0, 0), now.AddDate(0, 0, -1)) // expired
	insertMembership(t, db, 51, domain.StatusActive, now.AddDate(-1, 0, 0), now.AddDate(0, 0, 3))  // still covered

	advanced, err := svc.ExpireDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced)

	membership, _, err := svc.Get(ctx, snowflake.ID(50))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, membership.Status)

	membership, _, err = svc.Get(ctx, snowflake.ID(51))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, membership.Status)
}

func TestNextMembershipNumber_Monotonic(t *testing.T) {
	db := newTestDB(t)
	repo := repository.Provide()
	ctx := context.Background()
	now := time.Now().UTC()

	next, err := repo.NextMembershipNumber(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, next)

	insertMembership(t, db, 7, domain.StatusDraft, now, now.AddDate(1, 0, 0))
	insertMembership(t, db, 3, domain.StatusDraft, now, now.AddDate(1, 0, 0))

	next, err = repo.NextMembershipNumber(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 8, next)
}

func TestDeriveEndDate(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	end, err := domain.DeriveEndDate(domain.DurationAnnual, start, time.Time{})
	require.NoError(t, err)
	assert.True(t, end.Equal(start.AddDate(1, 0, 0)))

	end, err = domain.DeriveEndDate(domain.DurationMultiTrip, start, start.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.True(t, end.Equal(start.AddDate(1, 0, 0)))

	requested := start.AddDate(0, 0, 14)
	end, err = domain.DeriveEndDate(domain.DurationSingleTrip, start, requested)
	require.NoError(t, err)
	assert.True(t, end.Equal(requested))

	_, err = domain.DeriveEndDate(domain.DurationSingleTrip, start, start)
	assert.ErrorIs(t, err, domain.ErrInvalidTripDates)
}

func TestValidateComposition(t *testing.T) {
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	primary := domain.Member{IsPrimary: true, DateOfBirth: dob}
	extra := domain.Member{DateOfBirth: dob}

	assert.NoError(t, domain.ValidateComposition(domain.TypeCouple, []domain.Member{primary, extra}))
	assert.ErrorIs(t, domain.ValidateComposition(domain.TypeCouple, []domain.Member{primary, extra, extra}), domain.ErrMemberLimit)
	assert.ErrorIs(t, domain.ValidateComposition(domain.TypeIndividual, nil), domain.ErrNoMembers)
	assert.ErrorIs(t, domain.ValidateComposition(domain.Type("GROUP"), []domain.Member{primary}), domain.ErrInvalidType)
	assert.ErrorIs(t, domain.ValidateComposition(domain.TypeCouple, []domain.Member{extra, extra}), domain.ErrPrimaryMember)
	assert.ErrorIs(t,
		domain.ValidateComposition(domain.TypeCouple, []domain.Member{primary, {IsPrimary: false}}),
		domain.ErrMissingDateOfBirth)
}
