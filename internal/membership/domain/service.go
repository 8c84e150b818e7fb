package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service owns the membership lifecycle. Transition methods report whether
// the status actually moved so callers can distinguish a first delivery
// from an idempotent replay.
type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Membership, []Member, error)

	// MarkPaid transitions draft to paid inside the caller's transaction.
	// Any other current status is left unchanged and reported as a no-op.
	MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID) (bool, error)

	// MarkSent transitions paid to sent. A membership already sent stays
	// sent (resend does not transition again).
	MarkSent(ctx context.Context, tx *gorm.DB, id snowflake.ID) (bool, error)

	// ActivateDue moves sent memberships whose start date has been reached
	// to active; ExpireDue moves active memberships past their end date to
	// expired. Both return the number of memberships advanced.
	ActivateDue(ctx context.Context, now time.Time) (int, error)
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// DeriveEndDate computes the end date for a duration type. Annual and
// multi-trip covers run one year from the start; single-trip keeps the
// user-supplied end date.
func DeriveEndDate(duration DurationType, start time.Time, requestedEnd time.Time) (time.Time, error) {
	switch duration {
	case DurationAnnual, DurationMultiTrip:
		return start.AddDate(1, 0, 0), nil
	case DurationSingleTrip:
		if !requestedEnd.After(start) {
			return time.Time{}, ErrInvalidTripDates
		}
		return requestedEnd, nil
	default:
		return time.Time{}, ErrInvalidDuration
	}
}

// ValidateComposition enforces the structural membership invariants: a
// known type within its member limit and exactly one primary member.
func ValidateComposition(membershipType Type, members []Member) error {
	if !membershipType.Valid() {
		return ErrInvalidType
	}
	if len(members) == 0 {
		return ErrNoMembers
	}
	if len(members) > membershipType.MemberLimit() {
		return ErrMemberLimit
	}

	primaries := 0
	for _, member := range members {
		if member.IsPrimary {
			primaries++
		}
		if member.DateOfBirth.IsZero() {
			return ErrMissingDateOfBirth
		}
	}
	if primaries != 1 {
		return ErrPrimaryMember
	}
	return nil
}
