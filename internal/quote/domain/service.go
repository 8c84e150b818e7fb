package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/medical"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
)

// MemberInput is one applicant on a quote request. The screening answers
// are classified during pricing; an incomplete questionnaire or a declined
// member refuses the whole quote.
type MemberInput struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	AddressLine        string
	Gender             string
	DateOfBirth        time.Time
	Nationality        string
	CountryOfResidence string
	IsPrimary          bool

	Screening medical.Questionnaire
}

type GenerateRequest struct {
	UserID       snowflake.ID
	Type         memberdomain.Type
	CoverageType memberdomain.CoverageType
	DurationType memberdomain.DurationType
	StartDate    time.Time
	EndDate      time.Time
	Currency     string
	ReferralCode string
	Members      []MemberInput
}

// GenerateResult bundles the draft membership created for the quote with
// the priced snapshot and its per-member lines.
type GenerateResult struct {
	Membership   memberdomain.Membership
	Members      []memberdomain.Member
	Quote        Quote
	MemberPrices []QuoteMemberPrice
}

type Service interface {
	// Generate validates the composition and screening, prices every
	// member, and persists a draft membership with its quote atomically.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	GetByID(ctx context.Context, id snowflake.ID) (*Quote, error)
	MemberPrices(ctx context.Context, quoteID snowflake.ID) ([]QuoteMemberPrice, error)

	// LatestByMembership returns the most recent quote for a membership,
	// or ErrNotFound when none exists.
	LatestByMembership(ctx context.Context, membershipID snowflake.ID) (*Quote, error)
}
