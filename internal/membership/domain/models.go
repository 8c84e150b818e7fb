// Package domain contains persistence models for memberships and their
// covered members, and the membership lifecycle status type.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents lifecycle states for a membership. Transitions only
// move forward: draft, paid, sent, active, expired. A declined screening
// never reaches a persisted membership; it is rejected at the wizard layer.
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusPaid    Status = "PAID"
	StatusSent    Status = "SENT"
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPaid, StatusSent, StatusActive, StatusExpired:
		return true
	}
	return false
}

// Type bounds how many members a membership may cover.
type Type string

const (
	TypeIndividual Type = "INDIVIDUAL"
	TypeCouple     Type = "COUPLE"
	TypeFamily     Type = "FAMILY"
)

// MemberLimit returns the maximum member count for the membership type.
func (t Type) MemberLimit() int {
	switch t {
	case TypeIndividual:
		return 1
	case TypeCouple:
		return 2
	case TypeFamily:
		return 15
	}
	return 0
}

func (t Type) Valid() bool {
	return t.MemberLimit() > 0
}

// CoverageType selects the geographic coverage tier.
type CoverageType string

const (
	CoverageEurope        CoverageType = "EUROPE"
	CoverageWorldwide     CoverageType = "WORLDWIDE"
	CoverageWorldwidePlus CoverageType = "WORLDWIDE_PLUS"
)

func (c CoverageType) Valid() bool {
	switch c {
	case CoverageEurope, CoverageWorldwide, CoverageWorldwidePlus:
		return true
	}
	return false
}

// DurationType classifies the coverage period and selects the day-count rule.
type DurationType string

const (
	DurationAnnual     DurationType = "ANNUAL"
	DurationMultiTrip  DurationType = "MULTI_TRIP"
	DurationSingleTrip DurationType = "SINGLE_TRIP"
)

func (d DurationType) Valid() bool {
	switch d {
	case DurationAnnual, DurationMultiTrip, DurationSingleTrip:
		return true
	}
	return false
}

// Membership is one purchasable policy.
type Membership struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"not null;index"`
	MembershipNumber int64        `gorm:"not null;uniqueIndex"`
	Type             Type         `gorm:"type:text;not null"`
	CoverageType     CoverageType `gorm:"type:text;not null"`
	DurationType     DurationType `gorm:"type:text;not null"`
	Status           Status       `gorm:"type:text;not null;default:'DRAFT'"`
	StartDate        time.Time    `gorm:"not null"`
	EndDate          time.Time    `gorm:"not null"`
	PaidAt           *time.Time   `gorm:""`
	SentAt           *time.Time   `gorm:""`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Membership) TableName() string { return "memberships" }

// Member is one natural person covered under a membership.
type Member struct {
	ID                 snowflake.ID `gorm:"primaryKey"`
	MembershipID       snowflake.ID `gorm:"not null;index"`
	FirstName          string       `gorm:"type:text;not null"`
	LastName           string       `gorm:"type:text;not null"`
	Email              string       `gorm:"type:text"`
	Phone              string       `gorm:"type:text"`
	AddressLine        string       `gorm:"type:text"`
	Gender             string       `gorm:"type:text"`
	DateOfBirth        time.Time    `gorm:"not null"`
	Nationality        string       `gorm:"type:text;not null"`
	CountryOfResidence string       `gorm:"type:text;not null"`
	HasConditions      bool         `gorm:"not null;default:false"`
	IsPrimary          bool         `gorm:"not null;default:false"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Member) TableName() string { return "members" }

// AgeAt returns the member's age in whole years at the given time.
func (m Member) AgeAt(at time.Time) int {
	age := at.Year() - m.DateOfBirth.Year()
	anniversary := m.DateOfBirth.AddDate(age, 0, 0)
	if anniversary.After(at) {
		age--
	}
	return age
}
