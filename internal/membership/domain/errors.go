package domain

import "errors"

var (
	ErrNotFound           = errors.New("membership_not_found")
	ErrInvalidType        = errors.New("invalid_membership_type")
	ErrInvalidCoverage    = errors.New("invalid_coverage_type")
	ErrInvalidDuration    = errors.New("invalid_duration_type")
	ErrInvalidStatus      = errors.New("invalid_membership_status")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrMemberLimit        = errors.New("member_limit_exceeded")
	ErrNoMembers          = errors.New("membership_has_no_members")
	ErrPrimaryMember      = errors.New("exactly_one_primary_member_required")
	ErrMissingDateOfBirth = errors.New("member_date_of_birth_required")
	ErrInvalidTripDates   = errors.New("invalid_trip_dates")
)
