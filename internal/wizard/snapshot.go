// Package wizard tracks edits across the multi-step purchase flow. The
// client carries an opaque token of what it last submitted; comparing it
// with the next submission tells the server which answers are stale, in
// particular which members must repeat medical screening.
package wizard

import (
	"encoding/base64"
	"time"

	"github.com/goccy/go-json"
)

// MemberSnapshot captures one applicant as entered in the wizard. The
// identity fields feed risk classification; the contact fields do not.
type MemberSnapshot struct {
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	DateOfBirth        time.Time `json:"dateOfBirth"`
	Gender             string    `json:"gender"`
	Nationality        string    `json:"nationality"`
	CountryOfResidence string    `json:"countryOfResidence"`

	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
}

type Snapshot struct {
	Type         string    `json:"type"`
	CoverageType string    `json:"coverageType"`
	DurationType string    `json:"durationType"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`

	Members []MemberSnapshot `json:"members"`
}

// Encode serializes a snapshot into the opaque token handed to the client.
func Encode(snapshot Snapshot) (string, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a client token. An empty token yields a nil snapshot,
// meaning nothing was submitted before.
func Decode(token string) (*Snapshot, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
