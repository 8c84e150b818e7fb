// Package medical classifies a member's medical risk from a fixed
// three-question decision tree and tracks per-session screening state.
package medical

import "errors"

// RiskLevel is the medical-risk classification outcome.
type RiskLevel int

const (
	// RiskStandard prices at the standard rate.
	RiskStandard RiskLevel = 0
	// RiskLoaded prices with the loaded-premium medical rate.
	RiskLoaded RiskLevel = 1
	// RiskDeclined is a hard decline; no quote may be generated.
	RiskDeclined RiskLevel = 2
)

// Answer is a tri-state questionnaire answer. The zero value means the
// question has not been answered yet.
type Answer int

const (
	Unanswered Answer = iota
	Yes
	No
)

var (
	ErrIncomplete        = errors.New("screening_incomplete")
	ErrAlreadyClassified = errors.New("member_already_classified")
)

// Questionnaire holds one member's ordered answers. Questions are asked in
// fixed order; a later question is only reachable after the prior one was
// answered No, so trailing answers may legitimately be Unanswered once an
// earlier Yes has halted classification.
type Questionnaire struct {
	TerminalIllness    Answer
	AdvisedNotToTravel Answer

	// Question three is a composite; Yes on any sub-item loads the premium.
	ChronicConditionHistory Answer
	RecentTreatment         Answer
	CurrentMedication       Answer
}

// Classify walks the decision tree and returns the member's risk level.
// A missing answer for the current question yields ErrIncomplete, never a
// default level.
func Classify(q Questionnaire) (RiskLevel, error) {
	switch q.TerminalIllness {
	case Yes:
		return RiskDeclined, nil
	case Unanswered:
		return 0, ErrIncomplete
	}

	switch q.AdvisedNotToTravel {
	case Yes:
		return RiskDeclined, nil
	case Unanswered:
		return 0, ErrIncomplete
	}

	loaded := false
	for _, sub := range []Answer{q.ChronicConditionHistory, q.RecentTreatment, q.CurrentMedication} {
		switch sub {
		case Yes:
			loaded = true
		case Unanswered:
			return 0, ErrIncomplete
		}
	}
	if loaded {
		return RiskLoaded, nil
	}
	return RiskStandard, nil
}
