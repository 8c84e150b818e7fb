package medical

import "github.com/bwmarrin/snowflake"

// State is the per-wizard-session screening outcome: member id to risk
// level, plus whether any member was declined. It is never persisted on its
// own; the quote service folds it into the members and the price at
// generation time.
type State struct {
	levels map[snowflake.ID]RiskLevel
}

func NewState() *State {
	return &State{levels: make(map[snowflake.ID]RiskLevel)}
}

// Finalize records a member's classification. Re-answering is not allowed
// once finalized; callers must Invalidate first.
func (s *State) Finalize(memberID snowflake.ID, level RiskLevel) error {
	if _, ok := s.levels[memberID]; ok {
		return ErrAlreadyClassified
	}
	s.levels[memberID] = level
	return nil
}

// Level returns the recorded risk level for the member, if any.
func (s *State) Level(memberID snowflake.ID) (RiskLevel, bool) {
	level, ok := s.levels[memberID]
	return level, ok
}

// Invalidate removes one member's classification so they can be screened
// again. The member itself is untouched.
func (s *State) Invalidate(memberID snowflake.ID) {
	delete(s.levels, memberID)
}

// HasDeclined reports whether any member classified at the decline level.
func (s *State) HasDeclined() bool {
	for _, level := range s.levels {
		if level == RiskDeclined {
			return true
		}
	}
	return false
}

// Complete reports whether every listed member carries a classification.
func (s *State) Complete(memberIDs []snowflake.ID) bool {
	for _, id := range memberIDs {
		if _, ok := s.levels[id]; !ok {
			return false
		}
	}
	return true
}
