package wizard

// Diff reports what changed between the previous submission and the
// current one.
type Diff struct {
	// First marks a submission with no prior snapshot; everything is
	// treated as changed.
	First bool

	PlanChanged  bool
	DatesChanged bool

	// RescreenMembers indexes members (into the current snapshot) whose
	// identity fields changed, so their medical classification no longer
	// holds. Added members always appear here.
	RescreenMembers []int
}

func (d Diff) Dirty() bool {
	return d.First || d.PlanChanged || d.DatesChanged || len(d.RescreenMembers) > 0
}

func (d Diff) NeedsRescreen(index int) bool {
	if d.First {
		return true
	}
	for _, i := range d.RescreenMembers {
		if i == index {
			return true
		}
	}
	return false
}

// Compare diffs the current submission against the previous snapshot.
// Contact edits (email, phone, address) never invalidate anything; edits
// to the fields that feed pricing or screening do.
func Compare(previous *Snapshot, current Snapshot) Diff {
	if previous == nil {
		indexes := make([]int, len(current.Members))
		for i := range indexes {
			indexes[i] = i
		}
		return Diff{First: true, RescreenMembers: indexes}
	}

	diff := Diff{
		PlanChanged: previous.Type != current.Type ||
			previous.CoverageType != current.CoverageType ||
			previous.DurationType != current.DurationType,
		DatesChanged: !previous.StartDate.Equal(current.StartDate) ||
			!previous.EndDate.Equal(current.EndDate),
	}

	for i, member := range current.Members {
		if i >= len(previous.Members) || identityChanged(previous.Members[i], member) {
			diff.RescreenMembers = append(diff.RescreenMembers, i)
		}
	}
	return diff
}

func identityChanged(previous, current MemberSnapshot) bool {
	return previous.FirstName != current.FirstName ||
		previous.LastName != current.LastName ||
		!previous.DateOfBirth.Equal(current.DateOfBirth) ||
		previous.Gender != current.Gender ||
		previous.Nationality != current.Nationality ||
		previous.CountryOfResidence != current.CountryOfResidence
}
