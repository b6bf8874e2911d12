package compliance

import "time"

type InspectionValidity struct {
	ValidUntil time.Time
	Outcome    InspectionOutcome
}

type InsuranceValidity struct {
	ValidUntil time.Time
	SubType    InsuranceSubType
}

// LatestPassedInspection returns the latest validity date among passed
// inspections, or nil when there is none.
func LatestPassedInspection(records []InspectionValidity) *time.Time {
	var latest *time.Time
	for _, rec := range records {
		if rec.Outcome != OutcomePassed {
			continue
		}
		latest = later(latest, rec.ValidUntil)
	}
	return latest
}

// LatestInsurance returns the latest validity date among records of subType.
func LatestInsurance(records []InsuranceValidity, subType InsuranceSubType) *time.Time {
	var latest *time.Time
	for _, rec := range records {
		if rec.SubType != subType {
			continue
		}
		latest = later(latest, rec.ValidUntil)
	}
	return latest
}

func later(current *time.Time, candidate time.Time) *time.Time {
	if current != nil && !candidate.After(*current) {
		return current
	}
	v := candidate
	return &v
}

// SameDate compares two optional dates by instant.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
