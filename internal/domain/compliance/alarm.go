package compliance

import "time"

// ApproachingWindowDays is the inclusive look-ahead for the approaching state.
const ApproachingWindowDays = 30

type AlarmState string

const (
	AlarmNoData      AlarmState = "no-data"
	AlarmExpired     AlarmState = "expired"
	AlarmApproaching AlarmState = "approaching"
	AlarmValid       AlarmState = "valid"
)

const day = 24 * time.Hour

// DaysRemaining returns the signed number of days from now until expiry.
// Partial days count as whole days away from zero, so any expiry strictly
// before now is negative and any expiry later today is at least 1.
func DaysRemaining(expiry *time.Time, now time.Time) *int {
	if expiry == nil {
		return nil
	}

	diff := expiry.Sub(now)
	n := diff / day
	if rem := diff % day; rem > 0 {
		n++
	} else if rem < 0 {
		n--
	}

	days := int(n)
	return &days
}

// EvaluateAlarm classifies an expiry date relative to now.
func EvaluateAlarm(expiry *time.Time, now time.Time) AlarmState {
	days := DaysRemaining(expiry, now)
	return AlarmFromDays(days)
}

// AlarmFromDays classifies a precomputed day count.
func AlarmFromDays(days *int) AlarmState {
	switch {
	case days == nil:
		return AlarmNoData
	case *days < 0:
		return AlarmExpired
	case *days <= ApproachingWindowDays:
		return AlarmApproaching
	default:
		return AlarmValid
	}
}

func (s AlarmState) NeedsAttention() bool {
	return s == AlarmExpired || s == AlarmApproaching
}
