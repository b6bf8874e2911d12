package compliance

import (
	"testing"
	"time"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestDaysRemainingNilExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if got := DaysRemaining(nil, now); got != nil {
		t.Fatalf("DaysRemaining(nil) = %d, want nil", *got)
	}
	if got := EvaluateAlarm(nil, now); got != AlarmNoData {
		t.Fatalf("EvaluateAlarm(nil) = %q, want %q", got, AlarmNoData)
	}
}

func TestDaysRemainingRoundsPartialDays(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"same instant", now, 0},
		{"29.5 days ahead", now.Add(29*24*time.Hour + 12*time.Hour), 30},
		{"one hour ahead", now.Add(time.Hour), 1},
		{"exactly 31 days ahead", now.Add(31 * 24 * time.Hour), 31},
		{"one hour ago", now.Add(-time.Hour), -1},
		{"ten days ago", now.Add(-10 * 24 * time.Hour), -10},
		{"ten and a half days ago", now.Add(-10*24*time.Hour - 12*time.Hour), -11},
	}

	for _, tc := range cases {
		got := DaysRemaining(ptrTime(tc.expiry), now)
		if got == nil || *got != tc.want {
			t.Fatalf("%s: DaysRemaining() = %v, want %d", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateAlarmThresholds(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	if got := EvaluateAlarm(ptrTime(now.Add(-time.Minute)), now); got != AlarmExpired {
		t.Fatalf("EvaluateAlarm(past) = %q, want expired", got)
	}
	if got := EvaluateAlarm(ptrTime(now), now); got != AlarmApproaching {
		t.Fatalf("EvaluateAlarm(now) = %q, want approaching", got)
	}
	if got := EvaluateAlarm(ptrTime(now.AddDate(0, 0, 30)), now); got != AlarmApproaching {
		t.Fatalf("EvaluateAlarm(+30d) = %q, want approaching", got)
	}
	if got := EvaluateAlarm(ptrTime(now.AddDate(0, 0, 31)), now); got != AlarmValid {
		t.Fatalf("EvaluateAlarm(+31d) = %q, want valid", got)
	}
}

func TestEvaluateAlarmIsMonotonic(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	rank := map[AlarmState]int{AlarmExpired: 0, AlarmApproaching: 1, AlarmValid: 2}

	prev := -1
	for hours := -24 * 40; hours <= 24*40; hours += 7 {
		state := EvaluateAlarm(ptrTime(now.Add(time.Duration(hours)*time.Hour)), now)
		if rank[state] < prev {
			t.Fatalf("EvaluateAlarm() regressed to %q at %dh", state, hours)
		}
		prev = rank[state]
	}
}

func TestAlarmNeedsAttention(t *testing.T) {
	if !AlarmExpired.NeedsAttention() || !AlarmApproaching.NeedsAttention() {
		t.Fatalf("expired and approaching must need attention")
	}
	if AlarmValid.NeedsAttention() || AlarmNoData.NeedsAttention() {
		t.Fatalf("valid and no-data must not need attention")
	}
}
