package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (c *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memoryStore) Put(_ context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryStore) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *memoryStore) List(_ context.Context, prefix string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]string{}
	for k, v := range c.values {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

type recorder struct {
	runs []string
	err  error
}

func (r *recorder) run(_ context.Context, job string) error {
	r.runs = append(r.runs, job)
	return r.err
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newTestScheduler(t *testing.T, store *memoryStore, rec *recorder, c *clock, loc *time.Location) *Scheduler {
	t.Helper()

	s, err := New(Config{
		Location: loc,
		Schedules: []Schedule{
			{Job: "expired_vehicles", Hour: 6},
			{Job: "weekly_report", Weekly: true, Weekday: time.Monday, Hour: 8, Minute: 30},
		},
	}, rec.run, store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s.WithClock(c.Now)
}

func TestLatestSlot(t *testing.T) {
	daily := Schedule{Job: "daily", Hour: 6}
	now := time.Date(2026, 5, 6, 5, 59, 0, 0, time.UTC)
	if got := daily.LatestSlot(now); !got.Equal(time.Date(2026, 5, 5, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("daily LatestSlot() = %v", got)
	}

	weekly := Schedule{Job: "weekly", Weekly: true, Weekday: time.Monday, Hour: 8}
	wednesday := time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC)
	if got := weekly.LatestSlot(wednesday); !got.Equal(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("weekly LatestSlot() = %v", got)
	}
	mondayEarly := time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)
	if got := weekly.LatestSlot(mondayEarly); !got.Equal(time.Date(2026, 4, 27, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("weekly LatestSlot() before slot = %v", got)
	}
}

func TestTickRunsEachSlotOnce(t *testing.T) {
	store := newMemoryStore()
	rec := &recorder{}
	c := &clock{now: time.Date(2026, 5, 4, 6, 1, 0, 0, time.UTC)}
	s := newTestScheduler(t, store, rec, c, time.UTC)

	if fired := s.Tick(context.Background()); strings.Join(fired, ",") != "expired_vehicles" {
		t.Fatalf("Tick() fired = %v, want expired_vehicles", fired)
	}
	c.now = c.now.Add(10 * time.Minute)
	if fired := s.Tick(context.Background()); len(fired) != 0 {
		t.Fatalf("Tick() fired = %v, want none", fired)
	}

	c.now = time.Date(2026, 5, 4, 8, 31, 0, 0, time.UTC)
	if fired := s.Tick(context.Background()); strings.Join(fired, ",") != "weekly_report" {
		t.Fatalf("Tick() fired = %v, want weekly_report", fired)
	}

	c.now = time.Date(2026, 5, 5, 6, 0, 0, 0, time.UTC)
	if fired := s.Tick(context.Background()); strings.Join(fired, ",") != "expired_vehicles" {
		t.Fatalf("Tick() next day fired = %v, want expired_vehicles", fired)
	}
	if len(rec.runs) != 3 {
		t.Fatalf("runs = %v, want 3", rec.runs)
	}
}

func TestRestartInsideSlotDoesNotRerun(t *testing.T) {
	store := newMemoryStore()
	rec := &recorder{err: errors.New("smtp down")}
	c := &clock{now: time.Date(2026, 5, 4, 6, 5, 0, 0, time.UTC)}

	newTestScheduler(t, store, rec, c, time.UTC).Tick(context.Background())
	c.now = c.now.Add(time.Minute)
	newTestScheduler(t, store, rec, c, time.UTC).Tick(context.Background())

	if len(rec.runs) != 1 {
		t.Fatalf("runs = %v, want a single run", rec.runs)
	}
}

func TestTickSkipsStaleSlots(t *testing.T) {
	rec := &recorder{}
	c := &clock{now: time.Date(2026, 5, 6, 23, 0, 0, 0, time.UTC)}
	s := newTestScheduler(t, newMemoryStore(), rec, c, time.UTC)

	if fired := s.Tick(context.Background()); len(fired) != 0 {
		t.Fatalf("Tick() fired = %v, want none", fired)
	}
}

func TestTickUsesTimezone(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	rec := &recorder{}
	c := &clock{now: time.Date(2026, 5, 4, 3, 30, 0, 0, time.UTC)}
	s := newTestScheduler(t, newMemoryStore(), rec, c, istanbul)

	if fired := s.Tick(context.Background()); strings.Join(fired, ",") != "expired_vehicles" {
		t.Fatalf("Tick() fired = %v, want expired_vehicles at 06:30 local", fired)
	}
}

func TestParseClockAndWeekday(t *testing.T) {
	hour, minute, err := ParseClock("07:45")
	if err != nil || hour != 7 || minute != 45 {
		t.Fatalf("ParseClock() = %d, %d, %v", hour, minute, err)
	}
	for _, raw := range []string{"7", "24:00", "06:60", "aa:bb"} {
		if _, _, err := ParseClock(raw); err == nil {
			t.Fatalf("ParseClock(%q) expected error", raw)
		}
	}

	if d, err := ParseWeekday("Mon"); err != nil || d != time.Monday {
		t.Fatalf("ParseWeekday(Mon) = %v, %v", d, err)
	}
	if d, err := ParseWeekday("sunday"); err != nil || d != time.Sunday {
		t.Fatalf("ParseWeekday(sunday) = %v, %v", d, err)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatalf("ParseWeekday(someday) expected error")
	}
}

func TestStatusReportsLastAndNextSlot(t *testing.T) {
	rec := &recorder{}
	c := &clock{now: time.Date(2026, 5, 4, 6, 1, 0, 0, time.UTC)}
	s := newTestScheduler(t, newMemoryStore(), rec, c, time.UTC)
	s.Tick(context.Background())

	got, err := s.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Status() = %+v, want 2 entries", got)
	}

	sweep := got[0]
	if sweep.Job != "expired_vehicles" || sweep.LastSlot == nil || !sweep.LastSlot.Equal(time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("sweep status = %+v", sweep)
	}
	if !sweep.NextSlot.Equal(time.Date(2026, 5, 5, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("sweep NextSlot = %v", sweep.NextSlot)
	}

	digest := got[1]
	if digest.LastSlot != nil {
		t.Fatalf("digest LastSlot = %v, want nil", digest.LastSlot)
	}
	if !digest.NextSlot.Equal(time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("digest NextSlot = %v", digest.NextSlot)
	}
}
