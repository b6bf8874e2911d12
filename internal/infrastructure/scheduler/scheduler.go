package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"fleetcheck/internal/bootstrap/logging"
	"fleetcheck/internal/errs"
	"fleetcheck/internal/ports"
)

const (
	lastSlotKeyPrefix = "scheduler:last_slot:"
	defaultTick       = time.Minute
	defaultCatchUp    = 6 * time.Hour
)

// RunFunc executes one job by name.
type RunFunc func(ctx context.Context, job string) error

// Schedule fires a job every day, or on one weekday when Weekly is set, at
// Hour:Minute in the scheduler's location.
type Schedule struct {
	Job     string
	Weekly  bool
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// LatestSlot returns the most recent firing time at or before now.
func (s Schedule) LatestSlot(now time.Time) time.Time {
	slot := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if slot.After(now) {
		slot = slot.AddDate(0, 0, -1)
	}
	if s.Weekly {
		for slot.Weekday() != s.Weekday {
			slot = slot.AddDate(0, 0, -1)
		}
	}
	return slot
}

// NextSlot returns the first firing time strictly after now.
func (s Schedule) NextSlot(now time.Time) time.Time {
	latest := s.LatestSlot(now)
	if s.Weekly {
		return latest.AddDate(0, 0, 7)
	}
	return latest.AddDate(0, 0, 1)
}

type Config struct {
	Location  *time.Location
	Schedules []Schedule
	Tick      time.Duration
	// CatchUp bounds how late a missed slot may still run after a restart.
	CatchUp time.Duration
}

// Scheduler triggers jobs at their configured slots. The last executed slot
// of each job is kept in the KV store, so a restart inside a slot does not
// run it again.
type Scheduler struct {
	cfg   Config
	run   RunFunc
	store ports.KVStore
	now   func() time.Time

	mu sync.Mutex
}

func New(cfg Config, run RunFunc, store ports.KVStore) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("run func is required")
	}
	if store == nil {
		return nil, errors.New("kv store is required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Tick <= 0 {
		cfg.Tick = defaultTick
	}
	if cfg.CatchUp <= 0 {
		cfg.CatchUp = defaultCatchUp
	}
	for _, s := range cfg.Schedules {
		if strings.TrimSpace(s.Job) == "" {
			return nil, errors.New("schedule job name is required")
		}
		if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
			return nil, fmt.Errorf("schedule %s has invalid time %02d:%02d", s.Job, s.Hour, s.Minute)
		}
	}
	return &Scheduler{cfg: cfg, run: run, store: store, now: time.Now}, nil
}

func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// Start runs the tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx = logging.WithAttrs(ctx, slog.String("component", "infrastructure.scheduler"))
	logging.Info(
		ctx,
		"scheduler started",
		slog.String("timezone", s.cfg.Location.String()),
		slog.Int("schedules", len(s.cfg.Schedules)),
		slog.Duration("tick", s.cfg.Tick),
	)

	s.Tick(ctx)

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info(ctx, "scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs every job whose latest slot has not been executed yet and
// returns the names of the jobs it started.
func (s *Scheduler) Tick(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().In(s.cfg.Location)
	var fired []string
	for _, sched := range s.cfg.Schedules {
		if ctx.Err() != nil {
			return fired
		}
		slot := sched.LatestSlot(now)
		if now.Sub(slot) > s.cfg.CatchUp {
			continue
		}

		key := lastSlotKeyPrefix + sched.Job
		slotID := slot.Format(time.RFC3339)
		last, found, err := s.store.Get(ctx, key)
		if err != nil {
			logging.Error(ctx, "read last slot failed", slog.String("job", sched.Job), slog.Any("err", errs.Loggable(err)))
			continue
		}
		if found && last == slotID {
			continue
		}

		// The slot is marked before running. A failed run is retried on the
		// next slot, not on the next tick.
		if err := s.store.Put(ctx, key, slotID); err != nil {
			logging.Error(ctx, "store last slot failed", slog.String("job", sched.Job), slog.Any("err", errs.Loggable(err)))
			continue
		}

		fired = append(fired, sched.Job)
		logging.Info(ctx, "scheduled job triggered", slog.String("job", sched.Job), slog.String("slot", slotID))
		if err := s.run(ctx, sched.Job); err != nil {
			logging.Error(ctx, "scheduled job failed", slog.String("job", sched.Job), slog.Any("err", errs.Loggable(err)))
		}
	}
	return fired
}

// SlotStatus is the schedule state of one job.
type SlotStatus struct {
	Job string
	// LastSlot is nil until the scheduler has fired the job once.
	LastSlot *time.Time
	NextSlot time.Time
}

// Status reports the last fired and the next slot of every schedule.
func (s *Scheduler) Status(ctx context.Context) ([]SlotStatus, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	marks, err := s.store.List(ctx, lastSlotKeyPrefix)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.cfg.Location)
	out := make([]SlotStatus, 0, len(s.cfg.Schedules))
	for _, sched := range s.cfg.Schedules {
		item := SlotStatus{Job: sched.Job, NextSlot: sched.NextSlot(now)}
		if raw, ok := marks[lastSlotKeyPrefix+sched.Job]; ok {
			last, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, errs.Wrapf(err, "parse last slot of %s", sched.Job)
			}
			last = last.In(s.cfg.Location)
			item.LastSlot = &last
		}
		out = append(out, item)
	}
	return out, nil
}

// ParseClock parses a "HH:MM" time of day.
func ParseClock(raw string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM", raw)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour, minute, nil
}

func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", raw)
}
