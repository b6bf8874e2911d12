package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

const (
	// EventPark takes an active vehicle off the road. The fleet sweep only
	// ever fires this event.
	EventPark = "park"
	// EventActivate returns a vehicle to service.
	EventActivate = "activate"
	// EventMaintain sends a vehicle to the workshop.
	EventMaintain = "send_to_maintenance"
	// EventLegalHold blocks a vehicle for legal reasons.
	EventLegalHold = "place_legal_hold"
)

// Transition describes an applied status change.
type Transition struct {
	Event string
	From  VehicleStatus
	To    VehicleStatus
}

type StatusMachine struct {
	*fsm.FSM
	last *Transition
}

func NewStatusMachine(initial VehicleStatus) *StatusMachine {
	m := &StatusMachine{}

	events := fsm.Events{
		{Name: EventPark, Src: []string{string(StatusActive)}, Dst: string(StatusParked)},
		{Name: EventActivate, Src: []string{string(StatusParked), string(StatusMaintenance), string(StatusLegalHold)}, Dst: string(StatusActive)},
		{Name: EventMaintain, Src: []string{string(StatusActive), string(StatusParked)}, Dst: string(StatusMaintenance)},
		{Name: EventLegalHold, Src: []string{string(StatusActive), string(StatusParked), string(StatusMaintenance)}, Dst: string(StatusLegalHold)},
	}

	callbacks := fsm.Callbacks{
		"enter_state": wrapEvent(m.recordTransition),
	}

	m.FSM = fsm.NewFSM(string(initial), events, callbacks)
	return m
}

// Fire applies event and returns the resulting transition.
func (m *StatusMachine) Fire(ctx context.Context, event string) (Transition, error) {
	from := VehicleStatus(m.Current())
	if err := m.Event(ctx, event); err != nil {
		var invalid fsm.InvalidEventError
		var unknown fsm.UnknownEventError
		if errors.As(err, &invalid) || errors.As(err, &unknown) {
			return Transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidStatusTransition, event, from)
		}
		return Transition{}, err
	}
	if m.last == nil {
		return Transition{Event: event, From: from, To: from}, nil
	}
	return *m.last, nil
}

func (m *StatusMachine) recordTransition(_ context.Context, e *fsm.Event) error {
	m.last = &Transition{
		Event: e.Event,
		From:  VehicleStatus(e.Src),
		To:    VehicleStatus(e.Dst),
	}
	return nil
}

// EventForTarget maps a requested status to the event that reaches it.
func EventForTarget(target VehicleStatus) (string, error) {
	switch target {
	case StatusActive:
		return EventActivate, nil
	case StatusParked:
		return EventPark, nil
	case StatusMaintenance:
		return EventMaintain, nil
	case StatusLegalHold:
		return EventLegalHold, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidVehicleStatus, target)
	}
}

// CanPark reports whether the sweep may park a vehicle in status.
func CanPark(status VehicleStatus) bool {
	return NewStatusMachine(status).Can(EventPark)
}

func wrapEvent(fn func(ctx context.Context, e *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Err = err
		}
	}
}
