// Package audit records roster mutations to external sinks. Sinks receive a
// write-only trail; the registry never reads its state back from them.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSignedUp     EventType = "participant_signed_up"
	EventUnregistered EventType = "participant_unregistered"
)

type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType EventType, activity, email string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Activity:   activity,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

// Recorder persists or publishes a single event.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Multi fans an event out to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }
