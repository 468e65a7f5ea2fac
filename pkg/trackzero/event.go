package trackzero

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an occurrence raised by one entity (the emitter) that may impact
// other entities (the targets).
//
//	ev, err := trackzero.NewEvent("User", "87717c11", "Checked Out")
//	if err != nil {
//		return err
//	}
//	ev.AddAttribute("Cart Total", 799.99).
//		AddEntityReferencedAttribute("Item", "Product", "SKU-1234").
//		AddImpactedTarget("Company", "Store A")
//
// Builder methods follow the same rules as Entity's.
type Event struct {
	name        string
	emitterType string
	emitterID   any
	id          any
	start       time.Time
	end         time.Time
	targets     []Reference
	attrs       attributes
	err         error
}

// NewEvent creates an event emitted by the entity (emitterType, emitterID).
func NewEvent(emitterType string, emitterID any, name string) (*Event, error) {
	const op = "NewEvent"
	if emitterType == "" {
		return nil, newError(ErrValidation, op, "emitter type is required")
	}
	if err := checkID(op, "emitter id", emitterID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, newError(ErrValidation, op, "name is required")
	}
	return &Event{
		name:        name,
		emitterType: emitterType,
		emitterID:   emitterID,
		attrs:       attributes{},
	}, nil
}

// Name returns the event name.
func (ev *Event) Name() string { return ev.name }

// EmitterType returns the type of the entity that emitted the event.
func (ev *Event) EmitterType() string { return ev.emitterType }

// EmitterID returns the id of the entity that emitted the event.
func (ev *Event) EmitterID() any { return ev.emitterID }

// ID returns the caller-supplied id, or nil when the server generates one.
func (ev *Event) ID() any { return ev.id }

// Err returns the first builder failure.
func (ev *Event) Err() error { return ev.err }

// Attributes returns a copy of the custom attributes.
func (ev *Event) Attributes() map[string]any { return ev.attrs.clone() }

// Targets returns a copy of the impacted entities in insertion order.
func (ev *Event) Targets() []Reference { return append([]Reference(nil), ev.targets...) }

// WithID sets the id the service uses to deduplicate repeated submissions.
func (ev *Event) WithID(id any) *Event {
	if ev.err == nil {
		if ev.err = checkID("Event.WithID", "id", id); ev.err == nil {
			ev.id = id
		}
	}
	return ev
}

// WithGeneratedID sets a random UUID as the event id.
func (ev *Event) WithGeneratedID() *Event {
	return ev.WithID(uuid.NewString())
}

// StartedAt sets the start time. The service uses the current time when unset.
func (ev *Event) StartedAt(t time.Time) *Event {
	const op = "Event.StartedAt"
	if ev.err != nil {
		return ev
	}
	switch {
	case t.IsZero():
		ev.err = newError(ErrValidation, op, "start time is required")
	case !ev.end.IsZero() && ev.end.Before(t):
		ev.err = newError(ErrValidation, op, "start time is after end time")
	default:
		ev.start = t
	}
	return ev
}

// EndedAt sets the end time. The service uses the current time when unset.
func (ev *Event) EndedAt(t time.Time) *Event {
	const op = "Event.EndedAt"
	if ev.err != nil {
		return ev
	}
	switch {
	case t.IsZero():
		ev.err = newError(ErrValidation, op, "end time is required")
	case !ev.start.IsZero() && t.Before(ev.start):
		ev.err = newError(ErrValidation, op, "end time is before start time")
	default:
		ev.end = t
	}
	return ev
}

// AddAttribute sets a plain attribute, replacing any previous value.
func (ev *Event) AddAttribute(name string, value any) *Event {
	if ev.err == nil {
		ev.err = ev.attrs.set("Event.AddAttribute", name, value)
	}
	return ev
}

// AddEntityReferencedAttribute appends a reference to another entity under name.
func (ev *Event) AddEntityReferencedAttribute(name, refType string, refID any) *Event {
	if ev.err == nil {
		ev.err = ev.attrs.addReference("Event.AddEntityReferencedAttribute", name, refType, refID)
	}
	return ev
}

// AddImpactedTarget records an entity impacted by the event.
func (ev *Event) AddImpactedTarget(targetType string, targetID any) *Event {
	if ev.err != nil {
		return ev
	}
	ref, err := newReference("Event.AddImpactedTarget", targetType, targetID)
	if err != nil {
		ev.err = err
		return ev
	}
	ev.targets = append(ev.targets, ref)
	return ev
}

type eventPayload struct {
	ID               any            `json:"id,omitempty"`
	Name             string         `json:"name"`
	Emitter          Reference      `json:"emitter"`
	StartTime        string         `json:"startTime,omitempty"`
	EndTime          string         `json:"endTime,omitempty"`
	Targets          []Reference    `json:"targets"`
	CustomAttributes map[string]any `json:"customAttributes"`
}

func (ev *Event) payload() eventPayload {
	p := eventPayload{
		ID:               ev.id,
		Name:             ev.name,
		Emitter:          Reference{Type: ev.emitterType, ID: ev.emitterID},
		Targets:          append(make([]Reference, 0, len(ev.targets)), ev.targets...),
		CustomAttributes: ev.attrs.clone(),
	}
	if !ev.start.IsZero() {
		p.StartTime = ev.start.UTC().Format(time.RFC3339Nano)
	}
	if !ev.end.IsZero() {
		p.EndTime = ev.end.UTC().Format(time.RFC3339Nano)
	}
	return p
}

// MarshalJSON renders the upsert payload.
func (ev *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(ev.payload())
}
