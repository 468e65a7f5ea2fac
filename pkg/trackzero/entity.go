package trackzero

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// GeoPoint is a latitude/longitude pair the service translates into a
// geography for the entity.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Entity is a tracked object identified by type and id.
//
//	e, err := trackzero.NewEntity("User", "87717c11")
//	if err != nil {
//		return err
//	}
//	e.AddAttribute("Name", "Sam Smith").
//		AddEntityReferencedAttribute("Nationality", "Country", "US")
//	if err := e.Err(); err != nil {
//		return err
//	}
//
// Builder methods return the receiver. The first failing call is recorded and
// returned by Err; it leaves the entity unchanged and later calls are no-ops.
type Entity struct {
	entityType string
	id         any
	attrs      attributes
	geo        *GeoPoint
	err        error
}

// NewEntity creates an entity. entityType must be non-empty; id must be a
// non-empty string or a number.
func NewEntity(entityType string, id any) (*Entity, error) {
	const op = "NewEntity"
	if entityType == "" {
		return nil, newError(ErrValidation, op, "type is required")
	}
	if err := checkID(op, "id", id); err != nil {
		return nil, err
	}
	return &Entity{entityType: entityType, id: id, attrs: attributes{}}, nil
}

// Type returns the entity type.
func (e *Entity) Type() string { return e.entityType }

// ID returns the entity id.
func (e *Entity) ID() any { return e.id }

// Err returns the first builder failure.
func (e *Entity) Err() error { return e.err }

// Attributes returns a copy of the custom attributes.
func (e *Entity) Attributes() map[string]any { return e.attrs.clone() }

// GeoPoint returns the automatic geography point, if one was added.
func (e *Entity) GeoPoint() (GeoPoint, bool) {
	if e.geo == nil {
		return GeoPoint{}, false
	}
	return *e.geo, true
}

// AddAttribute sets a plain attribute, replacing any previous value.
func (e *Entity) AddAttribute(name string, value any) *Entity {
	if e.err == nil {
		e.err = e.attrs.set("Entity.AddAttribute", name, value)
	}
	return e
}

// AddEntityReferencedAttribute appends a reference to another entity under
// name. Repeated calls accumulate references in order.
func (e *Entity) AddEntityReferencedAttribute(name, refType string, refID any) *Entity {
	if e.err == nil {
		e.err = e.attrs.addReference("Entity.AddEntityReferencedAttribute", name, refType, refID)
	}
	return e
}

// AddAutomaticallyTranslatedGeoPoint sets the point the service geocodes for
// this entity. lat and lon may be numbers or numeric strings. It can be set once.
func (e *Entity) AddAutomaticallyTranslatedGeoPoint(lat, lon any) *Entity {
	const op = "Entity.AddAutomaticallyTranslatedGeoPoint"
	if e.err != nil {
		return e
	}
	if e.geo != nil {
		e.err = newError(ErrValidation, op, "geo point already set")
		return e
	}

	la, err := coordinate(op, "latitude", lat)
	if err != nil {
		e.err = err
		return e
	}
	lo, err := coordinate(op, "longitude", lon)
	if err != nil {
		e.err = err
		return e
	}

	e.geo = &GeoPoint{Latitude: la, Longitude: lo}
	return e
}

type entityPayload struct {
	Type             string         `json:"type"`
	ID               any            `json:"id"`
	CustomAttributes map[string]any `json:"customAttributes"`
	AutoGeography    *autoGeography `json:"autoGeography,omitempty"`
}

type autoGeography struct {
	GeoPoint GeoPoint `json:"geoPoint"`
}

func (e *Entity) payload() entityPayload {
	p := entityPayload{
		Type:             e.entityType,
		ID:               e.id,
		CustomAttributes: e.attrs.clone(),
	}
	if e.geo != nil {
		p.AutoGeography = &autoGeography{GeoPoint: *e.geo}
	}
	return p
}

// MarshalJSON renders the upsert payload.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.payload())
}

func coordinate(op, field string, v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, newError(ErrValidation, op, "%s is required", field)
	case bool:
		return 0, newError(ErrValidation, op, "%s must be numeric, got bool", field)
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, newError(ErrValidation, op, "%s is required", field)
		}
		v = strings.TrimSpace(t)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newError(ErrValidation, op, "%s must be numeric, got %v", field, v)
	}
	return f, nil
}
