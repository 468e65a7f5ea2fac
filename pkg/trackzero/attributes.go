package trackzero

import (
	"encoding/json"
	"math"
	"strings"
)

// ReservedPrefix starts names the service keeps for itself.
const ReservedPrefix = "_"

// Reference points at another entity.
type Reference struct {
	Type string `json:"type"`
	ID   any    `json:"id"`
}

// attributes holds custom attribute values. A plain attribute maps to its
// value; a referenced attribute maps to a []Reference in insertion order.
type attributes map[string]any

func (a attributes) set(op, name string, value any) error {
	if a == nil {
		return errUnbuilt(op)
	}
	if err := checkName(op, name); err != nil {
		return err
	}
	if value == nil {
		return newError(ErrValidation, op, "value for %q is required", name)
	}
	if _, err := json.Marshal(value); err != nil {
		return newError(ErrValidation, op, "value for %q cannot be encoded as JSON: %v", name, err)
	}
	a[name] = value
	return nil
}

func (a attributes) addReference(op, name, refType string, refID any) error {
	if a == nil {
		return errUnbuilt(op)
	}
	if err := checkName(op, name); err != nil {
		return err
	}
	ref, err := newReference(op, refType, refID)
	if err != nil {
		return err
	}

	refs, _ := a[name].([]Reference)
	a[name] = append(refs, ref)
	return nil
}

// clone copies the map and every reference slice so payloads never alias
// builder state.
func (a attributes) clone() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if refs, ok := v.([]Reference); ok {
			v = append([]Reference(nil), refs...)
		}
		out[k] = v
	}
	return out
}

func checkName(op, name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(ErrValidation, op, "attribute name is required")
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return newError(ErrValidation, op, "attribute name %q must not start with %q", name, ReservedPrefix)
	}
	return nil
}

func newReference(op, refType string, refID any) (Reference, error) {
	if refType == "" {
		return Reference{}, newError(ErrValidation, op, "reference type is required")
	}
	if err := checkID(op, "reference id", refID); err != nil {
		return Reference{}, err
	}
	return Reference{Type: refType, ID: refID}, nil
}

// errUnbuilt reports a builder method called on a zero value instead of one
// returned by NewEntity or NewEvent.
func errUnbuilt(op string) error {
	return newError(ErrTypeMismatch, op, "receiver should be created with NewEntity or NewEvent")
}

// checkID accepts a non-empty string or any integer or finite float value.
func checkID(op, field string, id any) error {
	switch v := id.(type) {
	case nil:
		return newError(ErrValidation, op, "%s is required", field)
	case string:
		if v == "" {
			return newError(ErrValidation, op, "%s is required", field)
		}
		return nil
	case float32:
		return checkFinite(op, field, float64(v))
	case float64:
		return checkFinite(op, field, v)
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return newError(ErrValidation, op, "%s must be a string or a number, got %T", field, id)
	}
}

func checkFinite(op, field string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return newError(ErrValidation, op, "%s must be a finite number", field)
	}
	return nil
}
