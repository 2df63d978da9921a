// Package status defines the canonical loan lifecycle states and the
// adapters between the representations found in stored data: numeric
// codes, display labels, and an older snake_case vocabulary.
package status

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the canonical lifecycle state of a loan.
type Status int

const (
	// Active is the state of a loan from creation until it is returned.
	Active Status = 1
	// Overdue is an Active loan whose due date has passed. It is a
	// derived state: writes never persist it, but legacy rows that
	// stored it still normalize (see Effective).
	Overdue Status = 2
	// Returned is terminal; a loan reaches it exactly once.
	Returned Status = 3
)

// UnknownStatusError reports a stored status value that maps to no
// canonical state. It is a data-integrity error, never defaulted away.
type UnknownStatusError struct {
	Raw any
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown loan status %v", e.Raw)
}

var labels = map[Status]string{
	Active:   "Active",
	Overdue:  "Overdue",
	Returned: "Returned",
}

// Older rows used snake_case words instead of codes or labels.
var legacy = map[string]Status{
	"active":         Active,
	"overdue":        Overdue,
	"pending_return": Active,
	"completed":      Returned,
}

// All returns every canonical status in code order.
func All() []Status {
	return []Status{Active, Overdue, Returned}
}

// Valid reports whether s is a canonical status.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Code returns the compact numeric form used in storage.
func (s Status) Code() int {
	return int(s)
}

// Label returns the display label.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return "Unknown"
}

func (s Status) String() string {
	return s.Label()
}

// FromCode maps a stored numeric code to its canonical status.
func FromCode(code int) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, &UnknownStatusError{Raw: code}
	}
	return s, nil
}

// Normalize maps any historical status representation to its canonical
// status: numeric codes (in the integer widths drivers produce),
// display labels, and the legacy snake_case words. Unmapped values fail
// with *UnknownStatusError rather than defaulting.
func Normalize(raw any) (Status, error) {
	switch v := raw.(type) {
	case Status:
		if !v.Valid() {
			return 0, &UnknownStatusError{Raw: raw}
		}
		return v, nil
	case int:
		return FromCode(v)
	case int32:
		return FromCode(int(v))
	case int64:
		return FromCode(int(v))
	case float64:
		if v != float64(int(v)) {
			return 0, &UnknownStatusError{Raw: raw}
		}
		return FromCode(int(v))
	case string:
		for s, l := range labels {
			if strings.EqualFold(v, l) {
				return s, nil
			}
		}
		if s, ok := legacy[strings.ToLower(v)]; ok {
			return s, nil
		}
		return 0, &UnknownStatusError{Raw: raw}
	default:
		return 0, &UnknownStatusError{Raw: raw}
	}
}

// Effective resolves the derived Overdue state: an Active loan whose
// due date has passed is effectively Overdue. Other states pass
// through unchanged.
func Effective(s Status, due *time.Time, now time.Time) Status {
	if s == Active && due != nil && due.Before(now) {
		return Overdue
	}
	return s
}

// MarshalJSON encodes the status as its display label.
func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, &UnknownStatusError{Raw: int(s)}
	}
	return json.Marshal(s.Label())
}

// UnmarshalJSON accepts any representation Normalize accepts.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := Normalize(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
