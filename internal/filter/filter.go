// Package filter derives the visible subset of a loan collection from
// a status-set and direction filter. It is pure and holds no cache:
// callers re-apply it whenever the collection or a filter changes.
package filter

import (
	"sort"
	"time"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/status"
)

// Direction narrows loans to one side of the lending relationship.
type Direction string

const (
	DirectionAll       Direction = "all"
	DirectionLending   Direction = "lending"
	DirectionBorrowing Direction = "borrowing"
)

// ParseDirection maps a raw filter value to a Direction. The empty
// string means no direction filter.
func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case DirectionAll, "":
		return DirectionAll, true
	case DirectionLending:
		return DirectionLending, true
	case DirectionBorrowing:
		return DirectionBorrowing, true
	default:
		return "", false
	}
}

// StatusSet is a non-empty selection of canonical statuses. The zero
// value is unusable; construct with NewStatusSet.
type StatusSet struct {
	members map[status.Status]struct{}
}

// NewStatusSet builds a set from the given statuses. With no arguments
// every canonical status is selected.
func NewStatusSet(statuses ...status.Status) StatusSet {
	if len(statuses) == 0 {
		statuses = status.All()
	}
	members := make(map[status.Status]struct{}, len(statuses))
	for _, s := range statuses {
		if s.Valid() {
			members[s] = struct{}{}
		}
	}
	if len(members) == 0 {
		for _, s := range status.All() {
			members[s] = struct{}{}
		}
	}
	return StatusSet{members: members}
}

// Has reports whether s is selected.
func (set StatusSet) Has(s status.Status) bool {
	_, ok := set.members[s]
	return ok
}

// Len returns the number of selected statuses.
func (set StatusSet) Len() int {
	return len(set.members)
}

// Statuses returns the selected statuses in code order.
func (set StatusSet) Statuses() []status.Status {
	out := make([]status.Status, 0, len(set.members))
	for s := range set.members {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Toggle flips membership of s and reports whether the set changed.
// Removing the last remaining status is refused: an empty filter would
// silently hide every loan with nothing on screen to explain why.
func (set *StatusSet) Toggle(s status.Status) bool {
	if !s.Valid() {
		return false
	}
	if _, selected := set.members[s]; selected {
		if len(set.members) == 1 {
			return false
		}
		delete(set.members, s)
		return true
	}
	set.members[s] = struct{}{}
	return true
}

// Engine filters loan collections. Now supplies the clock used to
// derive Overdue from due dates; it defaults to time.Now.
type Engine struct {
	Now func() time.Time
}

// Apply returns the loans whose effective status is in set and whose
// direction matches dir, preserving the relative order of loans. It is
// a pure function: same inputs, same output, no retained state.
func (e Engine) Apply(loans []models.Loan, set StatusSet, dir Direction) []models.Loan {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	out := make([]models.Loan, 0, len(loans))
	for _, loan := range loans {
		if !set.Has(status.Effective(loan.Status, loan.DueDate, now)) {
			continue
		}
		switch dir {
		case DirectionLending:
			if !loan.IsLending {
				continue
			}
		case DirectionBorrowing:
			if loan.IsLending {
				continue
			}
		}
		out = append(out, loan)
	}
	return out
}
