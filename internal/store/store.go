// Package store provides a generic data-access client: four primitive
// CRUD operations against named collections, with one error taxonomy
// regardless of the backing implementation. No caching and no retries
// live here; both are the caller's concern.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failed store operation.
type Kind int

const (
	// NotFound means no record matches the given id.
	NotFound Kind = iota + 1
	// Validation means the record violates a field-level requirement.
	Validation
	// Constraint means the operation would break a reference between
	// records, e.g. deleting a contact a loan still points at.
	Constraint
	// Permission means the backing store's access policy rejected the
	// operation for the calling identity.
	Permission
	// Transport means the backing store was unreachable or failed in a
	// way that says nothing about the record itself.
	Transport
	// UnknownStatus means a stored status value maps to no canonical
	// lifecycle state.
	UnknownStatus
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Constraint:
		return "constraint"
	case Permission:
		return "permission"
	case Transport:
		return "transport"
	case UnknownStatus:
		return "unknown_status"
	default:
		return "unknown"
	}
}

// Error is the uniform error surfaced by every store operation.
type Error struct {
	Kind       Kind
	Collection string
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Collection != "" {
		return fmt.Sprintf("%s: %s: %s", e.Collection, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a store error with a formatted message.
func NewError(kind Kind, collection, format string, args ...any) *Error {
	return &Error{Kind: kind, Collection: collection, Msg: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error without losing it.
func WrapError(kind Kind, collection string, err error) *Error {
	return &Error{Kind: kind, Collection: collection, Err: err}
}

// KindOf returns the kind of a store error, or 0 for other errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNotFound reports whether err is a store NotFound error.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsValidation reports whether err is a store Validation error.
func IsValidation(err error) bool { return KindOf(err) == Validation }

// IsConstraint reports whether err is a store Constraint error.
func IsConstraint(err error) bool { return KindOf(err) == Constraint }

// IsPermission reports whether err is a store Permission error.
func IsPermission(err error) bool { return KindOf(err) == Permission }

// Record is a collection row as plain keyed values.
type Record map[string]any

// Ordering sorts a FetchMany result by one column.
type Ordering struct {
	Column     string
	Descending bool
}

// Reference declares that Collection.Field points at the described
// collection's id, and blocks deletion while any such row exists.
type Reference struct {
	Collection string
	Field      string
}

// Schema describes one named collection to a Client implementation.
type Schema struct {
	Name       string
	Table      string
	Columns    []string
	Required   []string
	References []Reference
}

// Client is the generic data-access contract. Every operation is
// terminal: errors are classified, never retried here.
//
// Create materializes the stored record, including the generated id and
// created_at, and fails with a Validation error when a required field
// is absent. Update leaves unsupplied fields unchanged. FetchMany
// treats predicates as a conjunction of equality constraints; an empty
// predicate map returns the whole collection as scoped by the backing
// store's access policy.
type Client interface {
	FetchOne(ctx context.Context, collection, id string) (Record, error)
	FetchMany(ctx context.Context, collection string, predicates map[string]any, order *Ordering) ([]Record, error)
	Create(ctx context.Context, collection string, partial Record) (Record, error)
	Update(ctx context.Context, collection, id string, partial Record) (Record, error)
	DeleteOne(ctx context.Context, collection, id string) error
}
