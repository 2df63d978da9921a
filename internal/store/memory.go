package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient is a schema-aware in-memory Client. It exists so tests
// can substitute the data-access layer per test instead of reaching for
// a database, and enforces the same required-field and reference rules
// the Postgres implementation gets from the database.
type MemoryClient struct {
	mu      sync.RWMutex
	schemas map[string]Schema
	data    map[string]map[string]Record
	order   map[string][]string
}

// NewMemoryClient creates an empty in-memory store client.
func NewMemoryClient(schemas []Schema) *MemoryClient {
	byName := make(map[string]Schema, len(schemas))
	data := make(map[string]map[string]Record, len(schemas))
	order := make(map[string][]string, len(schemas))
	for _, s := range schemas {
		byName[s.Name] = s
		data[s.Name] = make(map[string]Record)
		order[s.Name] = nil
	}
	return &MemoryClient{schemas: byName, data: data, order: order}
}

func (c *MemoryClient) schema(collection string) Schema {
	s, ok := c.schemas[collection]
	if !ok {
		panic(fmt.Sprintf("store: unknown collection %q", collection))
	}
	return s
}

// FetchOne retrieves a single record by id.
func (c *MemoryClient) FetchOne(ctx context.Context, collection, id string) (Record, error) {
	c.schema(collection)
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.data[collection][id]
	if !ok {
		return nil, NewError(NotFound, collection, "no record with id %s", id)
	}
	return rec.clone(), nil
}

// FetchMany retrieves records matching all predicates, in insertion
// order unless an ordering is given.
func (c *MemoryClient) FetchMany(ctx context.Context, collection string, predicates map[string]any, order *Ordering) ([]Record, error) {
	s := c.schema(collection)
	if order != nil && !s.hasColumn(order.Column) {
		panic(fmt.Sprintf("store: unknown ordering column %q for %q", order.Column, collection))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Record
	for _, id := range c.order[collection] {
		rec := c.data[collection][id]
		if matches(rec, predicates) {
			out = append(out, rec.clone())
		}
	}
	if order != nil {
		col := order.Column
		sort.SliceStable(out, func(i, j int) bool {
			if order.Descending {
				return lessValue(out[j][col], out[i][col])
			}
			return lessValue(out[i][col], out[j][col])
		})
	}
	return out, nil
}

// Create inserts a record and returns it fully materialized.
func (c *MemoryClient) Create(ctx context.Context, collection string, partial Record) (Record, error) {
	s := c.schema(collection)
	if err := checkRequired(s, collection, partial); err != nil {
		return nil, err
	}

	rec := partial.clone()
	id, ok := rec["id"].(string)
	if !ok || id == "" {
		id = uuid.New().String()
		rec["id"] = id
	}
	now := time.Now().UTC()
	if s.hasColumn("created_at") {
		if _, ok := rec["created_at"]; !ok {
			rec["created_at"] = now
		}
	}
	if s.hasColumn("updated_at") {
		if _, ok := rec["updated_at"]; !ok {
			rec["updated_at"] = now
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[collection][id]; exists {
		return nil, NewError(Constraint, collection, "duplicate id %s", id)
	}
	c.data[collection][id] = rec
	c.order[collection] = append(c.order[collection], id)
	return rec.clone(), nil
}

// Update merges the supplied fields into the stored record.
func (c *MemoryClient) Update(ctx context.Context, collection, id string, partial Record) (Record, error) {
	s := c.schema(collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.data[collection][id]
	if !ok {
		return nil, NewError(NotFound, collection, "no record with id %s", id)
	}
	for k, v := range partial {
		rec[k] = v
	}
	if s.hasColumn("updated_at") {
		if _, supplied := partial["updated_at"]; !supplied {
			rec["updated_at"] = time.Now().UTC()
		}
	}
	return rec.clone(), nil
}

// DeleteOne removes the record with the given id, refusing while other
// records still reference it.
func (c *MemoryClient) DeleteOne(ctx context.Context, collection, id string) error {
	s := c.schema(collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[collection][id]; !ok {
		return NewError(NotFound, collection, "no record with id %s", id)
	}
	for _, ref := range s.References {
		for _, other := range c.data[ref.Collection] {
			if fieldEquals(other[ref.Field], id) {
				return NewError(Constraint, collection, "record %s is referenced by %s.%s", id, ref.Collection, ref.Field)
			}
		}
	}
	delete(c.data[collection], id)
	ids := c.order[collection]
	for i, existing := range ids {
		if existing == id {
			c.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func matches(rec Record, predicates map[string]any) bool {
	for field, want := range predicates {
		if !reflect.DeepEqual(rec[field], want) {
			return false
		}
	}
	return true
}

// fieldEquals compares a stored reference field, which may be a plain
// string or a *string, against an id.
func fieldEquals(v any, id string) bool {
	switch val := v.(type) {
	case string:
		return val == id
	case *string:
		return val != nil && *val == id
	default:
		return false
	}
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	}
	return false
}
