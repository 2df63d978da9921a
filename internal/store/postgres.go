package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresClient implements Client on a pgx connection pool. SQL is
// built from the registered schemas, so adding a collection is a schema
// entry, not a new query set.
type PostgresClient struct {
	db      *pgxpool.Pool
	schemas map[string]Schema
}

// NewPostgresClient creates a Postgres-backed store client.
func NewPostgresClient(db *pgxpool.Pool, schemas []Schema) *PostgresClient {
	byName := make(map[string]Schema, len(schemas))
	for _, s := range schemas {
		byName[s.Name] = s
	}
	return &PostgresClient{db: db, schemas: byName}
}

// schema resolves a collection name. An unknown name is programmer
// misuse, not a runtime condition.
func (c *PostgresClient) schema(collection string) Schema {
	s, ok := c.schemas[collection]
	if !ok {
		panic(fmt.Sprintf("store: unknown collection %q", collection))
	}
	return s
}

// FetchOne retrieves a single record by id.
func (c *PostgresClient) FetchOne(ctx context.Context, collection, id string) (Record, error) {
	s := c.schema(collection)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, strings.Join(s.Columns, ", "), s.Table)

	rows, err := c.db.Query(ctx, query, id)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	return Record(rec), nil
}

// FetchMany retrieves records matching all predicates, in the given
// order. An empty predicate map returns the whole collection as scoped
// by the backing store's access policy.
func (c *PostgresClient) FetchMany(ctx context.Context, collection string, predicates map[string]any, order *Ordering) ([]Record, error) {
	s := c.schema(collection)

	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT %s FROM %s`, strings.Join(s.Columns, ", "), s.Table)

	var args []any
	for i, field := range sortedKeys(predicates) {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, predicates[field])
		fmt.Fprintf(&sb, "%s = $%d", field, len(args))
	}
	if order != nil {
		dir := "ASC"
		if order.Descending {
			dir = "DESC"
		}
		if !s.hasColumn(order.Column) {
			panic(fmt.Sprintf("store: unknown ordering column %q for %q", order.Column, collection))
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", order.Column, dir)
	}

	rows, err := c.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	records := make([]Record, len(maps))
	for i, m := range maps {
		records[i] = Record(m)
	}
	return records, nil
}

// Create inserts a record and returns it fully materialized, with the
// generated id and timestamps.
func (c *PostgresClient) Create(ctx context.Context, collection string, partial Record) (Record, error) {
	s := c.schema(collection)

	if err := checkRequired(s, collection, partial); err != nil {
		return nil, err
	}

	rec := make(Record, len(partial)+2)
	for k, v := range partial {
		rec[k] = v
	}
	if _, ok := rec["id"]; !ok {
		rec["id"] = uuid.New().String()
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

	fields := sortedKeys(rec)
	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[f]
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		s.Table, strings.Join(fields, ", "), strings.Join(placeholders, ", "), strings.Join(s.Columns, ", "))

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	return Record(created), nil
}

// Update applies the supplied fields to the record with the given id,
// leaving the rest unchanged.
func (c *PostgresClient) Update(ctx context.Context, collection, id string, partial Record) (Record, error) {
	s := c.schema(collection)

	changes := make(Record, len(partial)+1)
	for k, v := range partial {
		changes[k] = v
	}
	if s.hasColumn("updated_at") {
		if _, ok := changes["updated_at"]; !ok {
			changes["updated_at"] = time.Now().UTC()
		}
	}
	if len(changes) == 0 {
		return c.FetchOne(ctx, collection, id)
	}

	fields := sortedKeys(changes)
	assignments := make([]string, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		args = append(args, changes[f])
		assignments[i] = fmt.Sprintf("%s = $%d", f, len(args))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		s.Table, strings.Join(assignments, ", "), len(args), strings.Join(s.Columns, ", "))

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	updated, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(collection, err)
	}
	return Record(updated), nil
}

// DeleteOne removes the record with the given id. Records still
// referenced by other collections fail with a Constraint error via the
// database's foreign keys.
func (c *PostgresClient) DeleteOne(ctx context.Context, collection, id string) error {
	s := c.schema(collection)
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.Table)

	result, err := c.db.Exec(ctx, query, id)
	if err != nil {
		return mapPgError(collection, err)
	}
	if result.RowsAffected() == 0 {
		return NewError(NotFound, collection, "no record with id %s", id)
	}
	return nil
}

func (s Schema) hasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func checkRequired(s Schema, collection string, rec Record) error {
	for _, field := range s.Required {
		v, ok := rec[field]
		if !ok || v == nil {
			return NewError(Validation, collection, "missing required field %s", field)
		}
		if str, isStr := v.(string); isStr && str == "" {
			return NewError(Validation, collection, "missing required field %s", field)
		}
	}
	return nil
}

func sortedKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mapPgError classifies a pgx failure into the store taxonomy.
func mapPgError(collection string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return WrapError(NotFound, collection, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503" || pgErr.Code == "23505":
			// foreign key / unique violation
			return WrapError(Constraint, collection, err)
		case pgErr.Code == "23502" || pgErr.Code == "23514" || strings.HasPrefix(pgErr.Code, "22"):
			// not null / check / data exception
			return WrapError(Validation, collection, err)
		case pgErr.Code == "42501":
			// insufficient privilege (row-level policy)
			return WrapError(Permission, collection, err)
		}
	}
	return WrapError(Transport, collection, err)
}
