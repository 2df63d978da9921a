package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchemas = []Schema{
	{
		Name:       "teams",
		Table:      "teams",
		Columns:    []string{"id", "name", "city", "created_at"},
		Required:   []string{"name"},
		References: []Reference{{Collection: "players", Field: "team_id"}},
	},
	{
		Name:     "players",
		Table:    "players",
		Columns:  []string{"id", "team_id", "name", "number", "created_at"},
		Required: []string{"team_id", "name"},
	},
}

func TestMemoryCreateMaterializes(t *testing.T) {
	c := NewMemoryClient(testSchemas)
	ctx := context.Background()

	rec, err := c.Create(ctx, "teams", Record{"name": "Rockets", "city": "Houston"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec["id"])
	assert.Equal(t, "Rockets", rec["name"])
	_, hasCreated := rec["created_at"].(time.Time)
	assert.True(t, hasCreated)

	fetched, err := c.FetchOne(ctx, "teams", rec["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, rec["id"], fetched["id"])
}

func TestMemoryCreateMissingRequired(t *testing.T) {
	c := NewMemoryClient(testSchemas)

	_, err := c.Create(context.Background(), "teams", Record{"city": "Houston"})
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)

	_, err = c.Create(context.Background(), "teams", Record{"name": ""})
	assert.True(t, IsValidation(err))
}

func TestMemoryFetchOneNotFound(t *testing.T) {
	c := NewMemoryClient(testSchemas)

	_, err := c.FetchOne(context.Background(), "teams", "nope")
	assert.True(t, IsNotFound(err))
}

func TestMemoryUpdate(t *testing.T) {
	c := NewMemoryClient(testSchemas)
	ctx := context.Background()

	rec, err := c.Create(ctx, "teams", Record{"name": "Rockets", "city": "Houston"})
	require.NoError(t, err)

	updated, err := c.Update(ctx, "teams", rec["id"].(string), Record{"city": "Austin"})
	require.NoError(t, err)
	assert.Equal(t, "Austin", updated["city"])
	// unsupplied fields survive a partial update
	assert.Equal(t, "Rockets", updated["name"])

	_, err = c.Update(ctx, "teams", "missing", Record{"city": "Austin"})
	assert.True(t, IsNotFound(err))
}

func TestMemoryFetchManyPredicatesAndOrder(t *testing.T) {
	c := NewMemoryClient(testSchemas)
	ctx := context.Background()

	team, err := c.Create(ctx, "teams", Record{"name": "Rockets"})
	require.NoError(t, err)
	teamID := team["id"].(string)

	for i, name := range []string{"ada", "bob", "cid"} {
		_, err := c.Create(ctx, "players", Record{
			"team_id": teamID,
			"name":    name,
			"number":  i,
		})
		require.NoError(t, err)
	}
	_, err = c.Create(ctx, "players", Record{"team_id": "other", "name": "dee", "number": 9})
	require.NoError(t, err)

	recs, err := c.FetchMany(ctx, "players", map[string]any{"team_id": teamID}, nil)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// insertion order preserved without an explicit ordering
	assert.Equal(t, "ada", recs[0]["name"])
	assert.Equal(t, "cid", recs[2]["name"])

	recs, err = c.FetchMany(ctx, "players", map[string]any{"team_id": teamID}, &Ordering{Column: "name", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, "cid", recs[0]["name"])
	assert.Equal(t, "ada", recs[2]["name"])

	all, err := c.FetchMany(ctx, "players", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMemoryDeleteConstraint(t *testing.T) {
	c := NewMemoryClient(testSchemas)
	ctx := context.Background()

	team, err := c.Create(ctx, "teams", Record{"name": "Rockets"})
	require.NoError(t, err)
	teamID := team["id"].(string)

	player, err := c.Create(ctx, "players", Record{"team_id": teamID, "name": "ada"})
	require.NoError(t, err)

	err = c.DeleteOne(ctx, "teams", teamID)
	assert.True(t, IsConstraint(err), "delete while referenced must fail, got %v", err)

	require.NoError(t, c.DeleteOne(ctx, "players", player["id"].(string)))
	require.NoError(t, c.DeleteOne(ctx, "teams", teamID))

	err = c.DeleteOne(ctx, "teams", teamID)
	assert.True(t, IsNotFound(err))
}

func TestErrorKinds(t *testing.T) {
	err := NewError(NotFound, "teams", "no record with id %s", "x")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "teams")
	assert.Contains(t, err.Error(), "not_found")

	wrapped := WrapError(Transport, "teams", context.DeadlineExceeded)
	assert.Equal(t, Transport, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)

	assert.Equal(t, Kind(0), KindOf(context.Canceled))
}
