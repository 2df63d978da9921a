package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrips(t *testing.T) {
	for _, s := range All() {
		fromCode, err := FromCode(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, fromCode)

		fromLabel, err := Normalize(s.Label())
		require.NoError(t, err)
		assert.Equal(t, s, fromLabel)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Status
		wantErr bool
	}{
		{name: "code int", raw: 1, want: Active},
		{name: "code int64", raw: int64(3), want: Returned},
		{name: "code float64", raw: float64(2), want: Overdue},
		{name: "label", raw: "Overdue", want: Overdue},
		{name: "label lowercase", raw: "returned", want: Returned},
		{name: "legacy active", raw: "active", want: Active},
		{name: "legacy pending_return", raw: "pending_return", want: Active},
		{name: "legacy completed", raw: "completed", want: Returned},
		{name: "canonical passthrough", raw: Returned, want: Returned},
		{name: "unknown code", raw: 7, wantErr: true},
		{name: "unknown word", raw: "archived", wantErr: true},
		{name: "fractional code", raw: 1.5, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
		{name: "nil", raw: nil, wantErr: true},
		{name: "bool", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				var unknownErr *UnknownStatusError
				require.ErrorAs(t, err, &unknownErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromCodeUnknown(t *testing.T) {
	for _, code := range []int{0, -1, 4, 99} {
		_, err := FromCode(code)
		var unknownErr *UnknownStatusError
		assert.ErrorAs(t, err, &unknownErr, "code %d", code)
	}
}

func TestEffective(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		s    Status
		due  *time.Time
		want Status
	}{
		{name: "active past due", s: Active, due: &past, want: Overdue},
		{name: "active not yet due", s: Active, due: &future, want: Active},
		{name: "active no due date", s: Active, due: nil, want: Active},
		{name: "returned past due stays returned", s: Returned, due: &past, want: Returned},
		{name: "stored overdue passes through", s: Overdue, due: nil, want: Overdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effective(tt.s, tt.due, now))
		})
	}
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(Overdue)
	require.NoError(t, err)
	assert.Equal(t, `"Overdue"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"pending_return"`), &s))
	assert.Equal(t, Active, s)

	require.NoError(t, json.Unmarshal([]byte(`3`), &s))
	assert.Equal(t, Returned, s)

	err = json.Unmarshal([]byte(`"lost"`), &s)
	var unknownErr *UnknownStatusError
	assert.ErrorAs(t, err, &unknownErr)

	_, err = json.Marshal(Status(42))
	assert.Error(t, err)
}
