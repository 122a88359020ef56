package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/catalog"
)

func priceEntry(filterable bool) catalog.Entry {
	return catalog.Entry{
		ID:          1,
		Description: "test entry",
		SQL:         "SELECT name FROM listings {where_clause}",
		Filterable:  filterable,
		Params: []catalog.Param{
			{Name: "min_price", Prompt: "Minimum price", Kind: catalog.KindFloat},
			{Name: "max_price", Prompt: "Maximum price", Kind: catalog.KindFloat},
			{Name: "min_reviews", Prompt: "Minimum reviews", Kind: catalog.KindInteger},
			{Name: "room_type", Prompt: "Room type", Kind: catalog.KindText},
		},
	}
}

func TestCoerceTypes(t *testing.T) {
	e := priceEntry(false)

	binds, err := Coerce(e, map[string]string{
		"min_price":   "100",
		"max_price":   "12.5",
		"min_reviews": "3",
		"room_type":   "  Private room  ",
	})
	require.NoError(t, err)
	require.Len(t, binds, 4)

	v, ok := binds.Get("max_price")
	require.True(t, ok)
	assert.Equal(t, 12.5, v, "float input must coerce to its numeric value")

	v, _ = binds.Get("min_reviews")
	assert.Equal(t, int64(3), v)

	v, _ = binds.Get("room_type")
	assert.Equal(t, "Private room", v, "text input is trimmed, nothing more")

	assert.Equal(t, []string{"min_price", "max_price", "min_reviews", "room_type"}, binds.Names(),
		"bindings keep declared parameter order")
}

func TestCoerceMandatoryEmpty(t *testing.T) {
	e := priceEntry(false)

	_, err := Coerce(e, map[string]string{
		"min_price":   "100",
		"max_price":   "",
		"min_reviews": "3",
		"room_type":   "x",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max_price", verr.Field, "error must name the empty field")
}

func TestCoerceFilterableOmitsEmpty(t *testing.T) {
	e := priceEntry(true)

	binds, err := Coerce(e, map[string]string{
		"min_price": "",
		"max_price": "500",
	})
	require.NoError(t, err)
	require.Len(t, binds, 1, "empty filterable fields are dropped, not bound")

	v, ok := binds.Get("max_price")
	require.True(t, ok)
	assert.Equal(t, 500.0, v)

	_, ok = binds.Get("min_price")
	assert.False(t, ok)
}

func TestCoerceRejectsBadNumbers(t *testing.T) {
	e := priceEntry(false)

	tests := []struct {
		name  string
		raw   map[string]string
		field string
	}{
		{
			name: "integer field with text",
			raw: map[string]string{
				"min_price": "1", "max_price": "2", "min_reviews": "abc", "room_type": "x",
			},
			field: "min_reviews",
		},
		{
			name: "integer field with decimal",
			raw: map[string]string{
				"min_price": "1", "max_price": "2", "min_reviews": "3.5", "room_type": "x",
			},
			field: "min_reviews",
		},
		{
			name: "float field with text",
			raw: map[string]string{
				"min_price": "cheap", "max_price": "2", "min_reviews": "3", "room_type": "x",
			},
			field: "min_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(e, tt.raw)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, err.Error(), tt.field, "message names the offending field")
		})
	}
}

func TestFieldsOrder(t *testing.T) {
	e := priceEntry(false)
	fields := Fields(e)
	require.Len(t, fields, 4)
	assert.Equal(t, "min_price", fields[0].Param.Name)
	assert.Equal(t, "room_type", fields[3].Param.Name)
	assert.Empty(t, fields[0].Raw)
}
