package validate

import (
	"testing"

	"github.com/poiesic/healthhub/source"
	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		tbl := &source.Table{
			Columns: []string{"member_id", "status", "plan_type"},
			Rows:    [][]string{{"M1", "active", "PPO"}},
		}
		res := Table(tbl, []string{"member_id", "status"})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing column", func(t *testing.T) {
		tbl := &source.Table{
			Columns: []string{"member_id"},
			Rows:    [][]string{{"M1"}},
		}
		res := Table(tbl, []string{"member_id", "status"})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Missing required column: status")
	})

	t.Run("empty table still reports missing columns", func(t *testing.T) {
		tbl := &source.Table{}
		res := Table(tbl, []string{"plan_type"})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Table is empty")
		assert.Contains(t, res.Errors, "Missing required column: plan_type")
		assert.Len(t, res.Errors, 2)
	})

	t.Run("nil table", func(t *testing.T) {
		res := Table(nil, []string{"a"})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Table is empty")
		assert.Contains(t, res.Errors, "Missing required column: a")
	})

	t.Run("no required columns", func(t *testing.T) {
		tbl := &source.Table{Columns: []string{"x"}, Rows: [][]string{{"1"}}}
		res := Table(tbl, nil)
		assert.True(t, res.Valid)
	})
}

func TestKeyed(t *testing.T) {
	t.Run("valid top-level keys", func(t *testing.T) {
		data := map[string]any{"claims": []any{}}
		res := Keyed(data, []string{"claims"})
		assert.True(t, res.Valid)
	})

	t.Run("nested path resolves", func(t *testing.T) {
		data := map[string]any{
			"claims": map[string]any{
				"items": []any{"c1"},
			},
		}
		res := Keyed(data, []string{"claims.items"})
		assert.True(t, res.Valid)
	})

	t.Run("empty mapping reports both problems", func(t *testing.T) {
		res := Keyed(map[string]any{}, []string{"claims.items"})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Mapping is empty")
		assert.Contains(t, res.Errors, "Missing required key: claims.items")
	})

	t.Run("path through non-mapping is missing", func(t *testing.T) {
		data := map[string]any{"claims": "not a mapping"}
		res := Keyed(data, []string{"claims.items"})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Missing required key: claims.items")
	})

	t.Run("nil input is not a mapping", func(t *testing.T) {
		res := Keyed(nil, nil)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors, "Input is not a mapping")
	})
}

func TestDate(t *testing.T) {
	ok, _ := Date("2025-06-01", "")
	assert.True(t, ok)

	ok, msg := Date("06/01/2025", "")
	assert.False(t, ok)
	assert.Contains(t, msg, "invalid date")

	ok, _ = Date("06/01/2025", "01/02/2006")
	assert.True(t, ok)
}

func TestEmail(t *testing.T) {
	valid := []string{"member@example.com", "a.b+c@sub.domain.org"}
	for _, v := range valid {
		ok, _ := Email(v)
		assert.True(t, ok, v)
	}

	invalid := []string{"", "plain", "no@tld", "@example.com", "x@.com"}
	for _, v := range invalid {
		ok, _ := Email(v)
		assert.False(t, ok, v)
	}
}

func TestPhone(t *testing.T) {
	valid := []string{
		"5551234567",
		"(555) 123-4567",
		"1-555-123-4567",
		"555.123.4567",
	}
	for _, v := range valid {
		ok, msg := Phone(v)
		assert.True(t, ok, "%s: %s", v, msg)
	}

	invalid := []string{"", "123", "555-123-456", "25551234567", "555123456x"}
	for _, v := range invalid {
		ok, _ := Phone(v)
		assert.False(t, ok, v)
	}
}

func TestNumericRange(t *testing.T) {
	min, max := 0.0, 100.0

	ok, _ := NumericRange(50, &min, &max)
	assert.True(t, ok)

	ok, msg := NumericRange(-1, &min, &max)
	assert.False(t, ok)
	assert.Contains(t, msg, "below minimum")

	ok, msg = NumericRange(101, &min, &max)
	assert.False(t, ok)
	assert.Contains(t, msg, "above maximum")

	// Unbounded sides
	ok, _ = NumericRange(1e9, &min, nil)
	assert.True(t, ok)
	ok, _ = NumericRange(-1e9, nil, &max)
	assert.True(t, ok)
}
