package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/healthhub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTable(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		path := writeFile(t, "members.csv",
			"member_id,status,plan_type\nWHP100001,active,Gold PPO\nWHP100002,inactive,Silver HMO\n")

		tbl, err := LoadTable(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"member_id", "status", "plan_type"}, tbl.Columns)
		require.Len(t, tbl.Rows, 2)
		assert.Equal(t, []string{"WHP100001", "active", "Gold PPO"}, tbl.Rows[0])
	})

	t.Run("empty file is an empty table", func(t *testing.T) {
		path := writeFile(t, "empty.csv", "")

		tbl, err := LoadTable(path)
		require.NoError(t, err)
		assert.Empty(t, tbl.Columns)
		assert.Empty(t, tbl.Rows)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTable(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("ragged rows rejected", func(t *testing.T) {
		path := writeFile(t, "bad.csv", "a,b\n1,2,3\n")
		_, err := LoadTable(path)
		assert.Error(t, err)
	})
}

func TestLoadKeyed(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		path := writeFile(t, "claims.json",
			`{"claims": [{"claim_id": "C1", "billed_amount": 120.5}]}`)

		data, err := LoadKeyed(path)
		require.NoError(t, err)

		claims, ok := data["claims"].([]any)
		require.True(t, ok)
		assert.Len(t, claims, 1)
	})

	t.Run("top-level array rejected", func(t *testing.T) {
		path := writeFile(t, "arr.json", `[1, 2, 3]`)
		_, err := LoadKeyed(path)
		assert.ErrorIs(t, err, ErrNotAnObject)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"claims": [`)
		_, err := LoadKeyed(path)
		assert.Error(t, err)
	})
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>CMS Policy Updates</title>
    <item>
      <title>Prior Authorization Changes for 2025</title>
      <link>https://example.gov/pa-2025</link>
      <pubDate>Mon, 06 Jan 2025 09:00:00 GMT</pubDate>
      <description>New prior authorization requirements take effect.</description>
      <category>regulation</category>
    </item>
    <item>
      <title>Telehealth Coverage Extension</title>
      <link>https://example.gov/telehealth</link>
      <description>Telehealth flexibilities extended through 2025.</description>
    </item>
  </channel>
</rss>`

func TestLoadFeed(t *testing.T) {
	t.Run("rss items", func(t *testing.T) {
		path := writeFile(t, "cms.xml", sampleRSS)

		entries, err := LoadFeed(path)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, "Prior Authorization Changes for 2025", entries[0].Title)
		assert.Equal(t, "https://example.gov/pa-2025", entries[0].Link)
		assert.Equal(t, "regulation", entries[0].Category)
		assert.Contains(t, entries[0].Description, "prior authorization")

		// Second item has no category
		assert.Empty(t, entries[1].Category)
	})

	t.Run("not a feed", func(t *testing.T) {
		path := writeFile(t, "bad.xml", "not xml at all")
		_, err := LoadFeed(path)
		assert.Error(t, err)
	})
}

func TestLoadDispatch(t *testing.T) {
	path := writeFile(t, "t.csv", "a\n1\n")

	parsed, err := Load(Config{Filepath: path, Format: FormatTable})
	require.NoError(t, err)
	assert.Equal(t, KindTable, parsed.Kind)
	require.NotNil(t, parsed.Table)

	_, err = Load(Config{Filepath: path, Format: Format("yaml")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(Config{Filepath: "  ", Format: FormatTable})
	assert.ErrorIs(t, err, core.ErrInvalidFilepath)
}

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources("")
	require.Len(t, sources, 6)

	sources = DefaultSources("/srv/hub")
	assert.Equal(t, filepath.Join("/srv/hub", "data", "internal", "member_eligibility.csv"), sources[0].Filepath)
	assert.Equal(t, FormatTable, sources[0].Format)
	assert.Equal(t, []string{"claims"}, sources[1].RequiredKeys)
	assert.Equal(t, FormatFeed, sources[3].Format)
}
