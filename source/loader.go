package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/poiesic/healthhub/core"
)

// Load parses the source described by cfg into its normalized form.
func Load(cfg Config) (*ParsedSource, error) {
	if strings.TrimSpace(cfg.Filepath) == "" {
		return nil, core.ErrInvalidFilepath
	}

	switch cfg.Format {
	case FormatTable:
		tbl, err := LoadTable(cfg.Filepath)
		if err != nil {
			return nil, err
		}
		return &ParsedSource{Kind: KindTable, Table: tbl}, nil
	case FormatKeyed:
		items, err := LoadKeyed(cfg.Filepath)
		if err != nil {
			return nil, err
		}
		return &ParsedSource{Kind: KindItems, Items: items}, nil
	case FormatFeed:
		entries, err := LoadFeed(cfg.Filepath)
		if err != nil {
			return nil, err
		}
		return &ParsedSource{Kind: KindFeed, Feed: entries}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Format)
	}
}

// LoadTable reads a CSV file into a Table. The first record is the
// header. A file with no records yields an empty Table rather than an
// error; emptiness is a validation concern, not a parse failure.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// LoadKeyed reads a JSON file that must hold a top-level object.
func LoadKeyed(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAnObject, path)
	}
	return obj, nil
}

// LoadFeed reads an RSS or Atom file and reduces each item to a
// FeedEntry. Only the first category of an item is kept.
func LoadFeed(path string) ([]FeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entry := FeedEntry{
			Title:       item.Title,
			Link:        item.Link,
			Published:   item.Published,
			Description: item.Description,
		}
		if len(item.Categories) > 0 {
			entry.Category = item.Categories[0]
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
