// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import "path/filepath"

// Format names the wire format of a data source.
type Format string

const (
	// FormatTable is delimited tabular data (CSV).
	FormatTable Format = "table"
	// FormatKeyed is a keyed document (JSON object).
	FormatKeyed Format = "keyed"
	// FormatFeed is a syndication feed (RSS/Atom XML).
	FormatFeed Format = "feed"
)

// Kind tags which representation a ParsedSource carries.
type Kind int

const (
	// KindTable carries rows and columns.
	KindTable Kind = iota + 1
	// KindItems carries a keyed document.
	KindItems
	// KindFeed carries feed entries.
	KindFeed
)

// Table is tabular data with a header row.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FeedEntry is one item from a syndication feed, reduced to the fields
// the pipeline uses.
type FeedEntry struct {
	Title       string
	Link        string
	Published   string
	Description string
	Category    string
}

// ParsedSource is the normalized result of loading a data source.
// Exactly one of Table, Items, or Feed is populated, as indicated by Kind.
type ParsedSource struct {
	Kind  Kind
	Table *Table
	Items map[string]any
	Feed  []FeedEntry
}

// Config describes one data source: where it lives, how to parse it, and
// what structure it must have to be usable.
type Config struct {
	Filepath        string
	Format          Format
	RequiredColumns []string // for FormatTable
	RequiredKeys    []string // for FormatKeyed, dot paths
}

// DefaultSources returns the canonical six-source configuration covering
// every business domain. baseDir is prepended to each path; pass "" to
// keep paths relative to the working directory.
func DefaultSources(baseDir string) []Config {
	join := func(parts ...string) string {
		if baseDir == "" {
			return filepath.Join(parts...)
		}
		return filepath.Join(append([]string{baseDir}, parts...)...)
	}

	return []Config{
		{
			Filepath:        join("data", "internal", "member_eligibility.csv"),
			Format:          FormatTable,
			RequiredColumns: []string{"member_id", "status", "plan_type"},
		},
		{
			Filepath:     join("data", "internal", "claims_history.json"),
			Format:       FormatKeyed,
			RequiredKeys: []string{"claims"},
		},
		{
			Filepath:        join("data", "internal", "benefits_summary.csv"),
			Format:          FormatTable,
			RequiredColumns: []string{"plan_type", "service_category"},
		},
		{
			Filepath: join("data", "external", "cms_policy_updates.xml"),
			Format:   FormatFeed,
		},
		{
			Filepath:     join("data", "external", "fda_drug_database.json"),
			Format:       FormatKeyed,
			RequiredKeys: []string{"drugs"},
		},
		{
			Filepath:     join("data", "external", "provider_directory.json"),
			Format:       FormatKeyed,
			RequiredKeys: []string{"providers"},
		},
	}
}
