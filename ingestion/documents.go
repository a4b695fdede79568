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


package ingestion

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/healthhub/core"
	"github.com/poiesic/healthhub/source"
)

// itemListKeys are the keyed-document fields checked, in order, for an
// embedded list of records.
var itemListKeys = []string{"claims", "drugs", "providers", "items", "records"}

// naturalIDKeys are the item fields checked, in order, for a natural
// identifier before falling back to an ordinal one.
var naturalIDKeys = []string{"claim_id", "drug_name", "npi", "id"}

// PrepareForVectorDB converts every successful source in the report into
// indexable documents. Failed sources contribute nothing. Document IDs
// are derived from the source system plus a natural or positional key and
// are made unique within the returned batch.
func (p *Pipeline) PrepareForVectorDB(report *Report) []core.Document {
	docs := []core.Document{}
	if report == nil {
		return docs
	}

	seen := make(map[string]int)

	for _, result := range report.Sources {
		if result.Status != StatusSuccess {
			continue
		}

		meta := core.DocumentMeta{
			Source:         result.Filepath,
			Domain:         result.Tags.Domain,
			SourceType:     result.Tags.SourceType,
			Classification: result.Tags.Classification,
			Timestamp:      p.clock().UTC(),
		}

		for _, doc := range convertSource(result, len(docs)) {
			doc.ID = uniqueID(seen, doc.ID)
			doc.Meta = meta
			docs = append(docs, doc)
		}
	}

	p.logger.Info("prepared documents for indexing", "count", len(docs))
	return docs
}

// uniqueID disambiguates repeated IDs with an ordinal suffix. The first
// occurrence keeps the bare ID.
func uniqueID(seen map[string]int, id string) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	return fmt.Sprintf("%s_%d", id, n)
}

// convertSource dispatches on the parsed shape. count is the number of
// documents already produced by earlier sources; keyed items without a
// natural identifier continue that running count.
func convertSource(result *SourceResult, count int) []core.Document {
	system := result.Tags.SourceSystem

	switch result.Parsed.Kind {
	case source.KindTable:
		return tableToDocuments(result.Parsed.Table, system)
	case source.KindItems:
		return keyedToDocuments(result.Parsed.Items, system, count)
	case source.KindFeed:
		return feedToDocuments(result.Parsed.Feed, system)
	default:
		return nil
	}
}

// tableToDocuments emits one document per row as "column: value" phrases.
// Empty cells are skipped.
func tableToDocuments(tbl *source.Table, system string) []core.Document {
	docs := make([]core.Document, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		var parts []string
		for j, col := range tbl.Columns {
			if j >= len(row) || row[j] == "" {
				continue
			}
			parts = append(parts, col+": "+row[j])
		}
		if len(parts) == 0 {
			continue
		}
		docs = append(docs, core.Document{
			ID:   fmt.Sprintf("%s_%d", system, i+1),
			Text: strings.Join(parts, ". "),
		})
	}
	return docs
}

// keyedToDocuments emits one document per item when the keyed data embeds
// a recognizable record list, otherwise one document for the whole blob.
// Items without a natural identifier get a synthetic one that continues
// the batch-wide running count.
func keyedToDocuments(items map[string]any, system string, count int) []core.Document {
	for _, key := range itemListKeys {
		list, ok := items[key].([]any)
		if !ok {
			continue
		}

		docs := make([]core.Document, 0, len(list))
		for _, raw := range list {
			id := ""
			text := formatValue(raw)
			if item, ok := raw.(map[string]any); ok {
				id = naturalID(item)
				text = itemToText(item)
			}
			if id == "" {
				id = fmt.Sprintf("%d", count+len(docs)+1)
			}
			docs = append(docs, core.Document{
				ID:   system + "_" + id,
				Text: text,
			})
		}
		return docs
	}

	// No list key: keep the document whole.
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil
	}
	return []core.Document{{ID: system + "_1", Text: string(raw)}}
}

func feedToDocuments(entries []source.FeedEntry, system string) []core.Document {
	docs := make([]core.Document, 0, len(entries))
	for i, entry := range entries {
		var parts []string
		if entry.Title != "" {
			parts = append(parts, "Title: "+entry.Title)
		}
		if entry.Description != "" {
			parts = append(parts, "Description: "+entry.Description)
		}
		if entry.Category != "" {
			parts = append(parts, "Category: "+entry.Category)
		}
		if entry.Published != "" {
			parts = append(parts, "Published: "+entry.Published)
		}
		if len(parts) == 0 {
			continue
		}
		id := sanitizeDocID(entry.Title)
		if id == "" {
			id = fmt.Sprintf("%d", i+1)
		}
		docs = append(docs, core.Document{
			ID:   system + "_" + id,
			Text: strings.Join(parts, ". "),
		})
	}
	return docs
}

// naturalID picks a natural identifier from the item, or "" when none of
// the candidate fields is present.
func naturalID(item map[string]any) string {
	for _, key := range naturalIDKeys {
		if v, ok := item[key]; ok && v != nil {
			if s := formatValue(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// sanitizeDocID keeps alphanumerics, underscores, and hyphens, replaces
// everything else with an underscore, and caps the segment at 50 runes.
func sanitizeDocID(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			runes[i] = '_'
		}
	}
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

// itemToText renders an item as "Label: value" phrases with humanized
// field names. Keys are emitted in sorted order so output is stable.
func itemToText(item map[string]any) string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		v := item[k]
		if v == nil {
			continue
		}
		parts = append(parts, humanizeKey(k)+": "+formatValue(v))
	}
	return strings.Join(parts, ". ")
}

// formatValue renders a decoded JSON value as text. Lists are joined with
// commas; nested objects fall back to compact JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, formatValue(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		raw, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(raw)
	case float64:
		// JSON numbers decode as float64; print integers without a
		// trailing ".0" style artifact.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// humanizeKey turns snake_case field names into titled labels, e.g.
// "billed_amount" becomes "Billed Amount".
func humanizeKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
