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


package validate

import (
	"fmt"
	"strings"

	"github.com/poiesic/healthhub/source"
)

// Result reports the outcome of a structural validation pass.
// Valid is true only when Errors is empty. Validation never stops at the
// first problem; every detected issue is accumulated.
type Result struct {
	Valid  bool
	Errors []string
}

func newResult(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Table checks that tabular data is non-empty and carries every required
// column. Both checks run even when the table is empty, so a caller sees
// the full list of problems in one pass.
func Table(tbl *source.Table, requiredColumns []string) Result {
	var errs []string

	if tbl == nil || len(tbl.Rows) == 0 {
		errs = append(errs, "Table is empty")
	}

	if tbl != nil {
		present := make(map[string]bool, len(tbl.Columns))
		for _, col := range tbl.Columns {
			present[col] = true
		}
		for _, col := range requiredColumns {
			if !present[col] {
				errs = append(errs, fmt.Sprintf("Missing required column: %s", col))
			}
		}
	} else {
		for _, col := range requiredColumns {
			errs = append(errs, fmt.Sprintf("Missing required column: %s", col))
		}
	}

	return newResult(errs)
}

// Keyed checks that keyed data is a non-empty mapping and that every
// required key path resolves. Paths use dot notation: "claims.items"
// requires a "claims" key whose value is itself a mapping with an "items"
// key. A path that descends into a non-mapping value counts as missing.
func Keyed(data map[string]any, requiredKeys []string) Result {
	var errs []string

	if data == nil {
		errs = append(errs, "Input is not a mapping")
	} else if len(data) == 0 {
		errs = append(errs, "Mapping is empty")
	}

	for _, key := range requiredKeys {
		if !hasPath(data, key) {
			errs = append(errs, fmt.Sprintf("Missing required key: %s", key))
		}
	}

	return newResult(errs)
}

// hasPath walks a dot-separated key path through nested mappings.
func hasPath(data map[string]any, path string) bool {
	current := data
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		value, ok := current[segment]
		if !ok {
			return false
		}
		if i == len(segments)-1 {
			return true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	return false
}
