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


package core

import "fmt"

// ValidateDocument validates a Document before indexing.
//
// Validation rules:
//   - ID must not be empty
//   - Text must not be empty
//
// Metadata fields are not validated here; the tagging stage guarantees
// them and the index stores whatever labels it is given.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrEmptyContent)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: document id", ErrEmptyContent)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: document text", ErrEmptyContent)
	}
	return nil
}

// ValidateDomain checks that a domain string is one of the known domains.
// DomainUnknown is accepted; it is a legitimate tagging outcome.
func ValidateDomain(d Domain) error {
	if d == DomainUnknown {
		return nil
	}
	for _, known := range Domains() {
		if d == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDomain, d)
}
