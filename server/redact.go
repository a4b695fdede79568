package server

// redactedValue replaces personally identifiable field values in source
// previews.
const redactedValue = "**REDACTED**"

// piiFields are the record fields that are never shown in previews of
// PII-classified sources.
var piiFields = map[string]struct{}{
	"first_name":    {},
	"last_name":     {},
	"dob":           {},
	"date_of_birth": {},
	"email":         {},
	"phone":         {},
	"ssn":           {},
	"zip_code":      {},
}

// redactRecord returns a copy of record with PII field values masked.
func redactRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for key, value := range record {
		if _, ok := piiFields[key]; ok {
			out[key] = redactedValue
		} else {
			out[key] = value
		}
	}
	return out
}
