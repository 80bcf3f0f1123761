// Package leads turns lead-generator webhook responses into persisted scrape
// sessions and leads.
package leads

import (
	"errors"

	"github.com/JakeFAU/seo-reporter/internal/payload"
)

// ErrInvalidResponseFormat is returned when no lead records can be found in a
// response that is not itself a list.
var ErrInvalidResponseFormat = errors.New("Invalid response format from lead generator.") //nolint:staticcheck // surfaced verbatim to clients

// listKeys are the wrapper keys checked, in order, for a list of records.
var listKeys = []string{"items", "data", "results"}

// Normalize extracts the ordered lead records from a decoded webhook response.
//
// The first matching shape wins: a top-level list; a mapping with an "items",
// "data" or "results" list; a single mapping that carries a business name; the
// first list found among a mapping's values. Records wrapped in a truthy "json"
// field are unwrapped one level.
func Normalize(raw payload.Value) ([]payload.Value, error) {
	records := extractRecords(raw)

	out := make([]payload.Value, 0, len(records))
	for _, rec := range records {
		out = append(out, unwrapEnvelope(rec))
	}

	if len(out) == 0 && !raw.IsSequence() {
		return nil, ErrInvalidResponseFormat
	}
	return out, nil
}

func extractRecords(raw payload.Value) []payload.Value {
	if raw.IsSequence() {
		return raw.Items()
	}
	if !raw.IsMapping() {
		return nil
	}
	for _, key := range listKeys {
		if v, ok := raw.Get(key); ok && v.IsSequence() {
			return v.Items()
		}
	}
	if truthyField(raw, "Business Name") || truthyField(raw, "businessName") {
		return []payload.Value{raw}
	}
	for _, f := range raw.Fields() {
		if f.Value.IsSequence() {
			return f.Value.Items()
		}
	}
	return nil
}

func unwrapEnvelope(rec payload.Value) payload.Value {
	if !rec.IsMapping() {
		return rec
	}
	if inner, ok := rec.Get("json"); ok && inner.Truthy() {
		return inner
	}
	return rec
}

func truthyField(v payload.Value, key string) bool {
	field, ok := v.Get(key)
	return ok && field.Truthy()
}
