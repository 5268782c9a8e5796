package filter

import (
	"strings"

	"pedtrack/internal/model"
)

// DocumentTypes is the closed UI vocabulary for document types. It is
// intentionally fixed independent of record content, which may use
// inconsistent free-text type names.
var DocumentTypes = []string{"IDs", "Passport", "Driving License"}

// UniqueCountries returns the distinct country values in first-seen order.
func UniqueCountries(records []model.PedDetail) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if _, ok := seen[rec.Country]; ok {
			continue
		}
		seen[rec.Country] = struct{}{}
		out = append(out, rec.Country)
	}
	return out
}

// UniqueDocumentTypes returns the fixed document type vocabulary.
func UniqueDocumentTypes() []string {
	out := make([]string, len(DocumentTypes))
	copy(out, DocumentTypes)
	return out
}

// UniqueStates returns the distinct non-empty state values across all
// records in first-seen order. An empty state means "not applicable" and
// is never listed.
func UniqueStates(records []model.PedDetail) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if rec.State == "" {
			continue
		}
		if _, ok := seen[rec.State]; ok {
			continue
		}
		seen[rec.State] = struct{}{}
		out = append(out, rec.State)
	}
	return out
}

// StatesForCountry returns the distinct non-empty states among records of
// the given country, in first-seen order. State vocabularies are only
// meaningful per country, so grouping happens before listing. The sentinel
// "all"/empty country yields an empty list.
func StatesForCountry(records []model.PedDetail, country string) []string {
	if country == "" || strings.EqualFold(country, Sentinel) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if rec.Country != country || rec.State == "" {
			continue
		}
		if _, ok := seen[rec.State]; ok {
			continue
		}
		seen[rec.State] = struct{}{}
		out = append(out, rec.State)
	}
	return out
}

// CountryHasMultipleStates reports whether the country has any recorded
// states at all. Despite the name it returns true for a single state too;
// callers depend on this gating behavior.
func CountryHasMultipleStates(records []model.PedDetail, country string) bool {
	return len(StatesForCountry(records, country)) > 0
}
