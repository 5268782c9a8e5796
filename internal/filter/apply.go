package filter

import (
	"strconv"
	"strings"

	"pedtrack/internal/model"
)

// Apply returns the records satisfying every active predicate of spec,
// preserving input order. An empty spec returns the input unchanged.
// After filtering, SearchedQuery/PodID supplied in the spec are echoed
// onto every surviving record, overwriting any prior annotation.
func Apply(records []model.PedDetail, spec Spec) []model.PedDetail {
	if spec.IsZero() {
		return records
	}

	out := make([]model.PedDetail, 0, len(records))
	for _, rec := range records {
		if !matches(rec, spec) {
			continue
		}
		if spec.SearchedQuery != "" {
			rec.SearchedQuery = spec.SearchedQuery
		}
		if spec.PodID != "" {
			rec.PodID = spec.PodID
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec model.PedDetail, spec Spec) bool {
	if spec.hasSearchText() && !containsFold(rec.ImageURL, spec.SearchText) {
		return false
	}
	if selectorActive(spec.Country) && rec.Country != spec.Country {
		return false
	}
	if selectorActive(spec.DocumentType) && rec.DocumentType != spec.DocumentType {
		return false
	}
	if selectorActive(spec.State) && rec.State != spec.State {
		return false
	}
	if spec.DateFrom != nil && rec.CreatedAt.Before(*spec.DateFrom) {
		return false
	}
	if spec.DateTo != nil {
		// Extend the upper bound by one calendar day so the whole end
		// date is included regardless of time-of-day.
		end := spec.DateTo.AddDate(0, 0, 1)
		if rec.CreatedAt.After(end) {
			return false
		}
	}
	if spec.TransactionID != "" && !containsFold(rec.TransactionID, spec.TransactionID) {
		return false
	}
	if spec.SessionID != "" {
		if rec.SessionID == nil {
			return false
		}
		if !strings.Contains(strconv.FormatInt(*rec.SessionID, 10), spec.SessionID) {
			return false
		}
	}
	if spec.SearchedQuery != "" && !containsFold(rec.SearchedQuery, spec.SearchedQuery) {
		return false
	}
	if spec.PodID != "" && !containsFold(rec.PodID, spec.PodID) {
		return false
	}
	switch spec.SfmStatus {
	case SfmYes:
		if !rec.LoadedToSfm {
			return false
		}
	case SfmNo:
		if rec.LoadedToSfm {
			return false
		}
	}
	return true
}

// containsFold is a simple lowercase substring match, no locale-aware
// collation.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
