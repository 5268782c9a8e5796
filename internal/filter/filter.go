// Package filter implements the document filter engine: the multi-field
// predicate pipeline shared by the REST query-parameter contract and
// in-memory client-side filtering, plus facet derivation for selector
// controls.
package filter

import (
	"strings"
	"time"
)

// Sentinel disables a selector predicate ("all" or empty).
const Sentinel = "all"

// SFM status filter values.
const (
	SfmYes = "yes"
	SfmNo  = "no"
)

// Spec is a filter specification. Every field is optional; a zero value
// disables the corresponding predicate. Active predicates are combined
// with logical AND.
type Spec struct {
	SearchText    string     // case-insensitive substring of image_url
	Country       string     // exact match, "all"/"" disables
	DocumentType  string     // exact match, "all"/"" disables
	State         string     // exact match, "all"/"" disables
	DateFrom      *time.Time // created_at >= DateFrom
	DateTo        *time.Time // created_at <= DateTo + 1 day
	TransactionID string     // case-insensitive substring
	SessionID     string     // substring of the decimal session id
	SearchedQuery string     // case-insensitive substring, echoed onto results
	PodID         string     // case-insensitive substring, echoed onto results
	SfmStatus     string     // "yes"/"no", "all"/"" disables
}

// DisplayContext carries the echoed annotation values so the caller can
// render shared context labels without re-deriving them from the spec.
type DisplayContext struct {
	SearchedQuery string
	PodID         string
	SfmStatus     string
}

// IsZero reports whether no predicate is active.
func (s Spec) IsZero() bool {
	return !s.hasSearchText() && !selectorActive(s.Country) && !selectorActive(s.DocumentType) &&
		!selectorActive(s.State) && s.DateFrom == nil && s.DateTo == nil &&
		s.TransactionID == "" && s.SessionID == "" && s.SearchedQuery == "" &&
		s.PodID == "" && !sfmActive(s.SfmStatus)
}

func (s Spec) hasSearchText() bool { return s.SearchText != "" }

func selectorActive(v string) bool {
	return v != "" && !strings.EqualFold(v, Sentinel)
}

func sfmActive(v string) bool {
	return v == SfmYes || v == SfmNo
}

// Context returns the display context derived from the spec.
func Context(s Spec) DisplayContext {
	ctx := DisplayContext{
		SearchedQuery: s.SearchedQuery,
		PodID:         s.PodID,
	}
	if sfmActive(s.SfmStatus) {
		ctx.SfmStatus = s.SfmStatus
	}
	return ctx
}
