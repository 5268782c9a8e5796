package filter

import (
	"net/url"
	"time"
)

// Date layouts accepted on the REST query-parameter contract.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseSpec builds a Spec from REST query parameters. Malformed values
// (e.g. unparsable dates) disable the predicate rather than failing, to
// keep search resilient to partial or garbled UI state.
func ParseSpec(values url.Values) Spec {
	return Spec{
		SearchText:    values.Get("searchText"),
		Country:       values.Get("country"),
		DocumentType:  values.Get("documentType"),
		State:         values.Get("state"),
		DateFrom:      parseDate(values.Get("dateFrom")),
		DateTo:        parseDate(values.Get("dateTo")),
		TransactionID: values.Get("transactionId"),
		SessionID:     values.Get("sessionId"),
		SearchedQuery: values.Get("searchedQuery"),
		PodID:         values.Get("podId"),
		SfmStatus:     values.Get("sfmStatus"),
	}
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
