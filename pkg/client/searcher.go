package client

import (
	"context"
	"errors"
	"sync"

	"pedtrack/internal/filter"
	"pedtrack/internal/model"
)

// ErrSuperseded reports that a newer search was issued before this one
// completed; the stale result is discarded instead of being delivered.
var ErrSuperseded = errors.New("pedtrack: search superseded by a newer request")

// Searcher serializes the fetch-then-render cycle. Each Search call takes
// a monotonically increasing generation; a response whose generation is no
// longer current is dropped, so the delivered result always corresponds to
// the most recent input even when an older request's response arrives
// later.
type Searcher struct {
	client *Client

	mu  sync.Mutex
	gen uint64
}

// NewSearcher wraps a client with stale-response suppression.
func NewSearcher(c *Client) *Searcher {
	return &Searcher{client: c}
}

// Search fetches documents for the spec. If another Search starts before
// this one's response arrives, the stale response is discarded and
// ErrSuperseded is returned.
func (s *Searcher) Search(ctx context.Context, spec filter.Spec) ([]model.PedDetail, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	records, err := s.client.ListDocuments(ctx, spec)

	s.mu.Lock()
	current := s.gen
	s.mu.Unlock()
	if gen != current {
		return nil, ErrSuperseded
	}
	return records, err
}
