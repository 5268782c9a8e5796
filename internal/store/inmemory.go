package store

import (
	"context"
	"sync"
	"time"

	"pedtrack/internal/model"
	"pedtrack/internal/store/shared"
)

// InMemoryStore keeps every collection in an insertion-ordered slice.
// Facet derivation depends on first-seen order, so List always returns
// records in the order they were created.
type InMemoryStore struct {
	mu sync.RWMutex

	details  []model.PedDetail
	sessions []model.SearchSession
	sources  []model.SourceURL
	queries  []model.CollectorQuery
	execs    []model.Execution
	nextID   map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextID: map[string]int64{
			"ped_details": 1,
			"sessions":    1,
			"source_urls": 1,
			"queries":     1,
			"executions":  1,
		},
	}
}

func (m *InMemoryStore) allocID(collection string) int64 {
	id := m.nextID[collection]
	m.nextID[collection] = id + 1
	return id
}

// PedDetails

func (m *InMemoryStore) ListPedDetails(ctx context.Context) ([]model.PedDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.PedDetail(nil), m.details...), nil
}

func (m *InMemoryStore) GetPedDetail(ctx context.Context, id int64) (model.PedDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.details {
		if d.ID == id {
			return d, nil
		}
	}
	return model.PedDetail{}, shared.ErrNotFound
}

func (m *InMemoryStore) GetPedDetailsByTransactionID(ctx context.Context, transactionID string) ([]model.PedDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.PedDetail
	for _, d := range m.details {
		if d.TransactionID == transactionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *InMemoryStore) CreatePedDetail(ctx context.Context, detail *model.PedDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail.ID = m.allocID("ped_details")
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = time.Now().UTC()
	}
	m.details = append(m.details, *detail)
	return nil
}

func (m *InMemoryStore) UpdatePedDetail(ctx context.Context, detail *model.PedDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.details {
		if m.details[i].ID == detail.ID {
			m.details[i] = *detail
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) DeletePedDetail(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.details {
		if m.details[i].ID == id {
			m.details = append(m.details[:i], m.details[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// SearchSessions

func (m *InMemoryStore) ListSearchSessions(ctx context.Context) ([]model.SearchSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SearchSession(nil), m.sessions...), nil
}

func (m *InMemoryStore) GetSearchSession(ctx context.Context, id int64) (model.SearchSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return model.SearchSession{}, shared.ErrNotFound
}

func (m *InMemoryStore) GetSearchSessionsByTransactionID(ctx context.Context, transactionID string) ([]model.SearchSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.SearchSession
	for _, s := range m.sessions {
		if s.TransactionID == transactionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *InMemoryStore) CreateSearchSession(ctx context.Context, session *model.SearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = m.allocID("sessions")
	if session.SearchTimestamp.IsZero() {
		session.SearchTimestamp = time.Now().UTC()
	}
	m.sessions = append(m.sessions, *session)
	return nil
}

func (m *InMemoryStore) UpdateSearchSession(ctx context.Context, session *model.SearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == session.ID {
			m.sessions[i] = *session
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) DeleteSearchSession(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// SourceURLs

func (m *InMemoryStore) ListSourceURLs(ctx context.Context) ([]model.SourceURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SourceURL(nil), m.sources...), nil
}

func (m *InMemoryStore) GetSourceURL(ctx context.Context, id int64) (model.SourceURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return model.SourceURL{}, shared.ErrNotFound
}

func (m *InMemoryStore) GetSourceURLsByTransactionID(ctx context.Context, transactionID string) ([]model.SourceURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.SourceURL
	for _, s := range m.sources {
		if s.TransactionID == transactionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *InMemoryStore) CreateSourceURL(ctx context.Context, src *model.SourceURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src.ID = m.allocID("source_urls")
	if src.DiscoveredAt.IsZero() {
		src.DiscoveredAt = time.Now().UTC()
	}
	m.sources = append(m.sources, *src)
	return nil
}

func (m *InMemoryStore) UpdateSourceURL(ctx context.Context, src *model.SourceURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sources {
		if m.sources[i].ID == src.ID {
			m.sources[i] = *src
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) DeleteSourceURL(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sources {
		if m.sources[i].ID == id {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// CollectorQueries

func (m *InMemoryStore) ListCollectorQueries(ctx context.Context) ([]model.CollectorQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.CollectorQuery(nil), m.queries...), nil
}

func (m *InMemoryStore) GetCollectorQuery(ctx context.Context, id int64) (model.CollectorQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.queries {
		if q.ID == id {
			return q, nil
		}
	}
	return model.CollectorQuery{}, shared.ErrNotFound
}

func (m *InMemoryStore) CreateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	query.ID = m.allocID("queries")
	now := time.Now().UTC()
	if query.CreatedAt.IsZero() {
		query.CreatedAt = now
	}
	if query.LastRunAt.IsZero() {
		query.LastRunAt = now
	}
	m.queries = append(m.queries, *query)
	return nil
}

func (m *InMemoryStore) UpdateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.queries {
		if m.queries[i].ID == query.ID {
			m.queries[i] = *query
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) DeleteCollectorQuery(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.queries {
		if m.queries[i].ID == id {
			m.queries = append(m.queries[:i], m.queries[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) TouchCollectorQuery(ctx context.Context, id int64, runAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.queries {
		if m.queries[i].ID == id {
			m.queries[i].LastRunAt = runAt
			return nil
		}
	}
	return shared.ErrNotFound
}

// Executions

func (m *InMemoryStore) ListExecutions(ctx context.Context) ([]model.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Execution(nil), m.execs...), nil
}

func (m *InMemoryStore) GetExecution(ctx context.Context, id int64) (model.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.execs {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Execution{}, shared.ErrNotFound
}

func (m *InMemoryStore) GetExecutionsByQueryID(ctx context.Context, queryID int64) ([]model.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Execution
	for _, e := range m.execs {
		if e.QueryID == queryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *InMemoryStore) CreateExecution(ctx context.Context, exec *model.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exec.ID = m.allocID("executions")
	if exec.StartDate.IsZero() {
		exec.StartDate = time.Now().UTC()
	}
	m.execs = append(m.execs, *exec)
	return nil
}

func (m *InMemoryStore) UpdateExecution(ctx context.Context, exec *model.Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.execs {
		if m.execs[i].ID == exec.ID {
			m.execs[i] = *exec
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *InMemoryStore) DeleteExecution(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.execs {
		if m.execs[i].ID == id {
			m.execs = append(m.execs[:i], m.execs[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}
