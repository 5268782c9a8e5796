package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedtrack/internal/filter"
	"pedtrack/internal/handlers"
	"pedtrack/internal/model"
	"pedtrack/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	logger := zap.NewNop()
	r := mux.NewRouter()
	handlers.NewPedDetailsHandler(st, logger, false).RegisterRoutes(r, logger)
	handlers.NewCollectorQueriesHandler(st, logger, false).RegisterRoutes(r, logger)
	handlers.NewExecutionsHandler(st, logger, false).RegisterRoutes(r, logger)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, st
}

func TestClient_DocumentRoundtrip(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	created, err := c.CreateDocument(ctx, model.PedDetail{
		TransactionID: "TXN-001",
		Country:       "United States",
		DocumentType:  "Passport",
		State:         "CA",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := c.GetDocument(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "TXN-001", got.TransactionID)

	got.State = "NY"
	updated, err := c.UpdateDocument(ctx, got)
	require.NoError(t, err)
	require.Equal(t, "NY", updated.State)

	require.NoError(t, c.DeleteDocument(ctx, created.ID))

	_, err = c.GetDocument(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "PED detail not found", apiErr.Message)
}

func TestClient_ListDocumentsWithSpec(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	for _, country := range []string{"France", "France", "Japan"} {
		_, err := c.CreateDocument(ctx, model.PedDetail{
			TransactionID: "t", Country: country, DocumentType: "IDs",
		})
		require.NoError(t, err)
	}

	records, err := c.ListDocuments(ctx, filter.Spec{Country: "France"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	all, err := c.ListDocuments(ctx, filter.Spec{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestClient_StatesForCountry(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.CreateDocument(ctx, model.PedDetail{TransactionID: "t", Country: "US", DocumentType: "IDs", State: "CA"})
	require.NoError(t, err)

	states, err := c.StatesForCountry(ctx, "US")
	require.NoError(t, err)
	require.Equal(t, []string{"CA"}, states)
}

func TestClient_ExecuteQueryFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	query, err := c.CreateQuery(ctx, model.CollectorQuery{
		QueryText:          "nederland id card",
		TargetCountry:      "Netherlands",
		TargetDocumentType: "IDs",
		IsActive:           true,
	})
	require.NoError(t, err)

	result, err := c.ExecuteQuery(ctx, query.ID)
	require.NoError(t, err)
	require.Equal(t, query.ID, result.QueryID)
	require.NotZero(t, result.ExecutionID)

	execs, err := c.ExecutionsForQuery(ctx, query.ID)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	require.Equal(t, "nederland id card", execs[0].Query)
}

func TestSearcher_DeliversLatestResult(t *testing.T) {
	srv, _ := newTestServer(t)
	s := NewSearcher(New(srv.URL))
	ctx := context.Background()

	records, err := s.Search(ctx, filter.Spec{})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSearcher_SupersededSearchIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		once.Do(func() {
			close(started)
			<-release
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer backend.Close()

	s := NewSearcher(New(backend.URL))
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(ctx, filter.Spec{Country: "France"})
		firstErr <- err
	}()

	// Let the first search reach the server, then supersede it while it is
	// blocked there.
	<-started
	_, err := s.Search(ctx, filter.Spec{Country: "Japan"})
	require.NoError(t, err)

	close(release)
	require.ErrorIs(t, <-firstErr, ErrSuperseded)
}
