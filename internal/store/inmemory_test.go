package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pedtrack/internal/model"
)

func TestInMemoryStore_PedDetailCRUD(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	detail := model.PedDetail{
		TransactionID: "TXN-100",
		Country:       "United States",
		DocumentType:  "Passport",
	}
	require.NoError(t, st.CreatePedDetail(ctx, &detail))
	require.Equal(t, int64(1), detail.ID)
	require.False(t, detail.CreatedAt.IsZero(), "create must assign a timestamp")

	got, err := st.GetPedDetail(ctx, detail.ID)
	require.NoError(t, err)
	require.Equal(t, detail, got)

	got.State = "CA"
	require.NoError(t, st.UpdatePedDetail(ctx, &got))
	updated, err := st.GetPedDetail(ctx, detail.ID)
	require.NoError(t, err)
	require.Equal(t, "CA", updated.State)

	require.NoError(t, st.DeletePedDetail(ctx, detail.ID))
	_, err = st.GetPedDetail(ctx, detail.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	for _, country := range []string{"Japan", "Brazil", "Japan", "India"} {
		d := model.PedDetail{TransactionID: "t", Country: country, DocumentType: "IDs"}
		require.NoError(t, st.CreatePedDetail(ctx, &d))
	}

	records, err := st.ListPedDetails(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, "Japan", records[0].Country)
	require.Equal(t, "Brazil", records[1].Country)
	require.Equal(t, "India", records[3].Country)
}

func TestInMemoryStore_GetByTransactionID(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	for _, txn := range []string{"TXN-A", "TXN-B", "TXN-A"} {
		d := model.PedDetail{TransactionID: txn, Country: "France", DocumentType: "IDs"}
		require.NoError(t, st.CreatePedDetail(ctx, &d))
	}

	matches, err := st.GetPedDetailsByTransactionID(ctx, "TXN-A")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	none, err := st.GetPedDetailsByTransactionID(ctx, "TXN-Z")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestInMemoryStore_IDsAreIndependentPerCollection(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	d := model.PedDetail{TransactionID: "t", Country: "c", DocumentType: "IDs"}
	require.NoError(t, st.CreatePedDetail(ctx, &d))

	q := model.CollectorQuery{QueryText: "nederland id card", TargetCountry: "Netherlands", TargetDocumentType: "IDs"}
	require.NoError(t, st.CreateCollectorQuery(ctx, &q))

	require.Equal(t, int64(1), d.ID)
	require.Equal(t, int64(1), q.ID)
}

func TestInMemoryStore_TouchCollectorQuery(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	q := model.CollectorQuery{QueryText: "israel driver license", TargetCountry: "Israel", TargetDocumentType: "Driving License", IsActive: true}
	require.NoError(t, st.CreateCollectorQuery(ctx, &q))

	runAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.TouchCollectorQuery(ctx, q.ID, runAt))

	got, err := st.GetCollectorQuery(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, runAt, got.LastRunAt)
	require.Equal(t, q.QueryText, got.QueryText, "touch must not replace other fields")

	require.ErrorIs(t, st.TouchCollectorQuery(ctx, 999, runAt), ErrNotFound)
}

func TestInMemoryStore_ExecutionsByQueryID(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	for _, queryID := range []int64{1, 2, 1} {
		e := model.Execution{QueryID: queryID, Query: "q"}
		require.NoError(t, st.CreateExecution(ctx, &e))
	}

	execs, err := st.GetExecutionsByQueryID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, execs, 2)
}

func TestInMemoryStore_UpdateMissingRecordsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	st := NewInMemoryStore()

	require.ErrorIs(t, st.UpdatePedDetail(ctx, &model.PedDetail{ID: 7}), ErrNotFound)
	require.ErrorIs(t, st.UpdateSearchSession(ctx, &model.SearchSession{ID: 7}), ErrNotFound)
	require.ErrorIs(t, st.UpdateSourceURL(ctx, &model.SourceURL{ID: 7}), ErrNotFound)
	require.ErrorIs(t, st.UpdateCollectorQuery(ctx, &model.CollectorQuery{ID: 7}), ErrNotFound)
	require.ErrorIs(t, st.UpdateExecution(ctx, &model.Execution{ID: 7}), ErrNotFound)
	require.ErrorIs(t, st.DeleteSearchSession(ctx, 7), ErrNotFound)
}
