// Package store defines the repository interfaces backing the record
// store API, and a factory that builds a concrete provider from a JSON
// configuration. Handlers and the filter engine are storage-agnostic:
// tests use the in-memory provider, production uses Postgres.
package store

import (
	"context"
	"time"

	"pedtrack/internal/model"
	"pedtrack/internal/store/shared"
)

// Re-export shared types for convenience
type DbType = shared.DbType
type DbProviderConfig = shared.DbProviderConfig

// Re-export constants
const (
	DbTypeMemory   = shared.DbTypeMemory
	DbTypePostgres = shared.DbTypePostgres
	// Add more database types here as you implement them
)

// ErrNotFound is returned when no row exists for the requested key.
var ErrNotFound = shared.ErrNotFound

type PedDetailStore interface {
	ListPedDetails(ctx context.Context) ([]model.PedDetail, error)
	GetPedDetail(ctx context.Context, id int64) (model.PedDetail, error)
	GetPedDetailsByTransactionID(ctx context.Context, transactionID string) ([]model.PedDetail, error)
	CreatePedDetail(ctx context.Context, detail *model.PedDetail) error
	UpdatePedDetail(ctx context.Context, detail *model.PedDetail) error
	DeletePedDetail(ctx context.Context, id int64) error
}

type SearchSessionStore interface {
	ListSearchSessions(ctx context.Context) ([]model.SearchSession, error)
	GetSearchSession(ctx context.Context, id int64) (model.SearchSession, error)
	GetSearchSessionsByTransactionID(ctx context.Context, transactionID string) ([]model.SearchSession, error)
	CreateSearchSession(ctx context.Context, session *model.SearchSession) error
	UpdateSearchSession(ctx context.Context, session *model.SearchSession) error
	DeleteSearchSession(ctx context.Context, id int64) error
}

type SourceURLStore interface {
	ListSourceURLs(ctx context.Context) ([]model.SourceURL, error)
	GetSourceURL(ctx context.Context, id int64) (model.SourceURL, error)
	GetSourceURLsByTransactionID(ctx context.Context, transactionID string) ([]model.SourceURL, error)
	CreateSourceURL(ctx context.Context, src *model.SourceURL) error
	UpdateSourceURL(ctx context.Context, src *model.SourceURL) error
	DeleteSourceURL(ctx context.Context, id int64) error
}

type CollectorQueryStore interface {
	ListCollectorQueries(ctx context.Context) ([]model.CollectorQuery, error)
	GetCollectorQuery(ctx context.Context, id int64) (model.CollectorQuery, error)
	CreateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error
	UpdateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error
	DeleteCollectorQuery(ctx context.Context, id int64) error
	// TouchCollectorQuery stamps last_run_at without touching other fields.
	TouchCollectorQuery(ctx context.Context, id int64, runAt time.Time) error
}

type ExecutionStore interface {
	ListExecutions(ctx context.Context) ([]model.Execution, error)
	GetExecution(ctx context.Context, id int64) (model.Execution, error)
	GetExecutionsByQueryID(ctx context.Context, queryID int64) ([]model.Execution, error)
	CreateExecution(ctx context.Context, exec *model.Execution) error
	UpdateExecution(ctx context.Context, exec *model.Execution) error
	DeleteExecution(ctx context.Context, id int64) error
}

// Store aggregates the per-entity repositories.
type Store interface {
	PedDetailStore
	SearchSessionStore
	SourceURLStore
	CollectorQueryStore
	ExecutionStore
}
