// Package postgres implements the record store on PostgreSQL. Every
// operation runs behind a circuit breaker with backoff retries so a
// flapping database degrades into fast 500s instead of piling up
// connections.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	_ "github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"pedtrack/internal/model"
	"pedtrack/internal/store/shared"
)

type Store struct {
	db     *sql.DB
	logger *zap.Logger
	cb     *gobreaker.CircuitBreaker
}

func NewStore(config shared.DbProviderConfig, logger *zap.Logger, meter metric.Meter) (*Store, error) {
	pgLogger := logger.Named("postgres")

	connStr, ok := config.ExtraDetails["conn_str"].(string)
	if !ok {
		return nil, fmt.Errorf("conn_str is required for Postgres store")
	}
	pgLogger.Info("initializing Postgres store")

	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		pgLogger.Error("failed to open Postgres connection", zap.Error(err))
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}

	if err := dbConn.Ping(); err != nil {
		pgLogger.Error("failed to ping Postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	// Automatically create tables if they do not exist
	if _, err := dbConn.Exec(model.Schema); err != nil {
		pgLogger.Error("failed to create initial tables", zap.Error(err))
		return nil, fmt.Errorf("failed to create initial tables: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PostgresDB",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})

	pgLogger.Info("Postgres store initialized successfully")
	return &Store{
		db:     dbConn,
		logger: pgLogger,
		cb:     cb,
	}, nil
}

// do runs fn behind the circuit breaker with backoff retries. ErrNotFound
// is a domain answer, not a store failure, so it neither trips the breaker
// nor triggers a retry.
func (s *Store) do(op string, fn func() error) error {
	var opErr error
	_ = retry.Do(
		func() error {
			opErr = nil
			_, err := s.cb.Execute(func() (interface{}, error) {
				if err := fn(); err != nil {
					if errors.Is(err, shared.ErrNotFound) {
						opErr = err
						return nil, nil
					}
					return nil, err
				}
				return nil, nil
			})
			if err != nil {
				opErr = err
			}
			return err
		},
		retry.Attempts(3),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying "+op, zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	return opErr
}

func scanOne(row *sql.Row, dest ...interface{}) error {
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// PedDetails

const pedDetailColumns = `id, transaction_id, session_id, image_url, page_url, country, country_code,
	document_type, document_type_code, state, created_at, loaded_to_sfm`

func scanPedDetails(rows *sql.Rows) ([]model.PedDetail, error) {
	var out []model.PedDetail
	for rows.Next() {
		var d model.PedDetail
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.SessionID, &d.ImageURL, &d.PageURL,
			&d.Country, &d.CountryCode, &d.DocumentType, &d.DocumentTypeCode,
			&d.State, &d.CreatedAt, &d.LoadedToSfm); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListPedDetails(ctx context.Context) ([]model.PedDetail, error) {
	var result []model.PedDetail
	err := s.do("ListPedDetails", func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+pedDetailColumns+` FROM ped_details ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanPedDetails(rows)
		return err
	})
	return result, err
}

func (s *Store) GetPedDetail(ctx context.Context, id int64) (model.PedDetail, error) {
	var d model.PedDetail
	err := s.do("GetPedDetail", func() error {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+pedDetailColumns+` FROM ped_details WHERE id = $1`, id)
		return scanOne(row, &d.ID, &d.TransactionID, &d.SessionID, &d.ImageURL, &d.PageURL,
			&d.Country, &d.CountryCode, &d.DocumentType, &d.DocumentTypeCode,
			&d.State, &d.CreatedAt, &d.LoadedToSfm)
	})
	return d, err
}

func (s *Store) GetPedDetailsByTransactionID(ctx context.Context, transactionID string) ([]model.PedDetail, error) {
	var result []model.PedDetail
	err := s.do("GetPedDetailsByTransactionID", func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+pedDetailColumns+` FROM ped_details WHERE transaction_id = $1 ORDER BY id ASC`,
			transactionID)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanPedDetails(rows)
		return err
	})
	return result, err
}

func (s *Store) CreatePedDetail(ctx context.Context, detail *model.PedDetail) error {
	return s.do("CreatePedDetail", func() error {
		return scanOne(s.db.QueryRowContext(ctx, `
			INSERT INTO ped_details (transaction_id, session_id, image_url, page_url, country,
				country_code, document_type, document_type_code, state, loaded_to_sfm)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at`,
			detail.TransactionID, detail.SessionID, detail.ImageURL, detail.PageURL,
			detail.Country, detail.CountryCode, detail.DocumentType, detail.DocumentTypeCode,
			detail.State, detail.LoadedToSfm,
		), &detail.ID, &detail.CreatedAt)
	})
}

func (s *Store) UpdatePedDetail(ctx context.Context, detail *model.PedDetail) error {
	return s.do("UpdatePedDetail", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE ped_details
			SET transaction_id = $1, session_id = $2, image_url = $3, page_url = $4,
				country = $5, country_code = $6, document_type = $7,
				document_type_code = $8, state = $9, loaded_to_sfm = $10
			WHERE id = $11`,
			detail.TransactionID, detail.SessionID, detail.ImageURL, detail.PageURL,
			detail.Country, detail.CountryCode, detail.DocumentType, detail.DocumentTypeCode,
			detail.State, detail.LoadedToSfm, detail.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) DeletePedDetail(ctx context.Context, id int64) error {
	return s.do("DeletePedDetail", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ped_details WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// SearchSessions

func scanSearchSessions(rows *sql.Rows) ([]model.SearchSession, error) {
	var out []model.SearchSession
	for rows.Next() {
		var ss model.SearchSession
		if err := rows.Scan(&ss.ID, &ss.TransactionID, &ss.SearchCountry,
			&ss.SearchDocumentType, &ss.SearchTimestamp); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *Store) ListSearchSessions(ctx context.Context) ([]model.SearchSession, error) {
	var result []model.SearchSession
	err := s.do("ListSearchSessions", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, transaction_id, search_country, search_document_type, search_timestamp
			FROM ped_search_sessions ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanSearchSessions(rows)
		return err
	})
	return result, err
}

func (s *Store) GetSearchSession(ctx context.Context, id int64) (model.SearchSession, error) {
	var ss model.SearchSession
	err := s.do("GetSearchSession", func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, transaction_id, search_country, search_document_type, search_timestamp
			FROM ped_search_sessions WHERE id = $1`, id)
		return scanOne(row, &ss.ID, &ss.TransactionID, &ss.SearchCountry,
			&ss.SearchDocumentType, &ss.SearchTimestamp)
	})
	return ss, err
}

func (s *Store) GetSearchSessionsByTransactionID(ctx context.Context, transactionID string) ([]model.SearchSession, error) {
	var result []model.SearchSession
	err := s.do("GetSearchSessionsByTransactionID", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, transaction_id, search_country, search_document_type, search_timestamp
			FROM ped_search_sessions WHERE transaction_id = $1 ORDER BY id ASC`, transactionID)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanSearchSessions(rows)
		return err
	})
	return result, err
}

func (s *Store) CreateSearchSession(ctx context.Context, session *model.SearchSession) error {
	return s.do("CreateSearchSession", func() error {
		return scanOne(s.db.QueryRowContext(ctx, `
			INSERT INTO ped_search_sessions (transaction_id, search_country, search_document_type)
			VALUES ($1, $2, $3)
			RETURNING id, search_timestamp`,
			session.TransactionID, session.SearchCountry, session.SearchDocumentType,
		), &session.ID, &session.SearchTimestamp)
	})
}

func (s *Store) UpdateSearchSession(ctx context.Context, session *model.SearchSession) error {
	return s.do("UpdateSearchSession", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE ped_search_sessions
			SET transaction_id = $1, search_country = $2, search_document_type = $3
			WHERE id = $4`,
			session.TransactionID, session.SearchCountry, session.SearchDocumentType, session.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) DeleteSearchSession(ctx context.Context, id int64) error {
	return s.do("DeleteSearchSession", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ped_search_sessions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// SourceURLs

func scanSourceURLs(rows *sql.Rows) ([]model.SourceURL, error) {
	var out []model.SourceURL
	for rows.Next() {
		var su model.SourceURL
		if err := rows.Scan(&su.ID, &su.TransactionID, &su.ImageURL, &su.PageURL, &su.DiscoveredAt); err != nil {
			return nil, err
		}
		out = append(out, su)
	}
	return out, rows.Err()
}

func (s *Store) ListSourceURLs(ctx context.Context) ([]model.SourceURL, error) {
	var result []model.SourceURL
	err := s.do("ListSourceURLs", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, transaction_id, image_url, page_url, discovered_at
			FROM ped_source_urls ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanSourceURLs(rows)
		return err
	})
	return result, err
}

func (s *Store) GetSourceURL(ctx context.Context, id int64) (model.SourceURL, error) {
	var su model.SourceURL
	err := s.do("GetSourceURL", func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, transaction_id, image_url, page_url, discovered_at
			FROM ped_source_urls WHERE id = $1`, id)
		return scanOne(row, &su.ID, &su.TransactionID, &su.ImageURL, &su.PageURL, &su.DiscoveredAt)
	})
	return su, err
}

func (s *Store) GetSourceURLsByTransactionID(ctx context.Context, transactionID string) ([]model.SourceURL, error) {
	var result []model.SourceURL
	err := s.do("GetSourceURLsByTransactionID", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, transaction_id, image_url, page_url, discovered_at
			FROM ped_source_urls WHERE transaction_id = $1 ORDER BY id ASC`, transactionID)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanSourceURLs(rows)
		return err
	})
	return result, err
}

func (s *Store) CreateSourceURL(ctx context.Context, src *model.SourceURL) error {
	return s.do("CreateSourceURL", func() error {
		return scanOne(s.db.QueryRowContext(ctx, `
			INSERT INTO ped_source_urls (transaction_id, image_url, page_url)
			VALUES ($1, $2, $3)
			RETURNING id, discovered_at`,
			src.TransactionID, src.ImageURL, src.PageURL,
		), &src.ID, &src.DiscoveredAt)
	})
}

func (s *Store) UpdateSourceURL(ctx context.Context, src *model.SourceURL) error {
	return s.do("UpdateSourceURL", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE ped_source_urls
			SET transaction_id = $1, image_url = $2, page_url = $3
			WHERE id = $4`,
			src.TransactionID, src.ImageURL, src.PageURL, src.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) DeleteSourceURL(ctx context.Context, id int64) error {
	return s.do("DeleteSourceURL", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ped_source_urls WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// CollectorQueries

func scanCollectorQueries(rows *sql.Rows) ([]model.CollectorQuery, error) {
	var out []model.CollectorQuery
	for rows.Next() {
		var q model.CollectorQuery
		if err := rows.Scan(&q.ID, &q.QueryText, &q.TargetCountry, &q.TargetDocumentType,
			&q.IsActive, &q.CreatedAt, &q.LastRunAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) ListCollectorQueries(ctx context.Context) ([]model.CollectorQuery, error) {
	var result []model.CollectorQuery
	err := s.do("ListCollectorQueries", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, query_text, target_country, target_document_type, is_active, created_at, last_run_at
			FROM ped_collector_query ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanCollectorQueries(rows)
		return err
	})
	return result, err
}

func (s *Store) GetCollectorQuery(ctx context.Context, id int64) (model.CollectorQuery, error) {
	var q model.CollectorQuery
	err := s.do("GetCollectorQuery", func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, query_text, target_country, target_document_type, is_active, created_at, last_run_at
			FROM ped_collector_query WHERE id = $1`, id)
		return scanOne(row, &q.ID, &q.QueryText, &q.TargetCountry, &q.TargetDocumentType,
			&q.IsActive, &q.CreatedAt, &q.LastRunAt)
	})
	return q, err
}

func (s *Store) CreateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error {
	return s.do("CreateCollectorQuery", func() error {
		return scanOne(s.db.QueryRowContext(ctx, `
			INSERT INTO ped_collector_query (query_text, target_country, target_document_type, is_active)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, last_run_at`,
			query.QueryText, query.TargetCountry, query.TargetDocumentType, query.IsActive,
		), &query.ID, &query.CreatedAt, &query.LastRunAt)
	})
}

func (s *Store) UpdateCollectorQuery(ctx context.Context, query *model.CollectorQuery) error {
	return s.do("UpdateCollectorQuery", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE ped_collector_query
			SET query_text = $1, target_country = $2, target_document_type = $3,
				is_active = $4, last_run_at = $5
			WHERE id = $6`,
			query.QueryText, query.TargetCountry, query.TargetDocumentType,
			query.IsActive, query.LastRunAt, query.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) DeleteCollectorQuery(ctx context.Context, id int64) error {
	return s.do("DeleteCollectorQuery", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ped_collector_query WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) TouchCollectorQuery(ctx context.Context, id int64, runAt time.Time) error {
	return s.do("TouchCollectorQuery", func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE ped_collector_query SET last_run_at = $1 WHERE id = $2`, runAt, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// Executions

func scanExecutions(rows *sql.Rows) ([]model.Execution, error) {
	var out []model.Execution
	for rows.Next() {
		var e model.Execution
		if err := rows.Scan(&e.ID, &e.QueryID, &e.StartDate, &e.EndDate,
			&e.IsCompleted, &e.FoundDocuments, &e.Query); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListExecutions(ctx context.Context) ([]model.Execution, error) {
	var result []model.Execution
	err := s.do("ListExecutions", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, query_id, start_date, end_date, is_completed, found_documents, query
			FROM ped_executions ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanExecutions(rows)
		return err
	})
	return result, err
}

func (s *Store) GetExecution(ctx context.Context, id int64) (model.Execution, error) {
	var e model.Execution
	err := s.do("GetExecution", func() error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, query_id, start_date, end_date, is_completed, found_documents, query
			FROM ped_executions WHERE id = $1`, id)
		return scanOne(row, &e.ID, &e.QueryID, &e.StartDate, &e.EndDate,
			&e.IsCompleted, &e.FoundDocuments, &e.Query)
	})
	return e, err
}

func (s *Store) GetExecutionsByQueryID(ctx context.Context, queryID int64) ([]model.Execution, error) {
	var result []model.Execution
	err := s.do("GetExecutionsByQueryID", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, query_id, start_date, end_date, is_completed, found_documents, query
			FROM ped_executions WHERE query_id = $1 ORDER BY id ASC`, queryID)
		if err != nil {
			return err
		}
		defer rows.Close()
		result, err = scanExecutions(rows)
		return err
	})
	return result, err
}

func (s *Store) CreateExecution(ctx context.Context, exec *model.Execution) error {
	return s.do("CreateExecution", func() error {
		return scanOne(s.db.QueryRowContext(ctx, `
			INSERT INTO ped_executions (query_id, end_date, is_completed, found_documents, query)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, start_date`,
			exec.QueryID, exec.EndDate, exec.IsCompleted, exec.FoundDocuments, exec.Query,
		), &exec.ID, &exec.StartDate)
	})
}

func (s *Store) UpdateExecution(ctx context.Context, exec *model.Execution) error {
	return s.do("UpdateExecution", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE ped_executions
			SET query_id = $1, start_date = $2, end_date = $3, is_completed = $4,
				found_documents = $5, query = $6
			WHERE id = $7`,
			exec.QueryID, exec.StartDate, exec.EndDate, exec.IsCompleted,
			exec.FoundDocuments, exec.Query, exec.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *Store) DeleteExecution(ctx context.Context, id int64) error {
	return s.do("DeleteExecution", func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM ped_executions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

// requireRow maps "zero rows affected" to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return nil
}
