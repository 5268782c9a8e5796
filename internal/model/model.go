package model

import "time"

// PedDetail represents a discovered publicly exposed document observation.
type PedDetail struct {
	ID               int64     `db:"id" json:"id"`
	TransactionID    string    `db:"transaction_id" json:"transaction_id"`
	SessionID        *int64    `db:"session_id" json:"session_id,omitempty"`
	ImageURL         string    `db:"image_url" json:"image_url"`
	PageURL          string    `db:"page_url" json:"page_url"`
	Country          string    `db:"country" json:"country"`
	CountryCode      string    `db:"country_code" json:"country_code"`
	DocumentType     string    `db:"document_type" json:"document_type"`
	DocumentTypeCode string    `db:"document_type_code" json:"document_type_code"`
	State            string    `db:"state" json:"state"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	LoadedToSfm      bool      `db:"loaded_to_sfm" json:"loaded_to_sfm"`

	// SearchedQuery and PodID are request-time display annotations echoed
	// back by the filter engine. They are never persisted.
	SearchedQuery string `db:"-" json:"searched_query,omitempty"`
	PodID         string `db:"-" json:"pod_id,omitempty"`
}

// SearchSession correlates one executed search to the documents it discovered.
type SearchSession struct {
	ID                 int64     `db:"id" json:"id"`
	TransactionID      string    `db:"transaction_id" json:"transaction_id"`
	SearchCountry      string    `db:"search_country" json:"search_country"`
	SearchDocumentType string    `db:"search_document_type" json:"search_document_type"`
	SearchTimestamp    time.Time `db:"search_timestamp" json:"search_timestamp"`
}

// SourceURL is a discovery provenance record, one-to-many with PedDetail
// via the transaction id.
type SourceURL struct {
	ID            int64     `db:"id" json:"id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	ImageURL      string    `db:"image_url" json:"image_url"`
	PageURL       string    `db:"page_url" json:"page_url"`
	DiscoveredAt  time.Time `db:"discovered_at" json:"discovered_at"`
}

// CollectorQuery is a saved search definition that can be re-executed.
type CollectorQuery struct {
	ID                 int64     `db:"id" json:"id"`
	QueryText          string    `db:"query_text" json:"query_text"`
	TargetCountry      string    `db:"target_country" json:"target_country"`
	TargetDocumentType string    `db:"target_document_type" json:"target_document_type"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	LastRunAt          time.Time `db:"last_run_at" json:"last_run_at"`
}

// Execution is a historical run record of a CollectorQuery. EndDate is nil
// while the run is still in progress. Query is denormalized for display;
// deleting the collector query does not delete its executions.
type Execution struct {
	ID             int64      `db:"id" json:"id"`
	QueryID        int64      `db:"query_id" json:"query_id"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date"`
	IsCompleted    bool       `db:"is_completed" json:"is_completed"`
	FoundDocuments int        `db:"found_documents" json:"found_documents"`
	Query          string     `db:"query" json:"query"`
}

// Schema is the SQL schema for all PED tables
const Schema = `
CREATE TABLE IF NOT EXISTS ped_details (
    id SERIAL PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    session_id INTEGER,
    image_url TEXT NOT NULL DEFAULT '',
    page_url TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL,
    country_code TEXT NOT NULL DEFAULT '',
    document_type TEXT NOT NULL,
    document_type_code TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    loaded_to_sfm BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ped_search_sessions (
    id SERIAL PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    search_country TEXT NOT NULL,
    search_document_type TEXT NOT NULL,
    search_timestamp TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ped_source_urls (
    id SERIAL PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    image_url TEXT NOT NULL,
    page_url TEXT NOT NULL,
    discovered_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ped_collector_query (
    id SERIAL PRIMARY KEY,
    query_text TEXT NOT NULL,
    target_country TEXT NOT NULL,
    target_document_type TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    last_run_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ped_executions (
    id SERIAL PRIMARY KEY,
    query_id INTEGER NOT NULL,
    start_date TIMESTAMP NOT NULL DEFAULT NOW(),
    end_date TIMESTAMP,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    found_documents INTEGER NOT NULL DEFAULT 0,
    query TEXT NOT NULL DEFAULT ''
);
`
