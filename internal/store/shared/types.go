package shared

import "errors"

// ErrNotFound is returned when no row exists for the requested id or
// transaction id.
var ErrNotFound = errors.New("record not found")

// DbType identifies a store backend.
type DbType string

const (
	DbTypeMemory   DbType = "memory"
	DbTypePostgres DbType = "postgres"
)

func (t DbType) String() string {
	return string(t)
}

// IsValid reports whether the type names a supported backend.
func (t DbType) IsValid() bool {
	switch t {
	case DbTypeMemory, DbTypePostgres:
		return true
	}
	return false
}

// DbProviderConfig is the JSON store configuration carried in the
// DB_CONFIG environment variable.
type DbProviderConfig struct {
	DbType       DbType                 `json:"db_type"`
	ExtraDetails map[string]interface{} `json:"extra_details"`
}
