package store

import (
	"encoding/json"
	"fmt"

	"pedtrack/internal/store/postgres"
	"pedtrack/internal/store/shared"
	"pedtrack/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProviderFactory defines the interface for creating store providers
type ProviderFactory interface {
	CreateStore(configJSON string) (Store, error)
}

// StoreFactory implements ProviderFactory for creating store providers
type StoreFactory struct {
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
}

func NewStoreFactory(logger *zap.Logger, tel *telemetry.Telemetry) *StoreFactory {
	return &StoreFactory{
		logger:    logger.Named("factory"),
		telemetry: tel,
	}
}

func (f *StoreFactory) CreateStore(configJSON string) (Store, error) {
	var config shared.DbProviderConfig
	f.logger.Info("parsing store configuration", zap.String("configJSON", configJSON))

	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		return nil, fmt.Errorf("failed to parse store configuration JSON: %w", err)
	}

	f.logger.Info("creating store provider",
		zap.String("db_type", config.DbType.String()),
		zap.Any("extra_details", config.ExtraDetails))

	if !config.DbType.IsValid() {
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}

	var telemetryMeter metric.Meter
	if f.telemetry != nil {
		telemetryMeter = f.telemetry.Meter
	}

	switch config.DbType {
	case shared.DbTypePostgres:
		return postgres.NewStore(config, f.logger, telemetryMeter)
	case shared.DbTypeMemory:
		f.logger.Info("Using InMemoryStore for DB")
		return NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}
}
