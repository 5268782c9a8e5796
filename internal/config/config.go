package config

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"pedtrack/internal/store/shared"
)

// Config holds the service configuration. Values come from the
// environment (optionally seeded by a .env file); a YAML file named in
// CONFIG_FILE overrides individual fields on top.
type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	DBConfig    string `yaml:"db_config"` // JSON DbProviderConfig for the store factory
	RPSLimit    int    `yaml:"rps_limit"`
	RPSBurst    int    `yaml:"rps_burst"`
}

// Load reads configuration from the environment. Missing values fall back
// to defaults suitable for local development (in-memory store).
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBConfig:    getEnv("DB_CONFIG", defaultDBConfig()),
		RPSLimit:    getEnvInt(logger, "RPS_LIMIT", 100),
		RPSBurst:    getEnvInt(logger, "RPS_BURST", 200),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			logger.Fatal("failed to load config file", zap.String("path", path), zap.Error(err))
		}
		logger.Info("applied config file overrides", zap.String("path", path))
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)
	return cfg
}

// IsDevelopment reports whether raw error detail may be surfaced in
// responses.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal over the existing values so absent fields keep their
	// environment-derived settings.
	return yaml.Unmarshal(data, c)
}

func defaultDBConfig() string {
	b, _ := json.Marshal(shared.DbProviderConfig{
		DbType:       shared.DbTypeMemory,
		ExtraDetails: map[string]interface{}{},
	})
	return string(b)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(logger *zap.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("invalid integer in environment, using fallback",
			zap.String("key", key), zap.String("value", v))
		return fallback
	}
	return n
}
