package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `validate:"required,startswith=:"`
	Env      string `validate:"required"`
	Database DatabaseConfig
	Cache    CacheConfig
	Dataset  DatasetConfig
}

type DatabaseConfig struct {
	Driver     string `validate:"required,oneof=sqlite postgres"`
	URL        string `validate:"required_if=Driver postgres"`
	SQLitePath string `validate:"required_if=Driver sqlite"`
}

type CacheConfig struct {
	TTL        time.Duration `validate:"gte=0"`
	MaxEntries int           `validate:"gte=0"`
}

// DatasetConfig points at an S3-compatible object holding the SQLite
// snapshot. It is only used with the sqlite driver.
type DatasetConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

func (c DatasetConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.Bucket) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != ""
}

func (c Config) IsLocal() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "local")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":3000", "server port")
	flag.Parse()

	return FromEnv(*port)
}

// FromEnv builds the config from the process environment. defaultPort is
// used when PORT is unset.
func FromEnv(defaultPort string) (*Config, error) {
	port := defaultPort
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		port = envPort
	}
	if port != "" && !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:     port,
		Env:      env,
		Database: loadDatabaseConfig(),
		Cache:    loadCacheConfig(),
		Dataset:  loadDatasetConfig(env),
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDatabaseConfig() DatabaseConfig {
	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == "" {
		if url != "" {
			driver = "postgres"
		} else {
			driver = "sqlite"
		}
	}
	return DatabaseConfig{
		Driver:     driver,
		URL:        url,
		SQLitePath: firstNonEmpty(strings.TrimSpace(os.Getenv("SQLITE_PATH")), "data/data.db"),
	}
}

func loadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		TTL:        time.Minute,
		MaxEntries: 256,
	}
	if raw := strings.TrimSpace(os.Getenv("CACHE_TTL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.TTL = d
		}
	}
	if raw := strings.TrimSpace(os.Getenv("CACHE_MAX_ENTRIES")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.MaxEntries = n
		}
	}
	return cfg
}

func loadDatasetConfig(env string) DatasetConfig {
	cfg := DatasetConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("DATASET_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("DATASET_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("DATASET_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("DATASET_S3_SECRET_KEY")),
		Bucket:    strings.TrimSpace(os.Getenv("DATASET_S3_BUCKET")),
		Object:    firstNonEmpty(strings.TrimSpace(os.Getenv("DATASET_S3_OBJECT")), "data.db"),
		UseSSL:    resolveDatasetUseSSL(env),
	}
	if strings.EqualFold(env, "local") {
		applyLocalDatasetDefaults(&cfg)
	}
	return cfg
}

func resolveDatasetUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	raw := strings.TrimSpace(os.Getenv("DATASET_S3_USE_SSL"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
