// Package config loads canteiro settings from a YAML file with CANTEIRO_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Root         string        `yaml:"root"`
	BaseURL      string        `yaml:"base_url"`
	PhotosBucket string        `yaml:"photos_bucket"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl"`
}

type AuthConfig struct {
	Secret      string        `yaml:"secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	SessionFile string        `yaml:"session_file"`
}

type BulkConfig struct {
	UnitBatchSize    int `yaml:"unit_batch_size"`
	StageBatchSize   int `yaml:"stage_batch_size"`
	MaxUnitsPerFloor int `yaml:"max_units_per_floor"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type MetricsConfig struct {
	// Textfile, when set, receives the metrics registry on exit in the
	// node_exporter textfile format.
	Textfile string `yaml:"textfile"`
}

type Config struct {
	DB      DBConfig      `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Bulk    BulkConfig    `yaml:"bulk"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DefaultDir is where canteiro keeps its state: ~/.canteiro, or ./.canteiro
// when the home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".canteiro"
	}
	return filepath.Join(home, ".canteiro")
}

// Default returns a Config with every value set, rooted at dir.
func Default(dir string) Config {
	return Config{
		DB: DBConfig{Path: filepath.Join(dir, "canteiro.db")},
		Storage: StorageConfig{
			Root:         filepath.Join(dir, "objects"),
			BaseURL:      "http://localhost:8080/objects",
			PhotosBucket: "unit-stage-photos",
			SignedURLTTL: time.Hour,
		},
		Auth: AuthConfig{
			Secret:      "canteiro-dev-secret",
			TokenTTL:    30 * 24 * time.Hour,
			SessionFile: filepath.Join(dir, "session"),
		},
		Bulk: BulkConfig{
			UnitBatchSize:    200,
			StageBatchSize:   500,
			MaxUnitsPerFloor: 50,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Path returns the config file location: $CANTEIRO_CONFIG or
// DefaultDir()/config.yaml.
func Path() string {
	if v := os.Getenv("CANTEIRO_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default(DefaultDir())
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DB.Path, "CANTEIRO_DB_PATH")
	setString(&cfg.Storage.Root, "CANTEIRO_STORAGE_ROOT")
	setString(&cfg.Storage.BaseURL, "CANTEIRO_STORAGE_BASE_URL")
	setString(&cfg.Storage.PhotosBucket, "CANTEIRO_STORAGE_PHOTOS_BUCKET")
	setDuration(&cfg.Storage.SignedURLTTL, "CANTEIRO_STORAGE_SIGNED_URL_TTL")
	setString(&cfg.Auth.Secret, "CANTEIRO_AUTH_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "CANTEIRO_AUTH_TOKEN_TTL")
	setString(&cfg.Auth.SessionFile, "CANTEIRO_AUTH_SESSION_FILE")
	setInt(&cfg.Bulk.UnitBatchSize, "CANTEIRO_BULK_UNIT_BATCH_SIZE")
	setInt(&cfg.Bulk.StageBatchSize, "CANTEIRO_BULK_STAGE_BATCH_SIZE")
	setInt(&cfg.Bulk.MaxUnitsPerFloor, "CANTEIRO_BULK_MAX_UNITS_PER_FLOOR")
	setString(&cfg.Log.Level, "CANTEIRO_LOG_LEVEL")
	setString(&cfg.Log.Format, "CANTEIRO_LOG_FORMAT")
	setString(&cfg.Metrics.Textfile, "CANTEIRO_METRICS_TEXTFILE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setInt ignores unparsable or non-positive values.
func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DB.Path) == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if strings.TrimSpace(c.Storage.Root) == "" {
		errs = append(errs, errors.New("storage.root is required"))
	}
	if strings.TrimSpace(c.Storage.PhotosBucket) == "" {
		errs = append(errs, errors.New("storage.photos_bucket is required"))
	}
	if c.Storage.SignedURLTTL <= 0 {
		errs = append(errs, errors.New("storage.signed_url_ttl must be positive"))
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth.secret is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Bulk.UnitBatchSize <= 0 || c.Bulk.StageBatchSize <= 0 || c.Bulk.MaxUnitsPerFloor <= 0 {
		errs = append(errs, errors.New("bulk sizes must be positive"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
