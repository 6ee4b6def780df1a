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

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"uidai-pipeline/internal/cache"
	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/logger"
	"uidai-pipeline/internal/model"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Server   ServerConfig
	Store    StoreConfig
	Export   ExportConfig
	Cache    CacheConfig
	LogLevel string
	RowLimit int
}

// DataConfig holds where the source files are and how they are read
type DataConfig struct {
	Dir          string // empty: fixed filenames relative to the working directory
	DatasetsFile string
	Datasets     map[model.Kind]model.DatasetSpec
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// StoreConfig holds the load history database settings
type StoreConfig struct {
	Path string
}

// ExportConfig holds file output settings
type ExportConfig struct {
	Dir       string
	UploadDir string
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	TTL             time.Duration
	RefreshSchedule string
	WatchDataDir    bool
}

// datasetsFile is the YAML shape of DATASETS_FILE
type datasetsFile struct {
	Datasets []model.DatasetSpec `yaml:"datasets"`
}

// Load reads an optional .env file and the environment, then validates the result
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ConfigInvalid(err.Error()), "failed to read .env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	rowLimit, err := getEnvInt("ROW_LIMIT", 5000)
	if err != nil {
		return nil, err
	}
	watch, err := getEnvBool("WATCH_DATA_DIR", true)
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvDuration("CACHE_TTL", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Data: DataConfig{
			Dir:          strings.TrimSpace(os.Getenv("UIDAI_DATA_DIR")),
			DatasetsFile: os.Getenv("DATASETS_FILE"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Store: StoreConfig{
			Path: getEnvOrDefault("PIPELINE_DB", "pipeline.db"),
		},
		Export: ExportConfig{
			Dir:       getEnvOrDefault("EXPORT_DIR", "exports"),
			UploadDir: getEnvOrDefault("UPLOAD_DIR", filepath.Join(os.TempDir(), "uidai-uploads")),
		},
		Cache: CacheConfig{
			TTL:             ttl,
			RefreshSchedule: strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE")),
			WatchDataDir:    watch,
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		RowLimit: rowLimit,
	}

	config.Data.Datasets, err = LoadDatasets(config.Data.DatasetsFile)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, apperrors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadDatasets returns the built-in dataset specs, overridden by the YAML file
// at path when one is given. Fields left empty in the file keep their defaults.
func LoadDatasets(path string) (map[model.Kind]model.DatasetSpec, error) {
	datasets := model.DefaultDatasets()
	if path == "" {
		return datasets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("failed to read datasets file %s: %v", path, err))
	}
	var file datasetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("failed to parse datasets file %s: %v", path, err))
	}

	for _, override := range file.Datasets {
		kind, err := model.ParseKind(string(override.Kind))
		if err != nil || !kind.IsSource() {
			return nil, apperrors.ConfigInvalid(fmt.Sprintf("datasets file %s: unknown kind %q", path, override.Kind))
		}
		spec := datasets[kind]
		if len(override.Files) > 0 {
			spec.Files = override.Files
		}
		if override.Pattern != "" {
			spec.Pattern = override.Pattern
		}
		if len(override.MeasureColumns) > 0 {
			spec.MeasureColumns = override.MeasureColumns
		}
		if override.TotalName != "" {
			spec.TotalName = override.TotalName
		}
		if override.DateFormat != "" {
			spec.DateFormat = override.DateFormat
		}
		datasets[kind] = spec
	}
	return datasets, nil
}

// Validate checks settings that would otherwise fail late
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ConfigInvalid(err.Error())
	}
	if c.RowLimit <= 0 {
		return apperrors.ConfigInvalid("ROW_LIMIT must be positive")
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		return apperrors.ConfigInvalid(fmt.Sprintf("PORT %q is not a valid port", c.Server.Port))
	}
	if c.Store.Path == "" {
		return apperrors.ConfigInvalid("PIPELINE_DB is required")
	}
	if c.Cache.RefreshSchedule != "" {
		if err := cache.ValidateSchedule(c.Cache.RefreshSchedule); err != nil {
			return apperrors.ConfigInvalid(err.Error())
		}
	}

	totals := make(map[string]model.Kind)
	for _, kind := range model.SourceKinds() {
		spec, ok := c.Data.Datasets[kind]
		if !ok {
			return apperrors.ConfigInvalid(fmt.Sprintf("no dataset configured for %s", kind))
		}
		if err := spec.Validate(); err != nil {
			return apperrors.ConfigInvalid(err.Error())
		}
		if other, dup := totals[spec.TotalName]; dup {
			return apperrors.ConfigInvalid(fmt.Sprintf("%s and %s share total column %q", other, kind, spec.TotalName))
		}
		totals[spec.TotalName] = kind
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, apperrors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, apperrors.ConfigInvalid(fmt.Sprintf("%s must be a duration, got %q", key, value))
	}
	return d, nil
}
