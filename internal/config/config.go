package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers understood by the object store gateway.
const (
	DriverMinIO  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// ReservedCategory is the namespace that holds folder backups.
const ReservedCategory = "backups"

// Config aggregates runtime configuration for the document storage API.
type Config struct {
	Server      ServerConfig
	ObjectStore ObjectStoreConfig
	Documents   DocumentsConfig
	Auth        AuthConfig
	Metrics     MetricsConfig
	Log         LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadBytes int64
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ObjectStoreConfig carries object store connection and bucket information.
// Credentials are resolved once at process start.
type ObjectStoreConfig struct {
	Driver          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	UsePathStyle    bool
	CreateBucket    bool
}

// DocumentsConfig drives key naming and the per-call limits of the services.
type DocumentsConfig struct {
	Category           string
	DisplayURLTemplate string
	PresignTTL         time.Duration
	ObjectTimeout      time.Duration
	ListPageSize       int
	DeleteBatchSize    int
}

// AuthConfig groups service-token settings.
type AuthConfig struct {
	ServiceTokenSecret string
	Issuer             string
	ServiceTokenTTL    time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:           getString("DOCSTORE_API_HOST", "0.0.0.0"),
			Port:           getInt("DOCSTORE_API_PORT", 8080),
			ReadTimeout:    getDuration("DOCSTORE_API_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDuration("DOCSTORE_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:    getDuration("DOCSTORE_API_IDLE_TIMEOUT", 60*time.Second),
			MaxUploadBytes: int64(getInt("DOCSTORE_MAX_UPLOAD_BYTES", 25*1024*1024)),
		},
		ObjectStore: ObjectStoreConfig{
			Driver:          strings.ToLower(getString("DOCSTORE_STORE_DRIVER", DriverMinIO)),
			Endpoint:        getString("DOCSTORE_STORE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("DOCSTORE_STORE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getString("DOCSTORE_STORE_SECRET_KEY", "minioadmin"),
			Bucket:          getString("DOCSTORE_STORE_BUCKET", "brokerage-documents"),
			UseSSL:          getBool("DOCSTORE_STORE_USE_SSL", false),
			Region:          getString("DOCSTORE_STORE_REGION", "us-east-1"),
			UsePathStyle:    getBool("DOCSTORE_STORE_PATH_STYLE", true),
			CreateBucket:    getBool("DOCSTORE_STORE_CREATE_BUCKET", false),
		},
		Documents: DocumentsConfig{
			Category:           strings.Trim(getString("DOCSTORE_CATEGORY", "licenses"), "/"),
			DisplayURLTemplate: getString("DOCSTORE_DISPLAY_URL_TEMPLATE", "/v1/documents/{owner_id}/{file_name}"),
			PresignTTL:         getDuration("DOCSTORE_PRESIGN_TTL", time.Hour),
			ObjectTimeout:      getDuration("DOCSTORE_OBJECT_TIMEOUT", 30*time.Second),
			ListPageSize:       getInt("DOCSTORE_LIST_PAGE_SIZE", 1000),
			DeleteBatchSize:    getInt("DOCSTORE_DELETE_BATCH", 1000),
		},
		Auth: AuthConfig{
			ServiceTokenSecret: getString("DOCSTORE_SERVICE_TOKEN_SECRET", ""),
			Issuer:             getString("DOCSTORE_SERVICE_TOKEN_ISSUER", "docstore"),
			ServiceTokenTTL:    getDuration("DOCSTORE_SERVICE_TOKEN_TTL", 24*time.Hour),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("DOCSTORE_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: getString("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the services cannot operate with.
func (c Config) Validate() error {
	var errs []error

	switch c.ObjectStore.Driver {
	case DriverMinIO, DriverS3, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.ObjectStore.Driver))
	}
	if c.ObjectStore.Driver != DriverMemory && c.ObjectStore.Bucket == "" {
		errs = append(errs, errors.New("store bucket is required"))
	}

	category := c.Documents.Category
	switch {
	case category == "":
		errs = append(errs, errors.New("document category is required"))
	case category == ReservedCategory:
		errs = append(errs, fmt.Errorf("document category %q is reserved for backups", category))
	case strings.Contains(category, "/"):
		errs = append(errs, fmt.Errorf("document category %q must be a single path segment", category))
	}

	if c.Documents.ListPageSize < 1 || c.Documents.ListPageSize > 1000 {
		errs = append(errs, fmt.Errorf("list page size must be within 1..1000, got %d", c.Documents.ListPageSize))
	}
	if c.Documents.DeleteBatchSize < 1 || c.Documents.DeleteBatchSize > 1000 {
		errs = append(errs, fmt.Errorf("delete batch size must be within 1..1000, got %d", c.Documents.DeleteBatchSize))
	}
	if c.Documents.PresignTTL <= 0 {
		errs = append(errs, errors.New("presign ttl must be positive"))
	}
	if c.Auth.ServiceTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("service token ttl must be positive, got %s", c.Auth.ServiceTokenTTL))
	}

	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
