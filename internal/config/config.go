package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sensor-anomaly-service/internal/core/domain"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
	ShutdownGrace  time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

// StorageConfig selects where the two output artifacts are written. Both names
// are fixed per deployment, so concurrent uploads overwrite each other.
type StorageConfig struct {
	Backend      string // "local" or "minio"
	Dir          string
	AnnotatedCSV string
	Plot         string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type AnalysisConfig struct {
	PreviewRows int
	Seed        int64
}

const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("SERVER_MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("SERVER_SHUTDOWN_GRACE", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("STORAGE_BACKEND", StorageLocal)
	v.SetDefault("STORAGE_DIR", "static")
	v.SetDefault("STORAGE_ANNOTATED_CSV", domain.DefaultAnnotatedCSVName)
	v.SetDefault("STORAGE_PLOT", domain.DefaultPlotName)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "sensor-anomaly")
	v.SetDefault("MINIO_PREFIX", "")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "sensor_anomaly")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("ANALYSIS_PREVIEW_ROWS", 20)
	v.SetDefault("ANALYSIS_SEED", 42)

	// Env
	v.AutomaticEnv()

	// PORT is what PaaS hosts set.
	if err := v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind port env: %w", err)
	}

	grace, err := time.ParseDuration(v.GetString("SERVER_SHUTDOWN_GRACE"))
	if err != nil {
		grace = 10 * time.Second
	}
	lifetime, err := time.ParseDuration(v.GetString("DATABASE_CONN_MAX_LIFETIME"))
	if err != nil {
		lifetime = 30 * time.Minute
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			MaxUploadBytes: v.GetInt64("SERVER_MAX_UPLOAD_BYTES"),
			ShutdownGrace:  grace,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Storage: StorageConfig{
			Backend:      v.GetString("STORAGE_BACKEND"),
			Dir:          v.GetString("STORAGE_DIR"),
			AnnotatedCSV: v.GetString("STORAGE_ANNOTATED_CSV"),
			Plot:         v.GetString("STORAGE_PLOT"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Prefix:    v.GetString("MINIO_PREFIX"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Analysis: AnalysisConfig{
			PreviewRows: v.GetInt("ANALYSIS_PREVIEW_ROWS"),
			Seed:        v.GetInt64("ANALYSIS_SEED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageLocal, StorageMinIO:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if err := domain.ValidateArtifactName(c.Storage.AnnotatedCSV); err != nil {
		return fmt.Errorf("annotated csv name %q: %w", c.Storage.AnnotatedCSV, err)
	}
	if err := domain.ValidateArtifactName(c.Storage.Plot); err != nil {
		return fmt.Errorf("plot name %q: %w", c.Storage.Plot, err)
	}
	if c.Storage.AnnotatedCSV == c.Storage.Plot {
		return fmt.Errorf("artifact names must differ")
	}
	return nil
}
