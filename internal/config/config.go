package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppPort string `mapstructure:"APP_PORT"`

	// --- медиа ---
	StorageBackend   string `mapstructure:"STORAGE_BACKEND"`
	UploadDir        string `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes   int64  `mapstructure:"UPLOAD_MAX_BYTES"`
	MediaContentType string `mapstructure:"MEDIA_CONTENT_TYPE"`
	StreamChunkBytes int    `mapstructure:"STREAM_CHUNK_BYTES"`
	CORSOrigin       string `mapstructure:"CORS_ORIGIN"`

	// --- Postgres (журнал публикаций, опционально) ---
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- Redis (кеш latest, опционально) ---
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	LatestCacheTTL int    `mapstructure:"LATEST_CACHE_TTL"`

	// --- S3 ---
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
	S3Prefix    string `mapstructure:"S3_PREFIX"`
}

var defaults = map[string]any{
	"APP_ENV":            "dev",
	"APP_PORT":           ":5000",
	"STORAGE_BACKEND":    BackendFS,
	"UPLOAD_DIR":         "./uploads",
	"UPLOAD_MAX_BYTES":   int64(512 << 20),
	"MEDIA_CONTENT_TYPE": "video/webm",
	"STREAM_CHUNK_BYTES": 256 << 10,
	"CORS_ORIGIN":        "*",
	"DB_PORT":            5432,
	"DB_SCHEME":          "public",
	"LATEST_CACHE_TTL":   30,
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  StorageBackend: %s\n", c.StorageBackend))
	sb.WriteString(fmt.Sprintf("  UploadDir: %s\n", c.UploadDir))
	sb.WriteString(fmt.Sprintf("  UploadMaxBytes: %d\n", c.UploadMaxBytes))
	sb.WriteString(fmt.Sprintf("  MediaContentType: %s\n", c.MediaContentType))
	sb.WriteString(fmt.Sprintf("  StreamChunkBytes: %d\n", c.StreamChunkBytes))
	sb.WriteString(fmt.Sprintf("  CORSOrigin: %s\n", c.CORSOrigin))

	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))
	sb.WriteString("  DBPassword: " + mask(c.DBPassword) + "\n")

	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString("  RedisPassword: " + mask(c.RedisPassword) + "\n")
	sb.WriteString(fmt.Sprintf("  LatestCacheTTL: %d\n", c.LatestCacheTTL))

	// S3
	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString(fmt.Sprintf("  S3Prefix: %s\n", c.S3Prefix))
	sb.WriteString("  S3AccessKey: " + mask(c.S3AccessKey) + "\n")
	sb.WriteString("  S3SecretKey: " + mask(c.S3SecretKey) + "\n")
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))

	return sb.String()
}

// секреты маскируем
func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// Регистрируем интересующие ключи окружения
	keys := []string{
		"APP_ENV", "APP_PORT",
		"STORAGE_BACKEND", "UPLOAD_DIR", "UPLOAD_MAX_BYTES", "MEDIA_CONTENT_TYPE",
		"STREAM_CHUNK_BYTES", "CORS_ORIGIN",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
		"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "LATEST_CACHE_TTL",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"S3_USE_SSL", "S3_PATH_STYLE", "S3_PREFIX",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFS:
		if strings.TrimSpace(c.UploadDir) == "" {
			return errors.New("UPLOAD_DIR is required for fs backend")
		}
	case BackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required for s3 backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.StreamChunkBytes <= 0 {
		return errors.New("STREAM_CHUNK_BYTES must be positive")
	}
	if c.MediaContentType == "" {
		return errors.New("MEDIA_CONTENT_TYPE must not be empty")
	}
	return nil
}

func (c *Config) ManifestEnabled() bool { return c.DBHost != "" }
func (c *Config) CacheEnabled() bool    { return c.RedisAddr != "" }

// GetDSN: search_path = DB_SCHEME, миграции и запросы работают в одной схеме.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		url.QueryEscape(c.DBUser),
		url.QueryEscape(c.DBPassword),
		c.DBHost,
		c.DBPort,
		c.DBName,
		url.QueryEscape(c.DBScheme),
	)
}
