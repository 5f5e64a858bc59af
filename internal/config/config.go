package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds settings for the optional upload ledger.
// An empty Driver disables the ledger.
type DatabaseConfig struct {
	Driver             string `toml:"driver" yaml:"driver"`
	Host               string `toml:"host" yaml:"host"`
	Port               string `toml:"port" yaml:"port"`
	User               string `toml:"user" yaml:"user"`
	Password           string `toml:"password" yaml:"password"`
	Name               string `toml:"name" yaml:"name"`
	SSLMode            string `toml:"sslmode" yaml:"sslmode"`
	SQLitePath         string `toml:"sqlite_path" yaml:"sqlite_path"`
	MaxOpenConns       int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns       int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `toml:"conn_max_lifetime_sec" yaml:"conn_max_lifetime_sec"`
}

// Enabled reports whether a ledger driver is configured.
func (d DatabaseConfig) Enabled() bool { return d.Driver != "" }

// MinIOConfig holds object storage settings for the archive mirror.
// An empty Endpoint disables mirroring.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	AccessKey string `toml:"access_key" yaml:"access_key"`
	SecretKey string `toml:"secret_key" yaml:"secret_key"`
	Bucket    string `toml:"bucket" yaml:"bucket"`
	UseSSL    bool   `toml:"use_ssl" yaml:"use_ssl"`
}

// MediaConfig controls where uploads land and how long they are kept.
type MediaConfig struct {
	Root             string `toml:"root" yaml:"root"`
	URL              string `toml:"url" yaml:"url"`
	MaxUploadBytes   int    `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
	RetentionHours   int    `toml:"retention_hours" yaml:"retention_hours"`
	SweepIntervalMin int    `toml:"sweep_interval_min" yaml:"sweep_interval_min"`
}

// EngineConfig holds OCR engine settings.
type EngineConfig struct {
	Languages      []string `toml:"languages" yaml:"languages"`
	TessdataPrefix string   `toml:"tessdata_prefix" yaml:"tessdata_prefix"`
	PageSegMode    int      `toml:"psm" yaml:"psm"`
	MaxConcurrent  int      `toml:"max_concurrent" yaml:"max_concurrent"`
}

// AppConfig is the centralized configuration struct for the application.
// It is built once at startup and passed to every component that needs it.
type AppConfig struct {
	AppHost      string         `toml:"app_host" yaml:"app_host"`
	Port         string         `toml:"port" yaml:"port"`
	SecretKey    string         `toml:"secret_key" yaml:"secret_key"`
	Debug        bool           `toml:"debug" yaml:"debug"`
	AllowedHosts []string       `toml:"allowed_hosts" yaml:"allowed_hosts"`
	Timezone     string         `toml:"timezone" yaml:"timezone"`
	LogLevel     string         `toml:"log_level" yaml:"log_level"`
	Media        MediaConfig    `toml:"media" yaml:"media"`
	Engine       EngineConfig   `toml:"engine" yaml:"engine"`
	Database     DatabaseConfig `toml:"database" yaml:"database"`
	MinIO        MinIOConfig    `toml:"minio" yaml:"minio"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		AppHost:      "localhost:8080",
		Port:         "8080",
		AllowedHosts: []string{"localhost", "127.0.0.1"},
		Timezone:     "UTC",
		LogLevel:     "info",
		Media: MediaConfig{
			Root:             "media",
			URL:              "/media/",
			MaxUploadBytes:   10 << 20,
			RetentionHours:   168,
			SweepIntervalMin: 60,
		},
		Engine: EngineConfig{
			Languages:     []string{"eng"},
			MaxConcurrent: runtime.NumCPU(),
		},
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			SQLitePath:         "ocrweb.db",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
	}
}

// Load reads configuration from environment variables on top of Defaults.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	cfg := Defaults()
	applyEnv(cfg)
	return cfg
}

// LoadFile decodes a TOML or YAML file (chosen by extension) on top of
// Defaults and then applies environment overrides. An empty path behaves like Load.
func LoadFile(path string) (*AppConfig, error) {
	cfg := Defaults()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func decodeFile(path string, cfg *AppConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)
	cfg.AllowedHosts = getEnvList("ALLOWED_HOSTS", cfg.AllowedHosts)
	cfg.Timezone = getEnv("APP_TIMEZONE", cfg.Timezone)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Media.Root = getEnv("MEDIA_ROOT", cfg.Media.Root)
	cfg.Media.URL = getEnv("MEDIA_URL", cfg.Media.URL)
	cfg.Media.MaxUploadBytes = getEnvInt("MAX_UPLOAD_BYTES", cfg.Media.MaxUploadBytes)
	cfg.Media.RetentionHours = getEnvInt("MEDIA_RETENTION_HOURS", cfg.Media.RetentionHours)
	cfg.Media.SweepIntervalMin = getEnvInt("MEDIA_SWEEP_INTERVAL_MIN", cfg.Media.SweepIntervalMin)

	cfg.Engine.Languages = getEnvList("ENGINE_LANGUAGES", cfg.Engine.Languages)
	cfg.Engine.TessdataPrefix = getEnv("ENGINE_TESSDATA_PREFIX", cfg.Engine.TessdataPrefix)
	cfg.Engine.PageSegMode = getEnvInt("ENGINE_PSM", cfg.Engine.PageSegMode)
	cfg.Engine.MaxConcurrent = getEnvInt("ENGINE_MAX_CONCURRENT", cfg.Engine.MaxConcurrent)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.SQLitePath = getEnv("DB_SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", cfg.Database.ConnMaxLifetimeSec)

	cfg.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", cfg.MinIO.Endpoint)
	cfg.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinIO.AccessKey)
	cfg.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinIO.SecretKey)
	cfg.MinIO.Bucket = getEnv("MINIO_BUCKET", cfg.MinIO.Bucket)
	cfg.MinIO.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.MinIO.UseSSL)
}

// Validate reports configuration that the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.SecretKey == "" && !c.Debug {
		return fmt.Errorf("SECRET_KEY is required when DEBUG is off")
	}
	if c.Media.Root == "" {
		return fmt.Errorf("media root is required")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
