package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/terpenos/storefront/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "storefront.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "storefront.yaml"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultHost is the default HTTP host.
	DefaultHost = "localhost"

	// DefaultMaxVisitors is the default bound on loaded visitors.
	DefaultMaxVisitors = 10000

	// DefaultIdleTimeout is the default visitor idle timeout.
	DefaultIdleTimeout = "30m"

	// DefaultCartKey is the storage key of the serialized cart.
	DefaultCartKey = "terpenos-cart"

	// DefaultLanguageKey is the storage key of the language preference.
	DefaultLanguageKey = "language"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
	BackendS3     = "s3"
)

// Config represents the complete storefront configuration.
type Config struct {
	// Name is the storefront name, used in logs and metric labels.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Server   ServerConfig   `json:"server,omitempty" yaml:"server,omitempty"`
	Visitors VisitorsConfig `json:"visitors,omitempty" yaml:"visitors,omitempty"`
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	Cart    CartConfig    `json:"cart,omitempty" yaml:"cart,omitempty"`
	I18n    I18nConfig    `json:"i18n,omitempty" yaml:"i18n,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP settings for `storefront serve`.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// VisitorsConfig bounds the visitors `storefront serve` keeps in memory.
// Evicted visitors are reloaded from storage on their next request.
type VisitorsConfig struct {
	// MaxLoaded is the most visitors kept loaded. Unset uses the default.
	MaxLoaded int `json:"maxLoaded,omitempty" yaml:"maxLoaded,omitempty"`

	// IdleTimeout is a Go duration ("30m") after which an unused visitor
	// is evicted; "0" disables idle eviction.
	IdleTimeout string `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty"`
}

// Idle returns IdleTimeout parsed. Call Validate first.
func (v VisitorsConfig) Idle() time.Duration {
	d, _ := time.ParseDuration(v.IdleTimeout)
	return d
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	// Backend is one of memory, file, redis, sql, s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	File  FileStorageConfig  `json:"file,omitempty" yaml:"file,omitempty"`
	Redis RedisStorageConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
	SQL   SQLStorageConfig   `json:"sql,omitempty" yaml:"sql,omitempty"`
	S3    S3StorageConfig    `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// FileStorageConfig configures the file backend.
type FileStorageConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// RedisStorageConfig configures the redis backend.
type RedisStorageConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// SQLStorageConfig configures the sql backend.
type SQLStorageConfig struct {
	// Driver is "mysql" or "sqlite".
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`
}

// S3StorageConfig configures the s3 backend.
type S3StorageConfig struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// CartConfig contains cart store settings.
type CartConfig struct {
	StorageKey string `json:"storageKey,omitempty" yaml:"storageKey,omitempty"`
}

// I18nConfig contains language store settings.
type I18nConfig struct {
	StorageKey string `json:"storageKey,omitempty" yaml:"storageKey,omitempty"`

	// Translations is an optional YAML or JSON file overlaid on the
	// built-in translation table at startup.
	Translations string `json:"translations,omitempty" yaml:"translations,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// LoggingConfig contains slog settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "terpenos",
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Visitors: VisitorsConfig{
			MaxLoaded:   DefaultMaxVisitors,
			IdleTimeout: DefaultIdleTimeout,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			File:    FileStorageConfig{Path: "storefront-data.json"},
			Redis:   RedisStorageConfig{Addr: "localhost:6379", Prefix: "storefront:"},
			SQL:     SQLStorageConfig{Driver: "sqlite", DSN: "storefront.db", Table: "storefront_kv"},
			S3:      S3StorageConfig{Prefix: "storefront/", Region: "us-east-1"},
		},
		Cart: CartConfig{StorageKey: DefaultCartKey},
		I18n: I18nConfig{StorageKey: DefaultLanguageKey},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "storefront",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for storefront.json first, then storefront.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "storefront.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No storefront.json or storefront.yaml found in " + dir).
		WithSuggestion("Create storefront.json or run without --config to use defaults")
}

// LoadOrDefault loads the configuration in dir, falling back to defaults
// when no file exists. Parse errors are still returned.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.HasCode(err, "E100") {
		cfg = New()
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads configuration from the specified file path.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E101").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Visitors.MaxLoaded == 0 {
		c.Visitors.MaxLoaded = d.Visitors.MaxLoaded
	}
	if c.Visitors.IdleTimeout == "" {
		c.Visitors.IdleTimeout = d.Visitors.IdleTimeout
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.SQL.Table == "" {
		c.Storage.SQL.Table = d.Storage.SQL.Table
	}
	if c.Cart.StorageKey == "" {
		c.Cart.StorageKey = DefaultCartKey
	}
	if c.I18n.StorageKey == "" {
		c.I18n.StorageKey = DefaultLanguageKey
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// applyEnv applies STOREFRONT_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("STOREFRONT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("STOREFRONT_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("STOREFRONT_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("STOREFRONT_SQL_DSN"); v != "" {
		c.Storage.SQL.DSN = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E102").
			WithDetail("server.port must be between 0 and 65535")
	}

	if c.Visitors.MaxLoaded < 1 {
		return errors.New("E102").WithDetail("visitors.maxLoaded must be at least 1")
	}
	if d, err := time.ParseDuration(c.Visitors.IdleTimeout); err != nil || d < 0 {
		return errors.New("E102").
			WithDetail(`visitors.idleTimeout must be a duration like "30m", got "` + c.Visitors.IdleTimeout + `"`)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.File.Path == "" {
			return errors.New("E102").WithDetail("storage.file.path is required")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("E102").WithDetail("storage.redis.addr is required")
		}
	case BackendSQL:
		if c.Storage.SQL.Driver != "mysql" && c.Storage.SQL.Driver != "sqlite" {
			return errors.New("E102").
				WithDetail(`storage.sql.driver must be "mysql" or "sqlite", got "` + c.Storage.SQL.Driver + `"`)
		}
		if c.Storage.SQL.DSN == "" {
			return errors.New("E102").WithDetail("storage.sql.dsn is required")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("E102").WithDetail("storage.s3.bucket is required")
		}
	default:
		return errors.New("E120").
			WithDetail(`backend "` + c.Storage.Backend + `" is not supported`).
			WithSuggestion("Set storage.backend to memory, file, redis, sql or s3")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E102").
			WithDetail(`logging.level must be debug, info, warn or error, got "` + c.Logging.Level + `"`)
	}

	return nil
}

// Address returns the host:port address for the HTTP server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ResolvePath resolves a path relative to the config file directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.configPath == "" {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "storefront.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}
