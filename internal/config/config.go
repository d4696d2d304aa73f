package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "config/local.yml"

// Config holds all the configuration for the application.
type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer   `yaml:"http_server"`
	Database     `yaml:"database"`
	URLShortener `yaml:"url_shortener"`
	TitleFetch   `yaml:"title_fetch"`
	Auth         `yaml:"auth"`
	Analytics    `yaml:"analytics"`
	UserAgent    `yaml:"user_agent"`
}

// HTTPServer holds HTTP listener settings.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES" env-default:"1048576"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:8080"`
}

// Database holds storage settings. Driver is one of postgres, sqlite or memory.
type Database struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"shortly"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	Path            string `yaml:"path" env:"DB_PATH" env-default:"shortly.db"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	LogQueries      bool   `yaml:"log_queries" env:"DB_LOG_QUERIES" env-default:"false"`
}

// URLShortener holds service-specific configuration.
type URLShortener struct {
	BaseURL       string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	CodeLength    int           `yaml:"code_length" env:"CODE_LENGTH" env-default:"6"`
	CodeStrategy  string        `yaml:"code_strategy" env:"CODE_STRATEGY" env-default:"random"`
	SnowflakeNode int64         `yaml:"snowflake_node" env:"SNOWFLAKE_NODE"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"10m"`
}

// TitleFetch holds settings of the remote page title fetcher.
type TitleFetch struct {
	Timeout      time.Duration `yaml:"timeout" env:"TITLE_FETCH_TIMEOUT" env-default:"5s"`
	Retries      int           `yaml:"retries" env:"TITLE_FETCH_RETRIES"`
	UserAgent    string        `yaml:"user_agent" env:"TITLE_FETCH_USER_AGENT" env-default:"Shortly/1.0 (+title-fetcher)"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"TITLE_FETCH_MAX_BODY_BYTES" env-default:"1048576"`
}

// Auth holds bearer token settings.
type Auth struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"change-me"`
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"Shortly-Backend"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TOKEN_TTL" env-default:"24h"`
}

// Analytics holds click enrichment worker settings.
type Analytics struct {
	Enabled         bool          `yaml:"enabled" env:"ANALYTICS_ENABLED"`
	WorkerCount     int           `yaml:"worker_count" env:"ANALYTICS_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"1s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// UserAgent holds User-Agent parser settings. Empty RegexesPath means the
// definitions bundled with uap-go.
type UserAgent struct {
	RegexesPath string `yaml:"regexes_path" env:"UA_REGEXES_PATH"`
}

// Load reads configuration from the given YAML file, or from the environment
// only when the file does not exist.
func Load(configPath string) (*Config, error) {
	cfg := presets()

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", configPath, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// presets задает значения по умолчанию для полей, где ноль или false допустимы.
// cleanenv подставляет env-default поверх нулевого значения из YAML, поэтому
// такие поля заполняются до чтения файла.
func presets() Config {
	var cfg Config
	cfg.Database.AutoMigrate = true
	cfg.URLShortener.SnowflakeNode = 1
	cfg.TitleFetch.Retries = 1
	cfg.Analytics.Enabled = true
	return cfg
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

// Validate checks values cleanenv cannot check by itself.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.URLShortener.CodeStrategy {
	case "random", "snowflake":
	default:
		return fmt.Errorf("unsupported code strategy %q", c.URLShortener.CodeStrategy)
	}

	if c.URLShortener.CodeLength < 4 || c.URLShortener.CodeLength > 16 {
		return fmt.Errorf("code_length must be between 4 and 16, got %d", c.URLShortener.CodeLength)
	}

	if c.TitleFetch.Retries < 0 {
		return fmt.Errorf("title_fetch.retries must not be negative")
	}

	return nil
}
