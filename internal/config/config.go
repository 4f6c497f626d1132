package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	DatabaseDriver   string        `yaml:"database_driver"`
	DatabaseDSN      string        `yaml:"database_dsn"`
	DBHost           string        `yaml:"db_host"`
	DBPort           string        `yaml:"db_port"`
	DBUser           string        `yaml:"db_user"`
	DBPassword       string        `yaml:"db_password"`
	DBName           string        `yaml:"db_database"`
	DBTablePrefix    string        `yaml:"db_table_prefix"`
	DBMaxOpenConns   int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns   int           `yaml:"db_max_idle_conns"`
	DBConnLifetime   time.Duration `yaml:"db_conn_lifetime"`
	StoreTimeout     time.Duration `yaml:"store_timeout"`
	AutoMigrate      bool          `yaml:"auto_migrate"`
	GeneratorName    string        `yaml:"generator_provider"`
	GeminiAPIKey     string        `yaml:"gemini_api_key"`
	GeminiModel      string        `yaml:"gemini_model"`
	OpenAIAPIKey     string        `yaml:"openai_api_key"`
	OpenAIModel      string        `yaml:"openai_model"`
	GeneratorTimeout time.Duration `yaml:"generator_timeout"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	APIBaseURL         string   `yaml:"api_base_url"`
}

func Defaults() *Config {
	return &Config{
		Port:               "3001",
		DatabaseDriver:     "postgres",
		DBHost:             "localhost",
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     5,
		DBConnLifetime:     30 * time.Minute,
		StoreTimeout:       10 * time.Second,
		AutoMigrate:        true,
		GeneratorName:      "gemini",
		GeminiModel:        "gemini-2.5-flash",
		OpenAIModel:        "gpt-4o-mini",
		GeneratorTimeout:   60 * time.Second,
		CacheTTL:           time.Minute,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
		LogFormat:          "json",
		APIBaseURL:         "http://localhost:3001/api",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", getEnv("HTTP_PORT", cfg.Port))
	cfg.DatabaseDriver = strings.ToLower(getEnv("DATABASE_DRIVER", cfg.DatabaseDriver))
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_DATABASE", cfg.DBName)
	cfg.DBTablePrefix = getEnv("DB_TABLE_PREFIX", cfg.DBTablePrefix)
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnLifetime = getEnvDuration("DB_CONN_LIFETIME", cfg.DBConnLifetime)
	cfg.StoreTimeout = getEnvDuration("STORE_TIMEOUT", cfg.StoreTimeout)
	cfg.AutoMigrate = getEnvBool("DB_AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.GeneratorName = strings.ToLower(getEnv("GENERATOR_PROVIDER", cfg.GeneratorName))
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("API_KEY", cfg.GeminiAPIKey))
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.GeneratorTimeout = getEnvDuration("GENERATOR_TIMEOUT", cfg.GeneratorTimeout)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.GeneratorName {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported GENERATOR_PROVIDER %q", c.GeneratorName)
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// DSN returns DATABASE_DSN when set, otherwise composes one for the selected
// driver from the DB_* fields.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	switch c.DatabaseDriver {
	case "mysql":
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, port, c.DBName)
	case "sqlite":
		if c.DBName == "" {
			return "quizmaker.db"
		}
		return c.DBName
	default:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return i
}

func getEnvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
