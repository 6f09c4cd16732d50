package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data backends the dashboards can read from.
const (
	BackendDocstore   = "docstore"
	BackendRelational = "relational"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DataBackend string `mapstructure:"DATA_BACKEND"`

	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	AuthProjectID       string `mapstructure:"AUTH_PROJECT_ID"`
	AuthCredentialsFile string `mapstructure:"AUTH_CREDENTIALS_FILE"`
	StorageBucket       string `mapstructure:"STORAGE_BUCKET"`

	LocalStorePath string `mapstructure:"LOCAL_STORE_PATH"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
	ReminderLead     time.Duration `mapstructure:"REMINDER_LEAD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATA_BACKEND", BackendDocstore)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("LOCAL_STORE_PATH", "./data/localstore")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REMINDER_INTERVAL", "15m")
	v.SetDefault("REMINDER_LEAD", "3h")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DATA_BACKEND")
	v.BindEnv("FIREBASE_PROJECT_ID")
	v.BindEnv("FIREBASE_CREDENTIALS_FILE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_PROJECT_ID")
	v.BindEnv("AUTH_CREDENTIALS_FILE")
	v.BindEnv("STORAGE_BUCKET")
	v.BindEnv("LOCAL_STORE_PATH")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("REMINDER_INTERVAL")
	v.BindEnv("REMINDER_LEAD")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DocstoreConfigured reports whether the document store has usable settings.
// Anything else puts the docstore client in stub mode.
func (c *Config) DocstoreConfigured() bool {
	return Usable(c.FirebaseProjectID)
}

// RelationalConfigured reports whether the hosted Postgres backend has a
// usable connection string.
func (c *Config) RelationalConfigured() bool {
	return Usable(c.DatabaseURL)
}

// AuthConfigured reports whether the auth/storage provider can be reached.
func (c *Config) AuthConfigured() bool {
	return Usable(c.AuthProjectID)
}

// Validate checks the settings that cannot be repaired by falling back to
// stub mode. Missing credentials are never an error here.
func (c *Config) Validate() error {
	if c.DataBackend != BackendDocstore && c.DataBackend != BackendRelational {
		return fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendDocstore, BackendRelational, c.DataBackend)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.ReminderLead <= 0 {
		return fmt.Errorf("REMINDER_LEAD must be positive, got %s", c.ReminderLead)
	}
	return nil
}

var (
	placeholderValues   = []string{"changeme", "change-me", "placeholder", "todo"}
	placeholderPrefixes = []string{"your-", "your_", "placeholder-", "placeholder_"}
)

// Usable reports whether a credential-like value is present and is not one of
// the placeholder values shipped in sample .env files. Only the whole value is
// judged, plus the user and password of a connection URL.
func Usable(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if placeholder(v) {
		return false
	}
	if u, err := url.Parse(v); err == nil && u.User != nil {
		if placeholder(u.User.Username()) {
			return false
		}
		if pw, ok := u.User.Password(); ok && placeholder(pw) {
			return false
		}
	}
	return true
}

func placeholder(v string) bool {
	if v == "" || strings.Trim(v, "x") == "" {
		return true
	}
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return true
	}
	for _, p := range placeholderValues {
		if v == p {
			return true
		}
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}
