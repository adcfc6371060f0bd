package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	StorageInMemory = "inmemory"
	StorageMySQL    = "mysql"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type MySQLConfig struct {
	User     string `mapstructure:"db_user"`
	Password string `mapstructure:"db_pass"`
	Host     string `mapstructure:"db_host"`
	Port     string `mapstructure:"db_port"`
	Name     string `mapstructure:"db_name"`
	FullDSN  string `mapstructure:"full_dsn"`
}

type AMQPConfig struct {
	URL      string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"amqp_exchange"`
	Queue    string `mapstructure:"amqp_queue"`
}

type Config struct {
	AppPort         string `mapstructure:"app_port"`
	AppEnv          string `mapstructure:"app_env"`
	LogLevel        string `mapstructure:"log_level"`
	LogDir          string `mapstructure:"log_dir"`
	StorageType     string `mapstructure:"storage_type"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	JWTTTLHours     int    `mapstructure:"jwt_ttl_hours"`
	PreferencesFile string `mapstructure:"preferences_file"`

	MySQL MySQLConfig `mapstructure:",squash"`
	AMQP  AMQPConfig  `mapstructure:",squash"`
}

var defaults = map[string]any{
	"app_port":         "8080",
	"app_env":          "development",
	"log_level":        "info",
	"log_dir":          "./logging/logs",
	"storage_type":     StorageInMemory,
	"sqlite_path":      "./data/budget_planner.db",
	"postgres_dsn":     "",
	"jwt_secret":       "",
	"jwt_ttl_hours":    72,
	"preferences_file": defaultPreferencesFile(),
	"db_user":          "",
	"db_pass":          "",
	"db_host":          "",
	"db_port":          "3306",
	"db_name":          "budget_planner",
	"full_dsn":         "",
	"amqp_url":         "",
	"amqp_exchange":    "budget_planner",
	"amqp_queue":       "ledger_events",
}

// Load reads .env (if present), then the optional file named by CONFIG_FILE,
// then environment variables. Environment wins.
func Load() (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env variables: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageType {
	case StorageInMemory, StorageSQLite:
	case StorageMySQL:
		if c.MySQL.FullDSN == "" && (c.MySQL.User == "" || c.MySQL.Host == "") {
			return fmt.Errorf("missing required DB environment variables: set FULL_DSN or DB_USER, DB_PASS, DB_HOST")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q, allowed: inmemory, mysql, sqlite, postgres", c.StorageType)
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours)
	}
	return nil
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func defaultPreferencesFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".budget_planner.env"
	}
	return dir + string(os.PathSeparator) + "budget_planner" + string(os.PathSeparator) + "preferences.env"
}
