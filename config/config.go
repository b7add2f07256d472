package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

type Config struct {
	AppEnv        string `koanf:"app_env"`
	Port          string `koanf:"port"`
	StorageDriver string `koanf:"storage_driver"`
	SeedClinics   bool   `koanf:"seed_clinics"`

	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBHost     string `koanf:"db_host"`
	DBPort     string `koanf:"db_port"`
	DBName     string `koanf:"db_name"`

	JWTSecret  string        `koanf:"jwt_secret"`
	SessionTTL time.Duration `koanf:"session_ttl"`
	QRCodeTTL  time.Duration `koanf:"qr_code_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`

	CORSOrigins        []string `koanf:"cors_origins"`
	RateLimitPerSecond float64  `koanf:"rate_limit_per_second"`
	LogLevel           string   `koanf:"log_level"`

	OTELEndpoint string `koanf:"otel_exporter_otlp_endpoint"`
	OTELInsecure bool   `koanf:"otel_exporter_otlp_insecure"`
}

// developmentSecret signs sessions when APP_ENV=development and no
// JWT_SECRET is set.
const developmentSecret = "findmyclinic-development-secret"

// knownKeys limits the environment overlay to settings the service reads.
var knownKeys = map[string]bool{
	"app_env": true, "port": true, "storage_driver": true, "seed_clinics": true,
	"db_user": true, "db_password": true, "db_host": true, "db_port": true, "db_name": true,
	"jwt_secret": true, "session_ttl": true, "qr_code_ttl": true, "bcrypt_cost": true,
	"cors_origins": true, "rate_limit_per_second": true, "log_level": true,
	"otel_exporter_otlp_endpoint": true, "otel_exporter_otlp_insecure": true,
}

func DefaultConfig() *Config {
	return &Config{
		AppEnv:             EnvProduction,
		Port:               "5000",
		StorageDriver:      DriverMemory,
		SeedClinics:        true,
		SessionTTL:         24 * time.Hour,
		BcryptCost:         bcrypt.DefaultCost,
		CORSOrigins:        []string{"*"},
		RateLimitPerSecond: 20,
		LogLevel:           "info",
	}
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads .env, the optional YAML file at path and the environment
// once per process.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found. Relying on environment variables.")
		}
		cfg, loadErr = Load(path)
	})
	return cfg, loadErr
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or missing) and the environment, in that order.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	c := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// DB_USER -> db_user
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !knownKeys[key] {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Validate fills development fallbacks and rejects unusable settings.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverMySQL:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required when APP_ENV is %q", c.AppEnv)
		}
		c.JWTSecret = developmentSecret
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range", c.BcryptCost)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.QRCodeTTL < 0 {
		return fmt.Errorf("qr code ttl must not be negative")
	}
	return nil
}
