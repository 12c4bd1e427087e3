package config

import (
	"errors"
	"fmt"
	"os"

	"zaimka/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
	Cabins     []models.Cabin   `yaml:"cabins"`
	Owners     []OwnerSeed      `yaml:"owners"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	SessionTTLSeconds int `yaml:"session_ttl_seconds"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BookingConfig struct {
	MaxBookingDays    int `yaml:"max_booking_days"`
	MinBookingAdvance int `yaml:"min_booking_advance"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// OwnerSeed is an owner account created on startup if missing.
type OwnerSeed struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
	CompanySlug  string `yaml:"company_slug"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен, но если есть — подхватываем
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return ValidateCabins(c.Cabins)
}

// ValidateCabins checks seed cabins for duplicate slugs and empty names.
func ValidateCabins(cabins []models.Cabin) error {
	slugs := make(map[string]bool)
	for _, cabin := range cabins {
		if cabin.Slug == "" {
			return fmt.Errorf("cabin '%s' has empty slug", cabin.Name)
		}
		if slugs[cabin.Slug] {
			return fmt.Errorf("duplicate cabin slug found: %s", cabin.Slug)
		}
		slugs[cabin.Slug] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.SessionTTLSeconds == 0 {
		c.Auth.SessionTTLSeconds = models.DefaultSessionTTL
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = float64(models.RateLimitRequests) / float64(models.RateLimitWindow)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.MaxBookingDays
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
