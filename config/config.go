package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Policy   PolicyConfig   `yaml:"policy"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds password hashing and session token settings.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
	AdminID       string `yaml:"admin_id"`
	AdminPassword string `yaml:"admin_password"`
}

// PolicyConfig holds the reservation policy knobs.
type PolicyConfig struct {
	BookHoldHours int `yaml:"book_hold_hours"`
	LoanDays      int `yaml:"loan_days"`
	LateFeePerDay int `yaml:"late_fee_per_day"`
	OpenHour      int `yaml:"open_hour"`
	CloseHour     int `yaml:"close_hour"`
	SlotMinutes   int `yaml:"slot_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Auth.BcryptCost <= 0 {
		log.Printf("auth.bcrypt_cost is not set; defaulting to 10")
		cfg.Auth.BcryptCost = 10
	}

	cfg.Policy.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills in the standard campus policy for any unset field.
func (p *PolicyConfig) ApplyDefaults() {
	if p.BookHoldHours <= 0 {
		p.BookHoldHours = 48
	}
	if p.LoanDays <= 0 {
		p.LoanDays = 7
	}
	if p.LateFeePerDay <= 0 {
		p.LateFeePerDay = 25
	}
	if p.OpenHour <= 0 {
		p.OpenHour = 8
	}
	if p.CloseHour <= 0 {
		p.CloseHour = 18
	}
	if p.SlotMinutes <= 0 {
		p.SlotMinutes = 90
	}
}
