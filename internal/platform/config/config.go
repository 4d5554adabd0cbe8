package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"nomadpool/pkg/domain"
)

// Config is parsed from the environment so main stays lean. Memory-backed
// stores are used wherever a backing URL is left empty, which keeps local
// runs and tests dependency-free.
type Config struct {
	Addr          string `env:"NOMADPOOL_ADDR" envDefault:":8080"`
	AdminToken    string `env:"NOMADPOOL_ADMIN_TOKEN" envDefault:"dev-admin-token-change-in-production"`
	JWTSigningKey string `env:"NOMADPOOL_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	PostgresURL  string   `env:"NOMADPOOL_POSTGRES_URL"`
	RedisURL     string   `env:"NOMADPOOL_REDIS_URL"`
	KafkaBrokers []string `env:"NOMADPOOL_KAFKA_BROKERS"`
	EventTopic   string   `env:"NOMADPOOL_EVENT_TOPIC" envDefault:"nomadpool.events"`

	// Engine parameters. BaseRate is the minimum daily premium in
	// micro-units; SmallClaimThreshold bounds what a trusted claimant can
	// have approved without an adjudicator.
	BaseRate            int64 `env:"NOMADPOOL_BASE_RATE" envDefault:"100"`
	ReserveRatio        int64 `env:"NOMADPOOL_RESERVE_RATIO" envDefault:"20"`
	SmallClaimThreshold int64 `env:"NOMADPOOL_SMALL_CLAIM_THRESHOLD" envDefault:"1000000"`
	AutoApproveScore    int   `env:"NOMADPOOL_AUTO_APPROVE_SCORE" envDefault:"80"`

	SeedLocations bool `env:"NOMADPOOL_SEED_LOCATIONS" envDefault:"true"`
}

// Load builds the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.BaseRate <= 0 {
		return Config{}, fmt.Errorf("base rate must be positive, got %d", cfg.BaseRate)
	}
	if cfg.ReserveRatio < 0 || cfg.ReserveRatio > 100 {
		return Config{}, fmt.Errorf("reserve ratio must be in [0,100], got %d", cfg.ReserveRatio)
	}
	return cfg, nil
}

// BaseRateAmount returns the base rate as a domain amount.
func (c Config) BaseRateAmount() domain.Amount { return domain.Amount(c.BaseRate) }

// SmallClaimAmount returns the auto-approval threshold as a domain amount.
func (c Config) SmallClaimAmount() domain.Amount { return domain.Amount(c.SmallClaimThreshold) }
