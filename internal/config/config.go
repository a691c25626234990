package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:"0.0.0.0:8080"`
	Ledger   Ledger
	Postgres Postgres
}

type Ledger struct {
	RPCURL          string `envconfig:"LEDGER_RPC_URL" required:"true"`
	ContractAddress string `envconfig:"LEDGER_CONTRACT_ADDRESS" required:"true"`
	ChainID         int64  `envconfig:"LEDGER_CHAIN_ID" default:"1337"`
	AdminKey        string `envconfig:"LEDGER_ADMIN_KEY" required:"true"`
}

type Postgres struct {
	DB       string `envconfig:"POSTGRES_DB" required:"true"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

// Load reads configuration from the environment, with .env as a
// development convenience.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
