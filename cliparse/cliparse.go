package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	CronSecret         string
	ProposalCollateral int64
	VoteCollateral     int64
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("governance", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CronSecret, "cron-secret", "", "Bearer secret for the cron trigger (prefer env)")

	// Collateral policy
	fs.Int64Var(&cfg.ProposalCollateral, "proposal-collateral", 0, "Stake locked per proposal submission")
	fs.Int64Var(&cfg.VoteCollateral, "vote-collateral", 0, "Stake locked per vote")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3419 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Cron secret is optional; when empty the trigger is open
	if cfg.CronSecret == "" {
		cfg.CronSecret = os.Getenv("CRON_SECRET")
	}

	if cfg.ProposalCollateral == 0 {
		cfg.ProposalCollateral = envInt64("PROPOSAL_COLLATERAL", 100)
	}
	if cfg.VoteCollateral == 0 {
		cfg.VoteCollateral = envInt64("VOTE_COLLATERAL", 20)
	}
	if cfg.ProposalCollateral < 0 || cfg.VoteCollateral < 0 {
		return Config{}, errors.New("collateral amounts must be non-negative")
	}

	return cfg, nil
}

func envInt64(key string, fallback int64) int64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}
