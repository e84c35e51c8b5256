// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3419)
  - DatabaseURL: Connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - CronSecret: Bearer secret for the cron trigger (optional)
  - ProposalCollateral: Stake locked per proposal (default: 100)
  - VoteCollateral: Stake locked per vote (default: 20)

# CLI Flags

	-p                    Server port
	-d                    Database URL
	-t                    Database type
	--cron-secret         Cron trigger secret
	--proposal-collateral Proposal stake
	--vote-collateral     Vote stake

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	CRON_SECRET         → --cron-secret
	PROPOSAL_COLLATERAL → --proposal-collateral
	VOTE_COLLATERAL     → --vote-collateral

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - Collateral amounts must be non-negative

CRON_SECRET is intentionally optional: when empty, the batch trigger
accepts unauthenticated calls (useful for local development).

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg)
*/
package cliparse
