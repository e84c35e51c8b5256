// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the governance API server.

The service runs stake-backed proposal voting: submitting a proposal and
casting a vote both lock collateral from the caller's balance, and a
periodic batch run advances proposals through their lifecycle
(Pending → Active → Finalized) and redistributes the locked collateral
from losing voters to winning voters once voting closes.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... DATABASE_TYPE=postgres go run main.go

Or with flags:

	go run main.go -p 3419 -t sqlite -d governance.db

A .env file in the working directory is loaded when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string

Optional settings:

  - PORT (-p): server port (default: 3419)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - CRON_SECRET (--cron-secret): bearer secret for the cron and admin
    endpoints; when empty they are open
  - PROPOSAL_COLLATERAL (--proposal-collateral): stake locked per proposal
    (default: 100)
  - VOTE_COLLATERAL (--vote-collateral): stake locked per vote (default: 20)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (proposals, voting, results, cron, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, caller identity
  - models: Request/response and domain types
  - auth: ID generation and cron secret validation
  - ledger: account balances and the append-only collateral journal
  - lifecycle: status scheduler, vote tally, settlement engine, batch driver
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
