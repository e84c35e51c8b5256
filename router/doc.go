// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the governance API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Proposals (identity via X-User-ID):

	POST /proposals      - Submit proposal (locks collateral)
	GET  /proposals      - List proposals, optional ?status= filter
	GET  /proposals/{id} - Proposal detail

Voting:

	POST /proposals/{id}/votes - Cast or update a vote (locks collateral)
	GET  /proposals/{id}/votes - Votes with tally and histogram

Users:

	GET /users/me/balance - Materialized balance
	GET /users/me/ledger  - Journal history

Cron and admin (Authorization: Bearer <CRON_SECRET>):

	GET|POST /cron/daily-update - Advance statuses and settle collateral
	POST     /admin/credits     - Faucet credit

# Handler Initialization

The router creates handler instances with dependency injection:

	proposalHandler := handlers.NewProposalHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	cronHandler := handlers.NewCronHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
