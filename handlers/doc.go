// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the governance API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ProposalHandler: proposal submission and retrieval
  - VotingHandler: stake-backed vote casting and updating
  - ResultsHandler: votes, tallies, histograms, balances, ledger history
  - CronHandler: the periodic lifecycle batch trigger
  - AdminHandler: balance faucet

Handlers are created via constructor functions that accept *sql.DB and Config:

	proposalHandler := handlers.NewProposalHandler(db, cfg)

# Proposal Lifecycle

Proposals progress through three states: Pending → Active → Finalized

	POST /proposals             → CreateProposal (locks proposer collateral)
	GET  /proposals             → ListProposals
	GET  /proposals/{id}        → GetProposal
	POST /proposals/{id}/votes  → CastVote (Active only; locks vote collateral)
	GET  /proposals/{id}/votes  → GetProposalVotes (tally + histogram)

Status transitions and collateral settlement happen only in the batch run:

	GET|POST /cron/daily-update → DailyUpdate

# Identity and Auth

Callers are identified by the X-User-ID header, resolved upstream. The cron
and admin endpoints require Authorization: Bearer <CRON_SECRET> when a
secret is configured.

# Collateral

Creating a proposal and casting a vote both debit the caller's balance and
journal a lock entry in the same transaction as the row insert. Settlement
after finalization returns, forfeits, and redistributes those stakes; see
the lifecycle package.
*/
package handlers
