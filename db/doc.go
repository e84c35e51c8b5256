// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - proposal: Proposal metadata, voting window, lifecycle state and the
    collateral_settled idempotency guard
  - vote: One vote per voter per proposal with its locked stake
  - account: Materialized token balance per user
  - ledger_entry: Append-only journal of balance-affecting events

# Relationships

	proposal 1──* vote
	proposal 1──* ledger_entry (back-reference, lookup only)
	vote 1──* ledger_entry (back-reference, lookup only)

ledger_entry references are intentionally not foreign keys: journal rows
outlive everything and are never deleted.

# Indexes

Performance indexes on:

  - proposal.status
  - proposal.(status, collateral_settled)
  - vote.proposal_id
  - vote.(proposal_id, voter_id)
  - ledger_entry.user_id
  - ledger_entry.proposal_id
*/
package db
