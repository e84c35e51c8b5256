// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The SQL is kept portable across postgres and sqlite: explicit
// timestamps are always supplied by the caller, never defaulted.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    proposer_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Active', 'Finalized')),
    voting_start_at TIMESTAMP NOT NULL,
    voting_end_at TIMESTAMP NOT NULL,
    final_result TEXT CHECK (final_result IN ('approved', 'rejected')),
    collateral_amount BIGINT NOT NULL DEFAULT 0 CHECK (collateral_amount >= 0),
    collateral_settled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_proposal_status ON proposal(status);
CREATE INDEX IF NOT EXISTS idx_proposal_settled ON proposal(status, collateral_settled);

-- Votes (one per voter per proposal; re-votes overwrite the row)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    proposal_id TEXT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    support_level INTEGER NOT NULL CHECK (support_level >= -100 AND support_level <= 100),
    comment TEXT,
    collateral_amount BIGINT NOT NULL DEFAULT 0 CHECK (collateral_amount >= 0),
    collateral_settled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (proposal_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_proposal_id ON vote(proposal_id);
CREATE INDEX IF NOT EXISTS idx_vote_voter ON vote(proposal_id, voter_id);

-- Materialized balances, owned by the ledger store
CREATE TABLE IF NOT EXISTS account (
    user_id TEXT PRIMARY KEY,
    balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

-- Append-only collateral journal
CREATE TABLE IF NOT EXISTS ledger_entry (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    proposal_id TEXT,
    vote_id TEXT,
    kind TEXT NOT NULL CHECK (kind IN ('lock', 'return', 'forfeit', 'profit')),
    amount BIGINT NOT NULL CHECK (amount >= 0),
    description TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entry_user ON ledger_entry(user_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entry_proposal ON ledger_entry(proposal_id);
`
