// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/citizenhub/governance/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrInvalidEntry      = errors.New("invalid ledger entry")
)

// Entry describes one balance-affecting event to be journaled.
type Entry struct {
	UserID      string
	ProposalID  *string
	VoteID      *string
	Kind        string
	Amount      int64
	Description string
}

func (e Entry) validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user_id required", ErrInvalidEntry)
	}
	if e.Amount < 0 {
		return fmt.Errorf("%w: negative amount %d", ErrInvalidEntry, e.Amount)
	}
	switch e.Kind {
	case models.KindLock, models.KindReturn, models.KindForfeit, models.KindProfit:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, e.Kind)
	}
	return nil
}

// Store owns the account balances and the append-only journal. All balance
// mutation in the system goes through Credit/Debit here; callers never
// read-modify-write a balance themselves.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetBalance returns the materialized balance for a user, 0 if the user has
// no account row yet.
func (s *Store) GetBalance(userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRow(`
		SELECT balance FROM account WHERE user_id = $1
	`, userID).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return balance, nil
}

// Credit atomically increments the user's balance and appends the journal
// entry; the two writes commit together or not at all.
func (s *Store) Credit(e Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := CreditTx(tx, e); err != nil {
		return err
	}

	return tx.Commit()
}

// Debit atomically decrements the user's balance and appends the journal
// entry. Fails with ErrInsufficientFunds when the balance does not cover
// the amount; the check and the decrement are a single conditional update,
// so concurrent debits cannot overdraw.
func (s *Store) Debit(e Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := DebitTx(tx, e); err != nil {
		return err
	}

	return tx.Commit()
}

// ListEntries returns the user's journal history, newest first.
func (s *Store) ListEntries(userID string) ([]models.LedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, proposal_id, vote_id, kind, amount, description, created_at
		FROM ledger_entry
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.ProposalID, &entry.VoteID,
			&entry.Kind, &entry.Amount, &entry.Description, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// CreditTx is Credit folded into a caller-owned transaction. The settlement
// engine uses it to keep all of a proposal's mutations in one atomic unit.
func CreditTx(tx *sql.Tx, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	_, err := tx.Exec(`
		INSERT INTO account (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = account.balance + EXCLUDED.balance
	`, e.UserID, e.Amount)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}

	return AppendTx(tx, e)
}

// DebitTx is Debit folded into a caller-owned transaction.
func DebitTx(tx *sql.Tx, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	res, err := tx.Exec(`
		UPDATE account
		SET balance = balance - $1
		WHERE user_id = $2 AND balance >= $1
	`, e.Amount, e.UserID)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read debit result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: required %s", ErrInsufficientFunds, humanize.Comma(e.Amount))
	}

	return AppendTx(tx, e)
}

// AppendTx writes a journal entry without touching any balance. Forfeits
// use this: the stake already left the balance when it was locked.
func AppendTx(tx *sql.Tx, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	_, err := tx.Exec(`
		INSERT INTO ledger_entry (id, user_id, proposal_id, vote_id, kind, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.NewString(), e.UserID, e.ProposalID, e.VoteID, e.Kind, e.Amount, e.Description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}
