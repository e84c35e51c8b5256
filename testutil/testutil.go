// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/db"
	"github.com/citizenhub/governance/models"
)

var dbCounter atomic.Int64

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// Each call gets its own database; the single-connection pool keeps sqlite's
// write locking out of the way.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := sql.Open("sqlite", name)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3419,
		DatabaseURL:        "file::memory:",
		DatabaseType:       "sqlite",
		CronSecret:         "test-cron-secret",
		ProposalCollateral: 100,
		VoteCollateral:     20,
	}
}

// FundAccount sets a user's balance directly, creating the account row if needed
func FundAccount(t *testing.T, conn *sql.DB, userID string, balance int64) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO account (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`, userID, balance)
	if err != nil {
		t.Fatalf("Failed to fund account: %v", err)
	}
}

// GetBalance reads a user's materialized balance, 0 if no account row exists
func GetBalance(t *testing.T, conn *sql.DB, userID string) int64 {
	t.Helper()

	var balance int64
	err := conn.QueryRow(`SELECT balance FROM account WHERE user_id = $1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read balance: %v", err)
	}
	return balance
}

// TestProposal describes a proposal fixture. Zero values get sensible
// defaults for the requested status.
type TestProposal struct {
	ProposerID    string
	Status        string
	FinalResult   *string
	Collateral    int64
	VotingStartAt time.Time
	VotingEndAt   time.Time
	Settled       bool
}

// CreateTestProposal inserts a proposal row and returns its ID
func CreateTestProposal(t *testing.T, conn *sql.DB, p TestProposal) string {
	t.Helper()

	now := time.Now().UTC()
	if p.ProposerID == "" {
		p.ProposerID = "proposer-1"
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	if p.Collateral == 0 {
		p.Collateral = 100
	}
	if p.VotingStartAt.IsZero() {
		switch p.Status {
		case models.StatusPending:
			p.VotingStartAt = now.Add(24 * time.Hour)
		default:
			p.VotingStartAt = now.Add(-8 * 24 * time.Hour)
		}
	}
	if p.VotingEndAt.IsZero() {
		p.VotingEndAt = p.VotingStartAt.Add(7 * 24 * time.Hour)
	}

	proposalID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO proposal (id, title, description, proposer_id, status,
			voting_start_at, voting_end_at, final_result,
			collateral_amount, collateral_settled, created_at, updated_at)
		VALUES ($1, 'Test Proposal', 'A test proposal', $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, proposalID, p.ProposerID, p.Status, p.VotingStartAt, p.VotingEndAt,
		p.FinalResult, p.Collateral, p.Settled, now, now)
	if err != nil {
		t.Fatalf("Failed to create test proposal: %v", err)
	}

	return proposalID
}

// CastTestVote inserts a vote row with locked collateral and returns its ID
func CastTestVote(t *testing.T, conn *sql.DB, proposalID, voterID string, supportLevel int, collateral int64) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, proposal_id, voter_id, support_level, collateral_amount, collateral_settled, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, voteID, proposalID, voterID, supportLevel, collateral, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// CountEntries returns the number of journal entries of a given kind for a user
func CountEntries(t *testing.T, conn *sql.DB, userID, kind string) int {
	t.Helper()

	var count int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM ledger_entry WHERE user_id = $1 AND kind = $2
	`, userID, kind).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count ledger entries: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
