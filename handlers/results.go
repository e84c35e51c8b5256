// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/ledger"
	"github.com/citizenhub/governance/lifecycle"
	"github.com/citizenhub/governance/middleware"
	"github.com/citizenhub/governance/models"
)

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store *ledger.Store
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, store: ledger.NewStore(db)}
}

// GetProposalVotes handles GET /proposals/:id/votes
// Returns the individual votes plus the aggregate tally and the ten-bin
// support histogram.
func (h *ResultsHandler) GetProposalVotes(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if proposalID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_id is required")
		return
	}

	// Check proposal exists
	var exists int
	err := h.db.QueryRow("SELECT 1 FROM proposal WHERE id = $1", proposalID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, proposal_id, voter_id, support_level, comment,
		       collateral_amount, collateral_settled, created_at
		FROM vote
		WHERE proposal_id = $1
		ORDER BY created_at DESC, id
	`, proposalID)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(
			&v.ID, &v.ProposalID, &v.VoterID, &v.SupportLevel, &v.Comment,
			&v.CollateralAmount, &v.CollateralSettled, &v.CreatedAt,
		); err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		votes = append(votes, v)
	}

	tally, err := lifecycle.TallyVotes(h.db, proposalID)
	if err != nil {
		slog.Error("failed to tally votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	histogram, err := lifecycle.Histogram(h.db, proposalID)
	if err != nil {
		slog.Error("failed to compute histogram", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProposalVotesResponse{
		Votes:     votes,
		Tally:     tally,
		Histogram: histogram,
	})
}

// GetBalance handles GET /users/me/balance
func (h *ResultsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	balance, err := h.store.GetBalance(userID)
	if err != nil {
		slog.Error("failed to read balance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BalanceResponse{
		UserID:  userID,
		Balance: balance,
	})
}

// GetLedger handles GET /users/me/ledger
// Returns the caller's journal history, newest first.
func (h *ResultsHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	entries, err := h.store.ListEntries(userID)
	if err != nil {
		slog.Error("failed to read ledger entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
