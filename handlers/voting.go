// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/citizenhub/governance/auth"
	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/ledger"
	"github.com/citizenhub/governance/middleware"
	"github.com/citizenhub/governance/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// CastVote handles POST /proposals/:id/votes
// A voter holds at most one vote per proposal. Casting again while the
// proposal is still Active swaps the stake: the previously locked collateral
// is returned, the new stake is locked, and the vote row is overwritten,
// all in one transaction.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if proposalID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_id is required")
		return
	}

	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.SupportLevel < -100 || req.SupportLevel > 100 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "support_level must be between -100 and 100")
		return
	}

	// Check proposal exists and is accepting votes
	var status string
	err := h.db.QueryRow("SELECT status FROM proposal WHERE id = $1", proposalID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Proposal is not accepting votes")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Refund the prior stake when this is a re-vote
	var priorID string
	var priorStake int64
	updated := false
	err = tx.QueryRow(`
		SELECT id, collateral_amount FROM vote
		WHERE proposal_id = $1 AND voter_id = $2
	`, proposalID, userID).Scan(&priorID, &priorStake)
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query existing vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if err == nil {
		updated = true
		if refundErr := ledger.CreditTx(tx, ledger.Entry{
			UserID:      userID,
			ProposalID:  &proposalID,
			VoteID:      &priorID,
			Kind:        models.KindReturn,
			Amount:      priorStake,
			Description: "Collateral returned - vote updated",
		}); refundErr != nil {
			slog.Error("failed to refund prior vote collateral", "error", refundErr)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
			return
		}
	}

	voteID := priorID
	if voteID == "" {
		voteID, err = auth.GenerateID(12)
		if err != nil {
			slog.Error("failed to generate vote ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
			return
		}
	}

	err = ledger.DebitTx(tx, ledger.Entry{
		UserID:      userID,
		ProposalID:  &proposalID,
		VoteID:      &voteID,
		Kind:        models.KindLock,
		Amount:      h.cfg.VoteCollateral,
		Description: "Vote on proposal",
	})
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Insufficient balance for vote collateral")
		return
	}
	if err != nil {
		slog.Error("failed to lock vote collateral", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	now := time.Now().UTC()
	if updated {
		_, err = tx.Exec(`
			UPDATE vote
			SET support_level = $1, comment = $2, collateral_amount = $3,
			    collateral_settled = FALSE, created_at = $4
			WHERE id = $5
		`, req.SupportLevel, req.Comment, h.cfg.VoteCollateral, now, voteID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO vote (id, proposal_id, voter_id, support_level, comment,
				collateral_amount, collateral_settled, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		`, voteID, proposalID, userID, req.SupportLevel, req.Comment, h.cfg.VoteCollateral, now)
	}
	if err != nil {
		slog.Error("failed to write vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	slog.Info("vote cast",
		"proposal_id", proposalID,
		"voter", userID,
		"support_level", req.SupportLevel,
		"updated", updated,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Vote: models.Vote{
			ID:               voteID,
			ProposalID:       proposalID,
			VoterID:          userID,
			SupportLevel:     req.SupportLevel,
			Comment:          req.Comment,
			CollateralAmount: h.cfg.VoteCollateral,
			CreatedAt:        now,
		},
		CollateralLocked: h.cfg.VoteCollateral,
		Updated:          updated,
	})
}
