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

// Voting opens at the next UTC day boundary after submission and runs for
// seven days.
const votingPeriod = 7 * 24 * time.Hour

type ProposalHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewProposalHandler(db *sql.DB, cfg cliparse.Config) *ProposalHandler {
	return &ProposalHandler{db: db, cfg: cfg}
}

// CreateProposal handles POST /proposals
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	var req models.CreateProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	// Generate proposal ID
	proposalID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate proposal ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	now := time.Now().UTC()
	votingStart := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	votingEnd := votingStart.Add(votingPeriod)

	// Lock the stake and insert the proposal in one transaction
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	err = ledger.DebitTx(tx, ledger.Entry{
		UserID:      userID,
		ProposalID:  &proposalID,
		Kind:        models.KindLock,
		Amount:      h.cfg.ProposalCollateral,
		Description: "Proposal submission",
	})
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Insufficient balance for proposal collateral")
		return
	}
	if err != nil {
		slog.Error("failed to lock proposal collateral", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO proposal (id, title, description, proposer_id, status,
			voting_start_at, voting_end_at, final_result,
			collateral_amount, collateral_settled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, FALSE, $9, $10)
	`, proposalID, req.Title, req.Description, userID, models.StatusPending,
		votingStart, votingEnd, h.cfg.ProposalCollateral, now, now)
	if err != nil {
		slog.Error("failed to insert proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create proposal")
		return
	}

	slog.Info("proposal created", "proposal_id", proposalID, "proposer", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateProposalResponse{
		Proposal: models.Proposal{
			ID:               proposalID,
			Title:            req.Title,
			Description:      req.Description,
			ProposerID:       userID,
			Status:           models.StatusPending,
			VotingStartAt:    votingStart,
			VotingEndAt:      votingEnd,
			CollateralAmount: h.cfg.ProposalCollateral,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		CollateralLocked: h.cfg.ProposalCollateral,
	})
}

// ListProposals handles GET /proposals
// Optional ?status= filter narrows to one lifecycle state.
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" {
		switch status {
		case models.StatusPending, models.StatusActive, models.StatusFinalized:
		default:
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	query := `
		SELECT id, title, description, proposer_id, status,
		       voting_start_at, voting_end_at, final_result,
		       collateral_amount, collateral_settled, created_at, updated_at
		FROM proposal
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query proposals", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		var p models.Proposal
		if err := scanProposal(rows, &p); err != nil {
			slog.Error("failed to scan proposal", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		proposals = append(proposals, p)
	}

	middleware.JSONResponse(w, http.StatusOK, proposals)
}

// GetProposal handles GET /proposals/:id
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID := r.PathValue("id")
	if proposalID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proposal_id is required")
		return
	}

	var p models.Proposal
	err := h.db.QueryRow(`
		SELECT id, title, description, proposer_id, status,
		       voting_start_at, voting_end_at, final_result,
		       collateral_amount, collateral_settled, created_at, updated_at
		FROM proposal
		WHERE id = $1
	`, proposalID).Scan(
		&p.ID, &p.Title, &p.Description, &p.ProposerID, &p.Status,
		&p.VotingStartAt, &p.VotingEndAt, &p.FinalResult,
		&p.CollateralAmount, &p.CollateralSettled, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Proposal not found")
		return
	}
	if err != nil {
		slog.Error("failed to query proposal", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

func scanProposal(rows *sql.Rows, p *models.Proposal) error {
	return rows.Scan(
		&p.ID, &p.Title, &p.Description, &p.ProposerID, &p.Status,
		&p.VotingStartAt, &p.VotingEndAt, &p.FinalResult,
		&p.CollateralAmount, &p.CollateralSettled, &p.CreatedAt, &p.UpdatedAt,
	)
}
