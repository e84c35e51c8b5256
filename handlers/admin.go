// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/citizenhub/governance/auth"
	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/middleware"
	"github.com/citizenhub/governance/models"
)

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// CreditUser handles POST /admin/credits
// Mints balance into a user's account. This is the faucet, not a collateral
// event, so it does not touch the journal. Shares the cron secret guard.
func (h *AdminHandler) CreditUser(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateCronSecret(r.Header.Get("Authorization"), h.cfg.CronSecret); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid cron secret")
		return
	}

	var req models.AdminCreditRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Amount <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	_, err := h.db.Exec(`
		INSERT INTO account (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = account.balance + EXCLUDED.balance
	`, req.UserID, req.Amount)
	if err != nil {
		slog.Error("failed to credit account", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to credit account")
		return
	}

	slog.Info("account credited",
		"user_id", req.UserID,
		"amount", humanize.Comma(req.Amount),
		"description", req.Description,
	)

	var balance int64
	if err := h.db.QueryRow(`SELECT balance FROM account WHERE user_id = $1`, req.UserID).Scan(&balance); err != nil {
		slog.Error("failed to read balance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BalanceResponse{
		UserID:  req.UserID,
		Balance: balance,
	})
}
