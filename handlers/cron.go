// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/citizenhub/governance/auth"
	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/lifecycle"
	"github.com/citizenhub/governance/middleware"
	"github.com/citizenhub/governance/models"
)

type CronHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCronHandler(db *sql.DB, cfg cliparse.Config) *CronHandler {
	return &CronHandler{db: db, cfg: cfg}
}

// DailyUpdate handles GET|POST /cron/daily-update
// Advances proposal statuses and settles outstanding collateral. Guarded by
// the cron secret when one is configured; safe to re-run at any time.
func (h *CronHandler) DailyUpdate(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateCronSecret(r.Header.Get("Authorization"), h.cfg.CronSecret); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid cron secret")
		return
	}

	now := time.Now().UTC()
	report, err := lifecycle.RunBatch(h.db, now)
	if err != nil {
		slog.Error("batch run failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Batch run failed")
		return
	}

	slog.Info("batch run completed",
		"advanced", report.Advanced,
		"settled", report.Settled,
		"failed", report.Failed,
	)

	middleware.JSONResponse(w, http.StatusOK, models.BatchRunResponse{
		Success:               report.Failed == 0,
		Advanced:              report.Advanced,
		CollateralDistributed: report.Settled,
		Failed:                report.Failed,
		Timestamp:             now,
	})
}
