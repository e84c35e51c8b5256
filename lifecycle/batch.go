// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/citizenhub/governance/models"
)

// settleFn is swapped in tests to inject per-proposal failures.
var settleFn = SettleProposal

// BatchReport carries the counts of one batch run.
type BatchReport struct {
	Advanced int // proposals whose status moved forward
	Settled  int // proposals whose collateral was distributed
	Failed   int // proposals whose settlement errored (retried next run)
}

// RunBatch is the periodic driver: advance statuses, then settle every
// finalized proposal whose collateral is still outstanding. A scheduler
// failure aborts the whole run; a single proposal's settlement failure is
// logged and skipped so the remaining proposals still settle (the
// unsettled flag keeps the failed one eligible next run).
func RunBatch(db *sql.DB, now time.Time) (BatchReport, error) {
	var report BatchReport

	advanced, err := AdvanceStatuses(db, now)
	if err != nil {
		return report, fmt.Errorf("status advance failed: %w", err)
	}
	report.Advanced = advanced
	slog.Info("proposal statuses advanced", "count", advanced)

	ids, err := listUnsettled(db)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		settlement, err := settleFn(db, id)
		if errors.Is(err, ErrAlreadySettled) {
			// Another runner won the claim between the list and the settle.
			continue
		}
		if err != nil {
			slog.Error("failed to distribute collateral", "proposal_id", id, "error", err)
			report.Failed++
			continue
		}

		slog.Info("collateral distributed",
			"proposal_id", id,
			"winners", settlement.Winners,
			"losers", settlement.Losers,
			"neutral", settlement.Neutral,
			"redistributed", settlement.Redistributed,
			"remainder", settlement.Remainder,
		)
		report.Settled++
	}

	return report, nil
}

func listUnsettled(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT id FROM proposal
		WHERE status = $1 AND collateral_settled = FALSE
		ORDER BY voting_end_at, id
	`, models.StatusFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled proposals: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan proposal id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
