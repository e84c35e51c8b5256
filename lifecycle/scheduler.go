// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/citizenhub/governance/models"
)

// AdvanceStatuses moves every due proposal forward at the given wall-clock
// time: Pending becomes Active once voting_start_at has passed, Active
// becomes Finalized once voting_end_at has passed, and every newly
// Finalized proposal gets its final_result computed. All of it runs in a
// single transaction; a partial status advance is never visible. Returns
// the number of proposals advanced.
//
// Transitions are monotonic. A proposal whose whole window has already
// passed activates and finalizes within the same call: the two bulk
// updates run in order, so the second sees the first's effect.
func AdvanceStatuses(db *sql.DB, now time.Time) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	activated, err := tx.Exec(`
		UPDATE proposal
		SET status = $1, updated_at = $2
		WHERE status = $3 AND voting_start_at <= $4
	`, models.StatusActive, now, models.StatusPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to activate proposals: %w", err)
	}

	finalized, err := tx.Exec(`
		UPDATE proposal
		SET status = $1, updated_at = $2
		WHERE status = $3 AND voting_end_at <= $4
	`, models.StatusFinalized, now, models.StatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("failed to finalize proposals: %w", err)
	}

	if err := resolveOutcomes(tx, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit status advance: %w", err)
	}

	activatedCount, err := activated.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read activation count: %w", err)
	}
	finalizedCount, err := finalized.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read finalization count: %w", err)
	}

	return int(activatedCount + finalizedCount), nil
}

// resolveOutcomes writes final_result for every Finalized proposal that
// does not have one yet. The NULL guard on the update makes the write
// happen at most once per proposal even if a racing scheduler run slips
// between the select and the update.
func resolveOutcomes(tx *sql.Tx, now time.Time) error {
	rows, err := tx.Query(`
		SELECT id FROM proposal
		WHERE status = $1 AND final_result IS NULL
	`, models.StatusFinalized)
	if err != nil {
		return fmt.Errorf("failed to query unresolved proposals: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan proposal id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read unresolved proposals: %w", err)
	}

	for _, id := range ids {
		tally, err := TallyVotes(tx, id)
		if err != nil {
			return fmt.Errorf("failed to tally proposal %s: %w", id, err)
		}

		outcome := ResolveOutcome(tally)
		_, err = tx.Exec(`
			UPDATE proposal
			SET final_result = $1, updated_at = $2
			WHERE id = $3 AND final_result IS NULL
		`, outcome, now, id)
		if err != nil {
			return fmt.Errorf("failed to write outcome for proposal %s: %w", id, err)
		}
	}

	return nil
}
