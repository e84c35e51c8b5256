// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"database/sql"
	"fmt"

	"github.com/citizenhub/governance/models"
)

// Querier is the read surface shared by *sql.DB and *sql.Tx, so tallies can
// run standalone or inside the scheduler's transaction.
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// TallyVotes computes the vote counts for a proposal in one aggregate
// query. Support is support_level > 0, oppose is < 0; neutral (exactly 0)
// votes count toward turnout only.
func TallyVotes(q Querier, proposalID string) (models.VoteTally, error) {
	var tally models.VoteTally
	err := q.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN support_level > 0 THEN 1 END),
			COUNT(CASE WHEN support_level < 0 THEN 1 END),
			COUNT(CASE WHEN support_level = 0 THEN 1 END),
			COALESCE(AVG(support_level), 0)
		FROM vote
		WHERE proposal_id = $1
	`, proposalID).Scan(&tally.Total, &tally.Support, &tally.Oppose, &tally.Neutral, &tally.AverageSupport)
	if err != nil {
		return models.VoteTally{}, fmt.Errorf("failed to tally votes: %w", err)
	}

	return tally, nil
}

// ResolveOutcome applies the outcome rule: approved only when support votes
// strictly outnumber oppose votes. Ties, including zero directional votes,
// reject.
func ResolveOutcome(tally models.VoteTally) string {
	if tally.Support > tally.Oppose {
		return models.ResultApproved
	}
	return models.ResultRejected
}

// Histogram bin layout: ten fixed-width bins across [-100, 100]. The last
// bin is closed on both ends so +100 lands in it.
var binLabels = [10]string{
	"[-100, -80)", "[-80, -60)", "[-60, -40)", "[-40, -20)", "[-20, 0)",
	"[0, 20)", "[20, 40)", "[40, 60)", "[60, 80)", "[80, 100]",
}

// Histogram buckets a proposal's support levels into the ten display bins.
// All ten bins are always returned, zero counts included, in ascending
// order of bin center.
func Histogram(q Querier, proposalID string) ([]models.HistogramBin, error) {
	rows, err := q.Query(`
		SELECT support_level FROM vote WHERE proposal_id = $1
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query support levels: %w", err)
	}
	defer rows.Close()

	counts := [10]int{}
	for rows.Next() {
		var level int
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("failed to scan support level: %w", err)
		}
		counts[binIndex(level)]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read support levels: %w", err)
	}

	bins := make([]models.HistogramBin, 10)
	for i := range bins {
		bins[i] = models.HistogramBin{
			BinCenter:  -90 + 20*i,
			RangeLabel: binLabels[i],
			Count:      counts[i],
		}
	}

	return bins, nil
}

func binIndex(level int) int {
	if level >= 100 {
		return 9
	}
	if level < -100 {
		return 0
	}
	return (level + 100) / 20
}
