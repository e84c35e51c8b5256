// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/citizenhub/governance/ledger"
	"github.com/citizenhub/governance/models"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrNotFinalized     = errors.New("proposal not ready for collateral distribution")
	ErrAlreadySettled   = errors.New("collateral already settled")
	ErrNoOutcome        = errors.New("finalized proposal has no final result")
)

// SettlementReport summarizes one proposal's collateral distribution.
type SettlementReport struct {
	ProposalID    string
	Winners       int
	Losers        int
	Neutral       int
	Redistributed int64 // total profit paid out to winners
	Remainder     int64 // forfeited stake not redistributed (flooring residue)
}

type settledVote struct {
	ID           string
	VoterID      string
	SupportLevel int
	Collateral   int64
}

// SettleProposal distributes a finalized proposal's staked collateral:
// winners get their stake back plus a floor-proportional share of the
// losers' stakes, losers forfeit, neutral votes get their stake back with
// zero profit, and the proposer is refunded on approval or forfeits on
// rejection. Every balance write, journal entry and guard flag commits in
// one transaction; a failure anywhere rolls back everything and leaves the
// proposal eligible for retry.
//
// The settled flag is claimed by a conditional update inside the
// transaction, so of two racing callers exactly one performs the
// distribution; the other gets ErrAlreadySettled.
func SettleProposal(db *sql.DB, proposalID string) (SettlementReport, error) {
	report := SettlementReport{ProposalID: proposalID}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Atomic claim: only one caller ever gets past this with rows affected.
	res, err := tx.Exec(`
		UPDATE proposal
		SET collateral_settled = TRUE, updated_at = $1
		WHERE id = $2 AND status = $3 AND collateral_settled = FALSE
	`, now, proposalID, models.StatusFinalized)
	if err != nil {
		return report, fmt.Errorf("failed to claim settlement: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return report, fmt.Errorf("failed to read claim result: %w", err)
	}
	if claimed == 0 {
		return report, classifyClaimFailure(tx, proposalID)
	}

	var proposerID string
	var proposerStake int64
	var finalResult sql.NullString
	err = tx.QueryRow(`
		SELECT proposer_id, collateral_amount, final_result
		FROM proposal WHERE id = $1
	`, proposalID).Scan(&proposerID, &proposerStake, &finalResult)
	if err != nil {
		return report, fmt.Errorf("failed to load proposal: %w", err)
	}
	if !finalResult.Valid {
		return report, ErrNoOutcome
	}
	approved := finalResult.String == models.ResultApproved

	votes, err := loadVotes(tx, proposalID)
	if err != nil {
		return report, err
	}

	var winners, losers, neutral []settledVote
	for _, v := range votes {
		switch {
		case v.SupportLevel == 0:
			neutral = append(neutral, v)
		case (v.SupportLevel > 0) == approved:
			winners = append(winners, v)
		default:
			losers = append(losers, v)
		}
	}
	report.Winners = len(winners)
	report.Losers = len(losers)
	report.Neutral = len(neutral)

	var totalWinnerStake, totalLoserStake int64
	for _, w := range winners {
		totalWinnerStake += w.Collateral
	}
	for _, l := range losers {
		totalLoserStake += l.Collateral
	}

	outcomeWord := models.ResultRejected
	if approved {
		outcomeWord = models.ResultApproved
	}

	// Winners get their stake back plus a floored proportional share of
	// the losers' pool. Integer math keeps the floor exact.
	for _, w := range winners {
		var profit int64
		if totalWinnerStake > 0 {
			profit = totalLoserStake * w.Collateral / totalWinnerStake
		}

		voteID := w.ID
		if err := ledger.CreditTx(tx, ledger.Entry{
			UserID:      w.VoterID,
			ProposalID:  &proposalID,
			VoteID:      &voteID,
			Kind:        models.KindReturn,
			Amount:      w.Collateral,
			Description: "Collateral returned - proposal " + outcomeWord,
		}); err != nil {
			return report, err
		}

		if profit > 0 {
			if err := ledger.CreditTx(tx, ledger.Entry{
				UserID:      w.VoterID,
				ProposalID:  &proposalID,
				VoteID:      &voteID,
				Kind:        models.KindProfit,
				Amount:      profit,
				Description: "Profit from correct vote",
			}); err != nil {
				return report, err
			}
			report.Redistributed += profit
		}
	}
	report.Remainder = totalLoserStake - report.Redistributed

	// Losers forfeit. Journal only - the stake left their balance when it
	// was locked.
	for _, l := range losers {
		voteID := l.ID
		if err := ledger.AppendTx(tx, ledger.Entry{
			UserID:      l.VoterID,
			ProposalID:  &proposalID,
			VoteID:      &voteID,
			Kind:        models.KindForfeit,
			Amount:      l.Collateral,
			Description: "Collateral forfeited - incorrect vote",
		}); err != nil {
			return report, err
		}
	}

	// Neutral votes sat out the wager: stake back, no profit.
	for _, n := range neutral {
		voteID := n.ID
		if err := ledger.CreditTx(tx, ledger.Entry{
			UserID:      n.VoterID,
			ProposalID:  &proposalID,
			VoteID:      &voteID,
			Kind:        models.KindReturn,
			Amount:      n.Collateral,
			Description: "Collateral returned - neutral vote",
		}); err != nil {
			return report, err
		}
	}

	// Proposer settlement. Rejected collateral is forfeited and leaves
	// circulation; it is not redistributed to voters.
	if approved {
		if err := ledger.CreditTx(tx, ledger.Entry{
			UserID:      proposerID,
			ProposalID:  &proposalID,
			Kind:        models.KindReturn,
			Amount:      proposerStake,
			Description: "Proposal collateral returned - approved",
		}); err != nil {
			return report, err
		}
	} else {
		if err := ledger.AppendTx(tx, ledger.Entry{
			UserID:      proposerID,
			ProposalID:  &proposalID,
			Kind:        models.KindForfeit,
			Amount:      proposerStake,
			Description: "Proposal collateral forfeited - rejected",
		}); err != nil {
			return report, err
		}
	}

	// Mark every vote settled along with the rest.
	_, err = tx.Exec(`
		UPDATE vote SET collateral_settled = TRUE WHERE proposal_id = $1
	`, proposalID)
	if err != nil {
		return report, fmt.Errorf("failed to mark votes settled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return report, nil
}

// classifyClaimFailure turns a lost claim into the right sentinel error.
func classifyClaimFailure(q Querier, proposalID string) error {
	var status string
	var settled bool
	err := q.QueryRow(`
		SELECT status, collateral_settled FROM proposal WHERE id = $1
	`, proposalID).Scan(&status, &settled)

	if err == sql.ErrNoRows {
		return ErrProposalNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect proposal: %w", err)
	}
	if settled {
		return ErrAlreadySettled
	}
	return fmt.Errorf("%w: status %s", ErrNotFinalized, status)
}

func loadVotes(q Querier, proposalID string) ([]settledVote, error) {
	rows, err := q.Query(`
		SELECT id, voter_id, support_level, collateral_amount
		FROM vote WHERE proposal_id = $1
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var votes []settledVote
	for rows.Next() {
		var v settledVote
		if err := rows.Scan(&v.ID, &v.VoterID, &v.SupportLevel, &v.Collateral); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}

	return votes, rows.Err()
}
