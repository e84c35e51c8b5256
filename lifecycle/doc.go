// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle implements the proposal lifecycle and collateral
settlement engine.

# Components

  - AdvanceStatuses: time-gated state transitions
    (Pending → Active → Finalized) plus outcome resolution, in one
    transaction (scheduler.go)
  - TallyVotes / ResolveOutcome / Histogram: vote counting, the binary
    outcome rule and the display histogram (tally.go)
  - SettleProposal: exactly-once proportional redistribution of staked
    collateral for one finalized proposal (settlement.go)
  - RunBatch: the periodic driver tying the above together (batch.go)

# Lifecycle

Proposals move forward only:

	Pending ──voting_start_at──▶ Active ──voting_end_at──▶ Finalized

final_result is written once, at finalization: approved when support votes
strictly outnumber oppose votes, rejected otherwise (ties reject).

# Settlement

For a finalized proposal, votes split into winners (sign matches the
outcome), losers (opposite sign) and neutral (support_level 0):

  - winner i receives its stake back plus
    floor(totalLoserStake × stake_i / totalWinnerStake) profit
  - losers forfeit their stake
  - neutral votes get their stake back with zero profit
  - the proposer is refunded on approval, forfeits on rejection

The flooring residue (at most winnerCount-1 units) is not redistributed.
Everything - balance credits, journal entries, the collateral_settled
flags on the proposal and its votes - commits in a single transaction.
The settled flag is claimed with a conditional update inside that
transaction, so concurrent batch runs cannot double-settle: one caller
wins, the rest get ErrAlreadySettled.

# Batch driver

	report, err := lifecycle.RunBatch(db, time.Now())

RunBatch advances statuses (any error there aborts the run), then settles
each eligible proposal in sequence. Per-proposal failures are logged and
counted but never stop the loop; the failed proposal stays unsettled and
is retried on the next run. The whole driver is idempotent under
at-least-once invocation.
*/
package lifecycle
