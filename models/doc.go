// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateProposalRequest: title, description
  - CastVoteRequest: support_level (-100..100), optional comment
  - AdminCreditRequest: user_id, amount, description

# Response Types

Types for JSON responses:

  - CreateProposalResponse: proposal, collateral_locked
  - CastVoteResponse: vote, collateral_locked, updated
  - BalanceResponse: user_id, balance
  - BatchRunResponse: success, advanced, collateral_distributed, failed, timestamp
  - ProposalVotesResponse: votes, tally, histogram
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Proposal: proposal metadata, lifecycle state, and collateral flags
  - Vote: one voter's stake-backed position on a proposal
  - LedgerEntry: one append-only journal record
  - VoteTally: aggregate support/oppose/neutral counts and average
  - HistogramBin: one of the ten fixed support-level display bins

# Constants

Status values:

	StatusPending   = "Pending"
	StatusActive    = "Active"
	StatusFinalized = "Finalized"

Final results:

	ResultApproved = "approved"
	ResultRejected = "rejected"

Journal kinds:

	KindLock    = "lock"
	KindReturn  = "return"
	KindForfeit = "forfeit"
	KindProfit  = "profit"
*/
package models
