package models

import "time"

// Proposal status constants
const (
	StatusPending   = "Pending"
	StatusActive    = "Active"
	StatusFinalized = "Finalized"
)

// Final result constants
const (
	ResultApproved = "approved"
	ResultRejected = "rejected"
)

// Ledger entry kinds
const (
	KindLock    = "lock"
	KindReturn  = "return"
	KindForfeit = "forfeit"
	KindProfit  = "profit"
)

// Request types

type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CastVoteRequest struct {
	SupportLevel int     `json:"support_level"` // -100 to +100
	Comment      *string `json:"comment,omitempty"`
}

type AdminCreditRequest struct {
	UserID      string `json:"user_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Response types

type CreateProposalResponse struct {
	Proposal         Proposal `json:"proposal"`
	CollateralLocked int64    `json:"collateral_locked"`
}

type CastVoteResponse struct {
	Vote             Vote  `json:"vote"`
	CollateralLocked int64 `json:"collateral_locked"`
	Updated          bool  `json:"updated"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

type BatchRunResponse struct {
	Success               bool      `json:"success"`
	Advanced              int       `json:"advanced"`
	CollateralDistributed int       `json:"collateral_distributed"`
	Failed                int       `json:"failed"`
	Timestamp             time.Time `json:"timestamp"`
}

// Domain types

type Proposal struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ProposerID        string    `json:"proposer_id"`
	Status            string    `json:"status"`
	VotingStartAt     time.Time `json:"voting_start_at"`
	VotingEndAt       time.Time `json:"voting_end_at"`
	FinalResult       *string   `json:"final_result,omitempty"`
	CollateralAmount  int64     `json:"collateral_amount"`
	CollateralSettled bool      `json:"collateral_settled"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Vote struct {
	ID                string    `json:"id"`
	ProposalID        string    `json:"proposal_id"`
	VoterID           string    `json:"voter_id"`
	SupportLevel      int       `json:"support_level"`
	Comment           *string   `json:"comment,omitempty"`
	CollateralAmount  int64     `json:"collateral_amount"`
	CollateralSettled bool      `json:"collateral_settled"`
	CreatedAt         time.Time `json:"created_at"`
}

type LedgerEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProposalID  *string   `json:"proposal_id,omitempty"`
	VoteID      *string   `json:"vote_id,omitempty"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vote tally and histogram view types

type VoteTally struct {
	Total          int     `json:"total_votes"`
	Support        int     `json:"support_votes"`
	Oppose         int     `json:"oppose_votes"`
	Neutral        int     `json:"neutral_votes"`
	AverageSupport float64 `json:"average_support"`
}

type HistogramBin struct {
	BinCenter  int    `json:"bin_center"`
	RangeLabel string `json:"range_label"`
	Count      int    `json:"count"`
}

type ProposalVotesResponse struct {
	Votes     []Vote         `json:"votes"`
	Tally     VoteTally      `json:"tally"`
	Histogram []HistogramBin `json:"histogram"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
