// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/citizenhub/governance/cliparse"
	"github.com/citizenhub/governance/handlers"
	"github.com/citizenhub/governance/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	proposalHandler := handlers.NewProposalHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	cronHandler := handlers.NewCronHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Proposal management
	mux.HandleFunc("POST /proposals", middleware.WithLogging(proposalHandler.CreateProposal))
	mux.HandleFunc("GET /proposals", middleware.WithLogging(proposalHandler.ListProposals))
	mux.HandleFunc("GET /proposals/{id}", middleware.WithLogging(proposalHandler.GetProposal))

	// Voting
	mux.HandleFunc("POST /proposals/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /proposals/{id}/votes", middleware.WithLogging(resultsHandler.GetProposalVotes))

	// Balances and journal history
	mux.HandleFunc("GET /users/me/balance", middleware.WithLogging(resultsHandler.GetBalance))
	mux.HandleFunc("GET /users/me/ledger", middleware.WithLogging(resultsHandler.GetLedger))

	// Lifecycle batch trigger (cron platforms vary between GET and POST)
	mux.HandleFunc("GET /cron/daily-update", middleware.WithLogging(cronHandler.DailyUpdate))
	mux.HandleFunc("POST /cron/daily-update", middleware.WithLogging(cronHandler.DailyUpdate))

	// Admin faucet
	mux.HandleFunc("POST /admin/credits", middleware.WithLogging(adminHandler.CreditUser))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("governance API v1"))
	})

	return mux
}
