// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"errors"
	"testing"

	"github.com/citizenhub/governance/models"
	"github.com/citizenhub/governance/testutil"
)

func strPtr(s string) *string { return &s }

func TestSettleProposal_ProportionalDistribution(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		ProposerID:  "proposer-1",
		Status:      models.StatusFinalized,
		FinalResult: strPtr(models.ResultApproved),
		Collateral:  100,
	})

	// Winners stake {10, 20, 70}, losers stake {50, 50}
	testutil.CastTestVote(t, conn, proposalID, "winner-1", 80, 10)
	testutil.CastTestVote(t, conn, proposalID, "winner-2", 60, 20)
	testutil.CastTestVote(t, conn, proposalID, "winner-3", 30, 70)
	testutil.CastTestVote(t, conn, proposalID, "loser-1", -40, 50)
	testutil.CastTestVote(t, conn, proposalID, "loser-2", -90, 50)

	report, err := SettleProposal(conn, proposalID)
	if err != nil {
		t.Fatalf("SettleProposal failed: %v", err)
	}

	if report.Winners != 3 || report.Losers != 2 || report.Neutral != 0 {
		t.Errorf("Expected 3/2/0 winners/losers/neutral, got %d/%d/%d",
			report.Winners, report.Losers, report.Neutral)
	}

	// Profits: floor(100*0.10)=10, floor(100*0.20)=20, floor(100*0.70)=70
	expectedBalances := map[string]int64{
		"winner-1":   20,  // 10 stake + 10 profit
		"winner-2":   40,  // 20 stake + 20 profit
		"winner-3":   140, // 70 stake + 70 profit
		"loser-1":    0,
		"loser-2":    0,
		"proposer-1": 100, // approved: proposal collateral returned
	}
	for user, want := range expectedBalances {
		if got := testutil.GetBalance(t, conn, user); got != want {
			t.Errorf("Balance for %s: expected %d, got %d", user, want, got)
		}
	}

	if report.Redistributed != 100 {
		t.Errorf("Expected 100 redistributed, got %d", report.Redistributed)
	}
	if report.Remainder != 0 {
		t.Errorf("Expected 0 remainder, got %d", report.Remainder)
	}

	// Journal shape: winners get return+profit, losers get forfeit only
	if n := testutil.CountEntries(t, conn, "winner-1", models.KindReturn); n != 1 {
		t.Errorf("Expected 1 return entry for winner-1, got %d", n)
	}
	if n := testutil.CountEntries(t, conn, "winner-1", models.KindProfit); n != 1 {
		t.Errorf("Expected 1 profit entry for winner-1, got %d", n)
	}
	if n := testutil.CountEntries(t, conn, "loser-1", models.KindForfeit); n != 1 {
		t.Errorf("Expected 1 forfeit entry for loser-1, got %d", n)
	}
	if n := testutil.CountEntries(t, conn, "loser-1", models.KindReturn); n != 0 {
		t.Errorf("Expected no return entry for loser-1, got %d", n)
	}
	if n := testutil.CountEntries(t, conn, "proposer-1", models.KindReturn); n != 1 {
		t.Errorf("Expected 1 return entry for proposer-1, got %d", n)
	}
}

func TestSettleProposal_FlooringRemainder(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		Status:      models.StatusFinalized,
		FinalResult: strPtr(models.ResultApproved),
	})

	// Three equal winners splitting 100: floor(100/3)=33 each, 1 left over
	testutil.CastTestVote(t, conn, proposalID, "w1", 50, 1)
	testutil.CastTestVote(t, conn, proposalID, "w2", 50, 1)
	testutil.CastTestVote(t, conn, proposalID, "w3", 50, 1)
	testutil.CastTestVote(t, conn, proposalID, "l1", -50, 100)

	report, err := SettleProposal(conn, proposalID)
	if err != nil {
		t.Fatalf("SettleProposal failed: %v", err)
	}

	if report.Redistributed != 99 {
		t.Errorf("Expected 99 redistributed, got %d", report.Redistributed)
	}
	if report.Remainder != 1 {
		t.Errorf("Expected remainder 1, got %d", report.Remainder)
	}
	// Conservation: forfeited == redistributed + remainder, remainder < winner count
	if report.Remainder < 0 || report.Remainder >= int64(report.Winners) {
		t.Errorf("Remainder %d out of bounds [0, %d)", report.Remainder, report.Winners)
	}
	for _, w := range []string{"w1", "w2", "w3"} {
		if got := testutil.GetBalance(t, conn, w); got != 34 {
			t.Errorf("Balance for %s: expected 34, got %d", w, got)
		}
	}
}

func TestSettleProposal_ZeroWinners(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	t.Run("all neutral votes", func(t *testing.T) {
		proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
			ProposerID:  "prop-neutral",
			Status:      models.StatusFinalized,
			FinalResult: strPtr(models.ResultRejected),
			Collateral:  100,
		})
		testutil.CastTestVote(t, conn, proposalID, "n1", 0, 20)
		testutil.CastTestVote(t, conn, proposalID, "n2", 0, 30)

		report, err := SettleProposal(conn, proposalID)
		if err != nil {
			t.Fatalf("SettleProposal failed: %v", err)
		}

		if report.Winners != 0 || report.Losers != 0 || report.Neutral != 2 {
			t.Errorf("Expected 0/0/2, got %d/%d/%d", report.Winners, report.Losers, report.Neutral)
		}
		// Neutral stakes come back with zero profit
		if got := testutil.GetBalance(t, conn, "n1"); got != 20 {
			t.Errorf("Expected n1 balance 20, got %d", got)
		}
		if got := testutil.GetBalance(t, conn, "n2"); got != 30 {
			t.Errorf("Expected n2 balance 30, got %d", got)
		}
		if n := testutil.CountEntries(t, conn, "n1", models.KindProfit); n != 0 {
			t.Errorf("Expected no profit entries for neutral vote, got %d", n)
		}
	})

	t.Run("losers but no winners", func(t *testing.T) {
		// Rejected with only support votes: all directional votes lose,
		// settlement must complete without division errors.
		proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
			ProposerID:  "prop-lopsided",
			Status:      models.StatusFinalized,
			FinalResult: strPtr(models.ResultRejected),
			Collateral:  100,
		})
		testutil.CastTestVote(t, conn, proposalID, "s1", 70, 20)

		report, err := SettleProposal(conn, proposalID)
		if err != nil {
			t.Fatalf("SettleProposal failed: %v", err)
		}

		if report.Winners != 0 || report.Losers != 1 {
			t.Errorf("Expected 0 winners 1 loser, got %d/%d", report.Winners, report.Losers)
		}
		if report.Redistributed != 0 {
			t.Errorf("Expected nothing redistributed, got %d", report.Redistributed)
		}
		if got := testutil.GetBalance(t, conn, "s1"); got != 0 {
			t.Errorf("Expected s1 forfeited stake, balance 0, got %d", got)
		}
	})
}

func TestSettleProposal_ProposerForfeitOnRejection(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		ProposerID:  "proposer-r",
		Status:      models.StatusFinalized,
		FinalResult: strPtr(models.ResultRejected),
		Collateral:  100,
	})
	testutil.CastTestVote(t, conn, proposalID, "opposer", -50, 20)

	if _, err := SettleProposal(conn, proposalID); err != nil {
		t.Fatalf("SettleProposal failed: %v", err)
	}

	if got := testutil.GetBalance(t, conn, "proposer-r"); got != 0 {
		t.Errorf("Expected proposer balance 0 after forfeit, got %d", got)
	}
	if n := testutil.CountEntries(t, conn, "proposer-r", models.KindForfeit); n != 1 {
		t.Errorf("Expected 1 forfeit entry for proposer, got %d", n)
	}
	if n := testutil.CountEntries(t, conn, "proposer-r", models.KindReturn); n != 0 {
		t.Errorf("Expected no return entry for proposer, got %d", n)
	}
	// The rejected proposer's stake is not redistributed to voters: the
	// opposing winner only gets their own stake back (no loser pool).
	if got := testutil.GetBalance(t, conn, "opposer"); got != 20 {
		t.Errorf("Expected opposer balance 20, got %d", got)
	}
}

func TestSettleProposal_Idempotence(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		ProposerID:  "proposer-i",
		Status:      models.StatusFinalized,
		FinalResult: strPtr(models.ResultApproved),
		Collateral:  100,
	})
	testutil.CastTestVote(t, conn, proposalID, "w1", 50, 10)
	testutil.CastTestVote(t, conn, proposalID, "l1", -50, 30)

	if _, err := SettleProposal(conn, proposalID); err != nil {
		t.Fatalf("First settlement failed: %v", err)
	}

	balanceAfterFirst := testutil.GetBalance(t, conn, "w1")
	entriesAfterFirst := testutil.CountEntries(t, conn, "w1", models.KindReturn) +
		testutil.CountEntries(t, conn, "w1", models.KindProfit)

	_, err := SettleProposal(conn, proposalID)
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("Expected ErrAlreadySettled, got %v", err)
	}

	if got := testutil.GetBalance(t, conn, "w1"); got != balanceAfterFirst {
		t.Errorf("Balance changed on re-settlement: %d -> %d", balanceAfterFirst, got)
	}
	entriesAfterSecond := testutil.CountEntries(t, conn, "w1", models.KindReturn) +
		testutil.CountEntries(t, conn, "w1", models.KindProfit)
	if entriesAfterSecond != entriesAfterFirst {
		t.Errorf("Journal grew on re-settlement: %d -> %d", entriesAfterFirst, entriesAfterSecond)
	}
}

func TestSettleProposal_MarksVotesSettled(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		Status:      models.StatusFinalized,
		FinalResult: strPtr(models.ResultApproved),
	})
	testutil.CastTestVote(t, conn, proposalID, "v1", 10, 20)
	testutil.CastTestVote(t, conn, proposalID, "v2", -10, 20)

	if _, err := SettleProposal(conn, proposalID); err != nil {
		t.Fatalf("SettleProposal failed: %v", err)
	}

	var unsettled int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM vote WHERE proposal_id = $1 AND collateral_settled = FALSE
	`, proposalID).Scan(&unsettled)
	if err != nil {
		t.Fatal(err)
	}
	if unsettled != 0 {
		t.Errorf("Expected every vote marked settled, %d still unsettled", unsettled)
	}
}

func TestSettleProposal_NotReady(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	t.Run("active proposal", func(t *testing.T) {
		proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
			Status: models.StatusActive,
		})

		_, err := SettleProposal(conn, proposalID)
		if !errors.Is(err, ErrNotFinalized) {
			t.Errorf("Expected ErrNotFinalized, got %v", err)
		}
	})

	t.Run("missing proposal", func(t *testing.T) {
		_, err := SettleProposal(conn, "does-not-exist")
		if !errors.Is(err, ErrProposalNotFound) {
			t.Errorf("Expected ErrProposalNotFound, got %v", err)
		}
	})
}

func TestSettleProposal_NoOutcomeRollsBack(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	// Finalized but final_result never written: a data inconsistency. The
	// claim must roll back so the proposal stays eligible for retry.
	proposalID := testutil.CreateTestProposal(t, conn, testutil.TestProposal{
		ProposerID: "proposer-x",
		Status:     models.StatusFinalized,
		Collateral: 100,
	})
	testutil.CastTestVote(t, conn, proposalID, "v1", 50, 20)

	_, err := SettleProposal(conn, proposalID)
	if !errors.Is(err, ErrNoOutcome) {
		t.Fatalf("Expected ErrNoOutcome, got %v", err)
	}

	var settled bool
	if err := conn.QueryRow(`SELECT collateral_settled FROM proposal WHERE id = $1`, proposalID).Scan(&settled); err != nil {
		t.Fatal(err)
	}
	if settled {
		t.Error("Expected collateral_settled to remain false after rollback")
	}
	if got := testutil.GetBalance(t, conn, "v1"); got != 0 {
		t.Errorf("Expected balances untouched, got %d for v1", got)
	}
	if n := testutil.CountEntries(t, conn, "v1", models.KindReturn); n != 0 {
		t.Errorf("Expected no journal entries after rollback, got %d", n)
	}
}
