// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements the internal collateral ledger: a materialized
balance per user plus an append-only journal of every balance-affecting
event.

This ledger is an off-chain mirror. The external token program is the
custodian of real balances; everything here operates on transfers that are
assumed already confirmed upstream.

# Operations

	store := ledger.NewStore(db)

	balance, err := store.GetBalance(userID)
	err = store.Credit(ledger.Entry{UserID: u, Kind: models.KindReturn, Amount: 20, ...})
	err = store.Debit(ledger.Entry{UserID: u, Kind: models.KindLock, Amount: 100, ...})
	entries, err := store.ListEntries(userID)

Credit and Debit each run in their own transaction: the balance change and
the journal row commit together, never one without the other. Debit is a
single conditional UPDATE guarded by balance >= amount, so concurrent
debits serialize and cannot overdraw; it returns ErrInsufficientFunds when
the guard fails.

# Transaction-scoped variants

CreditTx, DebitTx and AppendTx take a caller-owned *sql.Tx so the
settlement engine can fold many ledger writes plus its own guard flags
into one atomic unit of work. AppendTx writes journal-only entries
(forfeits - the stake already left the balance when it was locked).

# Journal invariant

Replaying a user's entries (lock debits against return/profit credits)
yields exactly the materialized balance delta; ledger_test.go asserts it.
*/
package ledger
