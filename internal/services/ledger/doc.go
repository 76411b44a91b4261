/*
Package ledger maintains the points ledger: the append-only transaction log
that backs every user's balance.

Record is the only legal way to change a balance. Each call locks the account
row, computes the new balance, writes a transaction carrying a BalanceAfter
snapshot, updates the account, and enqueues a notification outbox event, all
in one database transaction. After a successful call the account balance, the
sum of the user's transactions, and the latest BalanceAfter agree.

The ledger does not enforce a non-negative balance. Sufficient funds is a
caller-enforced precondition for debits: callers either use ValidateBalance
before an isolated debit, or pre-check inside the same transaction while
holding the account lock (see the rewards service).

Usage:

	svc := ledger.NewService(repo, cache, logger, metrics)

	txn, err := svc.Record(ctx, ledger.RecordRequest{
	    UserID:      userID,
	    Amount:      -100,
	    Type:        models.TransactionTypePromotion,
	    Description: "listing promotion, 1 day",
	})

	balance, err := svc.GetBalance(ctx, userID)
*/
package ledger
