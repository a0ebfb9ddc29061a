package wallet

import (
	"context"
	"time"
)

type Repository interface {
	// Transactions
	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, txID string) (*Transaction, error)
	GetTransactionForUpdate(ctx context.Context, txID string) (*Transaction, error)
	SaveTransaction(ctx context.Context, t *Transaction) error
	// ListTransactionsByAgent returns all transactions for the agent,
	// newest first by creation time.
	ListTransactionsByAgent(ctx context.Context, agentID string) ([]Transaction, error)
	ListPending(ctx context.Context, agentID string, typ TransactionType) ([]Transaction, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]Transaction, error)

	// Accounts
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, agentID string) (*Account, error)
	GetAccountForUpdate(ctx context.Context, agentID string) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error

	// Connected wallets; address arguments must already be lowercased.
	CreateWallet(ctx context.Context, w *ConnectedWallet) error
	GetWallet(ctx context.Context, agentID, address string) (*ConnectedWallet, error)
	ListWallets(ctx context.Context, agentID string) ([]ConnectedWallet, error)
	DeleteWallet(ctx context.Context, agentID, address string) (bool, error)

	// Sessions
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	SaveSession(ctx context.Context, s *Session) error
	DeactivateSessions(ctx context.Context, agentID, address string) error
	// ExpireSessions deactivates active sessions whose expiry has passed
	// and reports how many were touched.
	ExpireSessions(ctx context.Context, now time.Time) (int64, error)
}
