package wallet

import (
	"time"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is a single external fund movement. PENDING transitions to
// CONFIRMED or FAILED at most once; a terminal transaction never changes
// again and its balance delta is never re-applied.
type Transaction struct {
	ID      uint64          `gorm:"primaryKey;column:id" json:"-"`
	TxID    string          `gorm:"size:32;uniqueIndex:ux_fund_tx_id" json:"id"`
	AgentID string          `gorm:"size:32;index:idx_fund_tx_agent" json:"agent_id"`
	Type    TransactionType `gorm:"size:16" json:"transaction_type"`
	Amount  float64         `gorm:"type:decimal(18,2)" json:"amount"`
	// WalletAddress is the sender for deposits, the destination for
	// withdrawals. Stored lowercase.
	WalletAddress string            `gorm:"size:64" json:"wallet_address"`
	ChainTxHash   string            `gorm:"size:80" json:"transaction_hash,omitempty"`
	Status        TransactionStatus `gorm:"size:16;index:idx_fund_tx_agent;default:'pending'" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"-"`
}

func (Transaction) TableName() string { return "fund_transactions" }

func (t *Transaction) Terminal() bool {
	return t.Status == StatusConfirmed || t.Status == StatusFailed
}

// ConnectedWallet is one externally owned wallet linked to an agent.
// Addresses are stored lowercase so lookups are case-insensitive.
type ConnectedWallet struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	AgentID     string    `gorm:"size:32;uniqueIndex:ux_wallets_agent_addr" json:"agent_id"`
	Address     string    `gorm:"size:64;uniqueIndex:ux_wallets_agent_addr" json:"address"`
	ChainID     int64     `json:"chain_id"`
	Balance     float64   `gorm:"type:decimal(18,8)" json:"balance"`
	ConnectedAt time.Time `json:"connected_at"`
}

func (ConnectedWallet) TableName() string { return "connected_wallets" }

// Account is the per-agent aggregate. TotalBalance folds in connected-wallet
// balances and confirmed deposits minus confirmed withdrawals; pending
// transactions never touch it.
type Account struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	AgentID      string    `gorm:"size:32;uniqueIndex:ux_wallet_accounts_agent" json:"agent_id"`
	TotalBalance float64   `gorm:"type:decimal(18,8)" json:"total_balance"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Account) TableName() string { return "wallet_accounts" }

// Session is a wallet-connect handshake. Confirming after ExpiresAt or
// after deactivation fails with ErrSessionExpired.
type Session struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	SessionID     string    `gorm:"size:32;uniqueIndex:ux_wallet_sessions_id" json:"session_id"`
	AgentID       string    `gorm:"size:32;index:idx_wallet_sessions_agent" json:"agent_id"`
	WalletAddress string    `gorm:"size:64" json:"wallet_address"`
	ChainID       int64     `json:"chain_id"`
	ConnectedAt   time.Time `json:"connected_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}

func (Session) TableName() string { return "wallet_sessions" }

func (s *Session) Expired(now time.Time) bool {
	return !s.IsActive || now.After(s.ExpiresAt)
}

// Info is the read projection served to clients: the aggregate plus the
// pending and settled transactions behind it, newest first.
type Info struct {
	AgentID            string            `json:"agent_id"`
	ConnectedWallets   []ConnectedWallet `json:"connected_wallets"`
	TotalBalance       float64           `json:"total_balance"`
	PendingDeposits    []Transaction     `json:"pending_deposits"`
	PendingWithdrawals []Transaction     `json:"pending_withdrawals"`
	TransactionHistory []Transaction     `json:"transaction_history"`
}
