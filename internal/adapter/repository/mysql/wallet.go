package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	walletDomain "lender-agent-backend/internal/domain/wallet"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

// --- transactions ---

func (r *WalletRepository) CreateTransaction(ctx context.Context, t *walletDomain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *WalletRepository) SaveTransaction(ctx context.Context, t *walletDomain.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *WalletRepository) GetTransaction(ctx context.Context, txID string) (*walletDomain.Transaction, error) {
	var out walletDomain.Transaction
	res := r.db.WithContext(ctx).Where("tx_id = ?", txID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrTransactionNotFound
	}
	return &out, res.Error
}

func (r *WalletRepository) GetTransactionForUpdate(ctx context.Context, txID string) (*walletDomain.Transaction, error) {
	var out walletDomain.Transaction
	res := forUpdate(r.db.WithContext(ctx)).
		Where("tx_id = ?", txID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrTransactionNotFound
	}
	return &out, res.Error
}

func (r *WalletRepository) ListTransactionsByAgent(ctx context.Context, agentID string) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *WalletRepository) ListPending(ctx context.Context, agentID string, typ walletDomain.TransactionType) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("agent_id = ? AND type = ? AND status = ?", agentID, typ, walletDomain.StatusPending).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *WalletRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]walletDomain.Transaction, error) {
	var out []walletDomain.Transaction
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", walletDomain.StatusPending, olderThan).
		Find(&out)
	return out, res.Error
}

// --- accounts ---

func (r *WalletRepository) CreateAccount(ctx context.Context, a *walletDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *WalletRepository) SaveAccount(ctx context.Context, a *walletDomain.Account) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *WalletRepository) GetAccount(ctx context.Context, agentID string) (*walletDomain.Account, error) {
	var out walletDomain.Account
	res := r.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrAccountNotFound
	}
	return &out, res.Error
}

func (r *WalletRepository) GetAccountForUpdate(ctx context.Context, agentID string) (*walletDomain.Account, error) {
	var out walletDomain.Account
	res := forUpdate(r.db.WithContext(ctx)).
		Where("agent_id = ?", agentID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrAccountNotFound
	}
	return &out, res.Error
}

// --- connected wallets ---

func (r *WalletRepository) CreateWallet(ctx context.Context, w *walletDomain.ConnectedWallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) GetWallet(ctx context.Context, agentID, address string) (*walletDomain.ConnectedWallet, error) {
	var out walletDomain.ConnectedWallet
	res := r.db.WithContext(ctx).
		Where("agent_id = ? AND address = ?", agentID, address).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrWalletNotFound
	}
	return &out, res.Error
}

func (r *WalletRepository) ListWallets(ctx context.Context, agentID string) ([]walletDomain.ConnectedWallet, error) {
	var out []walletDomain.ConnectedWallet
	res := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("connected_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *WalletRepository) DeleteWallet(ctx context.Context, agentID, address string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("agent_id = ? AND address = ?", agentID, address).
		Delete(&walletDomain.ConnectedWallet{})
	return res.RowsAffected > 0, res.Error
}

// --- sessions ---

func (r *WalletRepository) CreateSession(ctx context.Context, s *walletDomain.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *WalletRepository) SaveSession(ctx context.Context, s *walletDomain.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *WalletRepository) GetSession(ctx context.Context, sessionID string) (*walletDomain.Session, error) {
	var out walletDomain.Session
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, walletDomain.ErrSessionExpired
	}
	return &out, res.Error
}

func (r *WalletRepository) DeactivateSessions(ctx context.Context, agentID, address string) error {
	return r.db.WithContext(ctx).
		Model(&walletDomain.Session{}).
		Where("agent_id = ? AND wallet_address = ?", agentID, address).
		Update("is_active", false).Error
}

func (r *WalletRepository) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&walletDomain.Session{}).
		Where("is_active = ? AND expires_at < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
