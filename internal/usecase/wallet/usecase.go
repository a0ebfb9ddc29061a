package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	domainWallet "lender-agent-backend/internal/domain/wallet"
	"lender-agent-backend/internal/domain/uow"
	"lender-agent-backend/pkg/id"
)

// ChainClient supplies on-chain balance lookups and address validation. It
// degrades instead of failing: connectivity problems surface as zero or mock
// balances, never as errors that abort a wallet flow.
type ChainClient interface {
	GetBalance(ctx context.Context, address string) (float64, error)
	IsValidAddress(address string) bool
}

type Options struct {
	ConfirmDelay time.Duration
	SessionTTL   time.Duration
	ChainID      int64
}

func (o *Options) defaults() {
	if o.ConfirmDelay <= 0 {
		o.ConfirmDelay = 5 * time.Second
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 5 * time.Minute
	}
	if o.ChainID == 0 {
		o.ChainID = 88882
	}
}

type Usecase struct {
	uow       uow.UnitOfWork
	chain     ChainClient
	confirmer *Confirmer
	opts      Options
	log       *logrus.Logger
}

func NewUsecase(tx uow.UnitOfWork, chain ChainClient, opts Options, log *logrus.Logger) *Usecase {
	opts.defaults()
	if log == nil {
		log = logrus.New()
	}
	u := &Usecase{uow: tx, chain: chain, opts: opts, log: log}
	u.confirmer = NewConfirmer(opts.ConfirmDelay, u.settle, u.abortPending)
	return u
}

// Confirmer exposes the supervisor so the process can shut it down cleanly.
func (u *Usecase) Confirmer() *Confirmer { return u.confirmer }

func (u *Usecase) settle(txID string) {
	if _, err := u.Confirm(context.Background(), txID); err != nil {
		u.log.WithError(err).WithField("tx_id", txID).Error("background confirmation failed")
	}
}

func (u *Usecase) abortPending(txID string) {
	if _, err := u.Fail(context.Background(), txID); err != nil {
		u.log.WithError(err).WithField("tx_id", txID).Error("failed to abort pending transaction")
	}
}

type ConnectionInfo struct {
	SessionID     string    `json:"session_id"`
	ConnectionURI string    `json:"connection_uri"`
	ExpiresAt     time.Time `json:"expires_at"`
	Status        string    `json:"status"`
}

// InitiateConnection opens a wallet-connect session for the agent. The
// wallet address is filled in when the user confirms.
func (u *Usecase) InitiateConnection(ctx context.Context, agentID string) (*ConnectionInfo, error) {
	now := time.Now().UTC()
	s := &domainWallet.Session{
		SessionID:   id.NewID32(),
		AgentID:     agentID,
		ChainID:     u.opts.ChainID,
		ConnectedAt: now,
		ExpiresAt:   now.Add(u.opts.SessionTTL),
		IsActive:    true,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Wallets.CreateSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{
		SessionID:     s.SessionID,
		ConnectionURI: fmt.Sprintf("wc:%s@1?bridge=https://bridge.walletconnect.org", s.SessionID),
		ExpiresAt:     s.ExpiresAt,
		Status:        "waiting_for_connection",
	}, nil
}

type ConnectionResult struct {
	AgentID       string  `json:"agent_id"`
	WalletAddress string  `json:"wallet_address"`
	Balance       float64 `json:"balance"`
	ChainID       int64   `json:"chain_id"`
	Status        string  `json:"status"`
}

// ConfirmConnection registers the wallet behind a pending session. The new
// wallet's balance is added to the aggregate; if the same address was
// already connected, its previous contribution is replaced, so confirmed
// deposits folded into the aggregate survive reconnects.
func (u *Usecase) ConfirmConnection(ctx context.Context, sessionID, address string, chainID int64) (*ConnectionResult, error) {
	if !u.chain.IsValidAddress(address) {
		return nil, domainWallet.ErrInvalidAddress
	}
	addr := strings.ToLower(address)

	balance, err := u.chain.GetBalance(ctx, address)
	if err != nil {
		u.log.WithError(err).WithField("address", addr).Warn("balance lookup failed, using zero")
		balance = 0
	}

	var out *ConnectionResult
	now := time.Now().UTC()
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		s, err := r.Wallets.GetSession(ctx, sessionID)
		if err != nil || s.Expired(now) {
			return domainWallet.ErrSessionExpired
		}
		if chainID != 0 {
			s.ChainID = chainID
		}

		acct, err := u.lockOrCreateAccount(ctx, r, s.AgentID)
		if err != nil {
			return err
		}

		if prev, err := r.Wallets.GetWallet(ctx, s.AgentID, addr); err == nil {
			acct.TotalBalance -= prev.Balance
			if _, err := r.Wallets.DeleteWallet(ctx, s.AgentID, addr); err != nil {
				return err
			}
		}
		w := &domainWallet.ConnectedWallet{
			AgentID:     s.AgentID,
			Address:     addr,
			ChainID:     s.ChainID,
			Balance:     balance,
			ConnectedAt: now,
		}
		if err := r.Wallets.CreateWallet(ctx, w); err != nil {
			return err
		}
		acct.TotalBalance += balance
		if err := r.Wallets.SaveAccount(ctx, acct); err != nil {
			return err
		}

		s.WalletAddress = addr
		s.ConnectedAt = now
		if err := r.Wallets.SaveSession(ctx, s); err != nil {
			return err
		}

		out = &ConnectionResult{
			AgentID:       s.AgentID,
			WalletAddress: addr,
			Balance:       balance,
			ChainID:       s.ChainID,
			Status:        "connected",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"agent_id": out.AgentID, "address": addr}).Info("wallet connected")
	return out, nil
}

// DisconnectWallet removes the wallet (case-insensitive address match) and
// recomputes the aggregate from the remaining connected wallets only. That
// recomputation drops any confirmed-deposit contribution previously folded
// into the balance; intended behavior upstream is ambiguous, so it is kept
// as-is rather than silently reconciled.
func (u *Usecase) DisconnectWallet(ctx context.Context, agentID, address string) error {
	addr := strings.ToLower(address)
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acct, err := r.Wallets.GetAccountForUpdate(ctx, agentID)
		if err != nil {
			return domainWallet.ErrWalletNotFound
		}
		removed, err := r.Wallets.DeleteWallet(ctx, agentID, addr)
		if err != nil {
			return err
		}
		if !removed {
			return domainWallet.ErrWalletNotFound
		}

		remaining, err := r.Wallets.ListWallets(ctx, agentID)
		if err != nil {
			return err
		}
		total := 0.0
		for _, w := range remaining {
			total += w.Balance
		}
		acct.TotalBalance = total
		if err := r.Wallets.SaveAccount(ctx, acct); err != nil {
			return err
		}
		return r.Wallets.DeactivateSessions(ctx, agentID, addr)
	})
}

type DepositInput struct {
	AgentID       string
	Amount        float64
	WalletAddress string
	ChainTxHash   string
}

// InitiateDeposit records a PENDING deposit and schedules its asynchronous
// confirmation. The caller gets the pending record back immediately; the
// balance moves only when the confirmation lands.
func (u *Usecase) InitiateDeposit(ctx context.Context, in DepositInput) (*domainWallet.Transaction, error) {
	if in.Amount <= 0 {
		return nil, domainWallet.ErrInvalidAmount
	}
	t := &domainWallet.Transaction{
		TxID:          id.NewID32(),
		AgentID:       in.AgentID,
		Type:          domainWallet.TypeDeposit,
		Amount:        in.Amount,
		WalletAddress: strings.ToLower(in.WalletAddress),
		ChainTxHash:   in.ChainTxHash,
		Status:        domainWallet.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := u.lockOrCreateAccount(ctx, r, in.AgentID); err != nil {
			return err
		}
		return r.Wallets.CreateTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	u.confirmer.Schedule(t.TxID)
	u.log.WithFields(logrus.Fields{"tx_id": t.TxID, "agent_id": in.AgentID, "amount": in.Amount}).Info("deposit initiated")
	return t, nil
}

type WithdrawalInput struct {
	AgentID            string
	Amount             float64
	DestinationAddress string
}

// InitiateWithdrawal records a PENDING withdrawal after checking it against
// the current aggregate balance. Pending withdrawals do not reduce the
// balance; the debit applies at confirmation.
func (u *Usecase) InitiateWithdrawal(ctx context.Context, in WithdrawalInput) (*domainWallet.Transaction, error) {
	if in.Amount <= 0 {
		return nil, domainWallet.ErrInvalidAmount
	}
	t := &domainWallet.Transaction{
		TxID:          id.NewID32(),
		AgentID:       in.AgentID,
		Type:          domainWallet.TypeWithdrawal,
		Amount:        in.Amount,
		WalletAddress: strings.ToLower(in.DestinationAddress),
		Status:        domainWallet.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acct, err := r.Wallets.GetAccountForUpdate(ctx, in.AgentID)
		if err != nil || acct.TotalBalance < in.Amount {
			return domainWallet.ErrInsufficientBalance
		}
		return r.Wallets.CreateTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	u.confirmer.Schedule(t.TxID)
	u.log.WithFields(logrus.Fields{"tx_id": t.TxID, "agent_id": in.AgentID, "amount": in.Amount}).Info("withdrawal initiated")
	return t, nil
}

// Confirm settles a pending transaction: exactly one balance delta, a
// confirmation timestamp, and a synthetic chain hash when none was supplied.
// Confirming a terminal transaction is a no-op that returns the stored
// record; the delta is never re-applied. A missing wallet account (agent
// state gone in the interim) fails the transaction instead of erroring.
func (u *Usecase) Confirm(ctx context.Context, txID string) (*domainWallet.Transaction, error) {
	var out *domainWallet.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Wallets.GetTransactionForUpdate(ctx, txID)
		if err != nil {
			return domainWallet.ErrTransactionNotFound
		}
		if t.Terminal() {
			out = t
			return nil
		}

		acct, err := r.Wallets.GetAccountForUpdate(ctx, t.AgentID)
		if err != nil {
			t.Status = domainWallet.StatusFailed
			out = t
			return r.Wallets.SaveTransaction(ctx, t)
		}

		now := time.Now().UTC()
		t.Status = domainWallet.StatusConfirmed
		t.ConfirmedAt = &now
		if t.ChainTxHash == "" {
			t.ChainTxHash = id.NewTxHash()
		}
		if err := r.Wallets.SaveTransaction(ctx, t); err != nil {
			return err
		}

		switch t.Type {
		case domainWallet.TypeDeposit:
			acct.TotalBalance += t.Amount
		case domainWallet.TypeWithdrawal:
			acct.TotalBalance -= t.Amount
		}
		if err := r.Wallets.SaveAccount(ctx, acct); err != nil {
			return err
		}
		if err := u.adjustCapital(ctx, r, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"tx_id": txID, "status": out.Status}).Info("transaction settled")
	return out, nil
}

// adjustCapital folds a confirmed movement into the lender's available
// capital. The agent record disappearing is tolerated: the wallet aggregate
// is still correct, there is just no capital to adjust.
func (u *Usecase) adjustCapital(ctx context.Context, r uow.Repos, t *domainWallet.Transaction) error {
	a, err := r.Agents.GetByAgentIDForUpdate(ctx, t.AgentID)
	if err != nil {
		return nil
	}
	switch t.Type {
	case domainWallet.TypeDeposit:
		a.Policy.AvailableCapital += t.Amount
	case domainWallet.TypeWithdrawal:
		// Capital never goes negative even when the withdrawal exceeds the
		// uncommitted portion.
		a.Policy.AvailableCapital -= t.Amount
		if a.Policy.AvailableCapital < 0 {
			a.Policy.AvailableCapital = 0
		}
	}
	return r.Agents.Save(ctx, a)
}

// Fail terminates a pending transaction with no balance effect. Like
// Confirm, it is an idempotent no-op on a terminal transaction.
func (u *Usecase) Fail(ctx context.Context, txID string) (*domainWallet.Transaction, error) {
	var out *domainWallet.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Wallets.GetTransactionForUpdate(ctx, txID)
		if err != nil {
			return domainWallet.ErrTransactionNotFound
		}
		if t.Terminal() {
			out = t
			return nil
		}
		t.Status = domainWallet.StatusFailed
		out = t
		return r.Wallets.SaveTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistory returns pending and settled transactions merged, newest first,
// optionally filtered by type.
func (u *Usecase) GetHistory(ctx context.Context, agentID string, typ *domainWallet.TransactionType) ([]domainWallet.Transaction, error) {
	var out []domainWallet.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		txs, err := r.Wallets.ListTransactionsByAgent(ctx, agentID)
		if err != nil {
			return err
		}
		if typ == nil {
			out = txs
			return nil
		}
		out = make([]domainWallet.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.Type == *typ {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (u *Usecase) GetTransaction(ctx context.Context, txID string) (*domainWallet.Transaction, error) {
	var out *domainWallet.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.Wallets.GetTransaction(ctx, txID)
		if err != nil {
			return domainWallet.ErrTransactionNotFound
		}
		out = t
		return nil
	})
	return out, err
}

// GetWalletInfo assembles the full per-agent projection.
func (u *Usecase) GetWalletInfo(ctx context.Context, agentID string) (*domainWallet.Info, error) {
	var out *domainWallet.Info
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		acct, err := r.Wallets.GetAccount(ctx, agentID)
		if err != nil {
			return domainWallet.ErrAccountNotFound
		}
		wallets, err := r.Wallets.ListWallets(ctx, agentID)
		if err != nil {
			return err
		}
		txs, err := r.Wallets.ListTransactionsByAgent(ctx, agentID)
		if err != nil {
			return err
		}
		info := &domainWallet.Info{
			AgentID:          agentID,
			ConnectedWallets: wallets,
			TotalBalance:     acct.TotalBalance,
		}
		for _, t := range txs {
			switch {
			case t.Status == domainWallet.StatusPending && t.Type == domainWallet.TypeDeposit:
				info.PendingDeposits = append(info.PendingDeposits, t)
			case t.Status == domainWallet.StatusPending && t.Type == domainWallet.TypeWithdrawal:
				info.PendingWithdrawals = append(info.PendingWithdrawals, t)
			default:
				info.TransactionHistory = append(info.TransactionHistory, t)
			}
		}
		out = info
		return nil
	})
	return out, err
}

// SweepExpiredSessions deactivates wallet-connect sessions past expiry.
func (u *Usecase) SweepExpiredSessions(ctx context.Context) (int64, error) {
	var n int64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		n, err = r.Wallets.ExpireSessions(ctx, time.Now().UTC())
		return err
	})
	return n, err
}

// SweepStuckTransactions fails transactions that stayed PENDING longer than
// maxAge, e.g. because the process restarted before their confirmation task
// ran. Fail is idempotent, so racing an in-flight confirmation is safe.
func (u *Usecase) SweepStuckTransactions(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	var stale []domainWallet.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		stale, err = r.Wallets.ListStalePending(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}
	failed := 0
	for i := range stale {
		if _, err := u.Fail(ctx, stale[i].TxID); err != nil {
			if errors.Is(err, domainWallet.ErrTransactionNotFound) {
				continue
			}
			return failed, err
		}
		failed++
	}
	if failed > 0 {
		u.log.WithField("count", failed).Warn("failed stuck pending transactions")
	}
	return failed, nil
}

// lockOrCreateAccount returns the locked aggregate row, creating it on first
// use for the agent.
func (u *Usecase) lockOrCreateAccount(ctx context.Context, r uow.Repos, agentID string) (*domainWallet.Account, error) {
	acct, err := r.Wallets.GetAccountForUpdate(ctx, agentID)
	if err == nil {
		return acct, nil
	}
	acct = &domainWallet.Account{AgentID: agentID}
	if err := r.Wallets.CreateAccount(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}
