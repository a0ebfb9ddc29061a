package walletmock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "lender-agent-backend/internal/domain/wallet"
)

var _ domain.Repository = (*Mem)(nil)

// Mem is an in-memory wallet repository for tests. The fund flows thread a
// lot of state between calls (sessions, wallets, accounts, transactions), so
// a state-backed fake beats per-method function stubs here.
type Mem struct {
	mu       sync.Mutex
	txs      map[string]domain.Transaction
	accounts map[string]domain.Account
	wallets  map[string]domain.ConnectedWallet // agentID + "/" + address
	sessions map[string]domain.Session
}

func NewMem() *Mem {
	return &Mem{
		txs:      make(map[string]domain.Transaction),
		accounts: make(map[string]domain.Account),
		wallets:  make(map[string]domain.ConnectedWallet),
		sessions: make(map[string]domain.Session),
	}
}

func walletKey(agentID, address string) string {
	return agentID + "/" + strings.ToLower(address)
}

// ---- Transactions ----

func (m *Mem) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[t.TxID] = *t
	return nil
}

func (m *Mem) GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txs[txID]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

func (m *Mem) GetTransactionForUpdate(ctx context.Context, txID string) (*domain.Transaction, error) {
	return m.GetTransaction(ctx, txID)
}

func (m *Mem) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[t.TxID] = *t
	return nil
}

func (m *Mem) ListTransactionsByAgent(ctx context.Context, agentID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.txs {
		if t.AgentID == agentID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Mem) ListPending(ctx context.Context, agentID string, typ domain.TransactionType) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.txs {
		if t.AgentID == agentID && t.Type == typ && t.Status == domain.StatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Mem) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for _, t := range m.txs {
		if t.Status == domain.StatusPending && t.CreatedAt.Before(olderThan) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ---- Accounts ----

func (m *Mem) CreateAccount(ctx context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.AgentID] = *a
	return nil
}

func (m *Mem) GetAccount(ctx context.Context, agentID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[agentID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (m *Mem) GetAccountForUpdate(ctx context.Context, agentID string) (*domain.Account, error) {
	return m.GetAccount(ctx, agentID)
}

func (m *Mem) SaveAccount(ctx context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.AgentID] = *a
	return nil
}

// ---- Connected wallets ----

func (m *Mem) CreateWallet(ctx context.Context, w *domain.ConnectedWallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[walletKey(w.AgentID, w.Address)] = *w
	return nil
}

func (m *Mem) GetWallet(ctx context.Context, agentID, address string) (*domain.ConnectedWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[walletKey(agentID, address)]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (m *Mem) ListWallets(ctx context.Context, agentID string) ([]domain.ConnectedWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ConnectedWallet
	for _, w := range m.wallets {
		if w.AgentID == agentID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (m *Mem) DeleteWallet(ctx context.Context, agentID, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := walletKey(agentID, address)
	if _, ok := m.wallets[k]; !ok {
		return false, nil
	}
	delete(m.wallets, k)
	return true, nil
}

// ---- Sessions ----

func (m *Mem) CreateSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = *s
	return nil
}

func (m *Mem) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	return &s, nil
}

func (m *Mem) SaveSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = *s
	return nil
}

func (m *Mem) DeactivateSessions(ctx context.Context, agentID, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr := strings.ToLower(address)
	for id, s := range m.sessions {
		if s.AgentID == agentID && strings.ToLower(s.WalletAddress) == addr {
			s.IsActive = false
			m.sessions[id] = s
		}
	}
	return nil
}

func (m *Mem) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsActive && now.After(s.ExpiresAt) {
			s.IsActive = false
			m.sessions[id] = s
			n++
		}
	}
	return n, nil
}
