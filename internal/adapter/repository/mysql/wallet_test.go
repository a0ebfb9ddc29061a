package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "lender-agent-backend/internal/domain/wallet"
	"lender-agent-backend/pkg/id"
)

func makeTx(agentID string, typ domain.TransactionType) *domain.Transaction {
	return &domain.Transaction{
		TxID:          id.NewID32(),
		AgentID:       agentID,
		Type:          typ,
		Amount:        100,
		WalletAddress: "0x0000000000000000000000000000000000000001",
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestWalletTransactionLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	tx := makeTx(agentID, domain.TypeDeposit)
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransactionForUpdate(ctx, tx.TxID)
	if err != nil {
		t.Fatalf("GetTransactionForUpdate: %v", err)
	}
	now := time.Now().UTC()
	got.Status = domain.StatusConfirmed
	got.ConfirmedAt = &now
	got.ChainTxHash = id.NewTxHash()
	if err := repo.SaveTransaction(ctx, got); err != nil {
		t.Fatalf("SaveTransaction: %v", err)
	}

	back, err := repo.GetTransaction(ctx, tx.TxID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if back.Status != domain.StatusConfirmed || back.ConfirmedAt == nil || back.ChainTxHash == "" {
		t.Errorf("confirm not persisted: %+v", back)
	}

	if _, err := repo.GetTransaction(ctx, id.NewID32()); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("unknown tx: want ErrTransactionNotFound, got %v", err)
	}
}

func TestWalletListStalePending(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	stale := makeTx(agentID, domain.TypeDeposit)
	stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
	fresh := makeTx(agentID, domain.TypeDeposit)
	settled := makeTx(agentID, domain.TypeWithdrawal)
	settled.CreatedAt = time.Now().UTC().Add(-time.Hour)
	settled.Status = domain.StatusConfirmed

	for _, tx := range []*domain.Transaction{stale, fresh, settled} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	got, err := repo.ListStalePending(ctx, time.Now().UTC().Add(-15*time.Minute))
	if err != nil {
		t.Fatalf("ListStalePending: %v", err)
	}
	if len(got) != 1 || got[0].TxID != stale.TxID {
		t.Fatalf("stale: want only %s, got %+v", stale.TxID, got)
	}
}

func TestWalletHistoryNewestFirst(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	older := makeTx(agentID, domain.TypeDeposit)
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := makeTx(agentID, domain.TypeWithdrawal)

	repo.CreateTransaction(ctx, older)
	repo.CreateTransaction(ctx, newer)

	txs, err := repo.ListTransactionsByAgent(ctx, agentID)
	if err != nil {
		t.Fatalf("ListTransactionsByAgent: %v", err)
	}
	if len(txs) != 2 || txs[0].TxID != newer.TxID {
		t.Fatalf("order: %+v", txs)
	}
}

func TestWalletAccountAndWallets(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	if err := repo.CreateAccount(ctx, &domain.Account{AgentID: agentID}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	acct, err := repo.GetAccountForUpdate(ctx, agentID)
	if err != nil {
		t.Fatalf("GetAccountForUpdate: %v", err)
	}
	acct.TotalBalance = 250
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	back, _ := repo.GetAccount(ctx, agentID)
	if back.TotalBalance != 250 {
		t.Fatalf("balance: %v", back.TotalBalance)
	}

	addr := "0x00000000000000000000000000000000000000aa"
	w := &domain.ConnectedWallet{AgentID: agentID, Address: addr, Balance: 42, ConnectedAt: time.Now().UTC()}
	if err := repo.CreateWallet(ctx, w); err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	if _, err := repo.GetWallet(ctx, agentID, addr); err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	list, _ := repo.ListWallets(ctx, agentID)
	if len(list) != 1 {
		t.Fatalf("ListWallets: %d", len(list))
	}

	removed, err := repo.DeleteWallet(ctx, agentID, addr)
	if err != nil || !removed {
		t.Fatalf("DeleteWallet: removed=%v err=%v", removed, err)
	}
	removed, err = repo.DeleteWallet(ctx, agentID, addr)
	if err != nil || removed {
		t.Fatalf("second DeleteWallet must report false, got %v", removed)
	}
	if _, err := repo.GetWallet(ctx, agentID, addr); !errors.Is(err, domain.ErrWalletNotFound) {
		t.Fatalf("deleted wallet: want ErrWalletNotFound, got %v", err)
	}
}

func TestWalletSessions(t *testing.T) {
	db := openTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	now := time.Now().UTC()
	expired := &domain.Session{
		SessionID: id.NewID32(), AgentID: agentID,
		ConnectedAt: now.Add(-10 * time.Minute), ExpiresAt: now.Add(-5 * time.Minute), IsActive: true,
	}
	live := &domain.Session{
		SessionID: id.NewID32(), AgentID: agentID,
		ConnectedAt: now, ExpiresAt: now.Add(5 * time.Minute), IsActive: true,
	}
	for _, s := range []*domain.Session{expired, live} {
		if err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	n, err := repo.ExpireSessions(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("ExpireSessions: n=%d err=%v", n, err)
	}
	got, err := repo.GetSession(ctx, expired.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.IsActive || !got.Expired(now) {
		t.Fatalf("expired session still active: %+v", got)
	}
	got, _ = repo.GetSession(ctx, live.SessionID)
	if !got.IsActive {
		t.Fatalf("live session must stay active")
	}

	addr := "0x00000000000000000000000000000000000000bb"
	live.WalletAddress = addr
	repo.SaveSession(ctx, live)
	if err := repo.DeactivateSessions(ctx, agentID, addr); err != nil {
		t.Fatalf("DeactivateSessions: %v", err)
	}
	got, _ = repo.GetSession(ctx, live.SessionID)
	if got.IsActive {
		t.Fatalf("session for disconnected wallet must be inactive")
	}
}
