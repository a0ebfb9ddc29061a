package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/pkg/id"
)

func makeRecord(loanID, agentID string) *domain.Record {
	return &domain.Record{
		LoanID:         loanID,
		AgentID:        agentID,
		BorrowerID:     id.NewID32(),
		Amount:         2000,
		InterestRate:   10,
		DurationDays:   30,
		CreditScore:    750,
		RiskScore:      14.5,
		Recommendation: domain.RecommendApprove,
		Confidence:     0.86,
		Status:         domain.StatusApproved,
		ExpectedReturn: 2200,
		ApprovedAt:     time.Now().UTC(),
	}
}

func TestLoanCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	rec := makeRecord(loanID, id.NewID32())
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if got.LoanID != loanID || got.Status != domain.StatusApproved {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, err := repo.GetByLoanID(ctx, id.NewID32()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown loan: want ErrNotFound, got %v", err)
	}
}

func TestLoanSaveTransition(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	rec := makeRecord(id.NewID32(), id.NewID32())
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now().UTC()
	rec.Status = domain.StatusRepaid
	rec.RepaidAt = &now
	rec.RepaidAmount = 2200
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByLoanIDForUpdate(ctx, rec.LoanID)
	if err != nil {
		t.Fatalf("GetByLoanIDForUpdate: %v", err)
	}
	if got.Status != domain.StatusRepaid || got.RepaidAmount != 2200 || got.RepaidAt == nil {
		t.Errorf("transition not persisted: %+v", got)
	}
	if !got.Terminal() {
		t.Errorf("repaid record must be terminal")
	}
}

func TestLoanListActiveByAgentID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	agentID := id.NewID32()
	first := makeRecord(id.NewID32(), agentID)
	first.ApprovedAt = time.Now().UTC().Add(-time.Hour)
	second := makeRecord(id.NewID32(), agentID)
	repaid := makeRecord(id.NewID32(), agentID)
	repaid.Status = domain.StatusRepaid
	other := makeRecord(id.NewID32(), id.NewID32())

	for _, r := range []*domain.Record{second, first, repaid, other} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	active, err := repo.ListActiveByAgentID(ctx, agentID)
	if err != nil {
		t.Fatalf("ListActiveByAgentID: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active: want 2, got %d", len(active))
	}
	// oldest first
	if active[0].LoanID != first.LoanID {
		t.Errorf("order: want %s first, got %s", first.LoanID, active[0].LoanID)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 4 {
		t.Fatalf("Count: want 4, got %d err=%v", n, err)
	}
}
