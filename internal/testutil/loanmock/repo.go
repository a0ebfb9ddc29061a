package loanmock

import (
	"context"

	domain "lender-agent-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, r *domain.Record) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Record, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Record, error)
	SaveFn                 func(ctx context.Context, r *domain.Record) error
	ListActiveByAgentIDFn  func(ctx context.Context, agentID string) ([]domain.Record, error)
	CountFn                func(ctx context.Context) (int64, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Record, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Record, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return m.GetByLoanID(ctx, loanID)
}

func (m *Repo) Save(ctx context.Context, r *domain.Record) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListActiveByAgentID(ctx context.Context, agentID string) ([]domain.Record, error) {
	if m.ListActiveByAgentIDFn != nil {
		return m.ListActiveByAgentIDFn(ctx, agentID)
	}
	return nil, nil
}

func (m *Repo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}
