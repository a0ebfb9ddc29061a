package agentmock

import (
	"context"

	domain "lender-agent-backend/internal/domain/agent"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                func(ctx context.Context, a *domain.Agent) error
	GetByAgentIDFn          func(ctx context.Context, agentID string) (*domain.Agent, error)
	GetByAgentIDForUpdateFn func(ctx context.Context, agentID string) (*domain.Agent, error)
	SaveFn                  func(ctx context.Context, a *domain.Agent) error
	ListFn                  func(ctx context.Context) ([]domain.Agent, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Agent) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAgentID(ctx context.Context, agentID string) (*domain.Agent, error) {
	if m.GetByAgentIDFn != nil {
		return m.GetByAgentIDFn(ctx, agentID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByAgentIDForUpdate(ctx context.Context, agentID string) (*domain.Agent, error) {
	if m.GetByAgentIDForUpdateFn != nil {
		return m.GetByAgentIDForUpdateFn(ctx, agentID)
	}
	// Fall through to the plain read so passthrough tests need only one fn.
	return m.GetByAgentID(ctx, agentID)
}

func (m *Repo) Save(ctx context.Context, a *domain.Agent) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Agent, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}
