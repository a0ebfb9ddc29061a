package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	agentDomain "lender-agent-backend/internal/domain/agent"
)

type AgentRepository struct{ db *gorm.DB }

func NewAgentRepository(db *gorm.DB) *AgentRepository { return &AgentRepository{db: db} }

func (r *AgentRepository) Create(ctx context.Context, a *agentDomain.Agent) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AgentRepository) Save(ctx context.Context, a *agentDomain.Agent) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *AgentRepository) GetByAgentID(ctx context.Context, agentID string) (*agentDomain.Agent, error) {
	var out agentDomain.Agent
	res := r.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, agentDomain.ErrNotFound
	}
	return &out, res.Error
}

// GetByAgentIDForUpdate locks the agent row for the duration of the
// surrounding transaction.
func (r *AgentRepository) GetByAgentIDForUpdate(ctx context.Context, agentID string) (*agentDomain.Agent, error) {
	var out agentDomain.Agent
	res := forUpdate(r.db.WithContext(ctx)).
		Where("agent_id = ?", agentID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, agentDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AgentRepository) List(ctx context.Context) ([]agentDomain.Agent, error) {
	var out []agentDomain.Agent
	res := r.db.WithContext(ctx).Order("id ASC").Find(&out)
	return out, res.Error
}
