package agent

import "context"

type Repository interface {
	Create(ctx context.Context, a *Agent) error
	GetByAgentID(ctx context.Context, agentID string) (*Agent, error)
	// GetByAgentIDForUpdate locks the agent row; all capital mutations for
	// one agent serialize on this lock.
	GetByAgentIDForUpdate(ctx context.Context, agentID string) (*Agent, error)
	Save(ctx context.Context, a *Agent) error
	List(ctx context.Context) ([]Agent, error)
}
