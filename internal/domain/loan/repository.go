package loan

import "context"

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByLoanID(ctx context.Context, loanID string) (*Record, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Record, error)
	Save(ctx context.Context, r *Record) error
	// ListActiveByAgentID returns the agent's APPROVED loans, oldest first.
	ListActiveByAgentID(ctx context.Context, agentID string) ([]Record, error)
	Count(ctx context.Context) (int64, error)
}
