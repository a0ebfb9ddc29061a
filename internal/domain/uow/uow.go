package uow

import (
	"context"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/domain/wallet"
)

type Repos struct {
	Agents  agent.Repository
	Loans   loan.Repository
	Wallets wallet.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the agent row first, then pass it in. All capital
	// and loan-state mutations for one agent serialize on this lock.
	WithinAgentTx(ctx context.Context, agentID string, fn func(r Repos, a *agent.Agent) error) error
}
