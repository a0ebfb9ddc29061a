package mysql

import (
	"context"

	"gorm.io/gorm"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Agents:  &AgentRepository{db: tx},
		Loans:   &LoanRepository{db: tx},
		Wallets: &WalletRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinAgentTx(ctx context.Context, agentID string, fn func(r uow.Repos, a *agent.Agent) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the agent row up-front to prevent races
		a, err := r.Agents.GetByAgentIDForUpdate(ctx, agentID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
