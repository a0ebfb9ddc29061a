package mysql

import (
	"context"
	"errors"
	"testing"

	agentDomain "lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/uow"
	"lender-agent-backend/pkg/id"
)

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	agentID := id.NewID32()
	boom := errors.New("boom")
	err := u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Agents.Create(ctx, makeAgent(agentID)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	// the create must have been rolled back
	if _, err := NewAgentRepository(db).GetByAgentID(ctx, agentID); !errors.Is(err, agentDomain.ErrNotFound) {
		t.Fatalf("rollback: want ErrNotFound, got %v", err)
	}
}

func TestWithinAgentTx_PassesLockedAgent(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)
	ctx := context.Background()

	a := makeAgent(id.NewID32())
	if err := NewAgentRepository(db).Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := u.WithinAgentTx(ctx, a.AgentID, func(r uow.Repos, locked *agentDomain.Agent) error {
		if locked.AgentID != a.AgentID {
			t.Fatalf("wrong agent passed: %s", locked.AgentID)
		}
		locked.Policy.AvailableCapital -= 1000
		return r.Agents.Save(ctx, locked)
	})
	if err != nil {
		t.Fatalf("WithinAgentTx: %v", err)
	}

	got, _ := NewAgentRepository(db).GetByAgentID(ctx, a.AgentID)
	if got.Policy.AvailableCapital != 49000 {
		t.Fatalf("capital: want 49000, got %v", got.Policy.AvailableCapital)
	}
}

func TestWithinAgentTx_UnknownAgent(t *testing.T) {
	db := openTestDB(t)
	u := NewGormUoW(db)

	err := u.WithinAgentTx(context.Background(), id.NewID32(), func(r uow.Repos, a *agentDomain.Agent) error {
		t.Fatalf("body must not run for an unknown agent")
		return nil
	})
	if !errors.Is(err, agentDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
