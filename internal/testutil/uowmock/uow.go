package uowmock

import (
	"context"
	"errors"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinAgentTxFn func(ctx context.Context, agentID string, fn func(r uow.Repos, a *agent.Agent) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinAgentTx(fn func(context.Context, string, func(uow.Repos, *agent.Agent) error) error) *UoW {
	m.WithinAgentTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough builds a UoW whose transactions just run the body against the
// given repos, with WithinAgentTx resolving the agent through the locked read.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(repos)
		},
		WithinAgentTxFn: func(ctx context.Context, agentID string, fn func(r uow.Repos, a *agent.Agent) error) error {
			a, err := repos.Agents.GetByAgentIDForUpdate(ctx, agentID)
			if err != nil {
				return err
			}
			return fn(repos, a)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinAgentTx(ctx context.Context, agentID string, fn func(r uow.Repos, a *agent.Agent) error) error {
	if m.WithinAgentTxFn != nil {
		return m.WithinAgentTxFn(ctx, agentID, fn)
	}
	return errUnimplemented
}
