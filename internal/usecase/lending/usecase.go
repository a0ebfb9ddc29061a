package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	domainAgent "lender-agent-backend/internal/domain/agent"
	domainLoan "lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/domain/uow"
	"lender-agent-backend/internal/usecase/risk"
	"lender-agent-backend/pkg/id"
)

// Evaluator is an alternate source of loan evaluations with the same
// contract as the deterministic engine. Any failure from it is non-fatal:
// the coordinator falls back to the engine.
type Evaluator interface {
	Evaluate(ctx context.Context, req *domainLoan.Request, pol domainAgent.Policy) (*domainLoan.Evaluation, error)
}

type Usecase struct {
	uow       uow.UnitOfWork
	engine    *risk.Engine
	evaluator Evaluator // optional
	log       *logrus.Logger
}

// NewUsecase: evaluator may be nil, in which case only the deterministic
// engine is used.
func NewUsecase(tx uow.UnitOfWork, engine *risk.Engine, evaluator Evaluator, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.New()
	}
	return &Usecase{uow: tx, engine: engine, evaluator: evaluator, log: log}
}

func (u *Usecase) CreateAgent(ctx context.Context, in CreateAgentInput) (*domainAgent.Agent, error) {
	if in.Name == "" || in.Policy.MaxLoanAmount <= 0 || in.Policy.AvailableCapital <= 0 {
		return nil, fmt.Errorf("invalid agent input: %w", domainLoan.ErrInvalidAmount)
	}
	a := &domainAgent.Agent{
		AgentID:  id.NewID32(),
		Name:     in.Name,
		Policy:   in.Policy,
		IsActive: true,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Agents.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"agent_id": a.AgentID, "name": a.Name}).Info("lender agent created")
	return a, nil
}

func (u *Usecase) GetAgent(ctx context.Context, agentID string) (*domainAgent.Agent, error) {
	var out *domainAgent.Agent
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Agents.GetByAgentID(ctx, agentID)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

// Reconfigure replaces the policy wholesale. Existing active loans are not
// re-validated against the new policy.
func (u *Usecase) Reconfigure(ctx context.Context, agentID string, pol domainAgent.Policy) error {
	return u.uow.WithinAgentTx(ctx, agentID, func(r uow.Repos, a *domainAgent.Agent) error {
		a.Policy = pol
		return r.Agents.Save(ctx, a)
	})
}

// EvaluateOnly runs the deterministic engine without mutating anything.
func (u *Usecase) EvaluateOnly(ctx context.Context, agentID string, req *domainLoan.Request) (*domainLoan.Evaluation, error) {
	a, err := u.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return u.engine.Evaluate(req, a.Policy), nil
}

// EvaluateExternal runs the configured external evaluator, falling back to
// the deterministic engine when it is absent or fails.
func (u *Usecase) EvaluateExternal(ctx context.Context, agentID string, req *domainLoan.Request) (*domainLoan.Evaluation, error) {
	a, err := u.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return u.evaluate(ctx, req, a.Policy), nil
}

// evaluate picks the evaluator. External failures are recovered locally; the
// deterministic engine is always a safe landing.
func (u *Usecase) evaluate(ctx context.Context, req *domainLoan.Request, pol domainAgent.Policy) *domainLoan.Evaluation {
	if u.evaluator == nil {
		return u.engine.Evaluate(req, pol)
	}
	ev, err := u.evaluator.Evaluate(ctx, req, pol)
	if err != nil {
		u.log.WithError(err).WithField("loan_id", req.ID).Warn("external evaluator unavailable, falling back to risk engine")
		return u.engine.Evaluate(req, pol)
	}
	return ev
}

// ProcessLoanRequest turns a request into a decision. Ledger state changes
// only on the approve branch; pending and rejected are pure reads.
func (u *Usecase) ProcessLoanRequest(ctx context.Context, agentID string, req *domainLoan.Request) (*LoanResponse, error) {
	a, err := u.GetAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, domainAgent.ErrNotFound) {
			return &LoanResponse{LoanID: req.ID, Decision: DecisionRejected, Reason: "lender agent not found"}, nil
		}
		return nil, err
	}
	if !a.IsActive {
		return &LoanResponse{LoanID: req.ID, Decision: DecisionRejected, Reason: "lender agent is inactive"}, nil
	}
	if req.Amount > a.Policy.AvailableCapital {
		return &LoanResponse{LoanID: req.ID, Decision: DecisionRejected, Reason: "insufficient capital"}, nil
	}

	ev := u.evaluate(ctx, req, a.Policy)

	switch ev.Recommendation {
	case domainLoan.RecommendApprove:
		return u.approve(ctx, agentID, req, ev)
	case domainLoan.RecommendManualReview:
		return &LoanResponse{
			LoanID:   req.ID,
			Decision: DecisionPending,
			Reason:   "requires manual review",
			Terms:    &LoanTerms{RiskScore: ev.RiskScore, Confidence: ev.Confidence},
		}, nil
	default:
		return &LoanResponse{
			LoanID:   req.ID,
			Decision: DecisionRejected,
			Reason:   "risk assessment failed",
			Terms:    &LoanTerms{RiskScore: ev.RiskScore, Analysis: &ev.Analysis},
		}, nil
	}
}

// approve commits the decision: debit capital, bump lifetime counters, write
// the record. All inside one agent-locked transaction so a concurrent
// approval or deposit confirmation cannot interleave.
func (u *Usecase) approve(ctx context.Context, agentID string, req *domainLoan.Request, ev *domainLoan.Evaluation) (*LoanResponse, error) {
	expectedReturn := req.Amount * (1 + req.InterestRate/100)
	var rec *domainLoan.Record

	err := u.uow.WithinAgentTx(ctx, agentID, func(r uow.Repos, a *domainAgent.Agent) error {
		// Re-check under the lock; the pre-check ran without it.
		if !a.IsActive {
			return domainAgent.ErrInactive
		}
		if req.Amount > a.Policy.AvailableCapital {
			return domainAgent.ErrInsufficientCapital
		}

		a.Policy.AvailableCapital -= req.Amount
		a.TotalLoansIssued++
		a.TotalAmountLent += req.Amount
		if err := r.Agents.Save(ctx, a); err != nil {
			return err
		}

		rec = &domainLoan.Record{
			LoanID:         req.ID,
			AgentID:        a.AgentID,
			BorrowerID:     req.BorrowerID,
			Amount:         req.Amount,
			InterestRate:   req.InterestRate,
			DurationDays:   req.DurationDays,
			CreditScore:    req.CreditScore,
			Purpose:        req.Purpose,
			RiskScore:      ev.RiskScore,
			Recommendation: ev.Recommendation,
			Confidence:     ev.Confidence,
			Status:         domainLoan.StatusApproved,
			ExpectedReturn: expectedReturn,
			ApprovedAt:     time.Now().UTC(),
		}
		return r.Loans.Create(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, domainAgent.ErrInsufficientCapital) {
			return &LoanResponse{LoanID: req.ID, Decision: DecisionRejected, Reason: "insufficient capital"}, nil
		}
		if errors.Is(err, domainAgent.ErrInactive) {
			return &LoanResponse{LoanID: req.ID, Decision: DecisionRejected, Reason: "lender agent is inactive"}, nil
		}
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"agent_id": agentID,
		"loan_id":  req.ID,
		"amount":   req.Amount,
	}).Info("loan approved")

	return &LoanResponse{
		LoanID:   req.ID,
		Decision: DecisionApproved,
		Reason:   "loan approved based on risk assessment",
		Terms: &LoanTerms{
			Amount:         req.Amount,
			InterestRate:   req.InterestRate,
			DurationDays:   req.DurationDays,
			RiskScore:      ev.RiskScore,
			Confidence:     ev.Confidence,
			ExpectedReturn: expectedReturn,
		},
	}, nil
}

// RepayLoan settles an active loan: capital is credited with the repaid
// amount and the margin over principal (negative on a loss) accrues to
// earnings.
func (u *Usecase) RepayLoan(ctx context.Context, loanID string, repaidAmount float64) (*domainLoan.Record, error) {
	if repaidAmount <= 0 {
		return nil, domainLoan.ErrInvalidAmount
	}
	var out *domainLoan.Record
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil || rec.Terminal() {
			return domainLoan.ErrNotFound
		}
		a, err := r.Agents.GetByAgentIDForUpdate(ctx, rec.AgentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rec.Status = domainLoan.StatusRepaid
		rec.RepaidAt = &now
		rec.RepaidAmount = repaidAmount
		if err := r.Loans.Save(ctx, rec); err != nil {
			return err
		}

		a.Policy.AvailableCapital += repaidAmount
		a.TotalEarnings += repaidAmount - rec.Amount
		if err := r.Agents.Save(ctx, a); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithFields(logrus.Fields{"loan_id": loanID, "repaid_amount": repaidAmount}).Info("loan repaid")
	return out, nil
}

// MarkDefaulted is an explicit operator transition; nothing detects overdue
// loans automatically. The principal is written off against earnings and no
// capital is credited.
func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string) (*domainLoan.Record, error) {
	var out *domainLoan.Record
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil || rec.Terminal() {
			return domainLoan.ErrNotFound
		}
		a, err := r.Agents.GetByAgentIDForUpdate(ctx, rec.AgentID)
		if err != nil {
			return err
		}

		rec.Status = domainLoan.StatusDefaulted
		if err := r.Loans.Save(ctx, rec); err != nil {
			return err
		}
		a.TotalEarnings -= rec.Amount
		if err := r.Agents.Save(ctx, a); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.WithField("loan_id", loanID).Warn("loan marked defaulted")
	return out, nil
}

func (u *Usecase) GetPortfolio(ctx context.Context, agentID string) (*Portfolio, error) {
	var out *Portfolio
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Agents.GetByAgentID(ctx, agentID)
		if err != nil {
			return err
		}
		active, err := r.Loans.ListActiveByAgentID(ctx, agentID)
		if err != nil {
			return err
		}
		loans := make([]ActiveLoan, 0, len(active))
		for _, rec := range active {
			loans = append(loans, ActiveLoan{
				LoanID:       rec.LoanID,
				BorrowerID:   rec.BorrowerID,
				Amount:       rec.Amount,
				InterestRate: rec.InterestRate,
				Status:       string(rec.Status),
				ApprovedAt:   rec.ApprovedAt,
			})
		}
		out = &Portfolio{
			AgentID:          a.AgentID,
			AgentName:        a.Name,
			Policy:           a.Policy,
			TotalLoansIssued: a.TotalLoansIssued,
			TotalAmountLent:  a.TotalAmountLent,
			TotalEarnings:    a.TotalEarnings,
			ActiveLoansCount: len(loans),
			ActiveLoans:      loans,
			IsActive:         a.IsActive,
		}
		return nil
	})
	return out, err
}

func (u *Usecase) GetBalance(ctx context.Context, agentID string) (*Balance, error) {
	var out *Balance
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Agents.GetByAgentID(ctx, agentID)
		if err != nil {
			return err
		}
		active, err := r.Loans.ListActiveByAgentID(ctx, agentID)
		if err != nil {
			return err
		}
		out = &Balance{
			AgentID:          a.AgentID,
			AvailableCapital: a.Policy.AvailableCapital,
			TotalAmountLent:  a.TotalAmountLent,
			TotalEarnings:    a.TotalEarnings,
			ActiveLoansCount: len(active),
		}
		return nil
	})
	return out, err
}

func (u *Usecase) GetCriteria(ctx context.Context, agentID string) (*Criteria, error) {
	a, err := u.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return &Criteria{
		AgentID:              a.AgentID,
		MaxLoanAmount:        a.Policy.MaxLoanAmount,
		MinCreditScore:       a.Policy.MinCreditScore,
		MaxInterestRate:      a.Policy.MaxInterestRate,
		AvailableCapital:     a.Policy.AvailableCapital,
		RiskTolerance:        a.Policy.RiskTolerance,
		AutoApproveThreshold: a.Policy.AutoApproveThreshold,
		IsActive:             a.IsActive,
	}, nil
}

func (u *Usecase) ListAgents(ctx context.Context) ([]AgentSummary, error) {
	var out []AgentSummary
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		agents, err := r.Agents.List(ctx)
		if err != nil {
			return err
		}
		out = make([]AgentSummary, 0, len(agents))
		for _, a := range agents {
			out = append(out, AgentSummary{
				AgentID:          a.AgentID,
				Name:             a.Name,
				AvailableCapital: a.Policy.AvailableCapital,
				TotalLoansIssued: a.TotalLoansIssued,
				IsActive:         a.IsActive,
			})
		}
		return nil
	})
	return out, err
}

func (u *Usecase) Stats(ctx context.Context) (*SystemStats, error) {
	var out *SystemStats
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		agents, err := r.Agents.List(ctx)
		if err != nil {
			return err
		}
		loanCount, err := r.Loans.Count(ctx)
		if err != nil {
			return err
		}
		s := &SystemStats{TotalAgents: len(agents), TotalLoansProcessed: loanCount}
		for _, a := range agents {
			if a.IsActive {
				s.ActiveAgents++
			}
			s.TotalAvailableCapital += a.Policy.AvailableCapital
			s.TotalAmountLent += a.TotalAmountLent
			s.TotalEarnings += a.TotalEarnings
		}
		out = s
		return nil
	})
	return out, err
}
