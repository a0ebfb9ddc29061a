package lending

import (
	"time"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionPending  Decision = "pending"
)

type CreateAgentInput struct {
	Name   string       `json:"name"`
	Policy agent.Policy `json:"policy"`
}

// LoanResponse is the coordinator's answer to a loan request. Terms are only
// present when the evaluation produced them (approved, pending, or rejected
// on risk grounds, not on fail-fast pre-checks).
type LoanResponse struct {
	LoanID   string     `json:"loan_id"`
	Decision Decision   `json:"decision"`
	Reason   string     `json:"reason,omitempty"`
	Terms    *LoanTerms `json:"terms,omitempty"`
}

type LoanTerms struct {
	Amount         float64        `json:"amount,omitempty"`
	InterestRate   float64        `json:"interest_rate,omitempty"`
	DurationDays   int            `json:"duration_days,omitempty"`
	RiskScore      float64        `json:"risk_score"`
	Confidence     float64        `json:"confidence,omitempty"`
	ExpectedReturn float64        `json:"expected_return,omitempty"`
	Analysis       *loan.Analysis `json:"analysis,omitempty"`
}

type ActiveLoan struct {
	LoanID       string    `json:"loan_id"`
	BorrowerID   string    `json:"borrower_id"`
	Amount       float64   `json:"amount"`
	InterestRate float64   `json:"interest_rate"`
	Status       string    `json:"status"`
	ApprovedAt   time.Time `json:"approved_at"`
}

type Portfolio struct {
	AgentID          string       `json:"agent_id"`
	AgentName        string       `json:"agent_name"`
	Policy           agent.Policy `json:"policy"`
	TotalLoansIssued int64        `json:"total_loans_issued"`
	TotalAmountLent  float64      `json:"total_amount_lent"`
	TotalEarnings    float64      `json:"total_earnings"`
	ActiveLoansCount int          `json:"active_loans_count"`
	ActiveLoans      []ActiveLoan `json:"active_loans"`
	IsActive         bool         `json:"is_active"`
}

type Balance struct {
	AgentID          string  `json:"agent_id"`
	AvailableCapital float64 `json:"available_capital"`
	TotalAmountLent  float64 `json:"total_amount_lent"`
	TotalEarnings    float64 `json:"total_earnings"`
	ActiveLoansCount int     `json:"active_loans_count"`
}

type Criteria struct {
	AgentID              string              `json:"agent_id"`
	MaxLoanAmount        float64             `json:"max_loan_amount"`
	MinCreditScore       int                 `json:"min_credit_score"`
	MaxInterestRate      float64             `json:"max_interest_rate"`
	AvailableCapital     float64             `json:"available_capital"`
	RiskTolerance        agent.RiskTolerance `json:"risk_tolerance"`
	AutoApproveThreshold float64             `json:"auto_approve_threshold"`
	IsActive             bool                `json:"is_active"`
}

type AgentSummary struct {
	AgentID          string  `json:"id"`
	Name             string  `json:"name"`
	AvailableCapital float64 `json:"available_capital"`
	TotalLoansIssued int64   `json:"total_loans_issued"`
	IsActive         bool    `json:"is_active"`
}

type SystemStats struct {
	TotalAgents           int     `json:"total_agents"`
	ActiveAgents          int     `json:"active_agents"`
	TotalLoansProcessed   int64   `json:"total_loans_processed"`
	TotalAvailableCapital float64 `json:"total_available_capital"`
	TotalAmountLent       float64 `json:"total_amount_lent"`
	TotalEarnings         float64 `json:"total_earnings"`
}
