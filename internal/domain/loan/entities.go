package loan

import (
	"time"
)

type Status string

const (
	StatusApproved  Status = "approved"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

type Recommendation string

const (
	RecommendApprove      Recommendation = "approve"
	RecommendReject       Recommendation = "reject"
	RecommendManualReview Recommendation = "manual_review"
)

// Request is a borrower's loan application. It is immutable once submitted
// and only persisted as part of an approved Record.
type Request struct {
	ID           string  `json:"id"`
	BorrowerID   string  `json:"borrower_id"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	DurationDays int     `json:"duration_days"`
	// CreditScore is an external ERC-8004 style reputation score (0-1000),
	// consumed as an opaque integer.
	CreditScore int    `json:"credit_score"`
	Proof       string `json:"proof"`
	Purpose     string `json:"purpose,omitempty"`
}

// Evaluation is the risk engine's verdict for a single request. It is
// produced fresh per call and only persisted as a snapshot on the Record
// that it justified.
type Evaluation struct {
	LoanID         string         `json:"loan_id"`
	RiskScore      float64        `json:"risk_score"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	Analysis       Analysis       `json:"analysis"`
}

// Analysis is the structured breakdown behind an evaluation. Deterministic
// and external evaluators share this shape; the external-only fields stay
// empty for the deterministic engine.
type Analysis struct {
	Credit   CreditAssessment   `json:"credit_assessment"`
	Amount   AmountAssessment   `json:"amount_assessment"`
	Interest InterestAssessment `json:"interest_assessment"`
	Duration DurationAssessment `json:"duration_assessment"`
	Proof    ProofAssessment    `json:"proof_assessment"`

	Method    string `json:"evaluation_method,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

type CreditAssessment struct {
	Score    float64 `json:"score"`
	Level    string  `json:"level"`
	RawScore int     `json:"raw_score"`
}

type AmountAssessment struct {
	Score  float64 `json:"score"`
	Level  string  `json:"level"`
	Ratio  float64 `json:"ratio"`
	Amount float64 `json:"amount"`
}

type InterestAssessment struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
	Rate  float64 `json:"rate"`
}

type DurationAssessment struct {
	Score        float64 `json:"score"`
	Level        string  `json:"level"`
	DurationDays int     `json:"duration_days"`
}

type ProofAssessment struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
	Valid bool    `json:"valid"`
	// ProofHash is a truncated preview, never the full credential.
	ProofHash string `json:"proof_hash"`
}

// Record is the ledger entry written at approval. Pending and rejected
// requests are never persisted.
type Record struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	// AgentID is the public id of the owning lender agent.
	AgentID    string `gorm:"size:32;index:idx_loans_agent" json:"agent_id"`
	BorrowerID string `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`

	// Snapshot of the request at approval time.
	Amount       float64 `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate float64 `gorm:"type:decimal(6,2)" json:"interest_rate"`
	DurationDays int     `json:"duration_days"`
	CreditScore  int     `json:"credit_score"`
	Purpose      string  `gorm:"type:text" json:"purpose,omitempty"`

	// Snapshot of the evaluation that justified approval.
	RiskScore      float64        `gorm:"type:decimal(6,2)" json:"risk_score"`
	Recommendation Recommendation `gorm:"size:16" json:"recommendation"`
	Confidence     float64        `gorm:"type:decimal(4,3)" json:"confidence"`

	Status         Status     `gorm:"size:16;index:idx_loans_agent;default:'approved'" json:"status"`
	ExpectedReturn float64    `gorm:"type:decimal(18,2)" json:"expected_return"`
	ApprovedAt     time.Time  `json:"approved_at"`
	RepaidAt       *time.Time `json:"repaid_at,omitempty"`
	RepaidAmount   float64    `gorm:"type:decimal(18,2)" json:"repaid_amount,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string { return "loans" }

// Terminal reports whether the record left the APPROVED state; there is no
// transition out of a terminal status.
func (r *Record) Terminal() bool {
	return r.Status == StatusRepaid || r.Status == StatusDefaulted
}
