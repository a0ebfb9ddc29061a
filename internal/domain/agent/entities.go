package agent

import (
	"time"
)

type RiskTolerance string

const (
	ToleranceLow      RiskTolerance = "low"
	ToleranceMedium   RiskTolerance = "medium"
	ToleranceHigh     RiskTolerance = "high"
	ToleranceVeryHigh RiskTolerance = "very_high"
)

// Policy is the lender's configuration. It is replaced wholesale on
// reconfiguration and never mutated field-by-field from outside the
// lending usecase.
type Policy struct {
	MaxLoanAmount        float64       `gorm:"column:max_loan_amount;type:decimal(18,2)" json:"max_loan_amount"`
	MinCreditScore       int           `gorm:"column:min_credit_score" json:"min_credit_score"`
	MaxInterestRate      float64       `gorm:"column:max_interest_rate;type:decimal(6,2)" json:"max_interest_rate"`
	BaseInterestRate     float64       `gorm:"column:base_interest_rate;type:decimal(6,2)" json:"base_interest_rate"`
	CreditFeePercentage  float64       `gorm:"column:credit_fee_percentage;type:decimal(6,2)" json:"credit_fee_percentage"`
	FixedProcessingFee   float64       `gorm:"column:fixed_processing_fee;type:decimal(18,2)" json:"fixed_processing_fee"`
	AutoApproveThreshold float64       `gorm:"column:auto_approve_threshold;type:decimal(18,2)" json:"auto_approve_threshold"`
	RiskTolerance        RiskTolerance `gorm:"column:risk_tolerance;size:16" json:"risk_tolerance"`
	AvailableCapital     float64       `gorm:"column:available_capital;type:decimal(18,2)" json:"available_capital"`
}

type Agent struct {
	ID      uint64 `gorm:"primaryKey;column:id" json:"-"`
	AgentID string `gorm:"size:32;uniqueIndex:ux_agents_agent_id" json:"agent_id"`
	Name    string `gorm:"size:128" json:"name"`
	Policy  Policy `gorm:"embedded" json:"policy"`

	// Lifetime counters. TotalAmountLent never decreases; TotalEarnings
	// is signed and accumulates repayment margins (losses included).
	TotalLoansIssued int64   `gorm:"column:total_loans_issued" json:"total_loans_issued"`
	TotalAmountLent  float64 `gorm:"column:total_amount_lent;type:decimal(18,2)" json:"total_amount_lent"`
	TotalEarnings    float64 `gorm:"column:total_earnings;type:decimal(18,2)" json:"total_earnings"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Agent) TableName() string { return "agents" }
