package lending

import (
	"context"

	"lender-agent-backend/internal/domain/agent"
	domainLoan "lender-agent-backend/internal/domain/loan"
)

type Fees struct {
	ProcessingFeePercentage float64 `json:"processing_fee_percentage"`
	FixedProcessingFee      float64 `json:"fixed_processing_fee"`
	TotalFees               float64 `json:"total_fees"`
}

type CostBreakdown struct {
	Principal      float64 `json:"principal"`
	Interest       float64 `json:"interest"`
	Fees           float64 `json:"fees"`
	TotalRepayment float64 `json:"total_repayment"`
	EffectiveAPR   float64 `json:"effective_apr"`
}

// CalculateFees returns the lender's fee take on a loan of the given amount.
func CalculateFees(pol agent.Policy, amount float64) Fees {
	pct := amount * (pol.CreditFeePercentage / 100)
	return Fees{
		ProcessingFeePercentage: pct,
		FixedProcessingFee:      pol.FixedProcessingFee,
		TotalFees:               pct + pol.FixedProcessingFee,
	}
}

// CalculateTotalCost prices a potential loan: daily interest accrued from the
// lender's annualized base rate, plus fees.
func CalculateTotalCost(pol agent.Policy, amount float64, durationDays int) CostBreakdown {
	fees := CalculateFees(pol, amount)

	dailyRate := pol.BaseInterestRate / 100 / 365
	interest := amount * dailyRate * float64(durationDays)
	total := amount + interest + fees.TotalFees

	return CostBreakdown{
		Principal:      amount,
		Interest:       interest,
		Fees:           fees.TotalFees,
		TotalRepayment: total,
		EffectiveAPR:   (total/amount - 1) * (365 / float64(durationDays)) * 100,
	}
}

// CalculateCosts prices a loan against a specific agent's policy.
func (u *Usecase) CalculateCosts(ctx context.Context, agentID string, amount float64, durationDays int) (*CostBreakdown, error) {
	if amount <= 0 || durationDays <= 0 {
		return nil, domainLoan.ErrInvalidAmount
	}
	a, err := u.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	out := CalculateTotalCost(a.Policy, amount, durationDays)
	return &out, nil
}
