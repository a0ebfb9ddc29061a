package lending

import (
	"context"
	"errors"
	"math"
	"testing"

	"lender-agent-backend/internal/domain/agent"
	domainLoan "lender-agent-backend/internal/domain/loan"
)

func feePolicy() agent.Policy {
	return agent.Policy{
		BaseInterestRate:    10, // annualized
		CreditFeePercentage: 2,
		FixedProcessingFee:  25,
	}
}

func TestCalculateFees(t *testing.T) {
	f := CalculateFees(feePolicy(), 1000)
	if f.ProcessingFeePercentage != 20 {
		t.Fatalf("percentage fee: want 20, got %v", f.ProcessingFeePercentage)
	}
	if f.FixedProcessingFee != 25 {
		t.Fatalf("fixed fee: want 25, got %v", f.FixedProcessingFee)
	}
	if f.TotalFees != 45 {
		t.Fatalf("total fees: want 45, got %v", f.TotalFees)
	}
}

func TestCalculateTotalCost(t *testing.T) {
	// 10% annual on 1000 over 365 days is exactly 100 interest
	out := CalculateTotalCost(feePolicy(), 1000, 365)
	if math.Abs(out.Interest-100) > 1e-9 {
		t.Fatalf("interest: want 100, got %v", out.Interest)
	}
	if math.Abs(out.TotalRepayment-1145) > 1e-9 {
		t.Fatalf("total: want 1145, got %v", out.TotalRepayment)
	}
	// APR folds fees in, so it exceeds the base rate
	wantAPR := (1145.0/1000 - 1) * 100
	if math.Abs(out.EffectiveAPR-wantAPR) > 1e-9 {
		t.Fatalf("apr: want %v, got %v", wantAPR, out.EffectiveAPR)
	}
}

func TestCalculateTotalCost_ShortDurationAnnualizes(t *testing.T) {
	out := CalculateTotalCost(feePolicy(), 1000, 30)
	wantInterest := 1000 * (10.0 / 100 / 365) * 30
	if math.Abs(out.Interest-wantInterest) > 1e-9 {
		t.Fatalf("interest: want %v, got %v", wantInterest, out.Interest)
	}
	total := 1000 + wantInterest + 45
	wantAPR := (total/1000 - 1) * (365.0 / 30) * 100
	if math.Abs(out.EffectiveAPR-wantAPR) > 1e-9 {
		t.Fatalf("apr: want %v, got %v", wantAPR, out.EffectiveAPR)
	}
}

func TestCalculateCosts_InvalidInputs(t *testing.T) {
	u, _ := newFixture(testAgent(1000))
	ctx := context.Background()
	if _, err := u.CalculateCosts(ctx, testAgent(1000).AgentID, 0, 30); !errors.Is(err, domainLoan.ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
	if _, err := u.CalculateCosts(ctx, testAgent(1000).AgentID, 100, 0); !errors.Is(err, domainLoan.ErrInvalidAmount) {
		t.Fatalf("zero duration: want ErrInvalidAmount, got %v", err)
	}
}
