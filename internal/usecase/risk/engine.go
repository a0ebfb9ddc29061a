package risk

import (
	"strings"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
)

// ProofChecker is the only proof signal the engine consumes. Cryptographic
// verification is delegated to an external proof service and never happens
// here.
type ProofChecker interface {
	IsSyntacticallyValid(proof string) bool
}

// SyntaxChecker accepts proofs that look like hex credentials: at least 64
// characters with a 0x prefix. Surface syntax only.
type SyntaxChecker struct{}

func (SyntaxChecker) IsSyntacticallyValid(proof string) bool {
	return len(proof) >= 64 && strings.HasPrefix(proof, "0x")
}

// Sub-score weights. They sum to 1; each sub-score is 0-100 with lower
// meaning safer.
const (
	weightCreditScore = 0.40
	weightLoanAmount  = 0.20
	weightInterest    = 0.15
	weightDuration    = 0.10
	weightProof       = 0.15
)

// Engine scores loan requests against a lender policy. Pure and
// deterministic: no I/O, no stored state, safe to share across goroutines.
type Engine struct {
	proofs ProofChecker
}

func NewEngine(proofs ProofChecker) *Engine {
	if proofs == nil {
		proofs = SyntaxChecker{}
	}
	return &Engine{proofs: proofs}
}

// Evaluate never fails: malformed requests are rejected upstream by request
// validation, and every well-formed input maps to a verdict.
func (e *Engine) Evaluate(req *loan.Request, pol agent.Policy) *loan.Evaluation {
	analysis := loan.Analysis{
		Credit:   assessCreditScore(req.CreditScore),
		Amount:   assessLoanAmount(req.Amount, pol.MaxLoanAmount),
		Interest: assessInterestRate(req.InterestRate, pol.MaxInterestRate),
		Duration: assessDuration(req.DurationDays),
		Proof:    e.assessProof(req.Proof),
	}

	score := analysis.Credit.Score*weightCreditScore +
		analysis.Amount.Score*weightLoanAmount +
		analysis.Interest.Score*weightInterest +
		analysis.Duration.Score*weightDuration +
		analysis.Proof.Score*weightProof

	return &loan.Evaluation{
		LoanID:         req.ID,
		RiskScore:      score,
		Recommendation: recommend(score, pol.RiskTolerance),
		Confidence:     confidence(analysis),
		Analysis:       analysis,
	}
}

func assessCreditScore(creditScore int) loan.CreditAssessment {
	var score float64
	var level string
	switch {
	case creditScore >= 800:
		score, level = 10, "excellent"
	case creditScore >= 700:
		score, level = 25, "good"
	case creditScore >= 600:
		score, level = 50, "fair"
	case creditScore >= 500:
		score, level = 75, "poor"
	default:
		score, level = 95, "very_poor"
	}
	return loan.CreditAssessment{Score: score, Level: level, RawScore: creditScore}
}

func assessLoanAmount(amount, maxAmount float64) loan.AmountAssessment {
	ratio := amount / maxAmount
	var score float64
	var level string
	switch {
	case ratio <= 0.25:
		score, level = 10, "low"
	case ratio <= 0.5:
		score, level = 25, "moderate"
	case ratio <= 0.75:
		score, level = 50, "high"
	case ratio <= 1.0:
		score, level = 75, "very_high"
	default:
		score, level = 100, "exceeds_limit"
	}
	return loan.AmountAssessment{Score: score, Level: level, Ratio: ratio, Amount: amount}
}

func assessInterestRate(rate, maxRate float64) loan.InterestAssessment {
	var score float64
	var level string
	switch {
	case rate > maxRate:
		score, level = 100, "unacceptable"
	case rate >= maxRate*0.8:
		score, level = 20, "acceptable"
	case rate >= maxRate*0.6:
		score, level = 15, "good"
	default:
		score, level = 10, "excellent"
	}
	return loan.InterestAssessment{Score: score, Level: level, Rate: rate}
}

func assessDuration(durationDays int) loan.DurationAssessment {
	var score float64
	var level string
	switch {
	case durationDays <= 30:
		score, level = 10, "short_term"
	case durationDays <= 90:
		score, level = 20, "medium_term"
	case durationDays <= 180:
		score, level = 35, "long_term"
	default:
		score, level = 50, "very_long_term"
	}
	return loan.DurationAssessment{Score: score, Level: level, DurationDays: durationDays}
}

func (e *Engine) assessProof(proof string) loan.ProofAssessment {
	preview := proof
	if len(preview) > 16 {
		preview = preview[:16] + "..."
	}
	if e.proofs.IsSyntacticallyValid(proof) {
		return loan.ProofAssessment{Score: 10, Level: "valid", Valid: true, ProofHash: preview}
	}
	return loan.ProofAssessment{Score: 100, Level: "invalid", Valid: false, ProofHash: preview}
}

func recommend(score float64, tolerance agent.RiskTolerance) loan.Recommendation {
	switch {
	case score <= 20:
		return loan.RecommendApprove
	case score <= 40 && (tolerance == agent.ToleranceMedium || tolerance == agent.ToleranceHigh):
		return loan.RecommendApprove
	case score <= 60 && tolerance == agent.ToleranceHigh:
		return loan.RecommendApprove
	case score <= 80:
		return loan.RecommendManualReview
	default:
		return loan.RecommendReject
	}
}

// confidence is the mean of three band-derived factors. It is a heuristic
// read on how unambiguous the inputs were, not a calibrated statistical
// estimate.
func confidence(a loan.Analysis) float64 {
	var credit float64
	switch a.Credit.Level {
	case "excellent", "good":
		credit = 0.9
	case "fair":
		credit = 0.7
	default:
		credit = 0.5
	}

	proof := 0.1
	if a.Proof.Valid {
		proof = 0.9
	}

	amount := 0.6
	if a.Amount.Level == "low" || a.Amount.Level == "moderate" {
		amount = 0.8
	}

	return (credit + proof + amount) / 3
}
