package risk

import (
	"math"
	"strings"
	"testing"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
)

func basePolicy() agent.Policy {
	return agent.Policy{
		MaxLoanAmount:   10000,
		MinCreditScore:  600,
		MaxInterestRate: 20,
		RiskTolerance:   agent.ToleranceMedium,
	}
}

func validProof() string {
	return "0x" + strings.Repeat("ab", 31) // 64 chars total
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := NewEngine(nil)
	req := &loan.Request{
		ID:           "a1b2",
		Amount:       2000,
		InterestRate: 10,
		DurationDays: 30,
		CreditScore:  720,
		Proof:        validProof(),
	}
	pol := basePolicy()

	first := e.Evaluate(req, pol)
	second := e.Evaluate(req, pol)
	if first.RiskScore != second.RiskScore || first.Recommendation != second.Recommendation || first.Confidence != second.Confidence {
		t.Fatalf("same input produced different verdicts: %+v vs %+v", first, second)
	}
}

func TestEvaluate_StrongRequestApproves(t *testing.T) {
	e := NewEngine(nil)
	// excellent credit, low ratio, low rate, short term, valid proof
	// → 10*0.40 + 10*0.20 + 10*0.15 + 10*0.10 + 10*0.15 = 10
	req := &loan.Request{
		Amount:       2000,
		InterestRate: 5,
		DurationDays: 30,
		CreditScore:  820,
		Proof:        validProof(),
	}
	ev := e.Evaluate(req, basePolicy())
	if math.Abs(ev.RiskScore-10) > 1e-9 {
		t.Fatalf("risk score: want 10, got %v", ev.RiskScore)
	}
	if ev.Recommendation != loan.RecommendApprove {
		t.Fatalf("want approve, got %v", ev.Recommendation)
	}
}

func TestEvaluate_InvalidProofDragsScore(t *testing.T) {
	e := NewEngine(nil)
	req := &loan.Request{
		Amount:       2000,
		InterestRate: 5,
		DurationDays: 30,
		CreditScore:  820,
		Proof:        "not-a-proof",
	}
	ev := e.Evaluate(req, basePolicy())
	if ev.Analysis.Proof.Valid {
		t.Fatalf("proof should be invalid")
	}
	// proof sub-score jumps 10 → 100, adding 90*0.15 = 13.5
	if math.Abs(ev.RiskScore-23.5) > 1e-9 {
		t.Fatalf("risk score: want 23.5, got %v", ev.RiskScore)
	}
}

func TestAssessCreditScore_Bands(t *testing.T) {
	cases := []struct {
		raw   int
		score float64
		level string
	}{
		{850, 10, "excellent"},
		{800, 10, "excellent"},
		{750, 25, "good"},
		{650, 50, "fair"},
		{550, 75, "poor"},
		{300, 95, "very_poor"},
		{0, 95, "very_poor"},
	}
	for _, tc := range cases {
		got := assessCreditScore(tc.raw)
		if got.Score != tc.score || got.Level != tc.level {
			t.Errorf("credit %d: want (%v,%s), got (%v,%s)", tc.raw, tc.score, tc.level, got.Score, got.Level)
		}
	}
}

func TestAssessLoanAmount_Bands(t *testing.T) {
	cases := []struct {
		amount float64
		score  float64
		level  string
	}{
		{2500, 10, "low"},
		{5000, 25, "moderate"},
		{7500, 50, "high"},
		{10000, 75, "very_high"},
		{10001, 100, "exceeds_limit"},
	}
	for _, tc := range cases {
		got := assessLoanAmount(tc.amount, 10000)
		if got.Score != tc.score || got.Level != tc.level {
			t.Errorf("amount %v: want (%v,%s), got (%v,%s)", tc.amount, tc.score, tc.level, got.Score, got.Level)
		}
	}
}

func TestAssessInterestRate_AboveMaxUnacceptable(t *testing.T) {
	got := assessInterestRate(21, 20)
	if got.Score != 100 || got.Level != "unacceptable" {
		t.Fatalf("want (100, unacceptable), got (%v, %s)", got.Score, got.Level)
	}
	// near the cap is acceptable, not risky: the lender set that cap
	got = assessInterestRate(17, 20)
	if got.Score != 20 || got.Level != "acceptable" {
		t.Fatalf("want (20, acceptable), got (%v, %s)", got.Score, got.Level)
	}
	got = assessInterestRate(5, 20)
	if got.Score != 10 || got.Level != "excellent" {
		t.Fatalf("want (10, excellent), got (%v, %s)", got.Score, got.Level)
	}
}

func TestAssessDuration_Bands(t *testing.T) {
	cases := []struct {
		days  int
		score float64
		level string
	}{
		{30, 10, "short_term"},
		{90, 20, "medium_term"},
		{180, 35, "long_term"},
		{365, 50, "very_long_term"},
	}
	for _, tc := range cases {
		got := assessDuration(tc.days)
		if got.Score != tc.score || got.Level != tc.level {
			t.Errorf("duration %d: want (%v,%s), got (%v,%s)", tc.days, tc.score, tc.level, got.Score, got.Level)
		}
	}
}

func TestAssessProof_PreviewTruncated(t *testing.T) {
	e := NewEngine(nil)
	long := validProof()
	got := e.assessProof(long)
	if !got.Valid {
		t.Fatalf("proof should be valid")
	}
	if got.ProofHash != long[:16]+"..." {
		t.Fatalf("preview: got %q", got.ProofHash)
	}
	short := "0xabc"
	if e.assessProof(short).ProofHash != short {
		t.Fatalf("short proof should not be truncated")
	}
}

func TestRecommend_ToleranceThresholds(t *testing.T) {
	cases := []struct {
		score     float64
		tolerance agent.RiskTolerance
		want      loan.Recommendation
	}{
		// at or below 20 approves for every tolerance
		{20, agent.ToleranceLow, loan.RecommendApprove},
		{20, agent.ToleranceVeryHigh, loan.RecommendApprove},
		// 20-40 approves only for medium and high
		{35, agent.ToleranceLow, loan.RecommendManualReview},
		{35, agent.ToleranceMedium, loan.RecommendApprove},
		{35, agent.ToleranceHigh, loan.RecommendApprove},
		{35, agent.ToleranceVeryHigh, loan.RecommendManualReview},
		// 40-60 approves only for high
		{55, agent.ToleranceMedium, loan.RecommendManualReview},
		{55, agent.ToleranceHigh, loan.RecommendApprove},
		// 60-80 always manual review
		{75, agent.ToleranceHigh, loan.RecommendManualReview},
		// above 80 always reject
		{81, agent.ToleranceHigh, loan.RecommendReject},
		{95, agent.ToleranceVeryHigh, loan.RecommendReject},
	}
	for _, tc := range cases {
		if got := recommend(tc.score, tc.tolerance); got != tc.want {
			t.Errorf("recommend(%v, %s): want %v, got %v", tc.score, tc.tolerance, tc.want, got)
		}
	}
}

func TestConfidence_Factors(t *testing.T) {
	a := loan.Analysis{
		Credit: loan.CreditAssessment{Level: "excellent"},
		Amount: loan.AmountAssessment{Level: "low"},
		Proof:  loan.ProofAssessment{Valid: true},
	}
	want := (0.9 + 0.9 + 0.8) / 3
	if got := confidence(a); math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence: want %v, got %v", want, got)
	}

	a = loan.Analysis{
		Credit: loan.CreditAssessment{Level: "very_poor"},
		Amount: loan.AmountAssessment{Level: "very_high"},
		Proof:  loan.ProofAssessment{Valid: false},
	}
	want = (0.5 + 0.1 + 0.6) / 3
	if got := confidence(a); math.Abs(got-want) > 1e-9 {
		t.Fatalf("confidence: want %v, got %v", want, got)
	}
}

func TestSyntaxChecker(t *testing.T) {
	c := SyntaxChecker{}
	if !c.IsSyntacticallyValid(validProof()) {
		t.Fatalf("64-char 0x proof should pass")
	}
	if c.IsSyntacticallyValid("0x" + strings.Repeat("a", 10)) {
		t.Fatalf("short proof should fail")
	}
	if c.IsSyntacticallyValid(strings.Repeat("a", 80)) {
		t.Fatalf("missing 0x prefix should fail")
	}
}
