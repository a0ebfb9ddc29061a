// Package evaluator calls an external (LLM-backed) loan evaluator that
// honors the same contract as the deterministic risk engine. Its failures
// are always recoverable: the coordinator falls back to the engine.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
)

var ErrUnavailable = errors.New("external evaluator unavailable")

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type evaluateRequest struct {
	Loan   loanData   `json:"loan"`
	Policy policyData `json:"policy"`
}

type loanData struct {
	ID           string  `json:"id"`
	BorrowerID   string  `json:"borrower_id"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	DurationDays int     `json:"duration_days"`
	CreditScore  int     `json:"credit_score"`
	Proof        string  `json:"proof"`
	Purpose      string  `json:"purpose,omitempty"`
}

type policyData struct {
	MaxLoanAmount        float64 `json:"max_loan_amount"`
	MinCreditScore       int     `json:"min_credit_score"`
	MaxInterestRate      float64 `json:"max_interest_rate"`
	RiskTolerance        string  `json:"risk_tolerance"`
	AvailableCapital     float64 `json:"available_capital"`
	AutoApproveThreshold float64 `json:"auto_approve_threshold"`
}

type evaluateResponse struct {
	RiskScore      *float64       `json:"risk_score"`
	Recommendation string         `json:"recommendation"`
	Confidence     *float64       `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	Analysis       *loan.Analysis `json:"analysis"`
}

// Evaluate submits the request and policy snapshots and maps the result
// onto the engine's evaluation shape. Any transport, decoding, or contract
// violation comes back wrapped in ErrUnavailable.
func (c *Client) Evaluate(ctx context.Context, req *loan.Request, pol agent.Policy) (*loan.Evaluation, error) {
	body, _ := json.Marshal(evaluateRequest{
		Loan: loanData{
			ID:           req.ID,
			BorrowerID:   req.BorrowerID,
			Amount:       req.Amount,
			InterestRate: req.InterestRate,
			DurationDays: req.DurationDays,
			CreditScore:  req.CreditScore,
			Proof:        req.Proof,
			Purpose:      req.Purpose,
		},
		Policy: policyData{
			MaxLoanAmount:        pol.MaxLoanAmount,
			MinCreditScore:       pol.MinCreditScore,
			MaxInterestRate:      pol.MaxInterestRate,
			RiskTolerance:        string(pol.RiskTolerance),
			AvailableCapital:     pol.AvailableCapital,
			AutoApproveThreshold: pol.AutoApproveThreshold,
		},
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.RiskScore == nil || out.Confidence == nil {
		return nil, fmt.Errorf("%w: incomplete response", ErrUnavailable)
	}

	rec := loan.Recommendation(out.Recommendation)
	switch rec {
	case loan.RecommendApprove, loan.RecommendReject, loan.RecommendManualReview:
	default:
		return nil, fmt.Errorf("%w: unknown recommendation %q", ErrUnavailable, out.Recommendation)
	}

	analysis := loan.Analysis{}
	if out.Analysis != nil {
		analysis = *out.Analysis
	}
	analysis.Method = "external"
	analysis.Reasoning = out.Reasoning

	return &loan.Evaluation{
		LoanID:         req.ID,
		RiskScore:      *out.RiskScore,
		Recommendation: rec,
		Confidence:     *out.Confidence,
		Analysis:       analysis,
	}, nil
}
