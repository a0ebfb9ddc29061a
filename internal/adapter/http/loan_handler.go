package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/usecase/lending"
)

type LoanHandler struct{ uc *lending.Usecase }

func NewLoanHandler(uc *lending.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type loanRequestReq struct {
	LoanID       string  `json:"loan_id"       validate:"required,hex32"`
	BorrowerID   string  `json:"borrower_id"   validate:"required,max=64"`
	Amount       float64 `json:"amount"        validate:"required,gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	DurationDays int     `json:"duration_days" validate:"required,gt=0,lte=365"`
	CreditScore  int     `json:"credit_score"  validate:"gte=0,lte=1000"`
	Proof        string  `json:"proof"`
	Purpose      string  `json:"purpose"       validate:"max=512"`
}

func (r loanRequestReq) toRequest() *loan.Request {
	return &loan.Request{
		ID:           r.LoanID,
		BorrowerID:   r.BorrowerID,
		Amount:       r.Amount,
		InterestRate: r.InterestRate,
		DurationDays: r.DurationDays,
		CreditScore:  r.CreditScore,
		Proof:        r.Proof,
		Purpose:      r.Purpose,
	}
}

func (h *LoanHandler) bindLoanRequest(c echo.Context) (*loan.Request, error) {
	var req loanRequestReq
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return nil, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return req.toRequest(), nil
}

// ProcessRequest is the main decision endpoint: evaluate, and commit ledger
// changes when the verdict is approve.
func (h *LoanHandler) ProcessRequest(c echo.Context) error {
	req, err := h.bindLoanRequest(c)
	if req == nil {
		return err
	}
	resp, err := h.uc.ProcessLoanRequest(c.Request().Context(), c.Param("agent_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Evaluate runs the deterministic engine without touching the ledger.
func (h *LoanHandler) Evaluate(c echo.Context) error {
	req, err := h.bindLoanRequest(c)
	if req == nil {
		return err
	}
	ev, err := h.uc.EvaluateOnly(c.Request().Context(), c.Param("agent_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// EvaluateExternal prefers the external evaluator, falling back to the
// deterministic engine.
func (h *LoanHandler) EvaluateExternal(c echo.Context) error {
	req, err := h.bindLoanRequest(c)
	if req == nil {
		return err
	}
	ev, err := h.uc.EvaluateExternal(c.Request().Context(), c.Param("agent_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

type repayLoanReq struct {
	RepaidAmount float64 `json:"repaid_amount" validate:"required,gt=0,dec2"`
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	var req repayLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	rec, err := h.uc.RepayLoan(c.Request().Context(), c.Param("loan_id"), req.RepaidAmount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	rec, err := h.uc.MarkDefaulted(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

type calculateCostsReq struct {
	Amount       float64 `json:"amount"        validate:"required,gt=0,dec2"`
	DurationDays int     `json:"duration_days" validate:"required,gt=0,lte=365"`
}

func (h *LoanHandler) CalculateCosts(c echo.Context) error {
	var req calculateCostsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	out, err := h.uc.CalculateCosts(c.Request().Context(), c.Param("agent_id"), req.Amount, req.DurationDays)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
