package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/usecase/lending"
)

type AgentHandler struct{ uc *lending.Usecase }

func NewAgentHandler(uc *lending.Usecase) *AgentHandler { return &AgentHandler{uc: uc} }

type policyReq struct {
	MaxLoanAmount        float64 `json:"max_loan_amount"         validate:"required,gt=0,dec2"`
	MinCreditScore       int     `json:"min_credit_score"        validate:"gte=0,lte=1000"`
	MaxInterestRate      float64 `json:"max_interest_rate"       validate:"gte=0,lte=100"`
	BaseInterestRate     float64 `json:"base_interest_rate"      validate:"gte=0,lte=50"`
	CreditFeePercentage  float64 `json:"credit_fee_percentage"   validate:"gte=0,lte=10"`
	FixedProcessingFee   float64 `json:"fixed_processing_fee"    validate:"gte=0,dec2"`
	AutoApproveThreshold float64 `json:"auto_approve_threshold"  validate:"gte=0,dec2"`
	RiskTolerance        string  `json:"risk_tolerance"          validate:"required,tolerance"`
	AvailableCapital     float64 `json:"available_capital"       validate:"required,gt=0,dec2"`
}

func (p policyReq) toPolicy() agent.Policy {
	return agent.Policy{
		MaxLoanAmount:        p.MaxLoanAmount,
		MinCreditScore:       p.MinCreditScore,
		MaxInterestRate:      p.MaxInterestRate,
		BaseInterestRate:     p.BaseInterestRate,
		CreditFeePercentage:  p.CreditFeePercentage,
		FixedProcessingFee:   p.FixedProcessingFee,
		AutoApproveThreshold: p.AutoApproveThreshold,
		RiskTolerance:        agent.RiskTolerance(p.RiskTolerance),
		AvailableCapital:     p.AvailableCapital,
	}
}

type createAgentReq struct {
	Name   string    `json:"name"   validate:"required,max=128"`
	Policy policyReq `json:"policy" validate:"required"`
}

func (h *AgentHandler) CreateAgent(c echo.Context) error {
	var req createAgentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	a, err := h.uc.CreateAgent(c.Request().Context(), lending.CreateAgentInput{
		Name:   req.Name,
		Policy: req.Policy.toPolicy(),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AgentHandler) GetAgent(c echo.Context) error {
	a, err := h.uc.GetAgent(c.Request().Context(), c.Param("agent_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) ListAgents(c echo.Context) error {
	agents, err := h.uc.ListAgents(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"lenders": agents, "count": len(agents)})
}

func (h *AgentHandler) Configure(c echo.Context) error {
	var req policyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	agentID := c.Param("agent_id")
	if err := h.uc.Reconfigure(c.Request().Context(), agentID, req.toPolicy()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"agent_id": agentID, "status": "reconfigured"})
}

func (h *AgentHandler) GetPortfolio(c echo.Context) error {
	p, err := h.uc.GetPortfolio(c.Request().Context(), c.Param("agent_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AgentHandler) GetBalance(c echo.Context) error {
	b, err := h.uc.GetBalance(c.Request().Context(), c.Param("agent_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *AgentHandler) GetCriteria(c echo.Context) error {
	cr, err := h.uc.GetCriteria(c.Request().Context(), c.Param("agent_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cr)
}
