package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domainWallet "lender-agent-backend/internal/domain/wallet"
	"lender-agent-backend/internal/usecase/wallet"
)

type WalletHandler struct{ uc *wallet.Usecase }

func NewWalletHandler(uc *wallet.Usecase) *WalletHandler { return &WalletHandler{uc: uc} }

type connectWalletReq struct {
	AgentID string `json:"agent_id" validate:"required,hex32"`
}

func (h *WalletHandler) Connect(c echo.Context) error {
	var req connectWalletReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	info, err := h.uc.InitiateConnection(c.Request().Context(), req.AgentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, info)
}

type confirmWalletReq struct {
	SessionID     string `json:"session_id"     validate:"required,hex32"`
	WalletAddress string `json:"wallet_address" validate:"required,ethaddr"`
	ChainID       int64  `json:"chain_id"       validate:"gte=0"`
}

func (h *WalletHandler) ConfirmConnection(c echo.Context) error {
	var req confirmWalletReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	out, err := h.uc.ConfirmConnection(c.Request().Context(), req.SessionID, req.WalletAddress, req.ChainID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type disconnectWalletReq struct {
	AgentID       string `json:"agent_id"       validate:"required,hex32"`
	WalletAddress string `json:"wallet_address" validate:"required,ethaddr"`
}

func (h *WalletHandler) Disconnect(c echo.Context) error {
	var req disconnectWalletReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.DisconnectWallet(c.Request().Context(), req.AgentID, req.WalletAddress); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"agent_id": req.AgentID,
		"status":   "disconnected",
	})
}

func (h *WalletHandler) GetWalletInfo(c echo.Context) error {
	info, err := h.uc.GetWalletInfo(c.Request().Context(), c.Param("agent_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

type depositReq struct {
	AgentID       string  `json:"agent_id"       validate:"required,hex32"`
	Amount        float64 `json:"amount"         validate:"required,gt=0,dec2"`
	WalletAddress string  `json:"wallet_address" validate:"omitempty,ethaddr"`
	ChainTxHash   string  `json:"chain_tx_hash"  validate:"omitempty,max=66"`
}

func (h *WalletHandler) Deposit(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	t, err := h.uc.InitiateDeposit(c.Request().Context(), wallet.DepositInput{
		AgentID:       req.AgentID,
		Amount:        req.Amount,
		WalletAddress: req.WalletAddress,
		ChainTxHash:   req.ChainTxHash,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, t)
}

type withdrawReq struct {
	AgentID            string  `json:"agent_id"            validate:"required,hex32"`
	Amount             float64 `json:"amount"              validate:"required,gt=0,dec2"`
	DestinationAddress string  `json:"destination_address" validate:"required,ethaddr"`
}

func (h *WalletHandler) Withdraw(c echo.Context) error {
	var req withdrawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	t, err := h.uc.InitiateWithdrawal(c.Request().Context(), wallet.WithdrawalInput{
		AgentID:            req.AgentID,
		Amount:             req.Amount,
		DestinationAddress: req.DestinationAddress,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, t)
}

// GetHistory supports ?type=deposit|withdrawal; anything else is rejected.
func (h *WalletHandler) GetHistory(c echo.Context) error {
	var typ *domainWallet.TransactionType
	if q := c.QueryParam("type"); q != "" {
		tt := domainWallet.TransactionType(q)
		if tt != domainWallet.TypeDeposit && tt != domainWallet.TypeWithdrawal {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "type must be deposit or withdrawal"})
		}
		typ = &tt
	}
	txs, err := h.uc.GetHistory(c.Request().Context(), c.Param("agent_id"), typ)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"transactions": txs, "count": len(txs)})
}

func (h *WalletHandler) GetTransaction(c echo.Context) error {
	t, err := h.uc.GetTransaction(c.Request().Context(), c.Param("tx_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}
