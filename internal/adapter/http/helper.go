package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/domain/wallet"
)

// ---- helpers ----

// statusFor maps domain sentinels onto HTTP status codes. Anything unmapped
// is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrNotFound),
		errors.Is(err, loan.ErrNotFound),
		errors.Is(err, wallet.ErrTransactionNotFound),
		errors.Is(err, wallet.ErrWalletNotFound),
		errors.Is(err, wallet.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInsufficientBalance),
		errors.Is(err, agent.ErrInsufficientCapital),
		errors.Is(err, agent.ErrInactive):
		return http.StatusBadRequest
	case errors.Is(err, wallet.ErrSessionExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}
