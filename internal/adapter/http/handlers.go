package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lender-agent-backend/internal/usecase/lending"
)

type Handler struct{ lending *lending.Usecase }

func NewHandler(uc *lending.Usecase) *Handler { return &Handler{lending: uc} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.lending.Stats(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
