package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainAgent "lender-agent-backend/internal/domain/agent"
	domainWallet "lender-agent-backend/internal/domain/wallet"
	"lender-agent-backend/internal/domain/uow"
	"lender-agent-backend/internal/testutil/agentmock"
	"lender-agent-backend/internal/testutil/uowmock"
	"lender-agent-backend/internal/testutil/walletmock"
	"lender-agent-backend/internal/usecase/wallet"

	"github.com/labstack/echo/v4"
)

type fakeChain struct{}

func (fakeChain) GetBalance(ctx context.Context, address string) (float64, error) { return 42, nil }
func (fakeChain) IsValidAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && len(address) == 42
}

func walletUC(t *testing.T, a *domainAgent.Agent) *wallet.Usecase {
	t.Helper()
	agents := &agentmock.Repo{
		GetByAgentIDFn: func(ctx context.Context, agentID string) (*domainAgent.Agent, error) {
			if a != nil && a.AgentID == agentID {
				return a, nil
			}
			return nil, domainAgent.ErrNotFound
		},
	}
	u := wallet.NewUsecase(
		uowmock.Passthrough(uow.Repos{Agents: agents, Wallets: walletmock.NewMem()}),
		fakeChain{},
		wallet.Options{ConfirmDelay: time.Hour},
		nil,
	)
	t.Cleanup(u.Confirmer().Shutdown)
	return u
}

const handlerTestAddr = "0x0000000000000000000000000000000000000123"

func TestDeposit_Accepted(t *testing.T) {
	e := newEchoWithValidator()
	a := strongAgent()
	h := NewWalletHandler(walletUC(t, a))

	body := map[string]any{
		"agent_id":       a.AgentID,
		"amount":         250,
		"wallet_address": handlerTestAddr,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/funds/deposit", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Deposit(c); err != nil {
		t.Fatalf("Deposit error: %v", err)
	}
	if rec.Code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var out domainWallet.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != domainWallet.StatusPending {
		t.Fatalf("fresh deposit must come back pending: %v", out.Status)
	}
}

func TestDeposit_BadAddress(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWalletHandler(walletUC(t, strongAgent()))

	body := map[string]any{
		"agent_id":       strings.Repeat("a", 32),
		"amount":         250,
		"wallet_address": "nope",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/funds/deposit", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Deposit(c); err != nil {
		t.Fatalf("Deposit error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestWithdraw_InsufficientBalanceMapsTo400(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWalletHandler(walletUC(t, strongAgent()))

	body := map[string]any{
		"agent_id":            strings.Repeat("a", 32),
		"amount":              100,
		"destination_address": handlerTestAddr,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/funds/withdraw", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Withdraw(c); err != nil {
		t.Fatalf("Withdraw error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestConnectConfirmRoundTrip(t *testing.T) {
	e := newEchoWithValidator()
	a := strongAgent()
	h := NewWalletHandler(walletUC(t, a))

	req := httptest.NewRequest(stdhttp.MethodPost, "/wallet/connect", mustJSON(map[string]any{"agent_id": a.AgentID}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Connect(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("connect status = %d, want 201", rec.Code)
	}
	var conn struct {
		SessionID string `json:"session_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &conn)

	body := map[string]any{
		"session_id":     conn.SessionID,
		"wallet_address": handlerTestAddr,
	}
	req = httptest.NewRequest(stdhttp.MethodPost, "/wallet/confirm", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	if err := h.ConfirmConnection(e.NewContext(req, rec)); err != nil {
		t.Fatalf("ConfirmConnection error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("confirm status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agent_id")
	c.SetParamValues(a.AgentID)
	if err := h.GetWalletInfo(c); err != nil {
		t.Fatalf("GetWalletInfo error: %v", err)
	}
	var info domainWallet.Info
	json.Unmarshal(rec.Body.Bytes(), &info)
	if info.TotalBalance != 42 || len(info.ConnectedWallets) != 1 {
		t.Fatalf("info: %+v", info)
	}
}

func TestGetHistory_RejectsUnknownType(t *testing.T) {
	e := newEchoWithValidator()
	h := NewWalletHandler(walletUC(t, strongAgent()))

	req := httptest.NewRequest(stdhttp.MethodGet, "/?type=transfer", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agent_id")
	c.SetParamValues(strings.Repeat("a", 32))

	if err := h.GetHistory(c); err != nil {
		t.Fatalf("GetHistory error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
