package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "lender-agent-backend/internal/adapter/http"
	"lender-agent-backend/internal/adapter/middleware"
	"lender-agent-backend/internal/adapter/repository/mysql"
	"lender-agent-backend/internal/config"
	"lender-agent-backend/internal/infrastructure/cache"
	"lender-agent-backend/internal/infrastructure/db"
	"lender-agent-backend/internal/integrations/chain"
	"lender-agent-backend/internal/integrations/evaluator"
	"lender-agent-backend/internal/sweeper"
	"lender-agent-backend/internal/usecase/lending"
	"lender-agent-backend/internal/usecase/risk"
	"lender-agent-backend/internal/usecase/wallet"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := db.Migrate(gdb); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	uow := mysql.NewGormUoW(gdb)
	engine := risk.NewEngine(risk.SyntaxChecker{})
	chainClient := chain.NewClient(cfg.ChainRPCURL, cfg.ChainMockBalance, log)

	var eval lending.Evaluator
	if cfg.EvaluatorURL != "" {
		eval = evaluator.NewClient(cfg.EvaluatorURL, cfg.EvaluatorAPIKey)
	}

	lendingUC := lending.NewUsecase(uow, engine, eval, log)
	walletUC := wallet.NewUsecase(uow, chainClient, wallet.Options{
		ConfirmDelay: cfg.ConfirmDelay,
		SessionTTL:   cfg.SessionTTL,
		ChainID:      cfg.ChainID,
	}, log)

	sw, err := sweeper.New(walletUC, cfg.SweepInterval, cfg.TxStaleAfter, log)
	if err != nil {
		log.WithError(err).Fatal("invalid sweep schedule")
	}
	sw.Start()

	h := httpadp.NewHandler(lendingUC)
	ah := httpadp.NewAgentHandler(lendingUC)
	lh := httpadp.NewLoanHandler(lendingUC)
	wh := httpadp.NewWalletHandler(walletUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)
	e.GET("/stats", h.Stats)

	e.POST("/lenders", ah.CreateAgent)
	e.GET("/lenders", ah.ListAgents)
	e.GET("/lenders/:agent_id", ah.GetAgent)
	e.PUT("/lenders/:agent_id/configure", ah.Configure)
	e.GET("/lenders/:agent_id/portfolio", ah.GetPortfolio)
	e.GET("/lenders/:agent_id/balance", ah.GetBalance)
	e.GET("/lenders/:agent_id/criteria", ah.GetCriteria)

	e.POST("/lenders/:agent_id/evaluate", lh.Evaluate)
	e.POST("/lenders/:agent_id/evaluate/ai", lh.EvaluateExternal)
	e.POST("/lenders/:agent_id/costs", lh.CalculateCosts)

	e.GET("/wallet/:agent_id", wh.GetWalletInfo)
	e.POST("/wallet/connect", wh.Connect)
	e.POST("/wallet/confirm", wh.ConfirmConnection)
	e.POST("/wallet/disconnect", wh.Disconnect)
	e.GET("/funds/:agent_id/transactions", wh.GetHistory)
	e.GET("/transactions/:tx_id", wh.GetTransaction)

	// Fund movements and loan decisions are retry-prone; guard them with the
	// idempotency middleware when redis is configured.
	var idem echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("redis connect failed")
		}
		idem = middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second)
	}
	mutating := func(path string, handler echo.HandlerFunc) {
		if idem != nil {
			e.POST(path, handler, idem)
			return
		}
		e.POST(path, handler)
	}
	mutating("/lenders/:agent_id/loans/request", lh.ProcessRequest)
	mutating("/loans/:loan_id/repay", lh.RepayLoan)
	mutating("/loans/:loan_id/default", lh.MarkDefaulted)
	mutating("/funds/deposit", wh.Deposit)
	mutating("/funds/withdraw", wh.Withdraw)

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	sw.Stop()
	// Pending confirmations are aborted, not left dangling: their
	// transactions go to FAILED before the process exits.
	walletUC.Confirmer().Shutdown()
}
