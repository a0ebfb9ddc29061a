// Package sweeper runs the periodic housekeeping jobs: deactivating expired
// wallet-connect sessions and failing transactions stuck in PENDING (e.g.
// after a restart lost their confirmation task).
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	walletuc "lender-agent-backend/internal/usecase/wallet"
)

type Sweeper struct {
	c          *cron.Cron
	wallets    *walletuc.Usecase
	staleAfter time.Duration
	log        *logrus.Logger
}

func New(wallets *walletuc.Usecase, spec string, staleAfter time.Duration, log *logrus.Logger) (*Sweeper, error) {
	if log == nil {
		log = logrus.New()
	}
	s := &Sweeper{
		c:          cron.New(),
		wallets:    wallets,
		staleAfter: staleAfter,
		log:        log,
	}
	if _, err := s.c.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := s.wallets.SweepExpiredSessions(ctx); err != nil {
		s.log.WithError(err).Error("session sweep failed")
	} else if n > 0 {
		s.log.WithField("count", n).Info("expired wallet sessions")
	}

	if _, err := s.wallets.SweepStuckTransactions(ctx, s.staleAfter); err != nil {
		s.log.WithError(err).Error("stuck transaction sweep failed")
	}
}

func (s *Sweeper) Start() { s.c.Start() }

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
