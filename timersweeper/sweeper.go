// Package timersweeper drives timer expiry for sessions nobody is touching.
// Every engine already applies lazy expiry on access; the sweeper exists so
// an abandoned auction still settles promptly.
package timersweeper

import (
	"os"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager"
	"code.cloudfoundry.org/workpool"

	"github.com/fantamercato/market/markettypes"
)

// Expirer is the slice of a market engine the sweeper needs.
type Expirer interface {
	ExpireTimers(sessionID string) error
}

type Sweeper struct {
	sessions markettypes.SessionStore
	expirers map[markettypes.Phase]Expirer
	pool     *workpool.WorkPool
	clock    clock.Clock
	interval time.Duration
	logger   lager.Logger
}

func New(
	sessions markettypes.SessionStore,
	expirers map[markettypes.Phase]Expirer,
	clk clock.Clock,
	interval time.Duration,
	workers int,
	logger lager.Logger,
) (*Sweeper, error) {
	pool, err := workpool.NewWorkPool(workers)
	if err != nil {
		return nil, err
	}
	return &Sweeper{
		sessions: sessions,
		expirers: expirers,
		pool:     pool,
		clock:    clk,
		interval: interval,
		logger:   logger.Session("timer-sweeper"),
	}, nil
}

// Run implements ifrit.Runner.
func (s *Sweeper) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.pool.Stop()

	close(ready)
	s.logger.Info("started", lager.Data{"interval": s.interval.String()})

	for {
		select {
		case <-ticker.C():
			s.sweep()
		case <-signals:
			s.logger.Info("stopping")
			return nil
		}
	}
}

// sweep fans one ExpireTimers call per active session out onto the pool. The
// engines' per-session locks make overlapping sweeps harmless.
func (s *Sweeper) sweep() {
	logger := s.logger.Session("sweep")

	ids, err := s.sessions.ActiveSessionIDs()
	if err != nil {
		logger.Error("failed-to-list-sessions", err)
		return
	}

	for _, id := range ids {
		session, err := s.sessions.Get(id)
		if err != nil {
			logger.Error("failed-to-fetch-session", err, lager.Data{"session-id": id})
			continue
		}
		expirer, ok := s.expirers[session.Phase]
		if !ok {
			continue
		}

		sessionID := id
		s.pool.Submit(func() {
			if err := expirer.ExpireTimers(sessionID); err != nil {
				logger.Error("failed-to-expire-timers", err, lager.Data{"session-id": sessionID})
			}
		})
	}
}
