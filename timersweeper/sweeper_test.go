package timersweeper_test

import (
	"os"
	"sync"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/lagertest"
	"github.com/tedsuo/ifrit"

	"github.com/fantamercato/market/marketstore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/timersweeper"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type recordingExpirer struct {
	lock  sync.Mutex
	calls []string
}

func (e *recordingExpirer) ExpireTimers(sessionID string) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.calls = append(e.calls, sessionID)
	return nil
}

func (e *recordingExpirer) Calls() []string {
	e.lock.Lock()
	defer e.lock.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

var _ = Describe("Sweeper", func() {
	var store *marketstore.Store
	var clk *fakeclock.FakeClock
	var svincolatiExpirer *recordingExpirer
	var rubataExpirer *recordingExpirer
	var process ifrit.Process

	BeforeEach(func() {
		store = marketstore.New()
		clk = fakeclock.NewFakeClock(time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC))
		svincolatiExpirer = &recordingExpirer{}
		rubataExpirer = &recordingExpirer{}

		Ω(store.Sessions().Save(&markettypes.TurnSession{
			ID: "svincolati-1", Phase: markettypes.PhaseSvincolati,
		})).Should(Succeed())
		Ω(store.Sessions().Save(&markettypes.TurnSession{
			ID: "rubata-1", Phase: markettypes.PhaseRubata,
			Rubata: &markettypes.RubataSession{State: markettypes.RubataReadyCheck},
		})).Should(Succeed())
		Ω(store.Sessions().Save(&markettypes.TurnSession{
			ID: "svincolati-done", Phase: markettypes.PhaseSvincolati, Completed: true,
		})).Should(Succeed())

		sweeper, err := timersweeper.New(
			store.Sessions(),
			map[markettypes.Phase]timersweeper.Expirer{
				markettypes.PhaseSvincolati: svincolatiExpirer,
				markettypes.PhaseRubata:     rubataExpirer,
			},
			clk,
			time.Second,
			5,
			lagertest.NewTestLogger("sweeper"),
		)
		Ω(err).ShouldNot(HaveOccurred())

		process = ifrit.Invoke(sweeper)
	})

	AfterEach(func() {
		process.Signal(os.Interrupt)
		Eventually(process.Wait()).Should(Receive(BeNil()))
	})

	It("sweeps every active session on each tick, dispatched by phase", func() {
		clk.WaitForWatcherAndIncrement(time.Second)

		Eventually(svincolatiExpirer.Calls).Should(Equal([]string{"svincolati-1"}))
		Eventually(rubataExpirer.Calls).Should(Equal([]string{"rubata-1"}))
	})

	It("skips completed sessions", func() {
		clk.WaitForWatcherAndIncrement(time.Second)

		Eventually(svincolatiExpirer.Calls).Should(HaveLen(1))
		Consistently(svincolatiExpirer.Calls).ShouldNot(ContainElement("svincolati-done"))
	})
})
