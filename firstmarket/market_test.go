package firstmarket_test

import (
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/lagertest"

	"github.com/fantamercato/market/firstmarket"
	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/marketstore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/notification"
	"github.com/fantamercato/market/sessionlock"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FirstMarket", func() {
	var store *marketstore.Store
	var clk *fakeclock.FakeClock
	var recorder *notification.Recorder
	var market *firstmarket.Market
	var session *markettypes.TurnSession
	var rules markettypes.Rules

	own := func(member, entryID, playerID string) {
		Ω(store.Rosters().Create(markettypes.RosterEntry{
			ID: entryID, MemberID: member, PlayerID: playerID, AcquisitionPrice: 1,
		})).Should(Succeed())
	}

	readyAllExcept := func(nominator string) {
		for _, member := range session.TurnOrder {
			if member == nominator {
				continue
			}
			Ω(market.MarkReady(session.ID, member)).Should(Succeed())
		}
	}

	BeforeEach(func() {
		store = marketstore.New()
		clk = fakeclock.NewFakeClock(time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC))
		recorder = notification.NewRecorder()

		// a one-slot-per-position quota keeps roster completion reachable
		rules = markettypes.DefaultRules
		rules.RosterQuota = map[markettypes.Position]int{
			markettypes.PositionGoalkeeper: 1,
			markettypes.PositionDefender:   1,
			markettypes.PositionMidfielder: 1,
			markettypes.PositionForward:    1,
		}

		store.AddMember(markettypes.Member{ID: "ada", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleAdmin})
		store.AddMember(markettypes.Member{ID: "bruno", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleMember})
		store.AddMember(markettypes.Member{ID: "carla", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleMember})

		store.AddPlayer(markettypes.Player{ID: "gk-1", Name: "Reti", Position: markettypes.PositionGoalkeeper, Quotation: 8})
		store.AddPlayer(markettypes.Player{ID: "gk-2", Name: "Porta", Position: markettypes.PositionGoalkeeper, Quotation: 6})
		store.AddPlayer(markettypes.Player{ID: "def-1", Name: "Muro", Position: markettypes.PositionDefender, Quotation: 4})
		store.AddPlayer(markettypes.Player{ID: "mid-1", Name: "Regia", Position: markettypes.PositionMidfielder, Quotation: 5})
		store.AddPlayer(markettypes.Player{ID: "fwd-1", Name: "Gol", Position: markettypes.PositionForward, Quotation: 12})

		budgetLedger := ledger.New(store, store.Contracts())
		market = firstmarket.New(
			store.Sessions(),
			store.Rosters(),
			store,
			store,
			budgetLedger,
			sessionlock.NewKeeper(),
			clk,
			rules,
			recorder,
			lagertest.NewTestLogger("first-market"),
		)

		var err error
		session, err = market.StartPhase("league-1")
		Ω(err).ShouldNot(HaveOccurred())
	})

	Describe("StartPhase", func() {
		It("seats the league members in directory order with the first member up", func() {
			Ω(session.TurnOrder).Should(Equal([]string{"ada", "bruno", "carla"}))
			Ω(session.CurrentTurnMember()).Should(Equal("ada"))
		})
	})

	Describe("roster quota", func() {
		It("rejects a nomination when the nominator's slot for the position is full", func() {
			own("ada", "entry-gk", "gk-1")

			err := market.Nominate(session.ID, "ada", "gk-2")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))
		})

		It("rejects a bid from a member whose slot for the position is full", func() {
			own("bruno", "entry-gk", "gk-2")

			Ω(market.Nominate(session.ID, "ada", "gk-1")).Should(Succeed())
			readyAllExcept("ada")

			err := market.Bid(session.ID, "bruno", 2)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))

			Ω(market.Bid(session.ID, "carla", 2)).Should(Succeed())
		})
	})

	Describe("the ready-check after a pass", func() {
		It("does not wait on a passed member", func() {
			Ω(market.Pass(session.ID, "ada")).Should(Succeed())
			Ω(market.Nominate(session.ID, "bruno", "gk-1")).Should(Succeed())

			Ω(market.MarkReady(session.ID, "carla")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingNomination).Should(BeNil())
			Ω(state.CurrentAuction).ShouldNot(BeNil())
			Ω(state.CurrentAuction.HighBidder()).Should(Equal("bruno"))
		})
	})

	Describe("the auction flow", func() {
		It("sells the player to the high bidder at the standing price", func() {
			Ω(market.Nominate(session.ID, "ada", "fwd-1")).Should(Succeed())
			readyAllExcept("ada")

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentAuction).ShouldNot(BeNil())
			Ω(state.CurrentAuction.CurrentPrice).Should(Equal(1))
			Ω(state.CurrentAuction.HighBidder()).Should(Equal("ada"))

			Ω(market.Bid(session.ID, "bruno", 7)).Should(Succeed())
			clk.Increment(rules.AuctionTimer + time.Second)
			Ω(market.ExpireTimers(session.ID)).Should(Succeed())

			roster, err := store.Rosters().Roster("bruno")
			Ω(err).ShouldNot(HaveOccurred())
			Ω(roster).Should(HaveLen(1))
			Ω(roster[0].PlayerID).Should(Equal("fwd-1"))
			Ω(roster[0].AcquisitionPrice).Should(Equal(7))

			bruno, err := store.Member("bruno")
			Ω(err).ShouldNot(HaveOccurred())
			Ω(bruno.RawBudget).Should(Equal(93))
		})
	})

	Describe("DeclareFinished", func() {
		It("is rejected while the roster is incomplete", func() {
			own("ada", "entry-gk", "gk-1")

			err := market.DeclareFinished(session.ID, "ada")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))
		})

		It("is accepted once every position is filled to quota", func() {
			own("ada", "entry-gk", "gk-1")
			own("ada", "entry-def", "def-1")
			own("ada", "entry-mid", "mid-1")
			own("ada", "entry-fwd", "fwd-1")

			Ω(market.DeclareFinished(session.ID, "ada")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.FinishedMembers.Has("ada")).Should(BeTrue())
			Ω(state.CurrentTurnMember()).Should(Equal("bruno"))
		})
	})
})
