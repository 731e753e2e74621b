package svincolati_test

import (
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/lagertest"

	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/marketstore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/notification"
	"github.com/fantamercato/market/sessionlock"
	"github.com/fantamercato/market/svincolati"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("SvincolatiMarket", func() {
	var store *marketstore.Store
	var clk *fakeclock.FakeClock
	var recorder *notification.Recorder
	var market *svincolati.Market
	var session *markettypes.TurnSession
	var rules markettypes.Rules

	nominate := func(member, player string) {
		Ω(market.Nominate(session.ID, member, player)).Should(Succeed())
	}

	readyAllExcept := func(nominator string) {
		for _, member := range session.TurnOrder {
			if member == nominator {
				continue
			}
			err := market.MarkReady(session.ID, member)
			if err != nil {
				// finished members are simply not part of the quorum
				Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindStateConflict))
			}
		}
	}

	ackAll := func() {
		state, err := market.State(session.ID)
		Ω(err).ShouldNot(HaveOccurred())
		Ω(state.PendingResult).ShouldNot(BeNil())
		for _, member := range state.TurnOrder {
			if state.FinishedMembers.Has(member) {
				continue
			}
			if err := market.Acknowledge(session.ID, member, ""); err != nil {
				// the last ack advances the turn and clears the result
				Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindStateConflict))
			}
		}
	}

	BeforeEach(func() {
		store = marketstore.New()
		clk = fakeclock.NewFakeClock(time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC))
		recorder = notification.NewRecorder()
		rules = markettypes.DefaultRules

		store.AddMember(markettypes.Member{ID: "ada", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleAdmin})
		store.AddMember(markettypes.Member{ID: "bruno", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleMember})
		store.AddMember(markettypes.Member{ID: "carla", LeagueID: "league-1", RawBudget: 100, Role: markettypes.RoleMember})

		store.AddPlayer(markettypes.Player{ID: "player-1", Name: "Rossi", Position: markettypes.PositionForward, Quotation: 10})
		store.AddPlayer(markettypes.Player{ID: "player-2", Name: "Verdi", Position: markettypes.PositionMidfielder, Quotation: 5})

		budgetLedger := ledger.New(store, store.Contracts())
		market = svincolati.New(
			store.Sessions(),
			store.Rosters(),
			store,
			store,
			budgetLedger,
			sessionlock.NewKeeper(),
			clk,
			rules,
			recorder,
			lagertest.NewTestLogger("svincolati"),
		)

		var err error
		session, err = market.StartPhase("league-1")
		Ω(err).ShouldNot(HaveOccurred())
	})

	Describe("StartPhase", func() {
		It("seats the league members in directory order with the first member up", func() {
			Ω(session.TurnOrder).Should(Equal([]string{"ada", "bruno", "carla"}))
			Ω(session.CurrentTurnMember()).Should(Equal("ada"))
			Ω(session.Completed).Should(BeFalse())
		})
	})

	Describe("Nominate", func() {
		It("rejects a member out of turn", func() {
			err := market.Nominate(session.ID, "bruno", "player-1")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotYourTurn))
		})

		It("rejects a player who is not a free agent", func() {
			Ω(store.Rosters().Create(markettypes.RosterEntry{
				ID: "entry-1", MemberID: "bruno", PlayerID: "player-1", AcquisitionPrice: 3,
			})).Should(Succeed())

			err := market.Nominate(session.ID, "ada", "player-1")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))
		})

		It("requires two credits of bilancio, not one", func() {
			Ω(store.Contracts().Save(markettypes.Contract{
				RosterEntryID: "entry-x", MemberID: "ada", Salary: 99, Duration: 1,
			})).Should(Succeed())

			err := market.Nominate(session.ID, "ada", "player-1")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindInsufficientBudget))
		})

		It("accepts a nomination at exactly the threshold", func() {
			Ω(store.Contracts().Save(markettypes.Contract{
				RosterEntryID: "entry-x", MemberID: "ada", Salary: 98, Duration: 1,
			})).Should(Succeed())

			Ω(market.Nominate(session.ID, "ada", "player-1")).Should(Succeed())
		})

		It("rejects a second nomination while one is pending", func() {
			nominate("ada", "player-1")

			err := market.Nominate(session.ID, "ada", "player-2")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindStateConflict))
		})
	})

	Describe("the ready-check", func() {
		BeforeEach(func() {
			nominate("ada", "player-1")
		})

		It("opens the auction once all other members are ready, with the nominator standing at 1", func() {
			Ω(market.MarkReady(session.ID, "bruno")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentAuction).Should(BeNil())

			Ω(market.MarkReady(session.ID, "carla")).Should(Succeed())

			state, err = market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingNomination).Should(BeNil())
			Ω(state.CurrentAuction).ShouldNot(BeNil())
			Ω(state.CurrentAuction.CurrentPrice).Should(Equal(1))
			Ω(state.CurrentAuction.HighBidder()).Should(Equal("ada"))
		})

		It("opens the auction when the ready-check timer lapses", func() {
			clk.Increment(rules.ReadyCheckTimer)

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentAuction).ShouldNot(BeNil())
		})

		It("lets an admin cancel the nomination, but nobody else", func() {
			err := market.CancelNomination(session.ID, "bruno")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))

			Ω(market.CancelNomination(session.ID, "ada")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingNomination).Should(BeNil())
			Ω(state.CurrentAuction).Should(BeNil())
		})
	})

	Describe("the ready-check after a pass", func() {
		It("does not wait on a passed member", func() {
			Ω(market.Pass(session.ID, "ada")).Should(Succeed())
			nominate("bruno", "player-1")

			Ω(market.MarkReady(session.ID, "carla")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingNomination).Should(BeNil())
			Ω(state.CurrentAuction).ShouldNot(BeNil())
			Ω(state.CurrentAuction.HighBidder()).Should(Equal("bruno"))
		})
	})

	Describe("bidding", func() {
		BeforeEach(func() {
			nominate("ada", "player-1")
			readyAllExcept("ada")
		})

		It("rejects a bid above the bidder's bilancio even when below the raw budget", func() {
			Ω(store.Contracts().Save(markettypes.Contract{
				RosterEntryID: "entry-x", MemberID: "bruno", Salary: 30, Duration: 2,
			})).Should(Succeed())

			err := market.Bid(session.ID, "bruno", 75)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindInsufficientBudget))

			Ω(market.Bid(session.ID, "bruno", 70)).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentAuction.CurrentPrice).Should(Equal(70))
			Ω(state.CurrentAuction.HighBidder()).Should(Equal("bruno"))
		})

		It("resets the timer on every accepted bid", func() {
			before, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())

			clk.Increment(10 * time.Second)
			Ω(market.Bid(session.ID, "bruno", 2)).Should(Succeed())

			after, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(after.CurrentAuction.TimerExpiresAt).Should(Equal(before.CurrentAuction.TimerExpiresAt.Add(10 * time.Second)))
		})

		It("rejects a stale bid after the timer lapsed", func() {
			clk.Increment(rules.AuctionTimer)

			err := market.Bid(session.ID, "bruno", 2)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindAuctionClosed))
		})
	})

	Describe("settlement and acknowledgment", func() {
		BeforeEach(func() {
			nominate("ada", "player-1")
			readyAllExcept("ada")
			Ω(market.Bid(session.ID, "bruno", 5)).Should(Succeed())
			clk.Increment(rules.AuctionTimer)
		})

		It("hands the player to the high bidder at the closing price", func() {
			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentAuction).Should(BeNil())
			Ω(state.PendingResult).ShouldNot(BeNil())
			Ω(state.PendingResult.Winner).Should(Equal("bruno"))
			Ω(state.PendingResult.Price).Should(Equal(5))

			member, err := store.Member("bruno")
			Ω(err).ShouldNot(HaveOccurred())
			Ω(member.RawBudget).Should(Equal(95))

			Ω(store.Rosters().Owner("league-1", "player-1")).Should(Equal("bruno"))
		})

		It("does not advance the turn until every member acknowledged", func() {
			Ω(market.Acknowledge(session.ID, "ada", "")).Should(Succeed())
			Ω(market.Acknowledge(session.ID, "bruno", "told you so")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingResult).ShouldNot(BeNil())
			Ω(state.CurrentTurnMember()).Should(Equal("ada"))

			Ω(market.Acknowledge(session.ID, "carla", "")).Should(Succeed())

			state, err = market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingResult).Should(BeNil())
			Ω(state.CurrentTurnMember()).Should(Equal("bruno"))
		})

		It("keeps the prophecy attached to the acknowledgment", func() {
			Ω(market.Acknowledge(session.ID, "bruno", "he will flop")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.PendingResult.Prophecies).Should(HaveKeyWithValue("bruno", "he will flop"))
		})
	})

	Describe("passing and finishing", func() {
		It("skips passed members but revisits them on the next lap", func() {
			Ω(market.Pass(session.ID, "ada")).Should(Succeed())
			Ω(market.Pass(session.ID, "bruno")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentTurnMember()).Should(Equal("carla"))

			// carla passes too: the lap resets and ada is up again
			Ω(market.Pass(session.ID, "carla")).Should(Succeed())

			state, err = market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.Completed).Should(BeFalse())
			Ω(state.CurrentTurnMember()).Should(Equal("ada"))
			Ω(state.PassedMembers.Len()).Should(BeZero())
		})

		It("completes the phase only when everyone declared finished", func() {
			Ω(market.DeclareFinished(session.ID, "ada")).Should(Succeed())
			Ω(market.DeclareFinished(session.ID, "bruno")).Should(Succeed())

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.Completed).Should(BeFalse())
			Ω(state.CurrentTurnMember()).Should(Equal("carla"))

			Ω(market.DeclareFinished(session.ID, "carla")).Should(Succeed())

			state, err = market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.Completed).Should(BeTrue())
		})

		It("blocks finished members from nominating or bidding", func() {
			Ω(market.DeclareFinished(session.ID, "ada")).Should(Succeed())

			err := market.Nominate(session.ID, "ada", "player-1")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindAlreadyFinished))

			nominate("bruno", "player-1")
			readyAllExcept("bruno")

			err = market.Bid(session.ID, "ada", 2)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindAlreadyFinished))
		})

		It("can be undone before the phase completes", func() {
			Ω(market.DeclareFinished(session.ID, "carla")).Should(Succeed())
			Ω(market.UndoFinished(session.ID, "carla")).Should(Succeed())

			err := market.DeclareFinished(session.ID, "carla")
			Ω(err).ShouldNot(HaveOccurred())
		})

		It("refuses finishing while holding the high bid", func() {
			nominate("ada", "player-1")
			readyAllExcept("ada")
			Ω(market.Bid(session.ID, "bruno", 3)).Should(Succeed())

			err := market.DeclareFinished(session.ID, "bruno")
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindNotEligible))
		})
	})

	Describe("a full turn cycle", func() {
		It("runs nomination to settlement and hands the turn on", func() {
			nominate("ada", "player-1")
			readyAllExcept("ada")
			Ω(market.Bid(session.ID, "bruno", 3)).Should(Succeed())
			Ω(market.Bid(session.ID, "carla", 4)).Should(Succeed())
			clk.Increment(rules.AuctionTimer)
			ackAll()

			state, err := market.State(session.ID)
			Ω(err).ShouldNot(HaveOccurred())
			Ω(state.CurrentTurnMember()).Should(Equal("bruno"))
			Ω(store.Rosters().Owner("league-1", "player-1")).Should(Equal("carla"))

			member, err := store.Member("carla")
			Ω(err).ShouldNot(HaveOccurred())
			Ω(member.RawBudget).Should(Equal(96))

			Ω(recorder.EventsOfType(markettypes.EventAuctionClosed)).Should(HaveLen(1))
		})
	})
})
