package auctioncore_test

import (
	"time"

	"code.cloudfoundry.org/clock/fakeclock"

	"github.com/fantamercato/market/auctioncore"
	"github.com/fantamercato/market/markettypes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const timer = 30 * time.Second

var _ = Describe("AuctionCore", func() {
	var clk *fakeclock.FakeClock
	var auction *markettypes.Auction

	BeforeEach(func() {
		clk = fakeclock.NewFakeClock(time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC))
		auction = auctioncore.OpenWithBid("player-1", "member-1", 1, clk.Now(), timer)
	})

	Describe("OpenWithBid", func() {
		It("opens with the opener's bid standing at the base price", func() {
			Ω(auction.Status).Should(Equal(markettypes.AuctionOpen))
			Ω(auction.CurrentPrice).Should(Equal(1))
			Ω(auction.HighBidder()).Should(Equal("member-1"))
			Ω(auction.TimerExpiresAt).Should(Equal(clk.Now().Add(timer)))
		})
	})

	Describe("PlaceBid", func() {
		It("accepts a raise of at least the minimum increment and resets the timer", func() {
			clk.Increment(10 * time.Second)
			err := auctioncore.PlaceBid(auction, "member-2", 2, clk.Now(), 1, timer)
			Ω(err).ShouldNot(HaveOccurred())

			Ω(auction.CurrentPrice).Should(Equal(2))
			Ω(auction.HighBidder()).Should(Equal("member-2"))
			Ω(auction.TimerExpiresAt).Should(Equal(clk.Now().Add(timer)))
			Ω(auction.Bids).Should(HaveLen(2))
		})

		It("rejects a bid below the current price plus the increment", func() {
			Ω(auctioncore.PlaceBid(auction, "member-2", 5, clk.Now(), 1, timer)).Should(Succeed())

			err := auctioncore.PlaceBid(auction, "member-3", 5, clk.Now(), 1, timer)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindStateConflict))
			Ω(auction.CurrentPrice).Should(Equal(5))
		})

		It("rejects a bid arriving after the timer lapsed, before any expiry transition ran", func() {
			clk.Increment(timer)

			err := auctioncore.PlaceBid(auction, "member-2", 2, clk.Now(), 1, timer)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindAuctionClosed))
		})

		It("rejects a bid on a closed auction", func() {
			auctioncore.Close(auction)

			err := auctioncore.PlaceBid(auction, "member-2", 2, clk.Now(), 1, timer)
			Ω(markettypes.KindOf(err)).Should(Equal(markettypes.KindAuctionClosed))
		})
	})

	Describe("expiry", func() {
		It("does not expire before the timer lapses", func() {
			clk.Increment(timer - time.Second)
			Ω(auctioncore.CloseIfExpired(auction, clk.Now())).Should(BeFalse())
			Ω(auction.Open()).Should(BeTrue())
		})

		It("closes with the high bidder winning at the current price", func() {
			Ω(auctioncore.PlaceBid(auction, "member-2", 4, clk.Now(), 1, timer)).Should(Succeed())

			clk.Increment(timer)
			Ω(auctioncore.CloseIfExpired(auction, clk.Now())).Should(BeTrue())

			Ω(auction.Status).Should(Equal(markettypes.AuctionClosed))
			Ω(auction.Winner).Should(Equal("member-2"))
			Ω(auction.WinningPrice).Should(Equal(4))
		})

		It("closes no-bids when nobody bid at all", func() {
			empty := auctioncore.Open("player-2", 1, clk.Now(), timer)
			clk.Increment(timer)

			Ω(auctioncore.CloseIfExpired(empty, clk.Now())).Should(BeTrue())
			Ω(empty.Winner).Should(BeZero())
		})
	})
})
