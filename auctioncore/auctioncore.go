// Package auctioncore is the timed bidding primitive shared by the first
// market, the svincolati market and rubata. It is purely functional over the
// Auction record: callers pass the current time explicitly and are
// responsible for serializing access per session and for checking bidder
// affordability against the ledger before placing a bid.
package auctioncore

import (
	"time"

	"github.com/fantamercato/market/markettypes"
)

// Open starts an auction with no bids. On expiry it closes with no winner.
func Open(playerID string, basePrice int, now time.Time, timer time.Duration) *markettypes.Auction {
	return &markettypes.Auction{
		PlayerID:       playerID,
		BasePrice:      basePrice,
		CurrentPrice:   basePrice,
		Bids:           []markettypes.Bid{},
		Status:         markettypes.AuctionOpen,
		TimerExpiresAt: now.Add(timer),
	}
}

// OpenWithBid starts an auction with the opener's bid standing at the base
// price, the shape both nominations and rubata offers take: if nobody
// raises, the opener wins at the base price.
func OpenWithBid(playerID, opener string, basePrice int, now time.Time, timer time.Duration) *markettypes.Auction {
	auction := Open(playerID, basePrice, now, timer)
	auction.Bids = append(auction.Bids, markettypes.Bid{
		Bidder:   opener,
		Amount:   basePrice,
		PlacedAt: now,
	})
	return auction
}

// PlaceBid accepts a raise of at least minIncrement over the current price,
// appends it and resets the expiry timer. A bid arriving after the timer has
// lapsed fails with AuctionClosed even if no expiry transition ran yet.
func PlaceBid(auction *markettypes.Auction, bidder string, amount int, now time.Time, minIncrement int, timer time.Duration) error {
	if !auction.Open() {
		return markettypes.NewError(markettypes.KindAuctionClosed,
			"the auction for %s is closed", auction.PlayerID)
	}
	if !now.Before(auction.TimerExpiresAt) {
		return markettypes.NewError(markettypes.KindAuctionClosed,
			"the auction for %s expired before the bid arrived", auction.PlayerID)
	}
	if amount < auction.CurrentPrice+minIncrement {
		return markettypes.NewError(markettypes.KindStateConflict,
			"bid of %d does not raise the current price of %d by at least %d",
			amount, auction.CurrentPrice, minIncrement)
	}

	auction.Bids = append(auction.Bids, markettypes.Bid{
		Bidder:   bidder,
		Amount:   amount,
		PlacedAt: now,
	})
	auction.CurrentPrice = amount
	auction.TimerExpiresAt = now.Add(timer)
	return nil
}

// Expired reports whether an open auction's timer has lapsed.
func Expired(auction *markettypes.Auction, now time.Time) bool {
	return auction.Open() && !now.Before(auction.TimerExpiresAt)
}

// Close terminates the auction. With at least one bid the high bidder wins
// at the current price; with none it closes no-bids and the caller decides
// the disposition.
func Close(auction *markettypes.Auction) {
	auction.Status = markettypes.AuctionClosed
	if bidder := auction.HighBidder(); bidder != "" {
		auction.Winner = bidder
		auction.WinningPrice = auction.CurrentPrice
	}
}

// CloseIfExpired applies the lazy expiry transition. It returns true when
// the auction closed as a result of this call.
func CloseIfExpired(auction *markettypes.Auction, now time.Time) bool {
	if !Expired(auction, now) {
		return false
	}
	Close(auction)
	return true
}
