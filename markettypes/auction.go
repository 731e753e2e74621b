package markettypes

import "time"

type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "open"
	AuctionClosed AuctionStatus = "closed"
)

type Bid struct {
	Bidder   string    `json:"bidder"`
	Amount   int       `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// Auction is the shared timed-bidding record. Bids are appended in acceptance
// order under the session lock; CurrentPrice always equals the last accepted
// bid amount (or BasePrice when no bids landed yet).
type Auction struct {
	PlayerID       string        `json:"player_id"`
	RosterEntryID  string        `json:"roster_entry_id,omitempty"`
	BasePrice      int           `json:"base_price"`
	CurrentPrice   int           `json:"current_price"`
	Bids           []Bid         `json:"bids"`
	Status         AuctionStatus `json:"status"`
	Winner         string        `json:"winner,omitempty"`
	WinningPrice   int           `json:"winning_price,omitempty"`
	TimerExpiresAt time.Time     `json:"timer_expires_at"`
}

// HighBidder returns the member holding the current high bid, or "".
func (a *Auction) HighBidder() string {
	if len(a.Bids) == 0 {
		return ""
	}
	return a.Bids[len(a.Bids)-1].Bidder
}

func (a *Auction) Open() bool {
	return a.Status == AuctionOpen
}

// AuctionResult is a closed auction awaiting acknowledgment. Advancement is
// gated until every listed member has acknowledged; prophecies are optional
// flavour comments attached to the acknowledgment.
type AuctionResult struct {
	PlayerID   string            `json:"player_id"`
	Winner     string            `json:"winner,omitempty"`
	Price      int               `json:"price,omitempty"`
	Acks       MemberSet         `json:"acks"`
	Prophecies map[string]string `json:"prophecies,omitempty"`
}
