// Package rubata implements the steal market: an ordered board of every
// contracted player, traversed lot by lot through a single global state
// machine (OFFERING, READY_CHECK, AUCTION, PAUSED). Any member may force the
// purchase of the current lot at clause plus salary; the owner cannot veto.
package rubata

import (
	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/auctioncore"
	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/sessionlock"
	"github.com/fantamercato/market/util"
)

type Market struct {
	sessions  markettypes.SessionStore
	rosters   markettypes.RosterStore
	contracts markettypes.ContractStore
	directory markettypes.LeagueDirectory
	ledger    *ledger.BudgetLedger
	locks     *sessionlock.Keeper
	clock     clock.Clock
	rules     markettypes.Rules
	sink      markettypes.NotificationSink
	logger    lager.Logger
}

func New(
	sessions markettypes.SessionStore,
	rosters markettypes.RosterStore,
	contracts markettypes.ContractStore,
	directory markettypes.LeagueDirectory,
	budgetLedger *ledger.BudgetLedger,
	locks *sessionlock.Keeper,
	clk clock.Clock,
	rules markettypes.Rules,
	sink markettypes.NotificationSink,
	logger lager.Logger,
) *Market {
	return &Market{
		sessions:  sessions,
		rosters:   rosters,
		contracts: contracts,
		directory: directory,
		ledger:    budgetLedger,
		locks:     locks,
		clock:     clk,
		rules:     rules,
		sink:      sink,
		logger:    logger.Session("rubata"),
	}
}

// StartPhase snapshots the league's contracts into a board and opens the
// session in READY_CHECK: the first lot's OFFERING begins once everyone is
// ready.
func (m *Market) StartPhase(leagueID string) (*markettypes.TurnSession, error) {
	logger := m.logger.Session("start-phase", lager.Data{"league-id": leagueID})

	members, err := m.directory.Members(leagueID)
	if err != nil {
		logger.Error("failed-to-fetch-members", err)
		return nil, err
	}
	if len(members) == 0 {
		return nil, markettypes.NewError(markettypes.KindNoActiveMembers,
			"league %s has no members", leagueID)
	}

	board, err := BuildBoard(members, m.contracts)
	if err != nil {
		logger.Error("failed-to-build-board", err)
		return nil, err
	}

	session := &markettypes.TurnSession{
		ID:              "rubata-" + util.RandomGuid(),
		LeagueID:        leagueID,
		Phase:           markettypes.PhaseRubata,
		TurnOrder:       members,
		PassedMembers:   markettypes.NewMemberSet(),
		FinishedMembers: markettypes.NewMemberSet(),
		Rubata: &markettypes.RubataSession{
			State:        markettypes.RubataReadyCheck,
			Board:        board,
			ReadyMembers: markettypes.NewMemberSet(),
		},
	}
	if len(board) == 0 {
		session.Completed = true
	}

	if err := m.sessions.Save(session); err != nil {
		logger.Error("failed-to-save-session", err)
		return nil, err
	}

	m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
		"state": session.Rubata.State,
		"lots":  len(board),
	})
	logger.Info("started", lager.Data{"session-id": session.ID, "lots": len(board)})
	return session.Clone(), nil
}

// MarkReady records readiness during READY_CHECK. Once every member is ready
// the board advances past settled lots and the next OFFERING window opens.
func (m *Market) MarkReady(sessionID, memberID string) error {
	return m.update(sessionID, "mark-ready", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if session.Completed {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the phase already completed")
			}
			rub := session.Rubata
			if rub.State != markettypes.RubataReadyCheck {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the market is %s, not in a ready-check", rub.State)
			}
			if rub.PendingResult != nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the last result is still awaiting acknowledgment")
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}

			rub.ReadyMembers.Add(memberID)
			if rub.ReadyMembers.HasAll(session.TurnOrder) {
				m.beginOffering(session)
			}
			return nil
		})
}

// MakeOffer opens the compulsory auction on the current lot at its rubata
// price. The owner cannot offer on their own player.
func (m *Market) MakeOffer(sessionID, memberID string) error {
	return m.update(sessionID, "make-offer", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			rub := session.Rubata
			if rub.State != markettypes.RubataOffering {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the market is %s, no lot is on offer", rub.State)
			}
			entry := rub.CurrentEntry()
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}
			if memberID == entry.SellerID {
				return markettypes.NewError(markettypes.KindNotEligible,
					"cannot make a rubata offer on your own player")
			}
			if err := m.ledger.CheckAffordable(memberID, entry.RubataPrice); err != nil {
				return err
			}

			auction := auctioncore.OpenWithBid(entry.PlayerID, memberID, entry.RubataPrice,
				m.clock.Now(), m.rules.AuctionTimer)
			auction.RosterEntryID = entry.RosterEntryID
			rub.Auction = auction
			rub.State = markettypes.RubataAuction
			rub.TimerStartedAt = nil
			rub.TimerExpiresAt = nil

			m.notify(markettypes.EventAuctionOpened, session, map[string]interface{}{
				"player_id": entry.PlayerID,
				"offerer":   memberID,
				"price":     entry.RubataPrice,
			})
			return nil
		})
}

// Bid raises the running rubata auction. The seller is not eligible.
func (m *Market) Bid(sessionID, memberID string, amount int) error {
	return m.update(sessionID, "bid", lager.Data{"member-id": memberID, "amount": amount},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			rub := session.Rubata
			if rub.State != markettypes.RubataAuction {
				if rub.PendingResult != nil {
					return markettypes.NewError(markettypes.KindAuctionClosed,
						"the auction already closed")
				}
				return markettypes.NewError(markettypes.KindStateConflict,
					"the market is %s, no auction is running", rub.State)
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}
			if memberID == rub.CurrentEntry().SellerID {
				return markettypes.NewError(markettypes.KindNotEligible,
					"the owner cannot bid on their own rubata lot")
			}
			if err := m.ledger.CheckAffordable(memberID, amount); err != nil {
				return err
			}
			if err := auctioncore.PlaceBid(rub.Auction, memberID, amount,
				m.clock.Now(), m.rules.MinIncrement, m.rules.AuctionTimer); err != nil {
				return err
			}

			m.notify(markettypes.EventBidAccepted, session, map[string]interface{}{
				"bidder": memberID,
				"amount": amount,
			})
			return nil
		})
}

// Acknowledge confirms the last closed lot, optionally with a prophecy.
// The ready-check for the next lot only proceeds once everyone acknowledged.
func (m *Market) Acknowledge(sessionID, memberID, prophecy string) error {
	return m.update(sessionID, "acknowledge", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			rub := session.Rubata
			if rub.PendingResult == nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"no result is awaiting acknowledgment")
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}

			rub.PendingResult.Acks.Add(memberID)
			if prophecy != "" {
				if rub.PendingResult.Prophecies == nil {
					rub.PendingResult.Prophecies = map[string]string{}
				}
				rub.PendingResult.Prophecies[memberID] = prophecy
			}
			if rub.PendingResult.Acks.HasAll(session.TurnOrder) {
				rub.PendingResult = nil
			}
			return nil
		})
}

// GoBack rewinds the board cursor by one lot. Admin only, and only while
// the machine sits in READY_CHECK with nothing left to acknowledge.
func (m *Market) GoBack(sessionID, adminID string) error {
	return m.update(sessionID, "go-back", lager.Data{"admin-id": adminID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkAdmin(adminID); err != nil {
				return err
			}
			rub := session.Rubata
			if rub.State != markettypes.RubataReadyCheck || rub.PendingResult != nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the board can only be rewound during a settled ready-check")
			}

			// The cursor may sit one past the end once the board is spent.
			pos := rub.BoardPosition
			if pos > len(rub.Board) {
				pos = len(rub.Board)
			}
			if pos == 0 {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the board is at its first lot")
			}

			rub.BoardPosition = pos - 1
			rub.Board[rub.BoardPosition].Done = false
			session.Completed = false
			rub.ReadyMembers = markettypes.NewMemberSet()

			m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
				"state":          rub.State,
				"board_position": rub.BoardPosition,
				"rewound":        true,
			})
			return nil
		})
}

// Pause freezes the machine and whatever timer is running. Admin only.
func (m *Market) Pause(sessionID, adminID string) error {
	return m.update(sessionID, "pause", lager.Data{"admin-id": adminID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkAdmin(adminID); err != nil {
				return err
			}
			rub := session.Rubata
			if rub.State == markettypes.RubataPaused {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the market is already paused")
			}

			now := m.clock.Now()
			switch rub.State {
			case markettypes.RubataOffering:
				if rub.TimerExpiresAt != nil {
					remaining := rub.TimerExpiresAt.Sub(now)
					rub.FrozenRemaining = &remaining
				}
			case markettypes.RubataAuction:
				if rub.Auction != nil && rub.Auction.Open() {
					remaining := rub.Auction.TimerExpiresAt.Sub(now)
					rub.FrozenRemaining = &remaining
				}
			}

			rub.ResumeState = rub.State
			rub.State = markettypes.RubataPaused

			m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
				"state": rub.State,
			})
			return nil
		})
}

// Resume unfreezes the machine, restoring the remaining time of whatever
// timer was running when it was paused.
func (m *Market) Resume(sessionID, adminID string) error {
	return m.update(sessionID, "resume", lager.Data{"admin-id": adminID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkAdmin(adminID); err != nil {
				return err
			}
			rub := session.Rubata
			if rub.State != markettypes.RubataPaused {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the market is not paused")
			}

			now := m.clock.Now()
			rub.State = rub.ResumeState
			rub.ResumeState = ""
			if rub.FrozenRemaining != nil {
				switch rub.State {
				case markettypes.RubataOffering:
					expires := now.Add(*rub.FrozenRemaining)
					rub.TimerExpiresAt = &expires
				case markettypes.RubataAuction:
					if rub.Auction != nil {
						rub.Auction.TimerExpiresAt = now.Add(*rub.FrozenRemaining)
					}
				}
				rub.FrozenRemaining = nil
			}

			m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
				"state": rub.State,
			})
			return nil
		})
}

// ExpireTimers applies any lapsed timer transitions; the background sweeper
// calls it, every other operation does the same implicitly.
func (m *Market) ExpireTimers(sessionID string) error {
	return m.update(sessionID, "expire-timers", nil,
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			return nil
		})
}

// State returns a deep copy of the session after applying lazy expiry.
func (m *Market) State(sessionID string) (*markettypes.TurnSession, error) {
	var snapshot *markettypes.TurnSession
	err := m.update(sessionID, "state", nil,
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			snapshot = session.Clone()
			return nil
		})
	return snapshot, err
}
