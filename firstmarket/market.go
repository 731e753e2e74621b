// Package firstmarket implements the opening roster-building market. It runs
// the same nomination rotation as the svincolati market, with two extra
// gates: every acquisition must fit the per-position roster quota, and a
// member may only declare finished once their roster is complete.
package firstmarket

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
	catalog   markettypes.PlayerCatalog
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
	catalog markettypes.PlayerCatalog,
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
		catalog:   catalog,
		directory: directory,
		ledger:    budgetLedger,
		locks:     locks,
		clock:     clk,
		rules:     rules,
		sink:      sink,
		logger:    logger.Session("first-market"),
	}
}

// StartPhase opens a new first-market session with the league's members as
// the turn order, first member up.
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

	session := &markettypes.TurnSession{
		ID:              "first-market-" + util.RandomGuid(),
		LeagueID:        leagueID,
		Phase:           markettypes.PhaseFirstMarket,
		TurnOrder:       members,
		PassedMembers:   markettypes.NewMemberSet(),
		FinishedMembers: markettypes.NewMemberSet(),
	}
	if err := m.sessions.Save(session); err != nil {
		logger.Error("failed-to-save-session", err)
		return nil, err
	}

	m.notify(markettypes.EventTurnAdvanced, session, map[string]interface{}{
		"turn_holder": session.CurrentTurnMember(),
	})
	logger.Info("started", lager.Data{"session-id": session.ID})
	return session.Clone(), nil
}

// Nominate puts a free agent up for auction. Besides the turn, the free-agent
// status and the bilancio threshold, the nominator needs an open roster slot
// for the player's position.
func (m *Market) Nominate(sessionID, memberID, playerID string) error {
	return m.update(sessionID, "nominate", lager.Data{"member-id": memberID, "player-id": playerID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkIdle(session); err != nil {
				return err
			}
			if session.FinishedMembers.Has(memberID) {
				return markettypes.NewError(markettypes.KindAlreadyFinished,
					"%s declared finished and can no longer nominate", memberID)
			}
			if session.CurrentTurnMember() != memberID {
				return markettypes.NewError(markettypes.KindNotYourTurn,
					"it is %s's turn to nominate", session.CurrentTurnMember())
			}
			player, err := m.catalog.Player(playerID)
			if err != nil {
				return err
			}
			owner, err := m.rosters.Owner(session.LeagueID, playerID)
			if err != nil {
				return err
			}
			if owner != "" {
				return markettypes.NewError(markettypes.KindNotEligible,
					"player %s is not a free agent", playerID)
			}
			if err := m.checkSlotFree(memberID, player.Position); err != nil {
				return err
			}
			if err := m.ledger.CheckCanNominate(memberID, m.rules.NominationThreshold); err != nil {
				return err
			}

			session.PendingNomination = &markettypes.Nomination{
				Nominator:      memberID,
				PlayerID:       playerID,
				ReadyMembers:   markettypes.NewMemberSet(),
				TimerExpiresAt: m.clock.Now().Add(m.rules.ReadyCheckTimer),
			}
			m.notify(markettypes.EventNominationOpened, session, map[string]interface{}{
				"nominator": memberID,
				"player_id": playerID,
			})
			return nil
		})
}

// MarkReady records a member's readiness for the pending nomination. When
// every non-finished member other than the nominator is ready the auction
// opens.
func (m *Market) MarkReady(sessionID, memberID string) error {
	return m.update(sessionID, "mark-ready", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if session.PendingNomination == nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"no nomination is awaiting a ready-check")
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}

			session.PendingNomination.ReadyMembers.Add(memberID)
			m.maybeOpenAuction(session)
			return nil
		})
}

// CancelNomination drops a pending nomination before its ready-check
// completes. Admin only.
func (m *Market) CancelNomination(sessionID, adminID string) error {
	return m.update(sessionID, "cancel-nomination", lager.Data{"admin-id": adminID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkAdmin(adminID); err != nil {
				return err
			}
			if session.PendingNomination == nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"no nomination is pending")
			}

			m.notify(markettypes.EventNominationDropped, session, map[string]interface{}{
				"player_id": session.PendingNomination.PlayerID,
			})
			session.PendingNomination = nil
			return nil
		})
}

// Bid raises the open auction. Bidders need an open roster slot for the
// auctioned player's position on top of the bilancio check.
func (m *Market) Bid(sessionID, memberID string, amount int) error {
	return m.update(sessionID, "bid", lager.Data{"member-id": memberID, "amount": amount},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if session.CurrentAuction == nil {
				if session.PendingResult != nil {
					return markettypes.NewError(markettypes.KindAuctionClosed,
						"the auction already closed")
				}
				return markettypes.NewError(markettypes.KindStateConflict,
					"no auction is open")
			}
			if session.FinishedMembers.Has(memberID) {
				return markettypes.NewError(markettypes.KindAlreadyFinished,
					"%s declared finished and can no longer bid", memberID)
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}
			player, err := m.catalog.Player(session.CurrentAuction.PlayerID)
			if err != nil {
				return err
			}
			if err := m.checkSlotFree(memberID, player.Position); err != nil {
				return err
			}
			if err := m.ledger.CheckAffordable(memberID, amount); err != nil {
				return err
			}
			if err := auctioncore.PlaceBid(session.CurrentAuction, memberID, amount,
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

// Acknowledge confirms a closed auction's result, optionally attaching a
// prophecy comment. Once every non-finished member acknowledged, the turn
// advances.
func (m *Market) Acknowledge(sessionID, memberID, prophecy string) error {
	return m.update(sessionID, "acknowledge", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if session.PendingResult == nil {
				return markettypes.NewError(markettypes.KindStateConflict,
					"no result is awaiting acknowledgment")
			}
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}

			session.PendingResult.Acks.Add(memberID)
			if prophecy != "" {
				if session.PendingResult.Prophecies == nil {
					session.PendingResult.Prophecies = map[string]string{}
				}
				session.PendingResult.Prophecies[memberID] = prophecy
			}
			m.maybeAdvanceAfterAcks(session)
			return nil
		})
}

// Pass hands the turn to the next active member for the rest of the lap.
func (m *Market) Pass(sessionID, memberID string) error {
	return m.update(sessionID, "pass", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if err := m.checkIdle(session); err != nil {
				return err
			}
			if session.FinishedMembers.Has(memberID) {
				return markettypes.NewError(markettypes.KindAlreadyFinished,
					"%s declared finished", memberID)
			}
			if session.CurrentTurnMember() != memberID {
				return markettypes.NewError(markettypes.KindNotYourTurn,
					"it is %s's turn", session.CurrentTurnMember())
			}

			session.PassedMembers.Add(memberID)
			m.advanceTurn(session)
			return nil
		})
}

// DeclareFinished removes a member from the rotation. In the first market a
// member may only finish once their roster is complete at every position.
func (m *Market) DeclareFinished(sessionID, memberID string) error {
	return m.update(sessionID, "declare-finished", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if !contains(session.TurnOrder, memberID) {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s is not part of this session", memberID)
			}
			if session.FinishedMembers.Has(memberID) {
				return markettypes.NewError(markettypes.KindAlreadyFinished,
					"%s already declared finished", memberID)
			}
			if session.CurrentAuction != nil && session.CurrentAuction.HighBidder() == memberID {
				return markettypes.NewError(markettypes.KindNotEligible,
					"cannot declare finished while holding the high bid")
			}
			if session.PendingNomination != nil && session.PendingNomination.Nominator == memberID {
				return markettypes.NewError(markettypes.KindNotEligible,
					"cannot declare finished with your own nomination pending")
			}
			complete, err := m.rosterComplete(memberID)
			if err != nil {
				return err
			}
			if !complete {
				return markettypes.NewError(markettypes.KindNotEligible,
					"%s's roster is not complete", memberID)
			}

			wasTurnHolder := session.CurrentTurnMember() == memberID
			session.FinishedMembers.Add(memberID)
			session.PassedMembers.Remove(memberID)

			switch {
			case session.PendingNomination != nil:
				m.maybeOpenAuction(session)
			case session.PendingResult != nil:
				m.maybeAdvanceAfterAcks(session)
			case wasTurnHolder:
				m.advanceTurn(session)
			default:
				m.completeIfExhausted(session)
			}
			return nil
		})
}

// UndoFinished reverses DeclareFinished while the phase is still running.
func (m *Market) UndoFinished(sessionID, memberID string) error {
	return m.update(sessionID, "undo-finished", lager.Data{"member-id": memberID},
		func(logger lager.Logger, session *markettypes.TurnSession) error {
			if session.Completed {
				return markettypes.NewError(markettypes.KindStateConflict,
					"the phase already completed")
			}
			if !session.FinishedMembers.Has(memberID) {
				return markettypes.NewError(markettypes.KindStateConflict,
					"%s has not declared finished", memberID)
			}

			session.FinishedMembers.Remove(memberID)
			return nil
		})
}

// ExpireTimers applies any lapsed timer transitions. Every other operation
// does this implicitly; the background sweeper calls it for responsiveness.
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
