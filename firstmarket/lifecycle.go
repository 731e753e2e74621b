package firstmarket

import (
	"errors"

	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/auctioncore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/rotation"
	"github.com/fantamercato/market/util"
)

// update is the single-writer funnel: every operation locks the session,
// applies lazy timer expiry, runs, and saves. Expiry transitions are saved
// even when the operation itself is rejected.
func (m *Market) update(sessionID, op string, data lager.Data, fn func(lager.Logger, *markettypes.TurnSession) error) error {
	logger := m.logger.Session(op, lager.Data{"session-id": sessionID})
	if data != nil {
		logger = logger.WithData(data)
	}
	logger.Debug("handling")

	m.locks.Lock(sessionID)
	defer m.locks.Unlock(sessionID)

	session, err := m.sessions.Get(sessionID)
	if err != nil {
		logger.Error("failed-to-fetch-session", err)
		return err
	}
	if session.Phase != markettypes.PhaseFirstMarket {
		return markettypes.NewError(markettypes.KindStateConflict,
			"session %s is not a first-market session", sessionID)
	}

	m.applyExpiredTimers(logger, session)

	opErr := fn(logger, session)
	if err := m.sessions.Save(session); err != nil {
		logger.Error("failed-to-save-session", err)
		return err
	}
	if opErr != nil {
		logger.Info("rejected", lager.Data{"reason": opErr.Error()})
		return opErr
	}

	logger.Debug("success")
	return nil
}

// applyExpiredTimers runs lapsed transitions to quiescence: a lapsed
// ready-check opens the auction, and a lapsed auction settles.
func (m *Market) applyExpiredTimers(logger lager.Logger, session *markettypes.TurnSession) {
	now := m.clock.Now()

	if nomination := session.PendingNomination; nomination != nil && !now.Before(nomination.TimerExpiresAt) {
		logger.Info("ready-check-expired", lager.Data{"player-id": nomination.PlayerID})
		m.openAuction(session)
	}

	if auction := session.CurrentAuction; auction != nil && auctioncore.CloseIfExpired(auction, now) {
		logger.Info("auction-expired", lager.Data{
			"player-id": auction.PlayerID,
			"winner":    auction.Winner,
		})
		m.settleAuction(logger, session)
	}
}

func (m *Market) checkIdle(session *markettypes.TurnSession) error {
	if session.Completed {
		return markettypes.NewError(markettypes.KindStateConflict,
			"the phase already completed")
	}
	if session.PendingNomination != nil || session.CurrentAuction != nil || session.PendingResult != nil {
		return markettypes.NewError(markettypes.KindStateConflict,
			"a nomination, auction or unacknowledged result is in progress")
	}
	return nil
}

func (m *Market) checkAdmin(memberID string) error {
	member, err := m.directory.Member(memberID)
	if err != nil {
		return err
	}
	if member.Role != markettypes.RoleAdmin {
		return markettypes.NewError(markettypes.KindNotEligible,
			"%s is not a league admin", memberID)
	}
	return nil
}

// checkSlotFree rejects when the member's roster already holds the quota for
// the position.
func (m *Market) checkSlotFree(memberID string, position markettypes.Position) error {
	counts, err := m.rosterCounts(memberID)
	if err != nil {
		return err
	}
	if counts[position] >= m.rules.RosterQuota[position] {
		return markettypes.NewError(markettypes.KindNotEligible,
			"%s's roster is full at position %s", memberID, position)
	}
	return nil
}

// rosterComplete reports whether every position is filled to quota.
func (m *Market) rosterComplete(memberID string) (bool, error) {
	counts, err := m.rosterCounts(memberID)
	if err != nil {
		return false, err
	}
	for position, quota := range m.rules.RosterQuota {
		if counts[position] < quota {
			return false, nil
		}
	}
	return true, nil
}

func (m *Market) rosterCounts(memberID string) (map[markettypes.Position]int, error) {
	roster, err := m.rosters.Roster(memberID)
	if err != nil {
		return nil, err
	}
	counts := map[markettypes.Position]int{}
	for _, entry := range roster {
		player, err := m.catalog.Player(entry.PlayerID)
		if err != nil {
			return nil, err
		}
		counts[player.Position]++
	}
	return counts, nil
}

// maybeOpenAuction opens the auction once every active member other than
// the nominator marked ready. Passed and finished members are not waited on.
func (m *Market) maybeOpenAuction(session *markettypes.TurnSession) {
	nomination := session.PendingNomination
	if nomination == nil {
		return
	}

	quorum := []string{}
	for _, member := range session.TurnOrder {
		if member == nomination.Nominator ||
			session.PassedMembers.Has(member) ||
			session.FinishedMembers.Has(member) {
			continue
		}
		quorum = append(quorum, member)
	}
	if !nomination.ReadyMembers.HasAll(quorum) {
		return
	}

	m.openAuction(session)
}

func (m *Market) openAuction(session *markettypes.TurnSession) {
	nomination := session.PendingNomination
	session.CurrentAuction = auctioncore.OpenWithBid(
		nomination.PlayerID,
		nomination.Nominator,
		1,
		m.clock.Now(),
		m.rules.AuctionTimer,
	)
	session.PendingNomination = nil

	m.notify(markettypes.EventAuctionOpened, session, map[string]interface{}{
		"player_id": nomination.PlayerID,
		"nominator": nomination.Nominator,
	})
}

// settleAuction turns a closed auction into a pending result, moving the
// player and the credits when there is a winner.
func (m *Market) settleAuction(logger lager.Logger, session *markettypes.TurnSession) {
	auction := session.CurrentAuction
	result := &markettypes.AuctionResult{
		PlayerID: auction.PlayerID,
		Winner:   auction.Winner,
		Price:    auction.WinningPrice,
		Acks:     markettypes.NewMemberSet(),
	}

	if auction.Winner != "" {
		entry := markettypes.RosterEntry{
			ID:               "entry-" + util.RandomGuid(),
			MemberID:         auction.Winner,
			PlayerID:         auction.PlayerID,
			AcquisitionPrice: auction.WinningPrice,
		}
		if err := m.rosters.Create(entry); err != nil {
			logger.Error("failed-to-create-roster-entry", err)
			return
		}
		if err := m.directory.AdjustBudget(auction.Winner, -auction.WinningPrice); err != nil {
			logger.Error("failed-to-debit-winner", err)
			return
		}
	}

	session.CurrentAuction = nil
	session.PendingResult = result

	m.notify(markettypes.EventAuctionClosed, session, map[string]interface{}{
		"player_id": result.PlayerID,
		"winner":    result.Winner,
		"price":     result.Price,
	})
}

// maybeAdvanceAfterAcks advances the rotation once every non-finished member
// acknowledged the pending result.
func (m *Market) maybeAdvanceAfterAcks(session *markettypes.TurnSession) {
	result := session.PendingResult
	if result == nil {
		return
	}

	quorum := []string{}
	for _, member := range session.TurnOrder {
		if session.FinishedMembers.Has(member) {
			continue
		}
		quorum = append(quorum, member)
	}
	if !result.Acks.HasAll(quorum) {
		return
	}

	session.PendingResult = nil
	m.advanceTurn(session)
}

// advanceTurn moves to the next active member. When the lap is exhausted and
// members merely passed, the passed set resets and the lap restarts; only
// everyone-finished completes the phase.
func (m *Market) advanceTurn(session *markettypes.TurnSession) {
	next, err := rotation.NextTurn(session.TurnOrder, session.PassedMembers, session.FinishedMembers, session.CurrentTurnIndex)
	if errors.Is(err, markettypes.ErrNoActiveMembers) {
		if session.FinishedMembers.Len() == len(session.TurnOrder) {
			m.completePhase(session)
			return
		}
		session.PassedMembers = markettypes.NewMemberSet()
		next, err = rotation.NextTurn(session.TurnOrder, session.PassedMembers, session.FinishedMembers, session.CurrentTurnIndex)
		if err != nil {
			m.completePhase(session)
			return
		}
	}

	session.CurrentTurnIndex = next
	m.notify(markettypes.EventTurnAdvanced, session, map[string]interface{}{
		"turn_holder": session.CurrentTurnMember(),
	})
}

func (m *Market) completeIfExhausted(session *markettypes.TurnSession) {
	if !session.Completed && session.FinishedMembers.Len() == len(session.TurnOrder) {
		m.completePhase(session)
	}
}

func (m *Market) completePhase(session *markettypes.TurnSession) {
	session.Completed = true
	m.notify(markettypes.EventPhaseCompleted, session, nil)
}

func (m *Market) notify(eventType markettypes.EventType, session *markettypes.TurnSession, data map[string]interface{}) {
	m.sink.Notify(markettypes.Event{
		Type:      eventType,
		LeagueID:  session.LeagueID,
		SessionID: session.ID,
		Data:      data,
	})
}

func contains(members []string, memberID string) bool {
	for _, member := range members {
		if member == memberID {
			return true
		}
	}
	return false
}
