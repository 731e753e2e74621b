package rubata

import (
	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/auctioncore"
	"github.com/fantamercato/market/markettypes"
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
	if session.Phase != markettypes.PhaseRubata || session.Rubata == nil {
		return markettypes.NewError(markettypes.KindStateConflict,
			"session %s is not a rubata session", sessionID)
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

// applyExpiredTimers runs lapsed transitions: an OFFERING window that ends
// with no offers marks the lot settled and drops the machine back into an
// untimed READY_CHECK (never straight into the next OFFERING), and a lapsed
// auction settles the compulsory transfer. Paused sessions never tick.
func (m *Market) applyExpiredTimers(logger lager.Logger, session *markettypes.TurnSession) {
	rub := session.Rubata
	if rub.State == markettypes.RubataPaused {
		return
	}
	now := m.clock.Now()

	if rub.State == markettypes.RubataOffering &&
		rub.TimerExpiresAt != nil && !now.Before(*rub.TimerExpiresAt) {
		entry := rub.CurrentEntry()
		logger.Info("offer-window-expired", lager.Data{"player-id": entry.PlayerID})

		entry.Done = true
		rub.State = markettypes.RubataReadyCheck
		rub.ReadyMembers = markettypes.NewMemberSet()
		rub.TimerStartedAt = nil
		rub.TimerExpiresAt = nil

		m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
			"state":     rub.State,
			"player_id": entry.PlayerID,
			"offers":    0,
		})
	}

	if rub.State == markettypes.RubataAuction &&
		rub.Auction != nil && auctioncore.CloseIfExpired(rub.Auction, now) {
		logger.Info("auction-expired", lager.Data{
			"player-id": rub.Auction.PlayerID,
			"winner":    rub.Auction.Winner,
		})
		m.settleAuction(logger, session)
	}
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

// beginOffering advances the cursor past settled lots and opens the offer
// window on the next one; a spent board completes the phase.
func (m *Market) beginOffering(session *markettypes.TurnSession) {
	rub := session.Rubata
	for rub.BoardPosition < len(rub.Board) && rub.Board[rub.BoardPosition].Done {
		rub.BoardPosition++
	}
	if rub.BoardPosition >= len(rub.Board) {
		m.completePhase(session)
		return
	}

	now := m.clock.Now()
	expires := now.Add(m.rules.OfferTimer)
	rub.State = markettypes.RubataOffering
	rub.ReadyMembers = markettypes.NewMemberSet()
	rub.TimerStartedAt = &now
	rub.TimerExpiresAt = &expires

	entry := rub.CurrentEntry()
	m.notify(markettypes.EventRubataTransition, session, map[string]interface{}{
		"state":        rub.State,
		"player_id":    entry.PlayerID,
		"seller":       entry.SellerID,
		"rubata_price": entry.RubataPrice,
	})
}

// settleAuction executes the compulsory transfer: the seller loses the entry
// and its contract, gets credited the winning price, and the winner receives
// a fresh entry acquired at that price with no contract yet.
func (m *Market) settleAuction(logger lager.Logger, session *markettypes.TurnSession) {
	rub := session.Rubata
	auction := rub.Auction
	entry := rub.CurrentEntry()

	result := &markettypes.AuctionResult{
		PlayerID: auction.PlayerID,
		Winner:   auction.Winner,
		Price:    auction.WinningPrice,
		Acks:     markettypes.NewMemberSet(),
	}

	if auction.Winner != "" {
		if err := m.rosters.Remove(entry.RosterEntryID); err != nil {
			logger.Error("failed-to-remove-roster-entry", err)
			return
		}
		if err := m.contracts.Delete(entry.RosterEntryID); err != nil {
			logger.Error("failed-to-delete-contract", err)
			return
		}
		newEntry := markettypes.RosterEntry{
			ID:               "entry-" + util.RandomGuid(),
			MemberID:         auction.Winner,
			PlayerID:         auction.PlayerID,
			AcquisitionPrice: auction.WinningPrice,
		}
		if err := m.rosters.Create(newEntry); err != nil {
			logger.Error("failed-to-create-roster-entry", err)
			return
		}
		if err := m.directory.AdjustBudget(auction.Winner, -auction.WinningPrice); err != nil {
			logger.Error("failed-to-debit-winner", err)
			return
		}
		if err := m.directory.AdjustBudget(entry.SellerID, auction.WinningPrice); err != nil {
			logger.Error("failed-to-credit-seller", err)
			return
		}
	}

	entry.Done = true
	rub.Auction = nil
	rub.PendingResult = result
	rub.State = markettypes.RubataReadyCheck
	rub.ReadyMembers = markettypes.NewMemberSet()
	rub.TimerStartedAt = nil
	rub.TimerExpiresAt = nil

	m.notify(markettypes.EventAuctionClosed, session, map[string]interface{}{
		"player_id": result.PlayerID,
		"winner":    result.Winner,
		"seller":    entry.SellerID,
		"price":     result.Price,
	})
}

func (m *Market) completePhase(session *markettypes.TurnSession) {
	session.Completed = true
	session.Rubata.State = markettypes.RubataReadyCheck
	session.Rubata.TimerStartedAt = nil
	session.Rubata.TimerExpiresAt = nil
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
