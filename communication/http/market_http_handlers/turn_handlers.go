package market_http_handlers

import (
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"

	"github.com/fantamercato/market/markettypes"
)

type nominateRequest struct {
	MemberID string `json:"member_id"`
	PlayerID string `json:"player_id"`
}

type memberRequest struct {
	MemberID string `json:"member_id"`
}

type bidRequest struct {
	MemberID string `json:"member_id"`
	Amount   int    `json:"amount"`
}

type acknowledgeRequest struct {
	MemberID string `json:"member_id"`
	Prophecy string `json:"prophecy,omitempty"`
}

func (h *handler) nominate(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("nominate", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req nominateRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	market, err := h.turnMarketFor(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	if err := market.Nominate(sessionID, req.MemberID, req.PlayerID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) cancelNomination(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("cancel-nomination", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	market, err := h.turnMarketFor(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	if err := market.CancelNomination(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) markReady(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("mark-ready", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	phase, err := h.phaseOf(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	switch phase {
	case markettypes.PhaseRubata:
		err = h.rubata.MarkReady(sessionID, req.MemberID)
	case markettypes.PhaseFirstMarket:
		err = h.firstMarket.MarkReady(sessionID, req.MemberID)
	default:
		err = h.svincolati.MarkReady(sessionID, req.MemberID)
	}
	if err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) bid(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("bid", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req bidRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	phase, err := h.phaseOf(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	switch phase {
	case markettypes.PhaseRubata:
		err = h.rubata.Bid(sessionID, req.MemberID, req.Amount)
	case markettypes.PhaseFirstMarket:
		err = h.firstMarket.Bid(sessionID, req.MemberID, req.Amount)
	default:
		err = h.svincolati.Bid(sessionID, req.MemberID, req.Amount)
	}
	if err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("acknowledge", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req acknowledgeRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	phase, err := h.phaseOf(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	switch phase {
	case markettypes.PhaseRubata:
		err = h.rubata.Acknowledge(sessionID, req.MemberID, req.Prophecy)
	case markettypes.PhaseFirstMarket:
		err = h.firstMarket.Acknowledge(sessionID, req.MemberID, req.Prophecy)
	default:
		err = h.svincolati.Acknowledge(sessionID, req.MemberID, req.Prophecy)
	}
	if err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) pass(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("pass", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	market, err := h.turnMarketFor(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	if err := market.Pass(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) declareFinished(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("declare-finished", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	market, err := h.turnMarketFor(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	if err := market.DeclareFinished(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) undoFinished(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("undo-finished", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	market, err := h.turnMarketFor(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	if err := market.UndoFinished(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}
