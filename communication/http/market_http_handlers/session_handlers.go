package market_http_handlers

import (
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"

	"github.com/fantamercato/market/markettypes"
)

type startPhaseRequest struct {
	LeagueID string `json:"league_id"`
}

func (h *handler) startFirstMarket(w http.ResponseWriter, r *http.Request) {
	h.startPhase(w, r, "start-first-market", h.firstMarket)
}

func (h *handler) startSvincolati(w http.ResponseWriter, r *http.Request) {
	h.startPhase(w, r, "start-svincolati", h.svincolati)
}

func (h *handler) startPhase(w http.ResponseWriter, r *http.Request, op string, market TurnMarket) {
	logger := h.logger.Session(op)
	logger.Info("handling")

	var req startPhaseRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	session, err := market.StartPhase(req.LeagueID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, session)
	logger.Info("success", lager.Data{"session-id": session.ID})
}

func (h *handler) startRubata(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.Session("start-rubata")
	logger.Info("handling")

	var req startPhaseRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	session, err := h.rubata.StartPhase(req.LeagueID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, session)
	logger.Info("success", lager.Data{"session-id": session.ID})
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("get-session", lager.Data{"session-id": sessionID})

	phase, err := h.phaseOf(sessionID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	var session *markettypes.TurnSession
	switch phase {
	case markettypes.PhaseFirstMarket:
		session, err = h.firstMarket.State(sessionID)
	case markettypes.PhaseSvincolati:
		session, err = h.svincolati.State(sessionID)
	case markettypes.PhaseRubata:
		session, err = h.rubata.State(sessionID)
	}
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
