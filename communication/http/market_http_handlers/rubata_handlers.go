package market_http_handlers

import (
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"
)

func (h *handler) makeOffer(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("make-offer", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	if err := h.rubata.MakeOffer(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) goBack(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("go-back", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	if err := h.rubata.GoBack(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) pause(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("pause", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	if err := h.rubata.Pause(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}

func (h *handler) resume(w http.ResponseWriter, r *http.Request) {
	sessionID := rata.Param(r, "session_id")
	logger := h.logger.Session("resume", lager.Data{"session-id": sessionID})
	logger.Info("handling")

	var req memberRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	if err := h.rubata.Resume(sessionID, req.MemberID); err != nil {
		writeError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	logger.Info("success")
}
