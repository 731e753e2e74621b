package market_http_handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/markettypes"
)

type errorResponse struct {
	Error string `json:"error"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, payload interface{}, logger lager.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		logger.Error("failed-to-decode-request", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain error kinds to HTTP statuses: eligibility failures
// are 403, state races 409, rule violations 422, unknown ids 404.
func writeError(w http.ResponseWriter, err error, logger lager.Logger) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, markettypes.ErrNotFound):
		status = http.StatusNotFound
	default:
		switch markettypes.KindOf(err) {
		case markettypes.KindNotYourTurn,
			markettypes.KindNotEligible,
			markettypes.KindAlreadyFinished:
			status = http.StatusForbidden
		case markettypes.KindStateConflict,
			markettypes.KindAuctionClosed,
			markettypes.KindAlreadyReleased:
			status = http.StatusConflict
		case markettypes.KindInsufficientBudget,
			markettypes.KindInsufficientClause,
			markettypes.KindInvalidRenewal,
			markettypes.KindInvalidDuration,
			markettypes.KindNoActiveMembers:
			status = http.StatusUnprocessableEntity
		}
	}

	logger.Info("rejected", lager.Data{"reason": err.Error(), "status": status})
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
