package market_http_handlers

import (
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"

	"github.com/fantamercato/market/markettypes"
)

type bilancioResponse struct {
	MemberID string `json:"member_id"`
	Bilancio int    `json:"bilancio"`
}

type createContractRequest struct {
	RosterEntryID string `json:"roster_entry_id"`
	Salary        int    `json:"salary"`
	Duration      int    `json:"duration"`
}

type renewContractRequest struct {
	Salary          int  `json:"salary"`
	Duration        int  `json:"duration"`
	PostAcquisition bool `json:"post_acquisition,omitempty"`
}

type releaseContractResponse struct {
	Cost int `json:"cost"`
}

type recordDepartureRequest struct {
	Reason markettypes.DepartureReason `json:"reason"`
	Choice markettypes.DepartureChoice `json:"choice"`
}

type indemnitiesResponse struct {
	MemberID string `json:"member_id"`
	Total    int    `json:"total"`
}

func (h *handler) getBilancio(w http.ResponseWriter, r *http.Request) {
	memberID := rata.Param(r, "member_id")
	logger := h.logger.Session("get-bilancio", lager.Data{"member-id": memberID})

	bilancio, err := h.ledger.Bilancio(memberID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, bilancioResponse{MemberID: memberID, Bilancio: bilancio})
}

func (h *handler) createContract(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.Session("create-contract")
	logger.Info("handling")

	var req createContractRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	contract, err := h.contracts.CreateInitialContract(req.RosterEntryID, req.Salary, req.Duration)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, contract)
	logger.Info("success", lager.Data{"roster-entry-id": contract.RosterEntryID})
}

func (h *handler) renewContract(w http.ResponseWriter, r *http.Request) {
	rosterEntryID := rata.Param(r, "roster_entry_id")
	logger := h.logger.Session("renew-contract", lager.Data{"roster-entry-id": rosterEntryID})
	logger.Info("handling")

	var req renewContractRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	renew := h.contracts.Renew
	if req.PostAcquisition {
		renew = h.contracts.ModifyPostAcquisition
	}
	contract, err := renew(rosterEntryID, req.Salary, req.Duration)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, contract)
	logger.Info("success")
}

func (h *handler) releaseContract(w http.ResponseWriter, r *http.Request) {
	rosterEntryID := rata.Param(r, "roster_entry_id")
	logger := h.logger.Session("release-contract", lager.Data{"roster-entry-id": rosterEntryID})
	logger.Info("handling")

	cost, err := h.contracts.Release(rosterEntryID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, releaseContractResponse{Cost: cost})
	logger.Info("success", lager.Data{"cost": cost})
}

func (h *handler) recordDeparture(w http.ResponseWriter, r *http.Request) {
	rosterEntryID := rata.Param(r, "roster_entry_id")
	logger := h.logger.Session("record-departure", lager.Data{"roster-entry-id": rosterEntryID})
	logger.Info("handling")

	var req recordDepartureRequest
	if !decodeJSON(w, r, &req, logger) {
		return
	}

	departure, err := h.contracts.RecordDeparture(rosterEntryID, req.Reason, req.Choice)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, departure)
	logger.Info("success", lager.Data{"indemnity": departure.Indemnity})
}

func (h *handler) getIndemnities(w http.ResponseWriter, r *http.Request) {
	memberID := rata.Param(r, "member_id")
	logger := h.logger.Session("get-indemnities", lager.Data{"member-id": memberID})

	total, err := h.contracts.TotalIndemnities(memberID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, indemnitiesResponse{MemberID: memberID, Total: total})
}
