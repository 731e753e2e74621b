// Package market_http_client is the Go client for the market node's HTTP
// surface. Rejections come back as plain errors carrying the server's
// message.
package market_http_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"

	"github.com/fantamercato/market/communication/http/routes"
	"github.com/fantamercato/market/markettypes"
)

type MarketHTTPClient struct {
	client           *http.Client
	address          string
	requestGenerator *rata.RequestGenerator
	logger           lager.Logger
}

func New(client *http.Client, address string, logger lager.Logger) *MarketHTTPClient {
	return &MarketHTTPClient{
		client:           client,
		address:          address,
		requestGenerator: rata.NewRequestGenerator(address, routes.Routes),
		logger:           logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type startPhaseRequest struct {
	LeagueID string `json:"league_id"`
}

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

func (c *MarketHTTPClient) StartFirstMarket(leagueID string) (*markettypes.TurnSession, error) {
	return c.startPhase(routes.StartFirstMarket, leagueID)
}

func (c *MarketHTTPClient) StartSvincolati(leagueID string) (*markettypes.TurnSession, error) {
	return c.startPhase(routes.StartSvincolati, leagueID)
}

func (c *MarketHTTPClient) StartRubata(leagueID string) (*markettypes.TurnSession, error) {
	return c.startPhase(routes.StartRubata, leagueID)
}

func (c *MarketHTTPClient) startPhase(routeName, leagueID string) (*markettypes.TurnSession, error) {
	logger := c.logger.Session("start-phase", lager.Data{"route": routeName, "league-id": leagueID})

	session := &markettypes.TurnSession{}
	err := c.do(logger, routeName, nil, startPhaseRequest{LeagueID: leagueID}, session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *MarketHTTPClient) Session(sessionID string) (*markettypes.TurnSession, error) {
	logger := c.logger.Session("fetching-session", lager.Data{"session-id": sessionID})

	session := &markettypes.TurnSession{}
	err := c.do(logger, routes.GetSession, rata.Params{"session_id": sessionID}, nil, session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *MarketHTTPClient) Nominate(sessionID, memberID, playerID string) error {
	logger := c.logger.Session("nominate", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.Nominate, rata.Params{"session_id": sessionID},
		nominateRequest{MemberID: memberID, PlayerID: playerID}, nil)
}

func (c *MarketHTTPClient) CancelNomination(sessionID, adminID string) error {
	logger := c.logger.Session("cancel-nomination", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.CancelNomination, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: adminID}, nil)
}

func (c *MarketHTTPClient) MarkReady(sessionID, memberID string) error {
	logger := c.logger.Session("mark-ready", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.MarkReady, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: memberID}, nil)
}

func (c *MarketHTTPClient) Bid(sessionID, memberID string, amount int) error {
	logger := c.logger.Session("bid", lager.Data{"session-id": sessionID, "amount": amount})
	return c.do(logger, routes.Bid, rata.Params{"session_id": sessionID},
		bidRequest{MemberID: memberID, Amount: amount}, nil)
}

func (c *MarketHTTPClient) Acknowledge(sessionID, memberID, prophecy string) error {
	logger := c.logger.Session("acknowledge", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.Acknowledge, rata.Params{"session_id": sessionID},
		acknowledgeRequest{MemberID: memberID, Prophecy: prophecy}, nil)
}

func (c *MarketHTTPClient) Pass(sessionID, memberID string) error {
	logger := c.logger.Session("pass", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.Pass, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: memberID}, nil)
}

func (c *MarketHTTPClient) DeclareFinished(sessionID, memberID string) error {
	logger := c.logger.Session("declare-finished", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.DeclareFinished, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: memberID}, nil)
}

func (c *MarketHTTPClient) UndoFinished(sessionID, memberID string) error {
	logger := c.logger.Session("undo-finished", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.UndoFinished, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: memberID}, nil)
}

func (c *MarketHTTPClient) MakeOffer(sessionID, memberID string) error {
	logger := c.logger.Session("make-offer", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.MakeOffer, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: memberID}, nil)
}

func (c *MarketHTTPClient) GoBack(sessionID, adminID string) error {
	logger := c.logger.Session("go-back", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.GoBack, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: adminID}, nil)
}

func (c *MarketHTTPClient) Pause(sessionID, adminID string) error {
	logger := c.logger.Session("pause", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.Pause, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: adminID}, nil)
}

func (c *MarketHTTPClient) Resume(sessionID, adminID string) error {
	logger := c.logger.Session("resume", lager.Data{"session-id": sessionID})
	return c.do(logger, routes.Resume, rata.Params{"session_id": sessionID},
		memberRequest{MemberID: adminID}, nil)
}

func (c *MarketHTTPClient) Bilancio(memberID string) (int, error) {
	logger := c.logger.Session("fetching-bilancio", lager.Data{"member-id": memberID})

	var response bilancioResponse
	err := c.do(logger, routes.GetBilancio, rata.Params{"member_id": memberID}, nil, &response)
	if err != nil {
		return 0, err
	}
	return response.Bilancio, nil
}

func (c *MarketHTTPClient) CreateContract(rosterEntryID string, salary, duration int) (markettypes.Contract, error) {
	logger := c.logger.Session("create-contract", lager.Data{"roster-entry-id": rosterEntryID})

	var contract markettypes.Contract
	err := c.do(logger, routes.CreateContract, nil,
		createContractRequest{RosterEntryID: rosterEntryID, Salary: salary, Duration: duration}, &contract)
	return contract, err
}

func (c *MarketHTTPClient) RenewContract(rosterEntryID string, salary, duration int, postAcquisition bool) (markettypes.Contract, error) {
	logger := c.logger.Session("renew-contract", lager.Data{"roster-entry-id": rosterEntryID})

	var contract markettypes.Contract
	err := c.do(logger, routes.RenewContract, rata.Params{"roster_entry_id": rosterEntryID},
		renewContractRequest{Salary: salary, Duration: duration, PostAcquisition: postAcquisition}, &contract)
	return contract, err
}

func (c *MarketHTTPClient) ReleaseContract(rosterEntryID string) (int, error) {
	logger := c.logger.Session("release-contract", lager.Data{"roster-entry-id": rosterEntryID})

	var response releaseContractResponse
	err := c.do(logger, routes.ReleaseContract, rata.Params{"roster_entry_id": rosterEntryID}, nil, &response)
	if err != nil {
		return 0, err
	}
	return response.Cost, nil
}

func (c *MarketHTTPClient) RecordDeparture(rosterEntryID string, reason markettypes.DepartureReason, choice markettypes.DepartureChoice) (markettypes.Departure, error) {
	logger := c.logger.Session("record-departure", lager.Data{"roster-entry-id": rosterEntryID})

	var departure markettypes.Departure
	err := c.do(logger, routes.RecordDeparture, rata.Params{"roster_entry_id": rosterEntryID},
		recordDepartureRequest{Reason: reason, Choice: choice}, &departure)
	return departure, err
}

func (c *MarketHTTPClient) TotalIndemnities(memberID string) (int, error) {
	logger := c.logger.Session("fetching-indemnities", lager.Data{"member-id": memberID})

	var response indemnitiesResponse
	err := c.do(logger, routes.GetIndemnities, rata.Params{"member_id": memberID}, nil, &response)
	if err != nil {
		return 0, err
	}
	return response.Total, nil
}

// do performs a request against a named route, decoding into result when one
// is expected. Non-2xx responses come back as plain errors carrying the
// server's message.
func (c *MarketHTTPClient) do(logger lager.Logger, routeName string, params rata.Params, payload, result interface{}) error {
	logger.Debug("requesting")

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			logger.Error("failed-to-marshal-payload", err)
			return err
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := c.requestGenerator.CreateRequest(routeName, params, body)
	if err != nil {
		logger.Error("failed-to-create-request", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("failed-to-perform-request", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var serverError errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&serverError); err != nil || serverError.Error == "" {
			logger.Error("invalid-status-code", fmt.Errorf("%d", resp.StatusCode))
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		logger.Info("rejected", lager.Data{"reason": serverError.Error})
		return fmt.Errorf("%s", serverError.Error)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			logger.Error("failed-to-decode-response", err)
			return err
		}
	}

	logger.Debug("done")
	return nil
}
