// Package market_http_handlers exposes the market engines over JSON/HTTP.
// Session-scoped operations are dispatched to the engine matching the
// session's phase; each engine re-checks the phase under its own lock.
package market_http_handlers

import (
	"net/http"

	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/rata"

	"github.com/fantamercato/market/communication/http/routes"
	"github.com/fantamercato/market/contractengine"
	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/rubata"
)

// TurnMarket is the rotation-driven surface shared by the first market and
// the svincolati market.
type TurnMarket interface {
	StartPhase(leagueID string) (*markettypes.TurnSession, error)
	Nominate(sessionID, memberID, playerID string) error
	MarkReady(sessionID, memberID string) error
	CancelNomination(sessionID, adminID string) error
	Bid(sessionID, memberID string, amount int) error
	Acknowledge(sessionID, memberID, prophecy string) error
	Pass(sessionID, memberID string) error
	DeclareFinished(sessionID, memberID string) error
	UndoFinished(sessionID, memberID string) error
	State(sessionID string) (*markettypes.TurnSession, error)
}

type handler struct {
	firstMarket TurnMarket
	svincolati  TurnMarket
	rubata      *rubata.Market
	contracts   *contractengine.Engine
	ledger      *ledger.BudgetLedger
	sessions    markettypes.SessionStore
	logger      lager.Logger
}

func New(
	firstMarket TurnMarket,
	svincolati TurnMarket,
	rubataMarket *rubata.Market,
	contracts *contractengine.Engine,
	budgetLedger *ledger.BudgetLedger,
	sessions markettypes.SessionStore,
	logger lager.Logger,
) rata.Handlers {
	h := &handler{
		firstMarket: firstMarket,
		svincolati:  svincolati,
		rubata:      rubataMarket,
		contracts:   contracts,
		ledger:      budgetLedger,
		sessions:    sessions,
		logger:      logger,
	}

	return rata.Handlers{
		routes.StartFirstMarket: http.HandlerFunc(h.startFirstMarket),
		routes.StartSvincolati:  http.HandlerFunc(h.startSvincolati),
		routes.StartRubata:      http.HandlerFunc(h.startRubata),
		routes.GetSession:       http.HandlerFunc(h.getSession),

		routes.Nominate:         http.HandlerFunc(h.nominate),
		routes.CancelNomination: http.HandlerFunc(h.cancelNomination),
		routes.MarkReady:        http.HandlerFunc(h.markReady),
		routes.Bid:              http.HandlerFunc(h.bid),
		routes.Acknowledge:      http.HandlerFunc(h.acknowledge),
		routes.Pass:             http.HandlerFunc(h.pass),
		routes.DeclareFinished:  http.HandlerFunc(h.declareFinished),
		routes.UndoFinished:     http.HandlerFunc(h.undoFinished),

		routes.MakeOffer: http.HandlerFunc(h.makeOffer),
		routes.GoBack:    http.HandlerFunc(h.goBack),
		routes.Pause:     http.HandlerFunc(h.pause),
		routes.Resume:    http.HandlerFunc(h.resume),

		routes.GetBilancio:     http.HandlerFunc(h.getBilancio),
		routes.CreateContract:  http.HandlerFunc(h.createContract),
		routes.RenewContract:   http.HandlerFunc(h.renewContract),
		routes.ReleaseContract: http.HandlerFunc(h.releaseContract),
		routes.RecordDeparture: http.HandlerFunc(h.recordDeparture),
		routes.GetIndemnities:  http.HandlerFunc(h.getIndemnities),
	}
}

// turnMarketFor picks the rotation engine for the session's phase. Rubata
// sessions have their own handlers and are rejected here.
func (h *handler) turnMarketFor(sessionID string) (TurnMarket, error) {
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Phase {
	case markettypes.PhaseFirstMarket:
		return h.firstMarket, nil
	case markettypes.PhaseSvincolati:
		return h.svincolati, nil
	default:
		return nil, markettypes.NewError(markettypes.KindStateConflict,
			"session %s is a %s session", sessionID, session.Phase)
	}
}

func (h *handler) phaseOf(sessionID string) (markettypes.Phase, error) {
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	return session.Phase, nil
}
