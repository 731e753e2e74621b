// Package simulation runs a full svincolati phase in process with bot
// members bidding against each other on a fake clock. It exists to exercise
// the engines at scale and to produce the SVG report under
// simulation/visualization.
package simulation

import (
	"fmt"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/marketstore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/notification"
	"github.com/fantamercato/market/sessionlock"
	"github.com/fantamercato/market/svincolati"
	"github.com/fantamercato/market/util"
)

type Config struct {
	Members int
	Players int
	Budget  int
	Rules   markettypes.Rules
}

type Acquisition struct {
	MemberID string
	PlayerID string
	Price    int
}

type Outcome struct {
	Session      *markettypes.TurnSession
	Acquisitions []Acquisition

	// Elapsed is simulated time, driven by the fake clock.
	Elapsed time.Duration
}

// each bot prices every player at its quotation plus a little noise, and
// never raises beyond its valuation
type bot struct {
	id         string
	valuations map[string]int
}

func Run(config Config, logger lager.Logger) (*Outcome, error) {
	logger = logger.Session("simulation", lager.Data{
		"members": config.Members,
		"players": config.Players,
	})

	util.ResetGuids()
	store := marketstore.New()
	epoch := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	clk := fakeclock.NewFakeClock(epoch)
	recorder := notification.NewRecorder()

	bots := make([]*bot, config.Members)
	for i := range bots {
		id := util.NewGuid("bot")
		role := markettypes.RoleMember
		if i == 0 {
			role = markettypes.RoleAdmin
		}
		store.AddMember(markettypes.Member{
			ID:        id,
			LeagueID:  "sim-league",
			RawBudget: config.Budget,
			Role:      role,
		})
		bots[i] = &bot{id: id, valuations: map[string]int{}}
	}

	positions := []markettypes.Position{
		markettypes.PositionGoalkeeper,
		markettypes.PositionDefender,
		markettypes.PositionMidfielder,
		markettypes.PositionForward,
	}
	for i := 0; i < config.Players; i++ {
		player := markettypes.Player{
			ID:        util.NewGuid("player"),
			Name:      fmt.Sprintf("Player %d", i+1),
			Position:  positions[i%len(positions)],
			Quotation: util.RandomIntIn(1, 20),
		}
		store.AddPlayer(player)
		for _, b := range bots {
			valuation := player.Quotation + util.RandomIntIn(-3, 5)
			if valuation < 1 {
				valuation = 1
			}
			b.valuations[player.ID] = valuation
		}
	}

	budgetLedger := ledger.New(store, store.Contracts())
	market := svincolati.New(
		store.Sessions(),
		store.Rosters(),
		store,
		store,
		budgetLedger,
		sessionlock.NewKeeper(),
		clk,
		config.Rules,
		recorder,
		logger,
	)

	session, err := market.StartPhase("sim-league")
	if err != nil {
		return nil, err
	}

	// generous cap: every step either acts or burns a timer, so a healthy
	// run terminates well before it
	maxSteps := config.Members * config.Players * 50
	for step := 0; step < maxSteps; step++ {
		state, err := market.State(session.ID)
		if err != nil {
			return nil, err
		}
		if state.Completed {
			return outcome(state, recorder, clk.Now().Sub(epoch)), nil
		}

		switch {
		case state.PendingNomination != nil:
			for _, b := range bots {
				if b.id == state.PendingNomination.Nominator {
					continue
				}
				market.MarkReady(session.ID, b.id)
			}

		case state.CurrentAuction != nil:
			if !raise(market, budgetLedger, bots, state, session.ID) {
				clk.Increment(config.Rules.AuctionTimer + time.Second)
			}

		case state.PendingResult != nil:
			for _, b := range bots {
				market.Acknowledge(session.ID, b.id, "")
			}

		default:
			act(market, budgetLedger, store, bots, state, session.ID, config.Rules)
		}
	}

	return nil, fmt.Errorf("simulation did not terminate within %d steps", maxSteps)
}

// raise finds one bot willing to top the current price and places its bid.
func raise(market *svincolati.Market, budgetLedger *ledger.BudgetLedger, bots []*bot, state *markettypes.TurnSession, sessionID string) bool {
	auction := state.CurrentAuction
	next := auction.CurrentPrice + 1

	for _, b := range bots {
		if state.FinishedMembers.Has(b.id) || auction.HighBidder() == b.id {
			continue
		}
		if b.valuations[auction.PlayerID] < next {
			continue
		}
		if budgetLedger.CheckAffordable(b.id, next) != nil {
			continue
		}
		if market.Bid(sessionID, b.id, next) == nil {
			return true
		}
	}
	return false
}

// act makes the turn holder nominate its favourite affordable free agent, or
// declare finished when nothing is left worth nominating.
func act(market *svincolati.Market, budgetLedger *ledger.BudgetLedger, store *marketstore.Store, bots []*bot, state *markettypes.TurnSession, sessionID string, rules markettypes.Rules) {
	holder := state.CurrentTurnMember()
	var current *bot
	for _, b := range bots {
		if b.id == holder {
			current = b
		}
	}
	if current == nil {
		return
	}

	bestPlayer := ""
	bestValue := 0
	for playerID, valuation := range current.valuations {
		if valuation <= bestValue {
			continue
		}
		owner, err := store.Rosters().Owner(state.LeagueID, playerID)
		if err != nil || owner != "" {
			continue
		}
		bestPlayer = playerID
		bestValue = valuation
	}

	if bestPlayer != "" && budgetLedger.CheckCanNominate(holder, rules.NominationThreshold) == nil {
		if market.Nominate(sessionID, holder, bestPlayer) == nil {
			return
		}
	}
	if market.DeclareFinished(sessionID, holder) != nil {
		market.Pass(sessionID, holder)
	}
}

func outcome(state *markettypes.TurnSession, recorder *notification.Recorder, elapsed time.Duration) *Outcome {
	acquisitions := []Acquisition{}
	for _, event := range recorder.EventsOfType(markettypes.EventAuctionClosed) {
		winner, _ := event.Data["winner"].(string)
		if winner == "" {
			continue
		}
		playerID, _ := event.Data["player_id"].(string)
		price, _ := event.Data["price"].(int)
		acquisitions = append(acquisitions, Acquisition{
			MemberID: winner,
			PlayerID: playerID,
			Price:    price,
		})
	}

	return &Outcome{
		Session:      state,
		Acquisitions: acquisitions,
		Elapsed:      elapsed,
	}
}
