package markettypes

// RosterStore is the collaborator holding roster entries. Transfer moves an
// entry between members atomically from the engine's point of view; the
// engine always calls it while holding the session lock.
type RosterStore interface {
	Roster(memberID string) ([]RosterEntry, error)
	Get(rosterEntryID string) (RosterEntry, error)
	Create(entry RosterEntry) error
	Remove(rosterEntryID string) error
	Transfer(rosterEntryID, fromMemberID, toMemberID string) error

	// Owner returns the member owning the player in the league, or "" when
	// the player is a free agent.
	Owner(leagueID, playerID string) (string, error)
}

// LeagueDirectory resolves league membership and raw budgets. Budget
// adjustments from accepted bids, releases and transfer credits funnel
// through it.
type LeagueDirectory interface {
	Members(leagueID string) ([]string, error)
	Member(memberID string) (Member, error)
	AdjustBudget(memberID string, delta int) error
}

type PlayerCatalog interface {
	Player(playerID string) (Player, error)
}

// ContractStore holds active contracts keyed by roster entry id.
type ContractStore interface {
	Get(rosterEntryID string) (Contract, error)
	ActiveForMember(memberID string) ([]Contract, error)
	Save(contract Contract) error
	Delete(rosterEntryID string) error
}

type DepartureStore interface {
	ForMember(memberID string) ([]Departure, error)
	Record(departure Departure) error
}

// SessionStore persists turn sessions. Engines load and save only while
// holding the per-session lock, so implementations need no locking of their
// own beyond map safety.
type SessionStore interface {
	Get(sessionID string) (*TurnSession, error)
	Save(session *TurnSession) error
	ActiveSessionIDs() ([]string, error)
}

type EventType string

const (
	EventNominationOpened  EventType = "nomination-opened"
	EventNominationDropped EventType = "nomination-dropped"
	EventAuctionOpened     EventType = "auction-opened"
	EventBidAccepted       EventType = "bid-accepted"
	EventAuctionClosed     EventType = "auction-closed"
	EventTurnAdvanced      EventType = "turn-advanced"
	EventPhaseCompleted    EventType = "phase-completed"
	EventRubataTransition  EventType = "rubata-transition"
	EventContractCreated   EventType = "contract-created"
	EventContractRenewed   EventType = "contract-renewed"
	EventContractReleased  EventType = "contract-released"
)

// Event is a fire-and-forget phase-transition notification. Delivery is
// best-effort; the engine never blocks on the sink.
type Event struct {
	Type      EventType              `json:"type"`
	LeagueID  string                 `json:"league_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type NotificationSink interface {
	Notify(event Event)
}
