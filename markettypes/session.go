package markettypes

import "time"

type Phase string

const (
	PhaseFirstMarket Phase = "first-market"
	PhaseSvincolati  Phase = "svincolati"
	PhaseRubata      Phase = "rubata"
)

// MemberSet is a set of member ids with JSON-friendly map encoding.
type MemberSet map[string]struct{}

func NewMemberSet(ids ...string) MemberSet {
	s := MemberSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s MemberSet) Add(id string)      { s[id] = struct{}{} }
func (s MemberSet) Remove(id string)   { delete(s, id) }
func (s MemberSet) Has(id string) bool { _, ok := s[id]; return ok }
func (s MemberSet) Len() int           { return len(s) }

// HasAll reports whether every id is in the set.
func (s MemberSet) HasAll(ids []string) bool {
	for _, id := range ids {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Nomination is a pending nomination awaiting the ready-check. When the
// ready-check timer lapses the auction opens as if everyone had readied.
type Nomination struct {
	Nominator      string    `json:"nominator"`
	PlayerID       string    `json:"player_id"`
	ReadyMembers   MemberSet `json:"ready_members"`
	TimerExpiresAt time.Time `json:"timer_expires_at"`
}

type RubataState string

const (
	RubataOffering   RubataState = "OFFERING"
	RubataReadyCheck RubataState = "READY_CHECK"
	RubataAuction    RubataState = "AUCTION"
	RubataPaused     RubataState = "PAUSED"
)

// RubataBoardEntry is one compulsory-purchase lot. The board is generated
// once per phase; only the entry being actively transacted mutates (Done).
type RubataBoardEntry struct {
	SellerID      string `json:"seller_id"`
	RosterEntryID string `json:"roster_entry_id"`
	PlayerID      string `json:"player_id"`
	Salary        int    `json:"salary"`
	Clause        int    `json:"clause"`
	RubataPrice   int    `json:"rubata_price"`
	Done          bool   `json:"done"`
}

// RubataSession is the per-phase state machine for the steal market. The
// auction timer lives in Auction; TimerExpiresAt here covers the OFFERING and
// READY_CHECK windows.
type RubataSession struct {
	State          RubataState        `json:"state"`
	Board          []RubataBoardEntry `json:"board"`
	BoardPosition  int                `json:"board_position"`
	ReadyMembers   MemberSet          `json:"ready_members"`
	TimerStartedAt *time.Time         `json:"timer_started_at,omitempty"`
	TimerExpiresAt *time.Time         `json:"timer_expires_at,omitempty"`
	Auction        *Auction           `json:"auction,omitempty"`
	PendingResult  *AuctionResult     `json:"pending_result,omitempty"`

	// ResumeState remembers where to return to after PAUSED, and
	// FrozenRemaining how much of the frozen timer was left.
	ResumeState     RubataState    `json:"resume_state,omitempty"`
	FrozenRemaining *time.Duration `json:"frozen_remaining,omitempty"`
}

// CurrentEntry returns the board entry under the cursor, or nil once the
// board is exhausted.
func (r *RubataSession) CurrentEntry() *RubataBoardEntry {
	if r.BoardPosition < 0 || r.BoardPosition >= len(r.Board) {
		return nil
	}
	return &r.Board[r.BoardPosition]
}

// TurnSession is the single shared mutable record for one market phase
// instance. All mutation happens under the per-session lock.
type TurnSession struct {
	ID       string `json:"id"`
	LeagueID string `json:"league_id"`
	Phase    Phase  `json:"phase"`

	TurnOrder        []string  `json:"turn_order"`
	PassedMembers    MemberSet `json:"passed_members"`
	FinishedMembers  MemberSet `json:"finished_members"`
	CurrentTurnIndex int       `json:"current_turn_index"`
	Completed        bool      `json:"completed"`

	// First market and svincolati sub-state.
	PendingNomination *Nomination    `json:"pending_nomination,omitempty"`
	CurrentAuction    *Auction       `json:"current_auction,omitempty"`
	PendingResult     *AuctionResult `json:"pending_result,omitempty"`

	// Rubata sub-state.
	Rubata *RubataSession `json:"rubata,omitempty"`
}

// CurrentTurnMember returns the member id holding the turn.
func (s *TurnSession) CurrentTurnMember() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentTurnIndex%len(s.TurnOrder)]
}

// ActiveMembers returns the turn order minus passed and finished members.
func (s *TurnSession) ActiveMembers() []string {
	active := []string{}
	for _, id := range s.TurnOrder {
		if s.PassedMembers.Has(id) || s.FinishedMembers.Has(id) {
			continue
		}
		active = append(active, id)
	}
	return active
}
