package markettypes

// Role distinguishes league admins from plain members. Admins may cancel
// pending nominations, rewind the rubata board and pause/resume timers.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Member struct {
	ID        string `json:"id"`
	LeagueID  string `json:"league_id"`
	RawBudget int    `json:"raw_budget"`
	Role      Role   `json:"role"`
}

// Position uses the conventional single-letter Italian role codes.
type Position string

const (
	PositionGoalkeeper Position = "P"
	PositionDefender   Position = "D"
	PositionMidfielder Position = "C"
	PositionForward    Position = "A"
)

type Player struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Position  Position `json:"position"`
	Quotation int      `json:"quotation"`
	Team      string   `json:"team"`
}

// RosterEntry links a member to a player they own. The contract, if any,
// lives in the ContractStore keyed by the entry id.
type RosterEntry struct {
	ID               string `json:"id"`
	MemberID         string `json:"member_id"`
	PlayerID         string `json:"player_id"`
	AcquisitionPrice int    `json:"acquisition_price"`
}

// Contract is the per-semester engagement for a rostered player. Clause is
// derived from salary and duration and is recomputed on every mutation.
type Contract struct {
	RosterEntryID string `json:"roster_entry_id"`
	MemberID      string `json:"member_id"`
	PlayerID      string `json:"player_id"`
	Salary        int    `json:"salary"`
	Duration      int    `json:"duration"`
	Clause        int    `json:"clause"`
	Released      bool   `json:"released"`
}

// Active reports whether the contract still commits salary against the
// member's bilancio.
func (c Contract) Active() bool {
	return !c.Released && c.Duration > 0
}

// RubataPrice is the compulsory-purchase base price for the contract.
func (c Contract) RubataPrice() int {
	return c.Clause + c.Salary
}

type DepartureReason string

const (
	DepartureEstero DepartureReason = "ESTERO"
	DepartureRitiro DepartureReason = "RITIRO"
)

type DepartureChoice string

const (
	DepartureRelease DepartureChoice = "RELEASE"
	DepartureKeep    DepartureChoice = "KEEP"
)

// Departure records a player leaving the league player pool while under
// contract. When the reason is ESTERO and the member chose RELEASE the
// indemnity is owed to them and feeds residual-budget projections.
type Departure struct {
	MemberID  string          `json:"member_id"`
	PlayerID  string          `json:"player_id"`
	Reason    DepartureReason `json:"reason"`
	Choice    DepartureChoice `json:"choice"`
	Indemnity int             `json:"indemnity"`
}
