package markettypes

import "time"

// Rules are the tunable market parameters. The node loads them from a YAML
// file; tests mostly use DefaultRules with shortened timers.
type Rules struct {
	MinIncrement        int           `yaml:"min_increment" json:"min_increment"`
	AuctionTimer        time.Duration `yaml:"auction_timer" json:"auction_timer"`
	OfferTimer          time.Duration `yaml:"offer_timer" json:"offer_timer"`
	ReadyCheckTimer     time.Duration `yaml:"ready_check_timer" json:"ready_check_timer"`
	NominationThreshold int           `yaml:"nomination_threshold" json:"nomination_threshold"`
	MaxDuration         int           `yaml:"max_duration" json:"max_duration"`

	// ClauseMultipliers maps contract duration to the rescission multiplier.
	ClauseMultipliers map[int]int `yaml:"clause_multipliers" json:"clause_multipliers"`

	// RosterQuota caps first-market rosters per position.
	RosterQuota map[Position]int `yaml:"roster_quota" json:"roster_quota"`
}

var DefaultRules = Rules{
	MinIncrement:        1,
	AuctionTimer:        30 * time.Second,
	OfferTimer:          60 * time.Second,
	ReadyCheckTimer:     2 * time.Minute,
	NominationThreshold: 2,
	MaxDuration:         4,
	ClauseMultipliers:   map[int]int{1: 4, 2: 7, 3: 9, 4: 11},
	RosterQuota: map[Position]int{
		PositionGoalkeeper: 3,
		PositionDefender:   8,
		PositionMidfielder: 8,
		PositionForward:    6,
	},
}

// ClauseFor computes the rescission price for a salary and duration.
func (r Rules) ClauseFor(salary, duration int) int {
	return salary * r.ClauseMultipliers[duration]
}

// ValidDuration reports whether a contract duration is inside [1, MaxDuration].
func (r Rules) ValidDuration(duration int) bool {
	return duration >= 1 && duration <= r.MaxDuration
}
