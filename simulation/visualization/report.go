// Package visualization summarizes a simulation run and renders it as SVG.
package visualization

import (
	"sort"
	"time"

	"github.com/GaryBoone/GoStats/stats"

	"github.com/fantamercato/market/simulation"
)

type Stat struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Total  float64
}

func NewStat(data []float64) Stat {
	return Stat{
		Min:    stats.StatsMin(data),
		Max:    stats.StatsMax(data),
		Mean:   stats.StatsMean(data),
		StdDev: stats.StatsPopulationStandardDeviation(data),
		Total:  stats.StatsSum(data),
	}
}

// MemberOutcome is one bot's final position: what it spent and how many
// players it took home.
type MemberOutcome struct {
	MemberID string
	Spent    int
	Players  int
}

type Report struct {
	Members []MemberOutcome
	Prices  []float64
	Elapsed time.Duration
	Budget  int
}

func NewReport(outcome *simulation.Outcome, budget int) *Report {
	spent := map[string]int{}
	players := map[string]int{}
	prices := []float64{}

	for _, acquisition := range outcome.Acquisitions {
		spent[acquisition.MemberID] += acquisition.Price
		players[acquisition.MemberID]++
		prices = append(prices, float64(acquisition.Price))
	}

	members := []MemberOutcome{}
	for _, memberID := range outcome.Session.TurnOrder {
		members = append(members, MemberOutcome{
			MemberID: memberID,
			Spent:    spent[memberID],
			Players:  players[memberID],
		})
	}
	sort.Float64s(prices)

	return &Report{
		Members: members,
		Prices:  prices,
		Elapsed: outcome.Elapsed,
		Budget:  budget,
	}
}

func (r *Report) NAcquisitions() int {
	return len(r.Prices)
}

func (r *Report) PriceStats() Stat {
	return NewStat(r.Prices)
}

func (r *Report) SpendStats() Stat {
	spends := []float64{}
	for _, member := range r.Members {
		spends = append(spends, float64(member.Spent))
	}
	return NewStat(spends)
}

// DistributionScore is the coefficient of variation of spending across
// members: 0 means everyone spent the same, higher means a lopsided market.
func (r *Report) DistributionScore() float64 {
	spends := []float64{}
	for _, member := range r.Members {
		spends = append(spends, float64(member.Spent))
	}
	if stats.StatsSum(spends) == 0 {
		return 0
	}
	return stats.StatsPopulationStandardDeviation(spends) / stats.StatsMean(spends)
}
