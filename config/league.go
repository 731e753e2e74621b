package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/fantamercato/market/markettypes"
)

type leagueFile struct {
	ID      string        `yaml:"id"`
	Members []memberEntry `yaml:"members"`
	Players []playerEntry `yaml:"players"`
}

type memberEntry struct {
	ID        string `yaml:"id"`
	RawBudget int    `yaml:"raw_budget"`
	Admin     bool   `yaml:"admin"`
}

type playerEntry struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Position  string `yaml:"position"`
	Quotation int    `yaml:"quotation"`
	Team      string `yaml:"team"`
}

// LoadLeague reads a league seed file: the members and the player pool the
// node boots with.
func LoadLeague(path string) ([]markettypes.Member, []markettypes.Player, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading league file: %w", err)
	}

	var file leagueFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, nil, fmt.Errorf("parsing league file: %w", err)
	}
	if file.ID == "" {
		return nil, nil, fmt.Errorf("league file has no id")
	}
	if len(file.Members) == 0 {
		return nil, nil, fmt.Errorf("league %s has no members", file.ID)
	}

	members := make([]markettypes.Member, 0, len(file.Members))
	for _, entry := range file.Members {
		role := markettypes.RoleMember
		if entry.Admin {
			role = markettypes.RoleAdmin
		}
		members = append(members, markettypes.Member{
			ID:        entry.ID,
			LeagueID:  file.ID,
			RawBudget: entry.RawBudget,
			Role:      role,
		})
	}

	players := make([]markettypes.Player, 0, len(file.Players))
	for _, entry := range file.Players {
		position := markettypes.Position(entry.Position)
		switch position {
		case markettypes.PositionGoalkeeper, markettypes.PositionDefender,
			markettypes.PositionMidfielder, markettypes.PositionForward:
		default:
			return nil, nil, fmt.Errorf("player %s has unknown position %q", entry.ID, entry.Position)
		}
		players = append(players, markettypes.Player{
			ID:        entry.ID,
			Name:      entry.Name,
			Position:  position,
			Quotation: entry.Quotation,
			Team:      entry.Team,
		})
	}

	return members, players, nil
}
