package config_test

import (
	"os"
	"path/filepath"

	"github.com/fantamercato/market/config"
	"github.com/fantamercato/market/markettypes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoadLeague", func() {
	var dir string

	writeLeague := func(contents string) string {
		path := filepath.Join(dir, "league.yml")
		Ω(os.WriteFile(path, []byte(contents), 0644)).Should(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "market-league")
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("loads members and players with the league id attached", func() {
		path := writeLeague(`
id: league-1
members:
  - id: ada
    raw_budget: 500
    admin: true
  - id: bruno
    raw_budget: 500
players:
  - id: player-1
    name: Rossi
    position: A
    quotation: 24
    team: Milan
`)

		members, players, err := config.LoadLeague(path)
		Ω(err).ShouldNot(HaveOccurred())

		Ω(members).Should(HaveLen(2))
		Ω(members[0].LeagueID).Should(Equal("league-1"))
		Ω(members[0].Role).Should(Equal(markettypes.RoleAdmin))
		Ω(members[1].Role).Should(Equal(markettypes.RoleMember))

		Ω(players).Should(HaveLen(1))
		Ω(players[0].Position).Should(Equal(markettypes.PositionForward))
		Ω(players[0].Team).Should(Equal("Milan"))
	})

	It("rejects an unknown position code", func() {
		path := writeLeague(`
id: league-1
members:
  - id: ada
    raw_budget: 500
players:
  - id: player-1
    name: Rossi
    position: X
`)

		_, _, err := config.LoadLeague(path)
		Ω(err).Should(MatchError(ContainSubstring("unknown position")))
	})

	It("rejects a league without members", func() {
		path := writeLeague(`
id: league-1
players: []
`)

		_, _, err := config.LoadLeague(path)
		Ω(err).Should(MatchError(ContainSubstring("no members")))
	})
})
