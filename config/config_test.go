package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fantamercato/market/config"
	"github.com/fantamercato/market/markettypes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Load", func() {
	var dir string

	writeConfig := func(contents string) string {
		path := filepath.Join(dir, "market.yml")
		Ω(os.WriteFile(path, []byte(contents), 0644)).Should(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "market-config")
		Ω(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("returns the defaults when no path is given", func() {
		cfg, err := config.Load("")
		Ω(err).ShouldNot(HaveOccurred())
		Ω(cfg.ListenAddress).Should(Equal("0.0.0.0:8080"))
		Ω(cfg.Rules).Should(Equal(markettypes.DefaultRules))
	})

	It("overlays the file onto the defaults", func() {
		path := writeConfig(`
listen_address: 127.0.0.1:9090
sweep_interval: 5s
rules:
  min_increment: 2
  auction_timer: 45s
  offer_timer: 90s
  ready_check_timer: 3m
  nomination_threshold: 2
  max_duration: 4
  clause_multipliers:
    1: 4
    2: 7
    3: 9
    4: 11
  roster_quota:
    P: 3
    D: 8
    C: 8
    A: 6
`)

		cfg, err := config.Load(path)
		Ω(err).ShouldNot(HaveOccurred())
		Ω(cfg.ListenAddress).Should(Equal("127.0.0.1:9090"))
		Ω(cfg.SweepInterval).Should(Equal(5 * time.Second))
		Ω(cfg.Rules.MinIncrement).Should(Equal(2))
		Ω(cfg.Rules.AuctionTimer).Should(Equal(45 * time.Second))
		Ω(cfg.Rules.RosterQuota[markettypes.PositionForward]).Should(Equal(6))
	})

	It("rejects a rules table with a missing clause multiplier", func() {
		path := writeConfig(`
rules:
  min_increment: 1
  max_duration: 4
  clause_multipliers:
    1: 4
    2: 7
    3: 9
`)

		_, err := config.Load(path)
		Ω(err).Should(MatchError(ContainSubstring("clause multiplier")))
	})

	It("fails on an unreadable file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.yml"))
		Ω(err).Should(HaveOccurred())
	})
})
