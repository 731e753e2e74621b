package visualization_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/simulation"
	"github.com/fantamercato/market/simulation/visualization"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report", func() {
	var outcome *simulation.Outcome

	BeforeEach(func() {
		outcome = &simulation.Outcome{
			Session: &markettypes.TurnSession{
				TurnOrder: []string{"bot-1", "bot-2", "bot-3"},
			},
			Acquisitions: []simulation.Acquisition{
				{MemberID: "bot-1", PlayerID: "player-1", Price: 10},
				{MemberID: "bot-1", PlayerID: "player-2", Price: 6},
				{MemberID: "bot-2", PlayerID: "player-3", Price: 2},
			},
			Elapsed: 90 * time.Second,
		}
	})

	It("totals spending and players per member in turn order", func() {
		report := visualization.NewReport(outcome, 50)

		Ω(report.Members).Should(Equal([]visualization.MemberOutcome{
			{MemberID: "bot-1", Spent: 16, Players: 2},
			{MemberID: "bot-2", Spent: 2, Players: 1},
			{MemberID: "bot-3", Spent: 0, Players: 0},
		}))
		Ω(report.NAcquisitions()).Should(Equal(3))
	})

	It("computes price statistics over the sorted prices", func() {
		report := visualization.NewReport(outcome, 50)
		priceStats := report.PriceStats()

		Ω(report.Prices).Should(Equal([]float64{2, 6, 10}))
		Ω(priceStats.Total).Should(BeNumerically("==", 18))
		Ω(priceStats.Mean).Should(BeNumerically("~", 6, 0.001))
		Ω(priceStats.Min).Should(BeNumerically("==", 2))
		Ω(priceStats.Max).Should(BeNumerically("==", 10))
	})

	It("scores an even market at zero", func() {
		even := &simulation.Outcome{
			Session: &markettypes.TurnSession{TurnOrder: []string{"bot-1", "bot-2"}},
			Acquisitions: []simulation.Acquisition{
				{MemberID: "bot-1", PlayerID: "player-1", Price: 5},
				{MemberID: "bot-2", PlayerID: "player-2", Price: 5},
			},
		}

		Ω(visualization.NewReport(even, 50).DistributionScore()).Should(BeNumerically("==", 0))
	})

	It("renders an SVG file", func() {
		dir, err := os.MkdirTemp("", "market-svg")
		Ω(err).ShouldNot(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "report.svg")
		svgReport, err := visualization.StartSVGReport(path, 1, 3)
		Ω(err).ShouldNot(HaveOccurred())

		svgReport.DrawHeader("svincolati simulation")
		svgReport.DrawReport(visualization.NewReport(outcome, 50))
		Ω(svgReport.Done()).Should(Succeed())

		contents, err := os.ReadFile(path)
		Ω(err).ShouldNot(HaveOccurred())
		Ω(string(contents)).Should(ContainSubstring("<svg"))
		Ω(string(contents)).Should(ContainSubstring("bot-1"))
	})
})
