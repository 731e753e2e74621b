package visualization

import (
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
)

const border = 5
const headerHeight = 60

const barHeight = 14
const barSpacing = 2
const barMaxLength = 400
const barLabelX = 90

const graphWidth = border*3 + barLabelX + barMaxLength

type SVGReport struct {
	svg    *svg.SVG
	f      *os.File
	y      int
	height int
}

func StartSVGReport(path string, reports int, membersPerReport int) (*SVGReport, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	// header + per-report block: title, one bar per member, histogram, footer
	blockHeight := headerHeight + (membersPerReport+12)*(barHeight+barSpacing)
	height := headerHeight + reports*blockHeight

	s := svg.New(f)
	s.Start(graphWidth, height)
	return &SVGReport{svg: s, f: f, height: height}, nil
}

func (r *SVGReport) Done() error {
	r.svg.End()
	return r.f.Close()
}

func (r *SVGReport) DrawHeader(title string) {
	r.svg.Text(border, r.y+30, title, `text-anchor:start;font-size:24px;font-family:Helvetica Neue`)
	r.y += headerHeight
}

// DrawReport renders one run: a spending bar per member scaled against the
// starting budget, then a price histogram and the summary line.
func (r *SVGReport) DrawReport(report *Report) {
	for _, member := range report.Members {
		r.svg.Rect(border+barLabelX, r.y, barMaxLength, barHeight, "fill:#f0f0f0")

		if report.Budget > 0 {
			spentWidth := member.Spent * barMaxLength / report.Budget
			if spentWidth > barMaxLength {
				spentWidth = barMaxLength
			}
			r.svg.Rect(border+barLabelX, r.y, spentWidth, barHeight, "fill:#3a7bd5")
		}

		label := fmt.Sprintf("%s (%d)", member.MemberID, member.Players)
		r.svg.Text(border+barLabelX-4, r.y+barHeight-3, label,
			`text-anchor:end;font-size:10px;font-family:Helvetica Neue`)
		r.y += barHeight + barSpacing
	}

	r.y += barSpacing * 2
	r.drawPriceHistogram(report)

	priceStats := report.PriceStats()
	summary := fmt.Sprintf("%d acquisitions | price %.1f ± %.1f | dist %.3f | %s simulated",
		report.NAcquisitions(), priceStats.Mean, priceStats.StdDev,
		report.DistributionScore(), report.Elapsed)
	r.svg.Text(border, r.y+barHeight, summary,
		`text-anchor:start;font-size:12px;font-family:Helvetica Neue`)
	r.y += (barHeight + barSpacing) * 2
}

func (r *SVGReport) drawPriceHistogram(report *Report) {
	boundaries := []float64{0, 1, 2, 5, 10, 20, 50, 1e9}
	labels := []string{"1", "2", "3-5", "6-10", "11-20", "21-50", ">50"}
	bins := binUp(boundaries, report.Prices)

	for i, fraction := range bins {
		r.svg.Rect(border+barLabelX, r.y, barMaxLength, barHeight, "fill:#f0f0f0")
		r.svg.Text(border+barLabelX-4, r.y+barHeight-3, labels[i],
			`text-anchor:end;font-size:10px;font-family:Helvetica Neue`)
		if fraction > 0 {
			r.svg.Rect(border+barLabelX, r.y, int(fraction*barMaxLength), barHeight, "fill:#333")
		}
		r.y += barHeight + barSpacing
	}
}

func binUp(boundaries []float64, sortedData []float64) []float64 {
	bins := make([]float64, len(boundaries)-1)
	if len(sortedData) == 0 {
		return bins
	}

	currentBin := 0
	for _, d := range sortedData {
		for boundaries[currentBin+1] < d {
			currentBin++
		}
		bins[currentBin]++
	}
	for i := range bins {
		bins[i] /= float64(len(sortedData))
	}
	return bins
}
