package render

import (
	"fmt"
	"strconv"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/exec"
)

// ChartError reports a result that cannot be drawn as its declared chart.
type ChartError struct {
	Reason string
}

func (e *ChartError) Error() string { return "cannot draw chart: " + e.Reason }

type chartForm int

const (
	formBar chartForm = iota
	formScatter
)

// axes binds an analysis kind to the result columns it reads.
type axes struct {
	form      chartForm
	title     string
	label     string // bar: category column
	value     string // bar: numeric column
	x, y      string // scatter: numeric columns
	normalize bool   // bar: draw values as a share of their total
}

var chartAxes = map[catalog.AnalysisKind]axes{
	catalog.AnalysisNeighbourhoodPrice: {
		form: formBar, title: "Average price by neighbourhood",
		label: "neighbourhood", value: "avg_price_value",
	},
	catalog.AnalysisNeighbourhoodListings: {
		form: formBar, title: "Listings by neighbourhood",
		label: "neighbourhood", value: "listings_count",
	},
	catalog.AnalysisRoomTypeReviews: {
		form: formBar, title: "Total reviews by room type",
		label: "room_type", value: "total_reviews",
	},
	catalog.AnalysisRoomTypeShare: {
		form: formBar, title: "Share of listings by room type (%)",
		label: "room_type", value: "listings_count", normalize: true,
	},
	catalog.AnalysisPriceVsPopularity: {
		form: formScatter, title: "Average price vs reviews per month",
		x: "avg_price_value", y: "avg_reviews_per_month",
	},
	catalog.AnalysisAvailabilityVsPrice: {
		form: formScatter, title: "Availability vs price",
		x: "availability_365", y: "price",
	},
}

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// HasChart reports whether the analysis kind draws anything.
func HasChart(kind catalog.AnalysisKind) bool {
	_, ok := chartAxes[kind]
	return ok
}

// Chart draws the chart declared by kind from the result. Kinds without a
// chart return an empty string and no error; results that cannot satisfy
// the kind's axes return a *ChartError.
func Chart(result *exec.Result, kind catalog.AnalysisKind, width, height int) (string, error) {
	ax, ok := chartAxes[kind]
	if !ok {
		return "", nil
	}
	if result == nil || result.RowCount == 0 {
		return "", &ChartError{Reason: "result has no rows"}
	}
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 15
	}

	if ax.form == formScatter {
		return drawScatter(result, ax, width, height)
	}
	return drawBar(result, ax, width, height)
}

func drawBar(result *exec.Result, ax axes, width, height int) (string, error) {
	li := result.ColumnIndex(ax.label)
	vi := result.ColumnIndex(ax.value)
	if li < 0 {
		return "", &ChartError{Reason: fmt.Sprintf("column %q missing from result", ax.label)}
	}
	if vi < 0 {
		return "", &ChartError{Reason: fmt.Sprintf("column %q missing from result", ax.value)}
	}

	total := 0.0
	if ax.normalize {
		for _, row := range result.Rows {
			if v, ok := toFloat(row[vi]); ok {
				total += v
			}
		}
	}

	var data []barchart.BarData
	for _, row := range result.Rows {
		if row[vi] == nil {
			continue
		}
		v, ok := toFloat(row[vi])
		if !ok {
			return "", &ChartError{Reason: fmt.Sprintf("column %q is not numeric", ax.value)}
		}
		if ax.normalize && total > 0 {
			v = v / total * 100
		}
		data = append(data, barchart.BarData{
			Label: truncateLabel(formatValue(row[li])),
			Values: []barchart.BarValue{
				{Name: ax.value, Value: v, Style: barStyle},
			},
		})
	}
	if len(data) == 0 {
		return "", &ChartError{Reason: "no chartable rows"}
	}

	bc := barchart.New(width, height)
	bc.PushAll(data)
	bc.Draw()
	return titled(ax.title, bc.View()), nil
}

func drawScatter(result *exec.Result, ax axes, width, height int) (string, error) {
	xi := result.ColumnIndex(ax.x)
	yi := result.ColumnIndex(ax.y)
	if xi < 0 {
		return "", &ChartError{Reason: fmt.Sprintf("column %q missing from result", ax.x)}
	}
	if yi < 0 {
		return "", &ChartError{Reason: fmt.Sprintf("column %q missing from result", ax.y)}
	}

	var pts []canvas.Float64Point
	for _, row := range result.Rows {
		if row[xi] == nil || row[yi] == nil {
			continue
		}
		x, ok := toFloat(row[xi])
		if !ok {
			return "", &ChartError{Reason: fmt.Sprintf("column %q is not numeric", ax.x)}
		}
		y, ok := toFloat(row[yi])
		if !ok {
			return "", &ChartError{Reason: fmt.Sprintf("column %q is not numeric", ax.y)}
		}
		pts = append(pts, canvas.Float64Point{X: x, Y: y})
	}
	if len(pts) == 0 {
		return "", &ChartError{Reason: "no chartable rows"}
	}

	minX, maxX := bounds(pts, func(p canvas.Float64Point) float64 { return p.X })
	minY, maxY := bounds(pts, func(p canvas.Float64Point) float64 { return p.Y })

	lc := linechart.New(width, height, minX, maxX, minY, maxY)
	lc.DrawXYAxisAndLabel()
	for _, p := range pts {
		// A zero-length segment plots the single braille dot at the point.
		lc.DrawBrailleLine(p, p)
	}
	return titled(ax.title, lc.View()), nil
}

// bounds returns the padded range of one point dimension.
func bounds(pts []canvas.Float64Point, dim func(canvas.Float64Point) float64) (float64, float64) {
	lo, hi := dim(pts[0]), dim(pts[0])
	for _, p := range pts[1:] {
		v := dim(p)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func titled(title, body string) string {
	return titleStyle.Render(title) + "\n" + body
}

func truncateLabel(s string) string {
	const maxLen = 14
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// toFloat widens any numeric scan value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	}
	return 0, false
}
