// Package charts renders ledger breakdowns as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"moneytracker/internal/core"
)

// ErrNoData is returned when there is nothing positive to plot.
var ErrNoData = errors.New("no expense data to chart")

const (
	defaultWidth  = 800
	defaultHeight = 800
	// Slices under this share of the total are folded into "other".
	minSlicePercent = 1.0
)

// Options tweak the rendered image.
type Options struct {
	Title      string
	Width      int
	Height     int
	OtherLabel string
	// Format renders an amount for a slice label.
	Format func(float64) string
}

// ExpenseBreakdown draws a pie chart of per-category expense totals.
func ExpenseBreakdown(totals []core.CategoryTotal, opts Options) ([]byte, error) {
	values, err := pieValues(totals, opts)
	if err != nil {
		return nil, err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	pie := chart.PieChart{
		Title:  opts.Title,
		Width:  width,
		Height: height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buf := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("failed to render expense breakdown: %w", err)
	}
	return buf.Bytes(), nil
}

func pieValues(totals []core.CategoryTotal, opts Options) ([]chart.Value, error) {
	format := opts.Format
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	}
	otherLabel := opts.OtherLabel
	if otherLabel == "" {
		otherLabel = "Other"
	}

	var total float64
	for _, t := range totals {
		if v := t.Amount.InexactFloat64(); v > 0 {
			total += v
		}
	}
	if total == 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(totals))
	var other float64
	for _, t := range totals {
		v := t.Amount.InexactFloat64()
		if v <= 0 {
			continue
		}
		pct := v / total * 100
		if pct < minSlicePercent {
			other += v
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", t.Name, format(v), pct),
			Value: v,
			Style: chart.Style{
				FillColor:   sliceColor(t.ColorHex),
				StrokeColor: chart.ColorWhite,
				FontSize:    12,
				FontColor:   chart.ColorBlack,
			},
		})
	}
	if other > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", otherLabel, format(other), other/total*100),
			Value: other,
			Style: chart.Style{
				FillColor: sliceColor(""),
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	return values, nil
}

func sliceColor(hex string) drawing.Color {
	if !core.ValidColorHex(hex) {
		hex = core.DefaultCategoryColor
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
