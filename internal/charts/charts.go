// Package charts renders reports as PNG charts.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/Veraticus/the-cash-must-flow/internal/currency"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
	"github.com/Veraticus/the-cash-must-flow/internal/service"
)

// ErrNoData is returned when a chart would have nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	defaultWidth  = 1200
	defaultHeight = 600
)

// Generator renders report charts.
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a generator producing charts of the default size.
func NewGenerator() *Generator {
	return &Generator{width: defaultWidth, height: defaultHeight}
}

func background() chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   50,
			Right:  50,
			Bottom: 50,
		},
		FillColor: chart.ColorWhite,
	}
}

func dollars(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("$%.0f", f)
	}
	return ""
}

// CashFlow renders one bar per month of the report's cash flow.
func (g *Generator) CashFlow(report *service.CashFlowReport) ([]byte, error) {
	if report == nil || len(report.Months) == 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, 0, len(report.Months))
	nonZero := false
	for _, m := range report.Months {
		value, _ := currency.Units(m.CashFlow).Float64()
		if value != 0 {
			nonZero = true
		}
		bars = append(bars, chart.Value{
			Label: time.Month(m.Month).String()[:3],
			Value: value,
		})
	}
	if !nonZero {
		return nil, ErrNoData
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("Cash Flow %d", report.Year),
		Width:      g.width,
		Height:     g.height,
		BarWidth:   60,
		BarSpacing: 20,
		Background: background(),
		XAxis: chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: dollars,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render cash flow chart: %w", err)
	}

	return buffer.Bytes(), nil
}

// Balance renders an account's running daily balance across the statement
// period, with its average to date as a dashed line.
func (g *Generator) Balance(bal service.AccountBalance) ([]byte, error) {
	if len(bal.Buckets) < 2 {
		return nil, ErrNoData
	}

	xValues := make([]time.Time, len(bal.Buckets))
	balances := make([]float64, len(bal.Buckets))
	averages := make([]float64, len(bal.Buckets))
	average := units(bal.ToDate)
	for i, d := range bal.Buckets {
		xValues[i] = d.Date
		balances[i] = units(d.Balance)
		averages[i] = average
	}

	graph := chart.Chart{
		Title:      bal.Account.Name,
		Width:      g.width,
		Height:     g.height,
		Background: background(),
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01/02"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: dollars,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: xValues,
				YValues: balances,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 3,
				},
			},
			chart.TimeSeries{
				Name:    "Average daily balance",
				XValues: xValues,
				YValues: averages,
				Style: chart.Style{
					StrokeColor:     chart.ColorGreen,
					StrokeWidth:     2,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render balance chart: %w", err)
	}

	return buffer.Bytes(), nil
}

func units(m model.Milliunits) float64 {
	f, _ := currency.Units(m).Float64()
	return f
}
