package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes a self-contained HTML line chart of the given series
// to w. The x axis is numeric simulated time, so series with different
// purchase moments overlay correctly.
func RenderChart(w io.Writer, title string, series []Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to render")
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "total", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	for _, s := range series {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			data[i] = opts.LineData{Value: []interface{}{p.Time, p.Total}}
		}
		line.AddSeries(s.Name, data)
	}
	return line.Render(w)
}
