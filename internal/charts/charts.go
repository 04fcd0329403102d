// Package charts renders report charts as standalone HTML documents.
package charts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// Chart titles.
const (
	DeveloperActivityTitle = "Developer Activity Overview"
	CodeHealthTitle        = "Code Health Score"
	TrendsTitle            = "Performance Trends"
)

// HTMLContentType is the content type of every rendered chart.
const HTMLContentType = "text/html"

const (
	defaultWidth  = "900px"
	defaultHeight = "500px"

	// healthPenaltyPerChurn converts churn rate into health score points.
	healthPenaltyPerChurn = 10
	trendTimeFormat       = "2006-01-02 15:04"
)

// renderer is the part of a go-echarts chart this package needs.
type renderer interface {
	Render(w io.Writer) error
}

// Renderer produces developer activity, code health and trend charts.
type Renderer struct {
	width  string
	height string
}

var _ contract.ChartRenderer = &Renderer{} // Compile-time check

// NewRenderer creates a Renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{width: defaultWidth, height: defaultHeight}
}

// Render implements the ChartRenderer interface. Charts without data are
// skipped rather than rendered empty.
func (r *Renderer) Render(ctx context.Context, input schema.ChartInput) ([]schema.Chart, error) {
	type plan struct {
		kind  schema.ChartType
		title string
		build func() renderer
	}
	var planned []plan
	if len(input.Metrics.Developers) > 0 {
		planned = append(planned, plan{schema.DeveloperActivityChart, DeveloperActivityTitle, func() renderer { return r.developerActivity(input.Metrics) }})
	}
	planned = append(planned, plan{schema.CodeHealthChart, CodeHealthTitle, func() renderer { return r.codeHealth(input.Metrics.Team) }})
	if len(input.History) > 1 {
		planned = append(planned, plan{schema.TrendsChart, TrendsTitle, func() renderer { return r.trends(input.History) }})
	}

	out := make([]schema.Chart, 0, len(planned))
	for _, s := range planned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := encode(s.build())
		if err != nil {
			return nil, fmt.Errorf("render %s chart: %w", s.kind, err)
		}
		out = append(out, schema.Chart{Type: s.kind, Title: s.title, ContentType: HTMLContentType, Data: data})
	}
	return out, nil
}

func (r *Renderer) init(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: r.width, Height: r.height}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (r *Renderer) developerActivity(m schema.Metrics) *charts.Bar {
	names := m.DeveloperNames()
	commits := make([]opts.BarData, len(names))
	lines := make([]opts.BarData, len(names))
	for i, name := range names {
		d := m.Developers[name]
		commits[i] = opts.BarData{Value: d.Commits}
		lines[i] = opts.BarData{Value: d.Additions + d.Deletions}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(r.init(DeveloperActivityTitle),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Developer"}),
	)...)
	bar.SetXAxis(names).
		AddSeries("Commits", commits).
		AddSeries("Lines Changed", lines)
	return bar
}

func (r *Renderer) codeHealth(team schema.TeamMetrics) *charts.Gauge {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(r.init(CodeHealthTitle)...)
	gauge.AddSeries("Health", []opts.GaugeData{{Name: "Health Score", Value: HealthScore(team.ChurnRate)}})
	return gauge
}

func (r *Renderer) trends(history []schema.SnapshotRecord) *charts.Line {
	labels := make([]string, len(history))
	deployments := make([]opts.LineData, len(history))
	leadTimes := make([]opts.LineData, len(history))
	for i, h := range history {
		labels[i] = h.Timestamp.Format(trendTimeFormat)
		deployments[i] = opts.LineData{Value: h.DeploymentFrequency}
		leadTimes[i] = opts.LineData{Value: math.Round(h.LeadTimeHours*10) / 10}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(r.init(TrendsTitle),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Snapshot"}),
	)...)
	line.SetXAxis(labels).
		AddSeries("Deployment Frequency", deployments).
		AddSeries("Lead Time (hours)", leadTimes)
	return line
}

// HealthScore maps churn rate to a 0-100 score.
func HealthScore(churnRate float64) float64 {
	return math.Max(0, 100-churnRate*healthPenaltyPerChurn)
}

func encode(c renderer) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the HTML document of a rendered chart.
func Decode(c schema.Chart) ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.Data)
}
