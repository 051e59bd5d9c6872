package bench

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/ygg/pkg/metrics"
)

// ErrSchema is returned when a JSON report does not match the report schema.
var ErrSchema = errors.New("report does not match schema")

//go:embed report.schema.json
var reportSchema []byte

// Report is the outcome of a benchmark run.
type Report struct {
	// Source names the workload or the trace file.
	Source     string   `json:"source"     yaml:"source"`
	Seed       uint64   `json:"seed"       yaml:"seed"`
	Operations int      `json:"operations" yaml:"operations"`
	Results    []Result `json:"results"    yaml:"results"`
}

// NewReport assembles a report. Results may be nil.
func NewReport(source string, seed uint64, operations int, results []Result) *Report {
	if results == nil {
		results = []Result{}
	}

	return &Report{Source: source, Seed: seed, Operations: operations, Results: results}
}

// Failed returns the strategies whose final tree failed the invariant check.
func (r *Report) Failed() []string {
	var failed []string

	for _, res := range r.Results {
		if !res.Valid {
			failed = append(failed, res.Strategy)
		}
	}

	return failed
}

// WriteTable renders the report as a table. Colored enables ANSI colors for
// the verdict columns regardless of the terminal.
func (r *Report) WriteTable(w io.Writer, colored bool) error {
	ok, warn, bad := color.New(color.FgGreen), color.New(color.FgYellow), color.New(color.FgRed)

	for _, c := range []*color.Color{ok, warn, bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("%s (seed %d, %s operations)", r.Source, r.Seed, humanize.Comma(int64(r.Operations)))
	tbl.AppendHeader(table.Row{
		"Strategy", "Time", "ns/op", "Size", "Height", "Avg depth", "P95 depth", "Rot/op", "Swaps", "Balance", "Check",
	})

	for _, res := range r.Results {
		balance := ok
		switch res.Balance {
		case metrics.RiskMedium:
			balance = warn
		case metrics.RiskHigh, metrics.RiskCritical:
			balance = bad
		}

		check := ok.Sprint("ok")
		if !res.Valid {
			check = bad.Sprint("FAIL")
		}

		tbl.AppendRow(table.Row{
			res.Strategy,
			res.Duration.Round(time.Microsecond).String(),
			strconv.FormatFloat(res.NsPerOp(), 'f', 1, 64),
			humanize.Comma(int64(res.Size)),
			res.Height,
			strconv.FormatFloat(res.AverageDepth, 'f', 2, 64),
			res.P95Depth,
			strconv.FormatFloat(res.RotationsPerOp, 'f', 3, 64),
			humanize.Comma(int64(res.Swaps)), //nolint:gosec // counters stay far below MaxInt64.
			balance.Sprint(strings.ToLower(string(res.Balance))),
			check,
		})
	}

	if failed := r.Failed(); len(failed) > 0 {
		tbl.AppendFooter(table.Row{"Failed: " + strings.Join(failed, ", ")})
	}

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

// WriteJSON renders the report as indented JSON after checking it against
// the report schema.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	err = ValidateJSON(data)
	if err != nil {
		return err
	}

	data = append(data, '\n')

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// ValidateJSON checks a serialized report against the report schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(reportSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate report: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}

// WriteYAML renders the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return enc.Close()
}

// WritePlot renders the depth histograms of every strategy as an HTML bar
// chart.
func (r *Report) WritePlot(w io.Writer) error {
	maxDepth := 0
	for _, res := range r.Results {
		maxDepth = max(maxDepth, len(res.Depths))
	}

	labels := make([]string, maxDepth)
	for d := range labels {
		labels[d] = strconv.Itoa(d)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Node depth distribution",
			Subtitle: fmt.Sprintf("%s, %s operations", r.Source, humanize.Comma(int64(r.Operations))),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "10%", Left: "center"}),
		charts.WithGridOpts(opts.Grid{Top: "25%", Bottom: "15%", Left: "5%", Right: "5%", ContainLabel: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Depth"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Nodes"}),
	)
	bar.SetXAxis(labels)

	for _, res := range r.Results {
		data := make([]opts.BarData, maxDepth)
		for d := range data {
			n := 0
			if d < len(res.Depths) {
				n = res.Depths[d]
			}

			data[d] = opts.BarData{Value: n}
		}

		bar.AddSeries(res.Strategy, data)
	}

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
