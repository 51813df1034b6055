package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/creditrisk/pkg/cr/columns"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// verdictColors maps a verdict to its console color.
var verdictColors = map[types.Verdict]text.Colors{
	types.Approved:            {text.FgGreen},
	types.ApprovedWithWarning: {text.FgYellow},
	types.Denied:              {text.FgRed},
}

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, secs []Section, opts RenderOptions) error {
	if opts.Detail {
		for _, s := range secs {
			for _, o := range s.Outcomes {
				if o.OK() {
					writeReport(w, o.Report, opts)
				} else {
					writeFailure(w, o, opts)
				}
			}
		}
	}

	multi := len(secs) > 1
	for si, s := range secs {
		cols := sectionColumns(s, opts)
		if len(cols) == 0 || len(s.Outcomes) == 0 {
			continue
		}
		if multi && strings.TrimSpace(s.Name) != "" {
			fmt.Fprintln(w, bold(opts, strings.ToUpper(s.Name)))
		}
		writeSummary(w, cols, s.Outcomes, opts)
		if si < len(secs)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

func newWriter(w io.Writer, opts RenderOptions) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

// writeSummary prints the comparative table, one row per outcome.
func writeSummary(w io.Writer, cols []columns.Def, outs []types.Outcome, opts RenderOptions) {
	tw := newWriter(w, opts)

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = c.Header
	}
	tw.AppendHeader(hdr)

	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if c.Numeric {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, o := range outs {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			v := c.Resolve(o)
			if opts.Color && (c.Key == "verdict" || c.Key == "error") {
				v = colorOutcome(o, v)
			}
			row[i] = v
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func colorOutcome(o types.Outcome, v string) string {
	if v == "" {
		return v
	}
	if !o.OK() {
		return text.Colors{text.FgRed}.Sprint(v)
	}
	return verdictColors[o.Report.Combined.Verdict].Sprint(v)
}

func colorVerdict(opts RenderOptions, v types.Verdict) string {
	if !opts.Color {
		return v.String()
	}
	return verdictColors[v].Sprint(v.String())
}

func bold(opts RenderOptions, s string) string {
	if !opts.Color {
		return s
	}
	return text.Bold.Sprint(s)
}

// writeReport prints the full single-ticker report.
func writeReport(w io.Writer, rep *types.AnalysisReport, opts RenderOptions) {
	rule := strings.Repeat("═", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, bold(opts, "  CREDIT RISK REPORT"))
	fmt.Fprintf(w, "  %s (%s)\n", rep.CompanyName, rep.Ticker)
	if !rep.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "  Date: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w, rule)

	industry := rep.Profile.IndustryLabel
	if industry == "" {
		industry = "(not reported)"
	}
	kv := newWriter(w, RenderOptions{})
	kv.AppendRows([]table.Row{
		{"Company type", rep.Profile.Category},
		{"Industry", industry},
	})
	kv.Render()

	z := rep.ZScore
	section(w, fmt.Sprintf("ALTMAN Z-SCORE [%s]", z.Variant))
	kv = newWriter(w, RenderOptions{})
	kv.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	kv.AppendRows([]table.Row{
		{"X1 (WC/TA)", columns.FormatFloat(z.X1, 4)},
		{"X2 (RE/TA)", columns.FormatFloat(z.X2, 4)},
		{"X3 (EBIT/TA)", columns.FormatFloat(z.X3, 4)},
		{"X4 (MVE/TL)", columns.FormatFloat(z.X4, 4)},
	})
	if z.X5 != nil {
		kv.AppendRow(table.Row{"X5 (S/TA)", columns.FormatFloat(*z.X5, 4)})
	}
	kv.AppendSeparator()
	kv.AppendRow(table.Row{"Z-Score", columns.FormatFloat(z.Score, 4)})
	kv.Render()
	writeDecision(w, rep.ZScoreDecision, opts)

	section(w, "MERTON MODEL")
	if rep.Merton == nil {
		reason := rep.Profile.MertonReason
		for _, wn := range rep.Warnings {
			if wn.Kind == types.WarnMertonNotComputable {
				reason = wn.Message
			}
		}
		fmt.Fprintf(w, "  Not available: %s\n", reason)
	} else {
		m := rep.Merton
		kv = newWriter(w, RenderOptions{})
		kv.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		kv.AppendRows([]table.Row{
			{"V_A (assets)", columns.FormatFloat(m.AssetValue, 0)},
			{"D (liabilities)", columns.FormatFloat(m.Debt, 0)},
			{"μ (drift)", columns.FormatFloat(m.Mu, 4)},
			{"σ (volatility)", columns.FormatFloat(m.Sigma, 4)},
			{"r (risk-free)", columns.FormatPercent(m.RiskFreeRate, 2)},
			{"T (years)", columns.FormatFloat(m.Horizon, 1)},
		})
		kv.AppendSeparator()
		kv.AppendRows([]table.Row{
			{"DD", columns.FormatFloat(m.DistanceToDefault, 4)},
			{"PD", columns.FormatPercent(m.ProbabilityOfDefault, 4)},
		})
		kv.Render()
		if rep.MertonDecision != nil {
			writeDecision(w, *rep.MertonDecision, opts)
		}
	}

	if len(rep.Warnings) > 0 {
		section(w, "WARNINGS")
		for _, wn := range rep.Warnings {
			fmt.Fprintf(w, "  - %s\n", wn)
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, bold(opts, "  FINAL CREDIT DECISION"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Decision : %s\n", colorVerdict(opts, rep.Combined.Verdict))
	fmt.Fprintf(w, "  Basis    : %s\n", rep.Combined.Basis)
	if rep.Combined.Reason != "" {
		fmt.Fprintf(w, "  Reason   : %s\n", rep.Combined.Reason)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	rule := strings.Repeat("─", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, rule)
}

func writeDecision(w io.Writer, d types.Decision, opts RenderOptions) {
	fmt.Fprintf(w, "  Zone     : %s\n", d.Zone)
	fmt.Fprintf(w, "  Decision : %s\n", colorVerdict(opts, d.Verdict))
	fmt.Fprintf(w, "  Detail   : %s\n", d.Reason)
}

func writeFailure(w io.Writer, o types.Outcome, opts RenderOptions) {
	rule := strings.Repeat("!", 60)
	msg := "no result"
	if o.Err != nil {
		msg = fmt.Sprintf("%s: %s", o.Err.Kind, o.Err.Message)
	}
	fmt.Fprintln(w, rule)
	line := fmt.Sprintf("  ERROR in %s: %s", o.Ticker, msg)
	if opts.Color {
		line = text.Colors{text.FgRed}.Sprint(line)
	}
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}
