package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/komsit37/creditrisk/pkg/cr/columns"
	"github.com/komsit37/creditrisk/pkg/cr/config"
	"github.com/komsit37/creditrisk/pkg/cr/filter"
	"github.com/komsit37/creditrisk/pkg/cr/render"
	"github.com/komsit37/creditrisk/pkg/cr/source"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		files      []string
		filterExpr string
		detail     bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [TICKER...]",
		Short: "Analyze tickers and print a credit decision for each",
		Long: `Analyze one or more tickers. Tickers come from the arguments, from
YAML portfolio files (-f, files or directories), or from a prompt when
neither is given.

A single ticker prints the full report; several tickers print a summary
table. Use --detail to force the full reports.`,
		Example: `  cr analyze AAPL
  cr analyze F GM TSLA -c @summary,@merton
  cr analyze -f portfolios/ --filter "portfolio:us/* verdict:denied,warning"
  cr analyze 7203.T --risk-free-rate 0.01 -o json --pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := filter.Parse(filterExpr)
			if err != nil {
				return err
			}

			var portfolios []source.Portfolio
			for _, f := range files {
				ps, err := source.YAMLSource{}.Load(cmd.Context(), f)
				if err != nil {
					return err
				}
				for _, p := range ps {
					if expr.MatchPortfolio(p.Name) {
						portfolios = append(portfolios, p)
					}
				}
			}
			if len(args) > 0 {
				portfolios = append(portfolios, source.Portfolio{Tickers: source.ParseList(strings.Join(args, " "))})
			}
			if len(files) == 0 && len(args) == 0 {
				tickers, err := a.prompt()
				if err != nil {
					return err
				}
				portfolios = append(portfolios, source.Portfolio{Tickers: tickers})
			}

			all := source.Tickers(portfolios)
			if len(all) == 0 {
				return errors.New("no tickers to analyze")
			}

			cols, err := columns.Compute(a.cfg.Columns)
			if err != nil {
				return err
			}

			an, err := a.newAnalyzer()
			if err != nil {
				return err
			}
			outs := an.AnalyzeMultiple(cmd.Context(), all)

			secs := make([]render.Section, 0, len(portfolios))
			var failures error
			nFailed := 0
			i := 0
			for _, p := range portfolios {
				chunk := outs[i : i+len(p.Tickers)]
				i += len(p.Tickers)
				for _, o := range chunk {
					if o.Err != nil {
						failures = multierr.Append(failures, o.Err)
						nFailed++
					}
				}
				sec := render.Section{Name: p.Name, Outcomes: expr.Apply(chunk)}
				if len(a.cfg.Columns) == 0 && len(p.Columns) > 0 {
					if sec.Columns, err = columns.Compute(p.Columns); err != nil {
						return fmt.Errorf("portfolio %s: %w", p.Name, err)
					}
				}
				secs = append(secs, sec)
			}

			r, ok := render.New(a.cfg.Format)
			if !ok {
				return fmt.Errorf("unknown format %q", a.cfg.Format)
			}
			width, tty := terminalWidth()
			opts := render.RenderOptions{
				Columns:     cols,
				Color:       a.cfg.Color && (tty || cmd.Flags().Changed(config.KeyColor)),
				PrettyJSON:  a.cfg.Pretty,
				Detail:      len(all) == 1,
				MaxColWidth: maxColWidth(width, len(cols)),
				RunID:       runID(outs),
			}
			if cmd.Flags().Changed("detail") {
				opts.Detail = detail
			}
			if err := r.Render(a.stdout, secs, opts); err != nil {
				return err
			}

			if failures != nil {
				return &failedTickersError{count: nFailed, errs: failures}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "YAML portfolio file or directory (repeatable)")
	cmd.Flags().StringVar(&filterExpr, "filter", "", `filter expression, e.g. "portfolio:tech* verdict:denied status:error"`)
	cmd.Flags().BoolVar(&detail, "detail", false, "print the full report for every ticker")
	return cmd
}

// prompt reads one line of tickers from stdin.
func (a *app) prompt() ([]string, error) {
	fmt.Fprint(a.stderr, "Enter ticker(s), comma or space separated: ")
	sc := bufio.NewScanner(a.stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read tickers: %w", err)
		}
		return nil, errors.New("no tickers entered")
	}
	return source.ParseList(sc.Text()), nil
}

// maxColWidth shares the terminal between columns; 0 means no limit.
func maxColWidth(termWidth, ncols int) int {
	if termWidth <= 0 || ncols == 0 {
		return 0
	}
	if w := termWidth / ncols; w > 12 {
		return w
	}
	return 12
}

// runID returns the batch run ID carried by the reports, or a fresh one when
// every ticker failed.
func runID(outs []types.Outcome) string {
	for _, o := range outs {
		if o.OK() && o.Report.RunID != "" {
			return o.Report.RunID
		}
	}
	return uuid.NewString()
}
