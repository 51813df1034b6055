package render

import (
	"fmt"
	"io"
	"strings"
)

// tickersRenderer prints the tickers of every section on one comma-separated
// line.
type tickersRenderer struct{}

func NewTickersRenderer() Renderer {
	return tickersRenderer{}
}

func (tickersRenderer) Render(w io.Writer, secs []Section, _ RenderOptions) error {
	tickers := make([]string, 0)
	for _, s := range secs {
		for _, o := range s.Outcomes {
			if t := strings.TrimSpace(o.Ticker); t != "" {
				tickers = append(tickers, t)
			}
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(tickers, ","))
	return err
}
