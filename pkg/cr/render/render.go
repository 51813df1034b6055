package render

import (
	"io"

	"github.com/komsit37/creditrisk/pkg/cr/columns"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Section is one portfolio's outcomes in input order.
type Section struct {
	Name     string
	Columns  []columns.Def
	Outcomes []types.Outcome
}

// Renderer renders analysis outcomes to an output writer.
type Renderer interface {
	Render(w io.Writer, secs []Section, opts RenderOptions) error
}

type RenderOptions struct {
	// Columns are the summary columns used when a section has none.
	Columns    []columns.Def
	Color      bool
	PrettyJSON bool
	// Detail prints the full per-ticker report before the summary.
	Detail      bool
	MaxColWidth int
	RunID       string
}

// New returns the renderer for a format name.
func New(format string) (Renderer, bool) {
	switch format {
	case "table", "":
		return NewTableRenderer(), true
	case "json":
		return NewJSONRenderer(), true
	case "tickers":
		return NewTickersRenderer(), true
	}
	return nil, false
}

func sectionColumns(s Section, opts RenderOptions) []columns.Def {
	if len(s.Columns) > 0 {
		return s.Columns
	}
	return opts.Columns
}
