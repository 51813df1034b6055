package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	RunID    string        `json:"run_id,omitempty"`
	Sections []jsonSection `json:"portfolios"`
}

type jsonSection struct {
	Name    string       `json:"name"`
	Columns []string     `json:"columns"`
	Results []jsonResult `json:"results"`
}

// jsonResult carries exactly one of Report and Error.
type jsonResult struct {
	Ticker string                `json:"ticker"`
	Report *types.AnalysisReport `json:"report,omitempty"`
	Error  *types.AnalysisError  `json:"error,omitempty"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, secs []Section, opts RenderOptions) error {
	out := jsonModel{RunID: opts.RunID, Sections: make([]jsonSection, 0, len(secs))}
	for _, s := range secs {
		cols := sectionColumns(s, opts)
		keys := make([]string, len(cols))
		for i, c := range cols {
			keys[i] = c.Key
		}
		results := make([]jsonResult, 0, len(s.Outcomes))
		for _, o := range s.Outcomes {
			results = append(results, jsonResult{Ticker: o.Ticker, Report: o.Report, Error: o.Err})
		}
		out.Sections = append(out.Sections, jsonSection{Name: s.Name, Columns: keys, Results: results})
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
