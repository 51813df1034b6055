package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// YAMLSource loads portfolios from a YAML file or a directory of them.
//
//	columns: [ticker, zscore, pd, verdict]
//	portfolio:
//	  - AAPL
//	  - ticker: msft
//	  - name: Autos
//	    portfolio: [F, GM]
type YAMLSource struct{}

// Load expects spec to be a file or directory path. Unnamed groups take the
// file name; groups loaded from a directory are also prefixed with the file's
// path relative to it.
func (YAMLSource) Load(_ context.Context, spec any) ([]Portfolio, error) {
	root, ok := spec.(string)
	if !ok {
		return nil, fmt.Errorf("yaml source: want a path, got %T", spec)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		ps, err := loadFile(root, "")
		for i := range ps {
			if ps[i].Name == "" {
				ps[i].Name = strings.TrimSuffix(filepath.Base(root), filepath.Ext(root))
			}
		}
		return ps, err
	}

	files, err := yamlFiles(root)
	if err != nil {
		return nil, err
	}
	var all []Portfolio
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			rel = filepath.Base(file)
		}
		ps, err := loadFile(file, filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))))
		if err != nil {
			return nil, err
		}
		all = append(all, ps...)
	}
	return all, nil
}

// yamlFiles lists *.yaml and *.yml files under root in lexical order.
func yamlFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// loadFile parses one file and prefixes group names with prefix.
func loadFile(path, prefix string) ([]Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ps, err := parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range ps {
		switch {
		case ps[i].Name == "":
			ps[i].Name = prefix
		case prefix != "":
			ps[i].Name = prefix + "/" + ps[i].Name
		}
	}
	return ps, nil
}

// parseYAML produces one portfolio per group holding tickers directly.
func parseYAML(data []byte) ([]Portfolio, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid yaml: expected map with 'portfolio'")
	}

	var explicitCols []string
	if v, ok := m["columns"]; ok && v != nil {
		explicitCols = toStringSlice(v)
	}

	node, ok := m["portfolio"]
	if !ok || node == nil {
		return nil, fmt.Errorf("invalid yaml: missing 'portfolio'")
	}

	var out []Portfolio
	var walk func(node any, path []string) error
	walk = func(node any, path []string) error {
		switch n := node.(type) {
		case []any:
			var tickers []string
			for _, e := range n {
				if t, ok := tickerOf(e); ok {
					tickers = append(tickers, t)
				}
			}
			if len(tickers) > 0 {
				out = append(out, Portfolio{
					Name:    strings.Join(path, "/"),
					Columns: append([]string(nil), explicitCols...),
					Tickers: tickers,
				})
			}
			for _, e := range n {
				if g, ok := e.(map[string]any); ok {
					if child, ok := g["portfolio"]; ok {
						if err := walk(child, groupPath(path, g)); err != nil {
							return err
						}
					}
				}
			}
		case map[string]any:
			if child, ok := n["portfolio"]; ok {
				return walk(child, groupPath(path, n))
			}
			if t, ok := tickerOf(n); ok {
				out = append(out, Portfolio{
					Name:    strings.Join(path, "/"),
					Columns: append([]string(nil), explicitCols...),
					Tickers: []string{t},
				})
			}
		case string:
			return walk([]any{n}, path)
		default:
			return fmt.Errorf("invalid yaml: unexpected %T under 'portfolio'", node)
		}
		return nil
	}

	if err := walk(node, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func groupPath(path []string, g map[string]any) []string {
	next := append([]string(nil), path...)
	if name, ok := g["name"].(string); ok && strings.TrimSpace(name) != "" {
		next = append(next, strings.TrimSpace(name))
	}
	return next
}

// tickerOf accepts a bare symbol or a map with a ticker (or sym) key.
func tickerOf(v any) (string, bool) {
	switch e := v.(type) {
	case string:
		t := types.NormalizeTicker(e)
		return t, t != ""
	case map[string]any:
		if _, ok := e["portfolio"]; ok {
			return "", false
		}
		for _, k := range []string{"ticker", "sym"} {
			if s, ok := e[k]; ok && s != nil {
				t := types.NormalizeTicker(fmt.Sprint(s))
				return t, t != ""
			}
		}
	}
	return "", false
}

func toStringSlice(v any) []string {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, e := range s {
		if e == nil {
			continue
		}
		out = append(out, fmt.Sprint(e))
	}
	return out
}
