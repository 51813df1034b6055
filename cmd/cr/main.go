package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/creditrisk/pkg/cr/analyzer"
	"github.com/komsit37/creditrisk/pkg/cr/classify"
	"github.com/komsit37/creditrisk/pkg/cr/config"
	"github.com/komsit37/creditrisk/pkg/cr/decision"
	"github.com/komsit37/creditrisk/pkg/cr/logging"
	"github.com/komsit37/creditrisk/pkg/cr/provider"
)

// app carries state shared by the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer

	cfg    config.Config
	logger *slog.Logger
}

func main() {
	a := &app{v: config.New(), stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		var failed *failedTickersError
		if errors.As(err, &failed) {
			for _, e := range multierr.Errors(failed.errs) {
				fmt.Fprintln(os.Stderr, "error:", e)
			}
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cr",
		Short:         "Credit risk opinions from the Altman Z-Score and the Merton model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default $CR_CONFIG or ./cr.yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringP(config.KeyFormat, "o", "table", "output format: table, json or tickers")
	pf.Bool(config.KeyColor, true, "colorize table output")
	pf.StringSliceP(config.KeyColumns, "c", nil, "summary columns or @sets (see 'cr sets')")
	pf.Bool(config.KeyPretty, false, "indent JSON output")
	pf.IntP(config.KeyConcurrency, "j", 4, "tickers analyzed in parallel")
	pf.Duration(config.KeyTimeout, 15*time.Second, "per-request data provider timeout")
	pf.Duration(config.KeyCacheTTL, 5*time.Minute, "cache lifetime for fetched company data")
	pf.Int(config.KeyCacheSize, 256, "in-process cache size (tickers)")
	pf.String(config.KeyCacheDir, "", "persist Yahoo Finance responses under this directory")
	pf.Bool(config.KeyNoCache, false, "disable all caching")
	pf.String(config.KeyLogLevel, "warn", "log level: debug, info, warn, error")
	pf.String(config.KeyLogFormat, "text", "log format: text or json")
	pf.String(config.KeyRiskFreeRate, "", "risk-free rate override as a decimal, e.g. 0.042")
	pf.String(config.KeyBoundary, "", "threshold boundary policy: safer or strict")

	for _, key := range []string{
		config.KeyFormat, config.KeyColor, config.KeyColumns, config.KeyPretty,
		config.KeyConcurrency, config.KeyTimeout, config.KeyCacheTTL, config.KeyCacheSize,
		config.KeyCacheDir, config.KeyNoCache, config.KeyLogLevel, config.KeyLogFormat,
		config.KeyRiskFreeRate, config.KeyBoundary,
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(key))
	}

	root.AddCommand(a.analyzeCmd(), a.classifyCmd(), a.setsCmd())
	return root
}

// load resolves configuration once flags are parsed.
func (a *app) load() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log, a.stderr)
	return nil
}

func (a *app) newAnalyzer() (*analyzer.Analyzer, error) {
	cfg := a.cfg
	eng, err := decision.NewEngine(cfg.Decision)
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	var opts []yfgo.ClientOption
	switch {
	case cfg.NoCache:
		opts = append(opts, yfgo.WithCacheDisabled())
	case cfg.CacheDir != "":
		store, err := yfgo.NewFileCacheStore(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.KeyCacheDir, err)
		}
		opts = append(opts, yfgo.WithCacheStore(store), yfgo.WithDefaultCacheTTL(cfg.CacheTTL))
	default:
		opts = append(opts, yfgo.WithDefaultCacheTTL(cfg.CacheTTL))
	}
	client := yfgo.NewClient(opts...)

	var p provider.Provider = provider.NewYFProvider(client, cfg.Timeout,
		provider.WithZeroFill(cfg.ZeroFill...),
		provider.WithMinHistoryWarn(cfg.MinHistoryWarn),
	)
	if !cfg.NoCache {
		p = provider.NewCacheProvider(p, cfg.CacheTTL, cfg.CacheSize)
	}

	var rates provider.RateSource
	if cfg.RiskFreeRate != nil {
		rates = provider.StaticRate(*cfg.RiskFreeRate)
	} else {
		rates = provider.NewYFRateSource(client, cfg.RiskFreeSymbol, cfg.RiskFreeFallback, cfg.Timeout)
	}

	an := analyzer.New(p, rates, classify.New(cfg.Keywords), eng, a.logger)
	an.Concurrency = cfg.Concurrency
	return an, nil
}

// failedTickersError is returned when at least one ticker could not be
// analyzed; errs holds one error per failed ticker.
type failedTickersError struct {
	count int
	errs  error
}

func (e *failedTickersError) Error() string {
	return fmt.Sprintf("%d ticker(s) failed", e.count)
}

func (e *failedTickersError) Unwrap() error { return e.errs }
