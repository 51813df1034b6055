// Package config resolves settings from flags, CR_* environment variables,
// an optional YAML config file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/komsit37/creditrisk/pkg/cr/classify"
	"github.com/komsit37/creditrisk/pkg/cr/decision"
	"github.com/komsit37/creditrisk/pkg/cr/logging"
	"github.com/komsit37/creditrisk/pkg/cr/provider"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// EnvPrefix prefixes every environment variable, e.g. CR_CONCURRENCY.
const EnvPrefix = "CR"

// Keys shared with cmd/cr flag bindings.
const (
	KeyFormat           = "format"
	KeyColor            = "color"
	KeyColumns          = "columns"
	KeyPretty           = "pretty"
	KeyConcurrency      = "concurrency"
	KeyTimeout          = "timeout"
	KeyCacheTTL         = "cache-ttl"
	KeyCacheSize        = "cache-size"
	KeyCacheDir         = "cache-dir"
	KeyNoCache          = "no-cache"
	KeyLogLevel         = "log-level"
	KeyLogFormat        = "log-format"
	KeyRiskFreeRate     = "risk-free-rate"
	KeyRiskFreeFallback = "risk-free-fallback"
	KeyRiskFreeSymbol   = "risk-free-symbol"
	KeyBoundary         = "boundary"
	KeyZeroFill         = "zero-fill"
	KeyMinHistoryWarn   = "min-history-warn"
)

// Config is the fully resolved configuration.
type Config struct {
	Format      string
	Color       bool
	Columns     []string
	Pretty      bool
	Concurrency int
	Timeout     time.Duration

	CacheTTL  time.Duration
	CacheSize int
	CacheDir  string
	NoCache   bool

	Log logging.Config

	// RiskFreeRate overrides the market lookup when set.
	RiskFreeRate     *float64
	RiskFreeFallback float64
	RiskFreeSymbol   string

	Decision       decision.Config
	Keywords       classify.Keywords
	ZeroFill       []string
	MinHistoryWarn int
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key so environment lookups find nested keys.
func SetDefaults(v *viper.Viper) {
	d := decision.DefaultConfig()
	kw := classify.DefaultKeywords()

	v.SetDefault(KeyFormat, "table")
	v.SetDefault(KeyColor, true)
	v.SetDefault(KeyColumns, []string{})
	v.SetDefault(KeyPretty, false)
	v.SetDefault(KeyConcurrency, 4)
	v.SetDefault(KeyTimeout, 15*time.Second)
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyCacheSize, 256)
	v.SetDefault(KeyCacheDir, "")
	v.SetDefault(KeyNoCache, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyRiskFreeRate, "")
	v.SetDefault(KeyRiskFreeFallback, provider.DefaultRateFallback)
	v.SetDefault(KeyRiskFreeSymbol, provider.DefaultRateSymbol)
	v.SetDefault(KeyBoundary, string(d.Boundary))
	v.SetDefault("thresholds.z.safe", d.Z.Safe)
	v.SetDefault("thresholds.z.distress", d.Z.Distress)
	v.SetDefault("thresholds.zpp.safe", d.ZDoublePrime.Safe)
	v.SetDefault("thresholds.zpp.distress", d.ZDoublePrime.Distress)
	v.SetDefault("thresholds.merton.safe", d.Merton.Safe)
	v.SetDefault("thresholds.merton.distress", d.Merton.Distress)
	v.SetDefault("keywords.financial", kw.Financial)
	v.SetDefault("keywords.manufacturing", kw.Manufacturing)
	v.SetDefault("keywords.non_manufacturing", kw.NonManufacturing)
	v.SetDefault(KeyZeroFill, []string{types.FieldWorkingCapital, types.FieldRetainedEarnings})
	v.SetDefault(KeyMinHistoryWarn, 3)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ReadFile reads the config file. With an empty path it tries $CR_CONFIG,
// then cr.yaml in the working directory; no file at all is fine.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("cr")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves and validates v.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		Format:      strings.ToLower(v.GetString(KeyFormat)),
		Color:       v.GetBool(KeyColor),
		Columns:     splitList(v.GetStringSlice(KeyColumns)),
		Pretty:      v.GetBool(KeyPretty),
		Concurrency: v.GetInt(KeyConcurrency),
		Timeout:     v.GetDuration(KeyTimeout),
		CacheTTL:    v.GetDuration(KeyCacheTTL),
		CacheSize:   v.GetInt(KeyCacheSize),
		CacheDir:    v.GetString(KeyCacheDir),
		NoCache:     v.GetBool(KeyNoCache),
		Log: logging.Config{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		RiskFreeFallback: v.GetFloat64(KeyRiskFreeFallback),
		RiskFreeSymbol:   v.GetString(KeyRiskFreeSymbol),
		Decision: decision.Config{
			Boundary:     decision.Boundary(strings.ToLower(v.GetString(KeyBoundary))),
			Z:            thresholds(v, "z"),
			ZDoublePrime: thresholds(v, "zpp"),
			Merton:       thresholds(v, "merton"),
		},
		Keywords: classify.Keywords{
			Financial:        splitList(v.GetStringSlice("keywords.financial")),
			Manufacturing:    splitList(v.GetStringSlice("keywords.manufacturing")),
			NonManufacturing: splitList(v.GetStringSlice("keywords.non_manufacturing")),
		},
		ZeroFill:       splitList(v.GetStringSlice(KeyZeroFill)),
		MinHistoryWarn: v.GetInt(KeyMinHistoryWarn),
	}

	if s := strings.TrimSpace(v.GetString(KeyRiskFreeRate)); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", KeyRiskFreeRate, err)
		}
		c.RiskFreeRate = &r
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func thresholds(v *viper.Viper, model string) decision.Thresholds {
	return decision.Thresholds{
		Safe:     v.GetFloat64("thresholds." + model + ".safe"),
		Distress: v.GetFloat64("thresholds." + model + ".distress"),
	}
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Format {
	case "table", "json", "tickers":
	default:
		return fmt.Errorf("%s: unknown format %q (want table, json or tickers)", KeyFormat, c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%s: must be at least 1, got %d", KeyConcurrency, c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s: must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if !c.NoCache && c.CacheSize < 1 {
		return fmt.Errorf("%s: must be at least 1, got %d", KeyCacheSize, c.CacheSize)
	}
	if c.RiskFreeRate != nil && !finite(*c.RiskFreeRate) {
		return fmt.Errorf("%s: must be finite", KeyRiskFreeRate)
	}
	if !finite(c.RiskFreeFallback) {
		return fmt.Errorf("%s: must be finite", KeyRiskFreeFallback)
	}
	for _, f := range c.ZeroFill {
		if f != types.FieldWorkingCapital && f != types.FieldRetainedEarnings {
			return fmt.Errorf("%s: %q cannot be zero-filled (allowed: %s, %s)", KeyZeroFill, f, types.FieldWorkingCapital, types.FieldRetainedEarnings)
		}
	}
	if c.MinHistoryWarn < 0 {
		return fmt.Errorf("%s: must not be negative", KeyMinHistoryWarn)
	}
	if err := c.Decision.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
