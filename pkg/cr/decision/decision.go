// Package decision maps scores to verdicts and combines the two models.
package decision

import (
	"fmt"
	"math"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// Boundary controls which band a score exactly on a Z-Score threshold falls in.
type Boundary string

const (
	// BoundarySafer puts a score equal to a threshold in the higher band.
	BoundarySafer Boundary = "safer"
	// BoundaryStrict requires strictly above safe to approve and strictly
	// below distress to deny; both thresholds are grey.
	BoundaryStrict Boundary = "strict"
)

// Thresholds bound the grey zone. For Z-Scores higher is safer; for Merton
// PD lower is safer.
type Thresholds struct {
	Safe     float64 `mapstructure:"safe"`
	Distress float64 `mapstructure:"distress"`
}

// Config holds every threshold the engine uses.
type Config struct {
	Boundary     Boundary   `mapstructure:"boundary"`
	Z            Thresholds `mapstructure:"z"`
	ZDoublePrime Thresholds `mapstructure:"zpp"`
	Merton       Thresholds `mapstructure:"merton"`
}

// DefaultConfig returns Altman's published cut-offs and the 2%/5% PD bands.
func DefaultConfig() Config {
	return Config{
		Boundary:     BoundarySafer,
		Z:            Thresholds{Safe: 2.99, Distress: 1.81},
		ZDoublePrime: Thresholds{Safe: 2.60, Distress: 1.10},
		Merton:       Thresholds{Safe: 0.02, Distress: 0.05},
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.Boundary {
	case BoundarySafer, BoundaryStrict:
	default:
		return fmt.Errorf("unknown boundary policy %q (want safer or strict)", c.Boundary)
	}
	if c.Z.Safe <= c.Z.Distress {
		return fmt.Errorf("z thresholds: safe %.2f must be above distress %.2f", c.Z.Safe, c.Z.Distress)
	}
	if c.ZDoublePrime.Safe <= c.ZDoublePrime.Distress {
		return fmt.Errorf("zpp thresholds: safe %.2f must be above distress %.2f", c.ZDoublePrime.Safe, c.ZDoublePrime.Distress)
	}
	m := c.Merton
	if m.Safe < 0 || m.Distress > 1 || m.Safe > m.Distress {
		return fmt.Errorf("merton thresholds: need 0 <= safe (%.4f) <= distress (%.4f) <= 1", m.Safe, m.Distress)
	}
	return nil
}

// Rule turns one model's score into a decision.
type Rule interface {
	Model() types.Model
	Decide(score float64) types.Decision
}

// ZScoreRule applies one variant's thresholds.
type ZScoreRule struct {
	Variant    types.Variant
	Thresholds Thresholds
	Boundary   Boundary
}

func (r ZScoreRule) Model() types.Model { return types.ModelZScore }

// Decide never approves a NaN score.
func (r ZScoreRule) Decide(score float64) types.Decision {
	t := r.Thresholds
	var zone types.Zone
	switch {
	case math.IsNaN(score):
		zone = types.ZoneDistress
	case r.Boundary == BoundaryStrict:
		switch {
		case score > t.Safe:
			zone = types.ZoneSafe
		case score < t.Distress:
			zone = types.ZoneDistress
		default:
			zone = types.ZoneGrey
		}
	default:
		switch {
		case score >= t.Safe:
			zone = types.ZoneSafe
		case score >= t.Distress:
			zone = types.ZoneGrey
		default:
			zone = types.ZoneDistress
		}
	}

	safeOp := ">="
	if r.Boundary == BoundaryStrict {
		safeOp = ">"
	}
	return types.Decision{
		Model:   types.ModelZScore,
		Verdict: verdictFor(zone),
		Zone:    zone,
		Reason: fmt.Sprintf("%s = %.4f | safe: %s%.2f | distress: <%.2f | result: %s",
			r.Variant.Label(), score, safeOp, t.Safe, t.Distress, zone),
	}
}

// MertonRule bands a probability of default. The grey band is closed:
// PD equal to either threshold is a warning.
type MertonRule struct {
	Thresholds Thresholds
}

func (r MertonRule) Model() types.Model { return types.ModelMerton }

func (r MertonRule) Decide(pd float64) types.Decision {
	return r.decide(pd, math.NaN())
}

func (r MertonRule) decide(pd, dd float64) types.Decision {
	t := r.Thresholds
	var zone types.Zone
	switch {
	case math.IsNaN(pd) || pd > t.Distress:
		zone = types.ZoneDistress
	case pd < t.Safe:
		zone = types.ZoneSafe
	default:
		zone = types.ZoneGrey
	}

	reason := fmt.Sprintf("PD = %.4f%%", pd*100)
	if !math.IsNaN(dd) {
		reason += fmt.Sprintf(" | DD = %.4f", dd)
	}
	reason += fmt.Sprintf(" | safe: <%s%% | distress: >%s%% | result: %s",
		percent(t.Safe), percent(t.Distress), zone)

	return types.Decision{
		Model:   types.ModelMerton,
		Verdict: verdictFor(zone),
		Zone:    zone,
		Reason:  reason,
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*1e4)/1e2)
}

func verdictFor(z types.Zone) types.Verdict {
	switch z {
	case types.ZoneSafe:
		return types.Approved
	case types.ZoneGrey:
		return types.ApprovedWithWarning
	}
	return types.Denied
}

// Engine selects rules by variant and combines verdicts. It is immutable and
// safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Boundary == "" {
		cfg.Boundary = BoundarySafer
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's settings.
func (e *Engine) Config() Config { return e.cfg }

// ZScoreRule returns the rule for variant. Unknown variants get the
// ZDoublePrime thresholds.
func (e *Engine) ZScoreRule(v types.Variant) Rule {
	t := e.cfg.ZDoublePrime
	if v == types.VariantZ {
		t = e.cfg.Z
	}
	return ZScoreRule{Variant: v, Thresholds: t, Boundary: e.cfg.Boundary}
}

func (e *Engine) MertonRule() Rule {
	return MertonRule{Thresholds: e.cfg.Merton}
}

// DecideZScore bands score with the variant's thresholds.
func (e *Engine) DecideZScore(score float64, v types.Variant) types.Decision {
	return e.ZScoreRule(v).Decide(score)
}

// DecideMerton bands a probability of default.
func (e *Engine) DecideMerton(pd float64) types.Decision {
	return e.MertonRule().Decide(pd)
}

// DecideMertonResult is DecideMerton with the distance to default added to
// the reason.
func (e *Engine) DecideMertonResult(r types.MertonResult) types.Decision {
	return MertonRule{Thresholds: e.cfg.Merton}.decide(r.ProbabilityOfDefault, r.DistanceToDefault)
}

// Combine returns the worse of the two verdicts.
func Combine(z, m types.Decision) types.CombinedDecision {
	v := types.Worst(z.Verdict, m.Verdict)
	var reason string
	switch {
	case z.Verdict == m.Verdict:
		reason = "both models agree"
	case v == z.Verdict:
		reason = "Z-Score is the more conservative model"
	default:
		reason = "Merton is the more conservative model"
	}
	return types.CombinedDecision{
		Verdict: v,
		Basis:   fmt.Sprintf("Z-Score: %s | Merton: %s", z.Verdict, m.Verdict),
		Reason:  reason,
	}
}

// ZScoreOnly is the single-model result used when Merton is not applicable
// or could not be computed. A missing model never counts as an approval.
func ZScoreOnly(z types.Decision, reason string) types.CombinedDecision {
	return types.CombinedDecision{
		Verdict:     z.Verdict,
		Basis:       fmt.Sprintf("Z-Score only: %s", z.Verdict),
		SingleModel: true,
		Reason:      reason,
	}
}

// Combine is a convenience for callers holding an Engine.
func (e *Engine) Combine(z types.Decision, m *types.Decision, reason string) types.CombinedDecision {
	if m == nil {
		return ZScoreOnly(z, reason)
	}
	return Combine(z, *m)
}
