package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func engine(t *testing.T, b Boundary) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Boundary = b
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestDecideZScoreSaferBoundary(t *testing.T) {
	e := engine(t, BoundarySafer)
	tests := []struct {
		score   float64
		variant types.Variant
		want    types.Verdict
		zone    types.Zone
	}{
		{3.5, types.VariantZ, types.Approved, types.ZoneSafe},
		{2.99, types.VariantZ, types.Approved, types.ZoneSafe},
		{2.5, types.VariantZ, types.ApprovedWithWarning, types.ZoneGrey},
		{1.81, types.VariantZ, types.ApprovedWithWarning, types.ZoneGrey},
		{1.8, types.VariantZ, types.Denied, types.ZoneDistress},
		{2.60, types.VariantZDoublePrime, types.Approved, types.ZoneSafe},
		{2.0, types.VariantZDoublePrime, types.ApprovedWithWarning, types.ZoneGrey},
		{1.10, types.VariantZDoublePrime, types.ApprovedWithWarning, types.ZoneGrey},
		{-4, types.VariantZDoublePrime, types.Denied, types.ZoneDistress},
	}
	for _, tt := range tests {
		d := e.DecideZScore(tt.score, tt.variant)
		assert.Equal(t, tt.want, d.Verdict, "%s %.2f", tt.variant, tt.score)
		assert.Equal(t, tt.zone, d.Zone, "%s %.2f", tt.variant, tt.score)
		assert.Equal(t, types.ModelZScore, d.Model)
	}
}

func TestDecideZScoreStrictBoundary(t *testing.T) {
	e := engine(t, BoundaryStrict)
	assert.Equal(t, types.ApprovedWithWarning, e.DecideZScore(2.99, types.VariantZ).Verdict)
	assert.Equal(t, types.Approved, e.DecideZScore(2.991, types.VariantZ).Verdict)
	assert.Equal(t, types.ApprovedWithWarning, e.DecideZScore(1.81, types.VariantZ).Verdict)
	assert.Equal(t, types.Denied, e.DecideZScore(1.809, types.VariantZ).Verdict)
	assert.Equal(t, types.ApprovedWithWarning, e.DecideZScore(2.60, types.VariantZDoublePrime).Verdict)
}

func TestDecideZScoreNaNIsDenied(t *testing.T) {
	for _, b := range []Boundary{BoundarySafer, BoundaryStrict} {
		d := engine(t, b).DecideZScore(math.NaN(), types.VariantZ)
		assert.Equal(t, types.Denied, d.Verdict, string(b))
	}
}

func TestZScoreReason(t *testing.T) {
	d := engine(t, BoundarySafer).DecideZScore(3.1, types.VariantZ)
	assert.Equal(t, "Z-Score = 3.1000 | safe: >=2.99 | distress: <1.81 | result: SAFE", d.Reason)

	d = engine(t, BoundaryStrict).DecideZScore(0.5, types.VariantZDoublePrime)
	assert.Equal(t, "Z''-Score = 0.5000 | safe: >2.60 | distress: <1.10 | result: DISTRESS", d.Reason)
}

func TestDecideMerton(t *testing.T) {
	e := engine(t, BoundarySafer)
	tests := []struct {
		pd   float64
		want types.Verdict
	}{
		{0, types.Approved},
		{0.0199, types.Approved},
		{0.02, types.ApprovedWithWarning},
		{0.035, types.ApprovedWithWarning},
		{0.05, types.ApprovedWithWarning},
		{0.0501, types.Denied},
		{1, types.Denied},
		{math.NaN(), types.Denied},
	}
	for _, tt := range tests {
		d := e.DecideMerton(tt.pd)
		assert.Equal(t, tt.want, d.Verdict, "pd=%v", tt.pd)
		assert.Equal(t, types.ModelMerton, d.Model)
	}
}

func TestMertonReasonIncludesDistance(t *testing.T) {
	d := engine(t, BoundarySafer).DecideMertonResult(types.MertonResult{ProbabilityOfDefault: 0.01, DistanceToDefault: 2.3263})
	assert.Equal(t, "PD = 1.0000% | DD = 2.3263 | safe: <2% | distress: >5% | result: SAFE", d.Reason)
	assert.Equal(t, types.Approved, d.Verdict)
}

func TestCombineAllPairs(t *testing.T) {
	a, w, d := types.Approved, types.ApprovedWithWarning, types.Denied
	tests := []struct {
		z, m, want types.Verdict
	}{
		{a, a, a}, {a, w, w}, {a, d, d},
		{w, a, w}, {w, w, w}, {w, d, d},
		{d, a, d}, {d, w, d}, {d, d, d},
	}
	for _, tt := range tests {
		got := Combine(types.Decision{Verdict: tt.z}, types.Decision{Verdict: tt.m})
		assert.Equal(t, tt.want, got.Verdict, "combine(%s, %s)", tt.z, tt.m)
		assert.False(t, got.SingleModel)
		assert.Equal(t, "Z-Score: "+tt.z.String()+" | Merton: "+tt.m.String(), got.Basis)
	}
}

func TestZScoreOnlyKeepsVerdict(t *testing.T) {
	for _, v := range []types.Verdict{types.Approved, types.ApprovedWithWarning, types.Denied} {
		got := ZScoreOnly(types.Decision{Verdict: v}, "no liabilities")
		assert.Equal(t, v, got.Verdict)
		assert.True(t, got.SingleModel)
		assert.Equal(t, "no liabilities", got.Reason)
	}
}

func TestEngineCombineWithoutMerton(t *testing.T) {
	e := engine(t, BoundarySafer)
	z := e.DecideZScore(2.0, types.VariantZ)
	got := e.Combine(z, nil, "merton not applicable")
	assert.True(t, got.SingleModel)
	assert.Equal(t, z.Verdict, got.Verdict)

	m := e.DecideMerton(0.5)
	got = e.Combine(z, &m, "")
	assert.Equal(t, types.Denied, got.Verdict)
	assert.False(t, got.SingleModel)
}

func TestRuleSelectionByVariant(t *testing.T) {
	e := engine(t, BoundarySafer)
	assert.Equal(t, Thresholds{Safe: 2.99, Distress: 1.81}, e.ZScoreRule(types.VariantZ).(ZScoreRule).Thresholds)
	assert.Equal(t, Thresholds{Safe: 2.60, Distress: 1.10}, e.ZScoreRule(types.VariantZDoublePrime).(ZScoreRule).Thresholds)
	assert.Equal(t, types.ModelMerton, e.MertonRule().Model())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Boundary = "lenient"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Z = Thresholds{Safe: 1, Distress: 2}
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Merton = Thresholds{Safe: 0.1, Distress: 0.05}
	assert.Error(t, cfg.Validate())

	_, err := NewEngine(Config{Z: DefaultConfig().Z, ZDoublePrime: DefaultConfig().ZDoublePrime, Merton: DefaultConfig().Merton})
	assert.NoError(t, err, "empty boundary defaults to safer")
}
