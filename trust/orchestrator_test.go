package trust

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLayer returns a canned finding, optionally sleeping first while
// ignoring cancellation to simulate a stuck analyzer.
type stubLayer struct {
	name    string
	score   float64
	fail    bool
	stall   time.Duration
	reasons []string
}

func (s *stubLayer) Name() string { return s.name }

func (s *stubLayer) Analyze(_ context.Context, _ AnalysisTarget) LayerFinding {
	if s.stall > 0 {
		time.Sleep(s.stall)
	}
	w := DefaultWeights()[s.name]
	if s.fail {
		return failedFinding(s.name, w)
	}
	return LayerFinding{Layer: s.name, Weight: w, Score: s.score, Reasons: s.reasons, OK: true}
}

// stubEngine builds an engine whose layers are replaced by stubs scoring
// per the scores map; layers absent from the map succeed at neutral.
func stubEngine(t *testing.T, cfg Config, scores map[string]float64, failing ...string) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	failed := make(map[string]bool, len(failing))
	for _, name := range failing {
		failed[name] = true
	}
	layers := make([]LayerAnalyzer, 0, len(AllLayers))
	for _, name := range AllLayers {
		score, ok := scores[name]
		if !ok {
			score = neutralScore
		}
		layers = append(layers, &stubLayer{name: name, score: score, fail: failed[name]})
	}
	e.layers = layers
	return e
}

func TestAnalyzeWeightedAggregation(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{
		LayerDomainInfra:  40,
		LayerContentUX:    20,
		LayerVisualBrand:  5,
		LayerThreatIntel:  10,
		LayerBusiness:     35,
		LayerTechnical:    30,
		LayerMerchant:     45,
		LayerUserFeedback: 50,
	}
	e := stubEngine(t, DefaultConfig(), scores)

	res, err := e.Analyze(context.Background(), "https://example-store.net/catalog")
	require.NoError(t, err)

	want := 0.0
	for name, w := range DefaultWeights() {
		want += w * scores[name]
	}
	assert.InDelta(t, want, res.RiskScore, 1e-9)
	assert.Equal(t, BadgeFor(want), res.Badge)
	assert.Equal(t, AnalysisAdvanced, res.AnalysisType)
	assert.False(t, res.LowConfidence)
	assert.False(t, res.ScannedAt.IsZero())
}

func TestAnalyzeDeterministicForFixedInputs(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), map[string]float64{LayerMerchant: 80, LayerDomainInfra: 60})

	first, err := e.Analyze(context.Background(), "https://example-store.net")
	require.NoError(t, err)
	second, err := e.Analyze(context.Background(), "https://example-store.net")
	require.NoError(t, err)

	assert.Equal(t, first.RiskScore, second.RiskScore)
	assert.Equal(t, first.Badge, second.Badge)
}

func TestAnalyzeRenormalizesOnPartialFailure(t *testing.T) {
	t.Parallel()

	scores := map[string]float64{
		LayerDomainInfra: 80,
		LayerMerchant:    60,
		LayerThreatIntel: 10,
	}
	// Three layers down: their weight mass must be redistributed, not
	// counted as zero-risk.
	e := stubEngine(t, DefaultConfig(), scores, LayerContentUX, LayerBusiness, LayerTechnical)

	res, err := e.Analyze(context.Background(), "https://example-store.net")
	require.NoError(t, err)

	w := DefaultWeights()
	weightSum := w[LayerDomainInfra] + w[LayerVisualBrand] + w[LayerThreatIntel] + w[LayerMerchant] + w[LayerUserFeedback]
	want := (w[LayerDomainInfra]*80 + w[LayerVisualBrand]*neutralScore + w[LayerThreatIntel]*10 +
		w[LayerMerchant]*60 + w[LayerUserFeedback]*neutralScore) / weightSum

	assert.InDelta(t, want, res.RiskScore, 1e-9)
	assert.False(t, res.LowConfidence, "3 of 8 failures is not a majority")

	var provisional bool
	for _, r := range res.Reasons {
		if r.Layer == "engine" {
			provisional = true
		}
	}
	assert.True(t, provisional, "partial failure must be disclosed in reasons")
}

func TestAnalyzeAllLayersFailed(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), nil, AllLayers...)

	res, err := e.Analyze(context.Background(), "https://unreachable-shop.net")
	require.NoError(t, err, "total layer failure degrades, it does not error")

	assert.True(t, res.LowConfidence)
	assert.GreaterOrEqual(t, res.RiskScore, 60.0, "unanalyzable targets lean risky, not safe")
	assert.Equal(t, BadgeCaution, res.Badge)
}

func TestAnalyzeThreatGateOverridesAllowlist(t *testing.T) {
	t.Parallel()

	// A confirmed threat hit on a trusted-platform domain must stay
	// critical; the allowlist cannot launder it.
	e := stubEngine(t, DefaultConfig(), map[string]float64{LayerThreatIntel: threatHitScore})

	res, err := e.Analyze(context.Background(), "https://www.amazon.com/deals")
	require.NoError(t, err)

	assert.Equal(t, BadgeCritical, res.Badge)
	assert.GreaterOrEqual(t, res.RiskScore, 90.0)
}

func TestAnalyzeTrustedPlatformAllowlist(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), nil)

	res, err := e.Analyze(context.Background(), "https://www.amazon.com/gp/product/B0")
	require.NoError(t, err)

	assert.Equal(t, BadgeVerifiedSafe, res.Badge)
	assert.LessOrEqual(t, res.RiskScore, 10.0)

	var gateNote bool
	for _, r := range res.Reasons {
		if r.Layer == "safety_gate" {
			gateNote = true
		}
	}
	assert.True(t, gateNote, "allowlist override must be explained")
}

func TestAnalyzeTyposquatGate(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), nil)

	res, err := e.Analyze(context.Background(), "https://amaz0n.xyz/deals")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.RiskScore, 70.0)
	assert.Contains(t, []Badge{BadgeHighRisk, BadgeCritical}, res.Badge)
}

func TestAnalyzeScamStorefrontScenario(t *testing.T) {
	t.Parallel()

	// Young domain, urgency-heavy page, anonymous merchant: the classic
	// pop-up scam profile must land at least High Risk.
	scores := map[string]float64{
		LayerDomainInfra:  90,
		LayerContentUX:    70,
		LayerVisualBrand:  5,
		LayerThreatIntel:  10,
		LayerBusiness:     70,
		LayerTechnical:    60,
		LayerMerchant:     95,
	}
	e := stubEngine(t, DefaultConfig(), scores)

	res, err := e.Analyze(context.Background(), "https://fake-luxury-deals-90off.shop")
	require.NoError(t, err)

	assert.Contains(t, []Badge{BadgeHighRisk, BadgeCritical}, res.Badge)
	assert.NotEmpty(t, res.Advice.Actions)
}

func TestAnalyzeAbandonsStuckLayer(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LayerTimeout = 100 * time.Millisecond
	e := stubEngine(t, cfg, nil)
	e.layers[0] = &stubLayer{name: LayerDomainInfra, score: 40, stall: 5 * time.Second}

	start := time.Now()
	res, err := e.Analyze(context.Background(), "https://example-store.net")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second, "join must not wait for a layer that ignores cancellation")

	var provisional bool
	for _, r := range res.Reasons {
		if r.Layer == "engine" {
			provisional = true
		}
	}
	assert.True(t, provisional, "the timed-out layer counts as failed")
}

func TestAnalyzeRejectsMalformedURL(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), nil)

	_, err := e.Analyze(context.Background(), "not a url")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	t.Parallel()

	e := stubEngine(t, DefaultConfig(), nil)

	_, err := e.Analyze(context.Background(), "https://example-store.net")
	require.NoError(t, err)
	_, err = e.Analyze(context.Background(), "https://example-store.net/other")
	require.NoError(t, err)

	points := e.History("example-store.net")
	require.Len(t, points, 2)
	assert.Empty(t, e.History("never-scanned.net"))
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	findings := []LayerFinding{
		{Layer: LayerDomainInfra, Weight: 0.25, Score: 80, OK: true},
		{Layer: LayerMerchant, Weight: 0.30, Score: 20, OK: true},
		failedFinding(LayerContentUX, 0.10),
	}
	score, succeeded, failed := aggregate(findings)

	assert.InDelta(t, (0.25*80+0.30*20)/0.55, score, 1e-9)
	assert.Len(t, succeeded, 2)
	assert.Len(t, failed, 1)
}

func TestAggregateAllFailedIsNeutral(t *testing.T) {
	t.Parallel()

	findings := []LayerFinding{
		failedFinding(LayerDomainInfra, 0.25),
		failedFinding(LayerMerchant, 0.30),
	}
	score, succeeded, failed := aggregate(findings)

	assert.Equal(t, neutralScore, score)
	assert.Empty(t, succeeded)
	assert.Len(t, failed, 2)
}

func TestFlattenReasonsOrdering(t *testing.T) {
	t.Parallel()

	succeeded := []LayerFinding{
		{Layer: LayerContentUX, Weight: 0.10, Score: 30, Reasons: []string{"minor"}, OK: true},
		{Layer: LayerMerchant, Weight: 0.30, Score: 90, Reasons: []string{"major"}, OK: true},
	}
	reasons := flattenReasons(succeeded, nil, gateOutcome{})

	require.Len(t, reasons, 2)
	assert.Equal(t, "major", reasons[0].Message)
	assert.Equal(t, "minor", reasons[1].Message)
	assert.Greater(t, reasons[0].Contribution, reasons[1].Contribution)

	// Effective weights of surviving layers renormalize to 1.0.
	sum := 0.0
	for _, r := range reasons {
		sum += r.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
