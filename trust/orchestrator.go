package trust

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Engine runs the full multi-layer trust analysis. Construct once with a
// validated Config; the engine is safe for concurrent use.
type Engine struct {
	cfg     Config
	layers  []LayerAnalyzer
	history *History
}

// NewEngine validates cfg and wires the eight layer analyzers. fb may be
// nil, in which case the user-feedback layer reports neutral.
func NewEngine(cfg Config, fb FeedbackSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, history: NewHistory(20)}
	e.layers = e.buildLayers(fb)
	return e, nil
}

// Analyze produces a best-effort explainable verdict for url. The only
// hard error is malformed input; layer failures degrade into a
// lower-confidence result.
func (e *Engine) Analyze(ctx context.Context, url string) (AnalysisResult, error) {
	target, err := NormalizeTarget(url)
	if err != nil {
		return AnalysisResult{}, err
	}

	findings := e.runLayers(ctx, target)

	score, succeeded, failed := aggregate(findings)

	gated := applyGates(e.cfg, target, findings, score, failed)

	reasons := flattenReasons(succeeded, failed, gated)

	badge := gated.badge
	result := AnalysisResult{
		URL:           target.URL,
		RiskScore:     gated.score,
		Badge:         badge,
		Reasons:       reasons,
		Advice:        AdviceFor(gated.score, badge),
		ScannedAt:     time.Now().UTC(),
		AnalysisType:  AnalysisAdvanced,
		LowConfidence: gated.lowConfidence,
	}

	e.history.Record(target.Domain, HistoryPoint{
		ScannedAt: result.ScannedAt,
		RiskScore: result.RiskScore,
		Badge:     result.Badge,
	})

	log.Printf("[engine] %s scored %.1f (%s), %d/%d layers ok",
		target.Domain, result.RiskScore, result.Badge, len(succeeded), len(findings))
	return result, nil
}

// runLayers fans out one goroutine per layer, each bound to its own
// timeout. A layer that ignores cancellation is abandoned: the join never
// waits past the per-layer timeout, so total latency is bounded by the
// single slowest layer, not the sum.
func (e *Engine) runLayers(ctx context.Context, target AnalysisTarget) []LayerFinding {
	findings := make([]LayerFinding, len(e.layers))

	g, ctx := errgroup.WithContext(ctx)
	for i, layer := range e.layers {
		i, layer := i, layer
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, e.cfg.LayerTimeout)
			defer cancel()

			done := make(chan LayerFinding, 1)
			go func() {
				done <- layer.Analyze(lctx, target)
			}()

			select {
			case f := <-done:
				findings[i] = f
			case <-lctx.Done():
				log.Printf("[engine] layer %s timed out for %s", layer.Name(), target.Domain)
				findings[i] = failedFinding(layer.Name(), e.cfg.Weights[layer.Name()])
			}
			return nil
		})
	}
	_ = g.Wait()

	return findings
}

// aggregate renormalizes weights over the layers that succeeded so they sum
// to 1.0 again, then computes the weighted provisional score. Weight mass
// of failed layers is redistributed, never silently dropped.
func aggregate(findings []LayerFinding) (score float64, succeeded, failed []LayerFinding) {
	weightSum := 0.0
	for _, f := range findings {
		if f.OK {
			succeeded = append(succeeded, f)
			weightSum += f.Weight
		} else {
			failed = append(failed, f)
		}
	}

	if weightSum == 0 {
		// Every layer failed: neutral provisional score, the failure gate
		// takes it from here.
		return neutralScore, succeeded, failed
	}

	for _, f := range succeeded {
		score += f.Score * (f.Weight / weightSum)
	}
	return clampScore(score), succeeded, failed
}

// flattenReasons annotates every successful finding's messages with layer,
// effective weight and contribution, ordered by descending contribution so
// the most impactful surface first. Gate and confidence notes follow.
func flattenReasons(succeeded, failed []LayerFinding, gated gateOutcome) []Reason {
	weightSum := 0.0
	for _, f := range succeeded {
		weightSum += f.Weight
	}

	var reasons []Reason
	for _, f := range succeeded {
		w := f.Weight
		if weightSum > 0 {
			w = f.Weight / weightSum
		}
		for _, msg := range f.Reasons {
			reasons = append(reasons, Reason{
				Layer:        f.Layer,
				Weight:       w,
				Contribution: w * f.Score,
				Message:      msg,
			})
		}
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Contribution > reasons[j].Contribution
	})

	if gated.note != "" {
		reasons = append(reasons, Reason{Layer: "safety_gate", Message: gated.note})
	}
	if len(failed) > 0 {
		reasons = append(reasons, Reason{
			Layer:   "engine",
			Message: fmt.Sprintf("%d of %d checks unavailable, treat score as provisional", len(failed), len(succeeded)+len(failed)),
		})
	}
	return reasons
}
