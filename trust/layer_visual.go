package trust

import "context"

// visualBrandLayer is a reserved extension point for logo and brand-imagery
// comparison. It currently returns a fixed neutral-low score with no
// reasons; its weight still participates in aggregation so enabling a real
// implementation later does not shift the calibration.
type visualBrandLayer struct {
	cfg Config
}

func (l *visualBrandLayer) Name() string { return LayerVisualBrand }

func (l *visualBrandLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	return LayerFinding{
		Layer:  LayerVisualBrand,
		Weight: l.cfg.Weights[LayerVisualBrand],
		Score:  5,
		OK:     true,
	}
}
