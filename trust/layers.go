package trust

import "context"

// LayerAnalyzer is one independent verification dimension. Implementations
// must respect ctx and return rather than block; the orchestrator converts
// overruns into failed findings with a neutral score.
type LayerAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, target AnalysisTarget) LayerFinding
}

// FeedbackSource provides aggregate delivery-outcome counts for a domain.
// Implemented by the feedback store; reads tolerate concurrent appends.
type FeedbackSource interface {
	Summarize(domain string, window int) (total int, delivered int, err error)
}

func (e *Engine) buildLayers(fb FeedbackSource) []LayerAnalyzer {
	return []LayerAnalyzer{
		&domainInfraLayer{cfg: e.cfg},
		newContentUXLayer(e.cfg),
		&visualBrandLayer{cfg: e.cfg},
		&threatIntelLayer{cfg: e.cfg},
		&businessLayer{cfg: e.cfg},
		&technicalLayer{cfg: e.cfg},
		&merchantLayer{cfg: e.cfg},
		&userFeedbackLayer{cfg: e.cfg, source: fb},
	}
}
