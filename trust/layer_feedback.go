package trust

import (
	"context"
	"fmt"
)

// userFeedbackLayer turns recorded delivery outcomes for the domain into a
// risk signal. With fewer than the configured minimum of reports it stays
// neutral; otherwise the sub-score is inversely proportional to the
// delivered-ratio.
type userFeedbackLayer struct {
	cfg    Config
	source FeedbackSource
}

func (l *userFeedbackLayer) Name() string { return LayerUserFeedback }

func (l *userFeedbackLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerUserFeedback]

	if l.source == nil {
		return LayerFinding{
			Layer:   LayerUserFeedback,
			Weight:  weight,
			Score:   neutralScore,
			Reasons: []string{"no feedback store configured"},
			OK:      true,
		}
	}

	total, delivered, err := l.source.Summarize(target.Domain, l.cfg.FeedbackWindow)
	if err != nil {
		return failedFinding(LayerUserFeedback, weight)
	}

	if total < l.cfg.FeedbackMinSamples {
		return LayerFinding{
			Layer:   LayerUserFeedback,
			Weight:  weight,
			Score:   neutralScore,
			Reasons: []string{fmt.Sprintf("only %d outcome report(s), minimum %d for a signal", total, l.cfg.FeedbackMinSamples)},
			OK:      true,
		}
	}

	ratio := float64(delivered) / float64(total)
	return LayerFinding{
		Layer:  LayerUserFeedback,
		Weight: weight,
		Score:  clampScore(100 * (1 - ratio)),
		Reasons: []string{
			fmt.Sprintf("%d of %d recorded orders delivered", delivered, total),
		},
		OK: true,
	}
}
