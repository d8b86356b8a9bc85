package trust

import "time"

// neutralScore is the "unknown" sub-score reported by a layer that could not
// reach a conclusion (timeout, upstream failure, insufficient data).
const neutralScore = 50.0

// Analysis type markers distinguishing the full engine from the quick
// baseline path.
const (
	AnalysisAdvanced = "advanced"
	AnalysisBasic    = "basic"
)

// LayerFinding is the output of one analyzer invocation. Findings are
// created once, never mutated, and owned by the orchestrator for the
// duration of a run.
type LayerFinding struct {
	Layer   string   `json:"layer"`
	Weight  float64  `json:"weight"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
	OK      bool     `json:"ok"`
}

func failedFinding(layer string, weight float64) LayerFinding {
	return LayerFinding{Layer: layer, Weight: weight, Score: neutralScore, OK: false}
}

// Badge is the five-tier human-readable risk classification.
type Badge string

const (
	BadgeVerifiedSafe Badge = "Verified Safe"
	BadgeLowRisk      Badge = "Low Risk"
	BadgeCaution      Badge = "Caution Required"
	BadgeHighRisk     Badge = "High Risk"
	BadgeCritical     Badge = "Critical Risk"
)

// BadgeFor maps a clamped score to its tier. Boundaries are fixed, ordered
// and non-overlapping.
func BadgeFor(score float64) Badge {
	switch {
	case score < 25:
		return BadgeVerifiedSafe
	case score < 45:
		return BadgeLowRisk
	case score < 70:
		return BadgeCaution
	case score < 85:
		return BadgeHighRisk
	default:
		return BadgeCritical
	}
}

// Reason is one flattened finding message annotated with its source layer,
// effective weight and score contribution.
type Reason struct {
	Layer        string  `json:"layer"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Message      string  `json:"message"`
}

// Advice is the payment recommendation and ordered action list for a badge.
type Advice struct {
	Payment string   `json:"payment"`
	Actions []string `json:"actions"`
}

// AnalysisResult is the engine's verdict for one URL. Results are built
// fresh per call and never mutated afterwards.
type AnalysisResult struct {
	URL           string    `json:"url"`
	RiskScore     float64   `json:"risk_score"`
	Badge         Badge     `json:"badge"`
	Reasons       []Reason  `json:"reasons"`
	Advice        Advice    `json:"advice"`
	ScannedAt     time.Time `json:"scanned_at"`
	AnalysisType  string    `json:"analysis_type"`
	LowConfidence bool      `json:"low_confidence,omitempty"`
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
