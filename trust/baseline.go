package trust

import (
	"context"
	"math"
	"regexp"
	"time"
)

// BaselineResult is the quick single-pass verdict used for comparison with
// the full engine.
type BaselineResult struct {
	URL          string    `json:"url"`
	RiskScore    float64   `json:"risk_score"`
	Verdict      string    `json:"verdict"`
	Issues       []string  `json:"issues"`
	ScannedAt    time.Time `json:"scanned_at"`
	AnalysisType string    `json:"analysis_type"`
}

// Comparison pairs the engine result with the baseline for the same URL.
type Comparison struct {
	URL             string         `json:"url"`
	Advanced        AnalysisResult `json:"advanced_analysis"`
	Basic           BaselineResult `json:"basic_analysis"`
	ScoreDifference float64        `json:"score_difference"`
}

var baselineUrgency = regexp.MustCompile(`limited\s*stock|act\s*now|buy\s*1\s*get\s*\d|\d+%\s*off|today\s*only`)

// BaselineAnalyze runs the legacy quick heuristic: reachability, domain
// age and urgency language only. It exists so callers can see what the
// eight-layer engine adds on top.
func (e *Engine) BaselineAnalyze(ctx context.Context, url string) (BaselineResult, error) {
	target, err := NormalizeTarget(url)
	if err != nil {
		return BaselineResult{}, err
	}

	risk := 0.0
	var issues []string

	if target.Scheme != "https" {
		risk += 20
		issues = append(issues, "no HTTPS")
	}
	if present, valid := probeCertificate(ctx, target.Host); !present || !valid {
		risk += 20
		issues = append(issues, "no valid certificate")
	}

	age, _ := domainRegistration(target.Domain)
	if age >= 0 && age < 180 {
		risk += 30
		issues = append(issues, "domain younger than 180 days")
	} else if age < 0 {
		risk += 15
		issues = append(issues, "unknown domain age")
	}

	if text, err := fetchPage(ctx, target.URL); err != nil {
		risk += 20
		issues = append(issues, "site unreachable or not HTML")
	} else if baselineUrgency.MatchString(text) {
		risk += 20
		issues = append(issues, "urgency language on page")
	}

	verdict := "Safe"
	switch {
	case risk >= 70:
		verdict = "Scam"
	case risk >= 40:
		verdict = "Suspicious"
	}

	return BaselineResult{
		URL:          target.URL,
		RiskScore:    clampScore(risk),
		Verdict:      verdict,
		Issues:       issues,
		ScannedAt:    time.Now().UTC(),
		AnalysisType: AnalysisBasic,
	}, nil
}

// Compare runs both analysis paths for a URL. Convenience composition, no
// new scoring logic.
func (e *Engine) Compare(ctx context.Context, url string) (Comparison, error) {
	advanced, err := e.Analyze(ctx, url)
	if err != nil {
		return Comparison{}, err
	}
	basic, err := e.BaselineAnalyze(ctx, url)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		URL:             advanced.URL,
		Advanced:        advanced,
		Basic:           basic,
		ScoreDifference: math.Abs(advanced.RiskScore - basic.RiskScore),
	}, nil
}
