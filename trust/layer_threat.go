package trust

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	phishTankEndpoint    = "https://checkurl.phishtank.com/checkurl/"

	// threatHitScore marks a confirmed feed match; the safety gates treat
	// any successful threat finding at or above threatGateScore as
	// confirmed.
	threatHitScore  = 95.0
	threatGateScore = 85.0
)

var threatClient = &http.Client{Timeout: 8 * time.Second}

// threatIntelLayer cross-references the URL against external malicious-URL
// feeds. Without credentials it degrades to a neutral success, not a
// failure.
type threatIntelLayer struct {
	cfg Config
}

func (l *threatIntelLayer) Name() string { return LayerThreatIntel }

func (l *threatIntelLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerThreatIntel]

	if l.cfg.SafeBrowsingKey == "" && l.cfg.PhishTankKey == "" {
		return LayerFinding{
			Layer:   LayerThreatIntel,
			Weight:  weight,
			Score:   10,
			Reasons: []string{"no external threat intel configured"},
			OK:      true,
		}
	}

	risk := 0.0
	var reasons []string
	checked := false

	if l.cfg.SafeBrowsingKey != "" {
		hit, err := l.safeBrowsing(ctx, target.URL)
		if err != nil {
			log.Printf("[threat] Safe Browsing lookup failed for %s: %v", target.Domain, err)
		} else {
			checked = true
			if hit {
				risk = threatHitScore
				reasons = append(reasons, "Safe Browsing lists this URL as malicious")
			} else {
				reasons = append(reasons, "Safe Browsing: no matches")
			}
		}
	}

	if l.cfg.PhishTankKey != "" && risk < threatHitScore {
		hit, err := l.phishTank(ctx, target.URL)
		if err != nil {
			log.Printf("[threat] PhishTank lookup failed for %s: %v", target.Domain, err)
		} else {
			checked = true
			if hit {
				risk = threatHitScore
				reasons = append(reasons, "PhishTank has a verified phishing report for this URL")
			} else {
				reasons = append(reasons, "PhishTank: no verified reports")
			}
		}
	}

	if !checked {
		// Credentials configured but every feed errored out.
		return failedFinding(LayerThreatIntel, weight)
	}

	return LayerFinding{
		Layer:   LayerThreatIntel,
		Weight:  weight,
		Score:   risk,
		Reasons: reasons,
		OK:      true,
	}
}

func (l *threatIntelLayer) safeBrowsing(ctx context.Context, rawURL string) (bool, error) {
	payload := map[string]any{
		"client": map[string]string{
			"clientId":      "shopguard",
			"clientVersion": "1.0",
		},
		"threatInfo": map[string]any{
			"threatTypes":      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"},
			"platformTypes":    []string{"ANY_PLATFORM"},
			"threatEntryTypes": []string{"URL"},
			"threatEntries":    []map[string]string{{"url": rawURL}},
		},
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, safeBrowsingEndpoint+"?key="+l.cfg.SafeBrowsingKey, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := threatClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var out struct {
		Matches []json.RawMessage `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return len(out.Matches) > 0, nil
}

func (l *threatIntelLayer) phishTank(ctx context.Context, rawURL string) (bool, error) {
	form := url.Values{
		"url":     {rawURL},
		"format":  {"json"},
		"app_key": {l.cfg.PhishTankKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, phishTankEndpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := threatClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var out struct {
		Results struct {
			InDatabase bool `json:"in_database"`
			Verified   bool `json:"verified"`
			Valid      bool `json:"valid"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Results.InDatabase && out.Results.Verified && out.Results.Valid, nil
}
