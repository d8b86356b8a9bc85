package trust

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	policyKeywords  = []string{"refund", "return", "privacy", "terms", "contact"}
	contactPattern  = regexp.MustCompile(`\bcontact\b|\bemail\b|\bphone\b`)
	emailDomainExpr = regexp.MustCompile(`[a-z0-9._%+-]+@([a-z0-9.-]+)`)
	socialHosts     = []string{"facebook.com", "twitter.com", "x.com", "instagram.com", "linkedin.com"}
	freeMailDomains = map[string]bool{
		"gmail.com": true, "yahoo.com": true, "hotmail.com": true,
		"outlook.com": true, "rediffmail.com": true, "ymail.com": true,
		"aol.com": true, "mail.com": true, "protonmail.com": true,
	}
)

// contentUXLayer scores the fetched page text: policy pages, contact info,
// manufactured urgency, social presence and contact-address quality.
type contentUXLayer struct {
	cfg     Config
	urgency []*regexp.Regexp
}

func newContentUXLayer(cfg Config) *contentUXLayer {
	l := &contentUXLayer{cfg: cfg}
	for _, p := range cfg.UrgencyPhrases {
		if re, err := regexp.Compile(p); err == nil {
			l.urgency = append(l.urgency, re)
		}
	}
	return l
}

func (l *contentUXLayer) Name() string { return LayerContentUX }

func (l *contentUXLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerContentUX]

	text, err := fetchPage(ctx, target.URL)
	if err != nil {
		return failedFinding(LayerContentUX, weight)
	}

	risk := 0.0
	var reasons []string

	// Known platform homepages legitimately omit storefront policy blocks.
	platformRoot := false
	for _, p := range l.cfg.TrustedPlatforms {
		if target.matchesDomain(p) {
			platformRoot = true
			break
		}
	}

	if !platformRoot {
		var missing []string
		for _, kw := range policyKeywords {
			if !strings.Contains(text, kw) {
				missing = append(missing, kw)
			}
		}
		if len(missing) > 0 {
			risk += 20
			if len(missing) > 3 {
				missing = missing[:3]
			}
			reasons = append(reasons, "policies missing: "+strings.Join(missing, ", "))
		}
		if !contactPattern.MatchString(text) {
			risk += 15
			reasons = append(reasons, "contact info not obvious")
		}
	}

	// Urgency density: each distinct phrase matched adds risk.
	urgent := 0
	for _, re := range l.urgency {
		if re.MatchString(text) {
			urgent++
		}
	}
	if urgent > 0 {
		add := float64(urgent) * 8
		if add > 30 {
			add = 30
		}
		risk += add
		reasons = append(reasons, fmt.Sprintf("manufactured urgency: %d phrase(s) detected", urgent))
	}

	if !containsAny(text, socialHosts) {
		risk += 5
		reasons = append(reasons, "no social presence links detected")
	}

	for _, m := range emailDomainExpr.FindAllStringSubmatch(text, 10) {
		if freeMailDomains[m[1]] {
			risk += 10
			reasons = append(reasons, "contact email uses free domain: "+m[1])
			break
		}
	}

	if !platformRoot {
		if brand := l.titleBrandMismatch(text, target); brand != "" {
			risk += 25
			reasons = append(reasons, fmt.Sprintf("page title mentions %q but domain is not canonical", brand))
		}
	}

	return LayerFinding{
		Layer:   LayerContentUX,
		Weight:  weight,
		Score:   clampScore(risk),
		Reasons: reasons,
		OK:      true,
	}
}

var titleExpr = regexp.MustCompile(`<title[^>]*>(.*?)</title>`)

func (l *contentUXLayer) titleBrandMismatch(text string, target AnalysisTarget) string {
	m := titleExpr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := m[1]
	for brand, canonical := range l.cfg.CanonicalBrands {
		if strings.Contains(title, brand) && !isCanonical(target, canonical) {
			return brand
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
