package trust

// gateOutcome is the post-gate score/badge pair plus the note explaining
// which override fired, if any.
type gateOutcome struct {
	score         float64
	badge         Badge
	lowConfidence bool
	note          string
}

// applyGates post-processes the provisional score with deterministic
// override rules, first match wins. A confirmed threat-intel hit outranks
// the trusted-platform allowlist: a compromised subdomain of a trusted
// marketplace serving phishing content must not be laundered by the
// allowlist.
func applyGates(cfg Config, target AnalysisTarget, findings []LayerFinding, score float64, failed []LayerFinding) gateOutcome {
	// 1. Confirmed threat-intel hit.
	for _, f := range findings {
		if f.Layer == LayerThreatIntel && f.OK && f.Score >= threatGateScore {
			s := score
			if s < 90 {
				s = 90
			}
			return gateOutcome{
				score: clampScore(s),
				badge: BadgeCritical,
				note:  "threat intelligence confirms this URL as malicious",
			}
		}
	}

	// 2. Trusted-platform allowlist.
	for _, p := range cfg.TrustedPlatforms {
		if target.matchesDomain(p) {
			s := score
			if s > 10 {
				s = 10
			}
			return gateOutcome{
				score: s,
				badge: BadgeVerifiedSafe,
				note:  "trusted platform allowlist match: " + p,
			}
		}
	}

	// 3. Typosquatting pattern: close to a brand, not a canonical domain.
	if brand := typosquatBrand(cfg, target); brand != "" {
		s := score
		if s < 70 {
			s = 70
		}
		badge := BadgeFor(s)
		if badge == BadgeCaution || badge == BadgeLowRisk || badge == BadgeVerifiedSafe {
			badge = BadgeHighRisk
		}
		return gateOutcome{
			score: clampScore(s),
			badge: badge,
			note:  "domain imitates trusted brand " + brand,
		}
	}

	// 4. Repeated layer failure: unreachable or unanalyzable targets are
	// themselves a weak signal of illegitimacy.
	if len(failed)*2 > len(findings) {
		s := score
		if s < 60 {
			s = 60
		}
		return gateOutcome{
			score:         clampScore(s),
			badge:         BadgeFor(s),
			lowConfidence: true,
			note:          "most verification layers could not complete",
		}
	}

	return gateOutcome{score: clampScore(score), badge: BadgeFor(clampScore(score))}
}

// typosquatBrand returns the brand a domain appears to imitate, or "" when
// the domain is canonical, a hosted storefront, or simply unlike any brand.
func typosquatBrand(cfg Config, target AnalysisTarget) string {
	for _, suf := range cfg.HostedStorefronts {
		if target.matchesDomain(suf) {
			return ""
		}
	}
	sld := target.sld()
	for brand, canonical := range cfg.CanonicalBrands {
		if isCanonical(target, canonical) {
			continue
		}
		// Exactness is judged against canonical domains, not the label:
		// "amazon.xyz" imitates the brand even though its SLD matches it.
		if similarity(sld, brand) >= 0.82 {
			return brand
		}
	}
	return ""
}
