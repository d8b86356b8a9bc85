package trust

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// AnalysisTarget is the normalized form of a candidate URL. Domain is the
// lower-cased registrable domain with any www. prefix removed; it is the key
// used for allowlist, typosquat and feedback lookups.
type AnalysisTarget struct {
	URL    string
	Host   string
	Domain string
	Scheme string
	Path   string
}

// NormalizeTarget validates rawURL and derives the analysis target.
// Only absolute http/https URLs are accepted.
func NormalizeTarget(rawURL string) (AnalysisTarget, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return AnalysisTarget{}, &ValidationError{Field: "url", Msg: "empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return AnalysisTarget{}, &ValidationError{Field: "url", Msg: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return AnalysisTarget{}, &ValidationError{Field: "url", Msg: "scheme must be http or https"}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return AnalysisTarget{}, &ValidationError{Field: "url", Msg: "missing host"}
	}

	domain := strings.TrimPrefix(host, "www.")
	if reg, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil {
		domain = reg
	}

	return AnalysisTarget{
		URL:    raw,
		Host:   host,
		Domain: domain,
		Scheme: u.Scheme,
		Path:   u.Path,
	}, nil
}

// matchesDomain reports whether the target host is dom itself or one of its
// subdomains.
func (t AnalysisTarget) matchesDomain(dom string) bool {
	return t.Host == dom || t.Domain == dom || strings.HasSuffix(t.Host, "."+dom)
}

// sld returns the second-level label of the registrable domain, the part
// compared against brand names for lookalike detection.
func (t AnalysisTarget) sld() string {
	parts := strings.Split(t.Domain, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return parts[0]
}
