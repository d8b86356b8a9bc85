package trust

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
)

// domainInfraLayer inspects registration and infrastructure signals: WHOIS
// age, certificate presence, registration privacy and brand-lookalike
// distance.
type domainInfraLayer struct {
	cfg Config
}

func (l *domainInfraLayer) Name() string { return LayerDomainInfra }

func (l *domainInfraLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerDomainInfra]

	// Trusted platforms short-circuit to near-zero risk.
	for _, p := range l.cfg.TrustedPlatforms {
		if target.matchesDomain(p) {
			return LayerFinding{
				Layer:   LayerDomainInfra,
				Weight:  weight,
				Score:   0,
				Reasons: []string{fmt.Sprintf("verified major platform: %s", p)},
				OK:      true,
			}
		}
	}

	risk := 0.0
	var reasons []string

	if ts := l.typosquatRisk(target); ts > 0 {
		risk += ts
		if ts >= 65 {
			reasons = append(reasons, fmt.Sprintf("typosquatting pattern: %q mimics a known brand", target.sld()))
		} else {
			reasons = append(reasons, fmt.Sprintf("brand lookalike domain: %q", target.sld()))
		}
	}

	if target.Scheme != "https" {
		risk += 20
		reasons = append(reasons, "no HTTPS")
	}

	ageDays, privacy := domainRegistration(target.Domain)
	switch {
	case ageDays < 0:
		risk += 10
		reasons = append(reasons, "unknown domain age")
	case ageDays < 30:
		risk += 40
		reasons = append(reasons, fmt.Sprintf("domain age %d days (<30)", ageDays))
	case ageDays < 180:
		risk += 20
		reasons = append(reasons, fmt.Sprintf("domain age %d days (<180)", ageDays))
	}
	if privacy {
		risk += 5
		reasons = append(reasons, "registration privacy enabled")
	}

	if ok, valid := probeCertificate(ctx, target.Host); !ok {
		risk += 15
		reasons = append(reasons, "no certificate on :443")
	} else if !valid {
		risk += 15
		reasons = append(reasons, "certificate expired or not yet valid")
	}

	for _, tld := range l.cfg.SuspiciousTLDs {
		if strings.HasSuffix(target.Domain, tld) {
			risk += 10
			reasons = append(reasons, "suspicious TLD "+tld)
			break
		}
	}

	if strings.HasPrefix(target.Host, "xn--") || strings.Contains(target.Host, ".xn--") {
		risk += 10
		reasons = append(reasons, "IDN/punycode domain")
	}
	if strings.Count(target.Host, ".") >= 3 {
		risk += 10
		reasons = append(reasons, "many subdomains")
	}

	sld := target.sld()
	if strings.Count(sld, "-") >= 2 {
		risk += 10
		reasons = append(reasons, "many hyphens in domain")
	}
	if digits := countDigits(sld); digits >= 3 {
		risk += 10
		reasons = append(reasons, "many digits in domain")
	}
	if len(sld) >= 20 {
		risk += 5
		reasons = append(reasons, "very long domain name")
	}

	if tok := phishingToken(target.Host, target.Domain, l.cfg.PhishingTokens); tok != "" {
		risk += 25
		reasons = append(reasons, "suspicious intent in subdomain: "+tok)
	}

	return LayerFinding{
		Layer:   LayerDomainInfra,
		Weight:  weight,
		Score:   clampScore(risk),
		Reasons: reasons,
		OK:      true,
	}
}

// typosquatRisk measures how close the second-level label is to a known
// brand while not being one of that brand's canonical domains.
func (l *domainInfraLayer) typosquatRisk(target AnalysisTarget) float64 {
	for _, suf := range l.cfg.HostedStorefronts {
		if target.matchesDomain(suf) {
			return 0
		}
	}
	sld := target.sld()
	for brand, canonical := range l.cfg.CanonicalBrands {
		if isCanonical(target, canonical) {
			continue
		}
		switch sim := similarity(sld, brand); {
		case sim >= 0.9:
			return 65
		case sim >= 0.82:
			return 45
		case sim >= 0.75:
			return 25
		}
	}
	return 0
}

func isCanonical(target AnalysisTarget, canonical []string) bool {
	for _, c := range canonical {
		if target.matchesDomain(c) {
			return true
		}
	}
	return false
}

// domainRegistration looks up WHOIS and returns the age in days (-1 if
// unknown) and whether registration privacy appears enabled. Subdomain
// lookups retry against the parent, matching registry behavior.
func domainRegistration(domain string) (int, bool) {
	raw, err := whois.Whois(domain)
	if err != nil {
		return -1, false
	}

	privacy := strings.Contains(strings.ToLower(raw), "privacy") ||
		strings.Contains(strings.ToLower(raw), "redacted")

	p, err := parser.Parse(raw)
	if err != nil || p.Domain == nil {
		parts := strings.Split(domain, ".")
		if len(parts) > 2 {
			return domainRegistration(strings.Join(parts[1:], "."))
		}
		return -1, privacy
	}

	created := parseWhoisDate(strings.TrimSpace(p.Domain.CreatedDate))
	if created.IsZero() {
		return -1, privacy
	}
	return int(time.Since(created).Hours() / 24), privacy
}

func parseWhoisDate(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"02-Jan-2006",
		"2006.01.02",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// probeCertificate reports certificate presence and validity on :443.
func probeCertificate(ctx context.Context, host string) (present bool, valid bool) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 5 * time.Second},
		Config:    &tls.Config{ServerName: host, InsecureSkipVerify: true},
	}
	conn, err := d.DialContext(ctx, "tcp", host+":443")
	if err != nil {
		return false, false
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		log.Printf("[domain] %s: handshake succeeded but no peer certificates", host)
		return false, false
	}
	now := time.Now()
	cert := certs[0]
	return true, now.After(cert.NotBefore) && now.Before(cert.NotAfter)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// phishingToken returns the first phishing-intent token found in the
// subdomain labels (e.g. "order-refund-now.example.com").
func phishingToken(host, domain string, tokens []string) string {
	sub := strings.TrimSuffix(host, domain)
	sub = strings.Trim(sub, ".")
	if sub == "" || sub == "www" {
		return ""
	}
	for _, part := range strings.FieldsFunc(sub, func(r rune) bool { return r == '.' || r == '-' }) {
		for _, tok := range tokens {
			if part == tok {
				return part
			}
		}
	}
	return ""
}
