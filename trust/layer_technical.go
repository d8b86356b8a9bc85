package trust

import (
	"context"
	"crypto/tls"
	"net"
	"strings"
	"time"
)

var securityHeaders = []string{
	"Strict-Transport-Security",
	"X-Content-Type-Options",
	"X-Frame-Options",
	"Content-Security-Policy",
}

// Coarse IP-prefix classification of well-known clouds. Prefix tables are
// approximate on purpose: this is a reputation hint, not an allocation
// database.
var hostingPrefixes = map[string][]string{
	"Amazon AWS":   {"52.", "54.", "13.", "18.", "35."},
	"Cloudflare":   {"104.16.", "104.17.", "104.18.", "104.19.", "104.20.", "104.21.", "172.64.", "172.65.", "172.66.", "172.67."},
	"Google Cloud": {"34.", "35.", "130.211.", "146.148."},
	"Azure":        {"20.", "40.", "137.116.", "138.91."},
}

// technicalLayer evaluates TLS configuration strength, security response
// headers and hosting-provider reputation.
type technicalLayer struct {
	cfg Config
}

func (l *technicalLayer) Name() string { return LayerTechnical }

func (l *technicalLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerTechnical]

	risk := 30.0
	var reasons []string

	version, cipher, ok := tlsProfile(ctx, target.Host)
	switch {
	case !ok:
		if target.Scheme == "https" {
			risk += 20
			reasons = append(reasons, "TLS handshake failed")
		} else {
			risk += 10
			reasons = append(reasons, "no HTTPS encryption")
		}
	case version == tls.VersionTLS13:
		risk -= 15
		reasons = append(reasons, "modern TLS 1.3 with "+cipher)
	case version == tls.VersionTLS12:
		risk -= 5
	default:
		risk += 20
		reasons = append(reasons, "obsolete TLS version negotiated")
	}

	if headers, err := headPage(ctx, target.URL); err == nil {
		missing := 0
		for _, h := range securityHeaders {
			if headers.Get(h) == "" {
				missing++
			}
		}
		if missing > 0 {
			risk += float64(missing) * 5
			reasons = append(reasons, "missing security headers")
		} else {
			risk -= 5
			reasons = append(reasons, "full security header set")
		}
	}

	if provider := hostingProvider(ctx, target.Host); provider != "" {
		risk -= 10
		reasons = append(reasons, "hosted on "+provider)
	} else {
		risk += 5
		reasons = append(reasons, "unrecognized hosting provider")
	}

	return LayerFinding{
		Layer:   LayerTechnical,
		Weight:  weight,
		Score:   clampScore(risk),
		Reasons: reasons,
		OK:      true,
	}
}

func tlsProfile(ctx context.Context, host string) (version uint16, cipher string, ok bool) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 5 * time.Second},
		Config:    &tls.Config{ServerName: host},
	}
	conn, err := d.DialContext(ctx, "tcp", host+":443")
	if err != nil {
		return 0, "", false
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	return state.Version, tls.CipherSuiteName(state.CipherSuite), true
}

func hostingProvider(ctx context.Context, host string) string {
	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	for _, addr := range addrs {
		for provider, prefixes := range hostingPrefixes {
			for _, p := range prefixes {
				if strings.HasPrefix(addr, p) {
					return provider
				}
			}
		}
	}
	return ""
}
