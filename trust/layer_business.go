package trust

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Indian GST identifier, the registration pattern the original market
	// targets; any 15-char match counts as a verifiable registration id.
	gstExpr = regexp.MustCompile(`\b[0-9]{2}[a-z]{5}[0-9]{4}[a-z][1-9a-z]z[0-9a-z]\b`)

	paymentGateways = []string{
		"razorpay", "stripe", "paypal", "payu", "ccavenue",
		"braintree", "square", "klarna", "shopify payments",
	}
)

const openCorporatesEndpoint = "https://api.opencorporates.com/v0.4/companies/search"

// businessLayer looks for verifiable business identity: registration
// identifiers, payment-gateway branding, mail setup and public registry
// records. Missing signals raise the sub-score moderately, never to the
// maximum alone.
type businessLayer struct {
	cfg Config
}

func (l *businessLayer) Name() string { return LayerBusiness }

func (l *businessLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerBusiness]

	text, err := fetchPage(ctx, target.URL)
	if err != nil {
		return failedFinding(LayerBusiness, weight)
	}

	signals := 0
	var reasons []string

	if gstExpr.MatchString(text) {
		signals++
		reasons = append(reasons, "business registration identifier present")
	}

	if gw := firstContained(text, paymentGateways); gw != "" {
		signals++
		reasons = append(reasons, "recognized payment gateway: "+gw)
	}

	if hasMX(ctx, target.Domain) {
		signals++
		reasons = append(reasons, "mail server configured for domain")
	}

	if l.cfg.OpenCorporatesKey != "" {
		if company, err := l.registryLookup(ctx, target.sld()); err != nil {
			log.Printf("[business] registry lookup failed for %s: %v", target.Domain, err)
		} else if company != "" {
			signals++
			reasons = append(reasons, "public registry record: "+company)
		}
	}

	// 0 signals caps at 65: absence of proof is suspicion, not proof of
	// fraud.
	risk := 65.0 - float64(signals)*15.0
	if risk < 5 {
		risk = 5
	}
	if signals == 0 {
		reasons = append(reasons, "no verifiable business signals found")
	}

	return LayerFinding{
		Layer:   LayerBusiness,
		Weight:  weight,
		Score:   risk,
		Reasons: reasons,
		OK:      true,
	}
}

func (l *businessLayer) registryLookup(ctx context.Context, name string) (string, error) {
	q := url.Values{
		"q":         {name},
		"api_token": {l.cfg.OpenCorporatesKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openCorporatesEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := threatClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Results struct {
			Companies []struct {
				Company struct {
					Name string `json:"name"`
				} `json:"company"`
			} `json:"companies"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Results.Companies) == 0 {
		return "", nil
	}
	return out.Results.Companies[0].Company.Name, nil
}

func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}

func firstContained(text string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return n
		}
	}
	return ""
}
