package trust

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Storefront platform fingerprints, checked against both the host and the
// fetched page body.
var platformFingerprints = []struct {
	name    string
	domains []string
	markers []string
}{
	{"shopify", []string{"myshopify.com"}, []string{"cdn.shopify.com", "shopify.shop", "myshopify"}},
	{"woocommerce", nil, []string{"woocommerce", "wp-content/plugins/woocommerce"}},
	{"bigcommerce", []string{"mybigcommerce.com"}, []string{"bigcommerce"}},
	{"magento", nil, []string{"mage/cookies", "magento"}},
	{"squarespace", []string{"squarespace.com"}, []string{"static1.squarespace.com"}},
	{"wix", []string{"wixsite.com"}, []string{"wix.com", "wixstatic.com"}},
}

var (
	merchantIDExprs = []*regexp.Regexp{
		regexp.MustCompile(`shop_id["']?\s*[:=]\s*["']?(\d+)`),
		regexp.MustCompile(`shopify\.shop\s*=\s*["']([^"']+)`),
		regexp.MustCompile(`data-shop-id["']?\s*[:=]\s*["']?(\d+)`),
		regexp.MustCompile(`/shop/([a-z0-9_-]+)`),
	}
	discountExpr = regexp.MustCompile(`(\d{2})%\s*off`)
)

// merchantLayer carries the highest weight and must be the most
// conservative: at least two independent negative signals are required
// before it assigns a high sub-score, so a legitimate small merchant with
// one rough edge is under-flagged rather than condemned.
type merchantLayer struct {
	cfg Config
}

func (l *merchantLayer) Name() string { return LayerMerchant }

func (l *merchantLayer) Analyze(ctx context.Context, target AnalysisTarget) LayerFinding {
	weight := l.cfg.Weights[LayerMerchant]

	text, err := fetchPage(ctx, target.URL)
	if err != nil {
		return failedFinding(LayerMerchant, weight)
	}

	platform := detectPlatform(target, text)
	if platform == "" {
		return LayerFinding{
			Layer:   LayerMerchant,
			Weight:  weight,
			Score:   20,
			Reasons: []string{"not a recognized storefront platform"},
			OK:      true,
		}
	}

	merchantID := extractMerchantID(target, text)

	var negatives []string

	name := merchantID
	if name == "" {
		name = target.sld()
	}
	if pat := firstContained(name, l.cfg.ScamNamePatterns); pat != "" {
		negatives = append(negatives, "scam naming pattern: "+pat)
	}

	if deep, n := implausibleDiscounts(text); deep {
		negatives = append(negatives, fmt.Sprintf("implausible discount depth (%d offers of 70%%+ off)", n))
	}

	if merchantID == "" {
		negatives = append(negatives, "no verifiable merchant identity")
	}

	if firstContained(text, paymentGateways) == "" {
		negatives = append(negatives, "no recognizable payment gateway branding")
	}

	risk := 15.0
	switch len(negatives) {
	case 0:
	case 1:
		risk = 45
	default:
		risk = 75 + float64(len(negatives)-2)*10
		if risk > 95 {
			risk = 95
		}
	}

	reasons := []string{"storefront platform: " + platform}
	if merchantID != "" {
		reasons = append(reasons, "merchant: "+merchantID)
	}
	reasons = append(reasons, negatives...)

	return LayerFinding{
		Layer:   LayerMerchant,
		Weight:  weight,
		Score:   risk,
		Reasons: reasons,
		OK:      true,
	}
}

func detectPlatform(target AnalysisTarget, text string) string {
	for _, fp := range platformFingerprints {
		for _, d := range fp.domains {
			if target.matchesDomain(d) {
				return fp.name
			}
		}
		for _, m := range fp.markers {
			if strings.Contains(text, m) {
				return fp.name
			}
		}
	}
	return ""
}

func extractMerchantID(target AnalysisTarget, text string) string {
	// Builder subdomain names the shop directly and beats HTML scraping.
	if strings.HasSuffix(target.Host, ".myshopify.com") {
		return strings.TrimSuffix(target.Host, ".myshopify.com")
	}
	for _, re := range merchantIDExprs {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// implausibleDiscounts reports three or more offers at 70% off or deeper.
func implausibleDiscounts(text string) (bool, int) {
	n := 0
	for _, m := range discountExpr.FindAllStringSubmatch(text, 20) {
		if pct, err := strconv.Atoi(m[1]); err == nil && pct >= 70 {
			n++
		}
	}
	return n >= 3, n
}
