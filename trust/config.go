package trust

import (
	"math"
	"os"
	"strconv"
	"time"
)

// Layer identifiers. These are stable names used for weights, findings and
// reason attribution.
const (
	LayerDomainInfra  = "domain_infra"
	LayerContentUX    = "content_ux"
	LayerVisualBrand  = "visual_brand"
	LayerThreatIntel  = "threat_intel"
	LayerBusiness     = "business_verification"
	LayerTechnical    = "technical_verification"
	LayerMerchant     = "merchant_verification"
	LayerUserFeedback = "user_feedback"
)

// AllLayers lists every layer in fixed order.
var AllLayers = []string{
	LayerDomainInfra,
	LayerContentUX,
	LayerVisualBrand,
	LayerThreatIntel,
	LayerBusiness,
	LayerTechnical,
	LayerMerchant,
	LayerUserFeedback,
}

// Config is the immutable engine configuration. Build it once at process
// start, validate, and treat as read-only; reconfiguring means constructing
// a new Engine.
type Config struct {
	// Weights per layer. Must sum to 1.0 across enabled layers.
	Weights map[string]float64

	// LayerTimeout bounds each analyzer individually. The overall analysis
	// latency is bounded by this value plus aggregation overhead.
	LayerTimeout time.Duration

	// TrustedPlatforms are known-legitimate marketplaces. Exact or subdomain
	// matches bypass computed risk.
	TrustedPlatforms []string

	// CanonicalBrands maps a brand name to its legitimate domains, used for
	// typosquat detection.
	CanonicalBrands map[string][]string

	SuspiciousTLDs   []string
	UrgencyPhrases   []string
	PhishingTokens   []string
	ScamNamePatterns []string

	// HostedStorefronts are builder domains (*.myshopify.com and friends)
	// that must not be penalized as brand lookalikes.
	HostedStorefronts []string

	// Optional feed credentials. Layers degrade to neutral success when a
	// credential is absent.
	SafeBrowsingKey   string
	PhishTankKey      string
	OpenCorporatesKey string

	// Feedback aggregation.
	FeedbackMinSamples int
	FeedbackWindow     int
}

// DefaultWeights mirror the calibration of the production scorer. Merchant
// verification dominates; visual/brand and user feedback are light signals.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		LayerDomainInfra:  0.25,
		LayerContentUX:    0.10,
		LayerVisualBrand:  0.05,
		LayerThreatIntel:  0.12,
		LayerBusiness:     0.15,
		LayerTechnical:    0.08,
		LayerMerchant:     0.30,
		LayerUserFeedback: 0.05,
	}
}

func DefaultConfig() Config {
	return Config{
		Weights:      DefaultWeights(),
		LayerTimeout: 8 * time.Second,
		TrustedPlatforms: []string{
			"amazon.com", "flipkart.com", "myntra.com", "ajio.com", "nykaa.com",
			"meesho.com", "snapdeal.com", "shopclues.com", "paytmmall.com",
			"ebay.com", "alibaba.com", "walmart.com", "target.com", "bestbuy.com",
		},
		CanonicalBrands: map[string][]string{
			"amazon":    {"amazon.com", "amazon.in", "amazon.co.uk"},
			"flipkart":  {"flipkart.com"},
			"google":    {"google.com", "google.co.in"},
			"facebook":  {"facebook.com", "meta.com"},
			"paypal":    {"paypal.com"},
			"apple":     {"apple.com"},
			"microsoft": {"microsoft.com"},
			"myntra":    {"myntra.com"},
			"nykaa":     {"nykaa.com"},
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".top", ".click", ".download", ".stream",
			".science", ".racing", ".cricket", ".party", ".review", ".faith",
			".accountant", ".loan", ".men", ".bid", ".trade", ".win",
		},
		// Regular expressions matched against lower-cased page text.
		UrgencyPhrases: []string{
			`last\s*few\s*left`, `only\s*\d+\s*left`, `today\s*only`,
			`limited\s*time`, `flash\s*sale`, `act\s*now`, `buy\s*now`,
			`\d+%\s*off`, `special\s*offer`, `limited\s*stock`,
		},
		PhishingTokens: []string{
			"refund", "order", "support", "help", "verify", "verification",
			"payment", "pay", "secure", "security", "account", "update", "login",
			"billing", "wallet", "upi", "reset", "unlock",
		},
		ScamNamePatterns: []string{
			"super-deals", "mega-deals", "flash-sale", "sale-today", "deals-today",
			"limited-time", "urgent-sale", "clearance-sale", "discount-outlet",
			"cheap-electronics", "wholesale-direct", "factory-outlet",
		},
		HostedStorefronts: []string{
			"myshopify.com", "bigcommerce.com", "squarespace.com", "wix.com",
			"shopify.com", "wordpress.com", "webflow.io",
		},
		FeedbackMinSamples: 3,
		FeedbackWindow:     50,
	}
}

// ConfigFromEnv builds the default configuration with credentials and tuning
// read from the environment (load a .env first if present).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.SafeBrowsingKey = os.Getenv("SAFE_BROWSING_API_KEY")
	cfg.PhishTankKey = os.Getenv("PHISHTANK_API_KEY")
	cfg.OpenCorporatesKey = os.Getenv("OPENCORPORATES_API_KEY")

	if v := os.Getenv("LAYER_TIMEOUT_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			cfg.LayerTimeout = time.Duration(sec) * time.Second
		}
	}
	return cfg
}

// Validate fails fast on invalid configuration. Analysis-time code may
// assume a validated config.
func (c Config) Validate() error {
	if c.LayerTimeout <= 0 {
		return &ConfigurationError{Option: "layer_timeout", Msg: "must be positive"}
	}
	if c.FeedbackMinSamples < 1 {
		return &ConfigurationError{Option: "feedback_min_samples", Msg: "must be at least 1"}
	}
	if c.FeedbackWindow < c.FeedbackMinSamples {
		return &ConfigurationError{Option: "feedback_window", Msg: "smaller than min samples"}
	}

	sum := 0.0
	for layer, w := range c.Weights {
		if w < 0 || w > 1 {
			return &ConfigurationError{Option: "weights", Msg: "weight for " + layer + " outside [0,1]"}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return &ConfigurationError{Option: "weights", Msg: "enabled layer weights must sum to 1.0"}
	}
	return nil
}
