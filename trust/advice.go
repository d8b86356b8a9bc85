package trust

// AdviceFor maps a final score and badge to a payment recommendation and
// ordered action list. Pure function, no I/O; the default branch is
// unreachable after clamping but keeps the switch total.
func AdviceFor(score float64, badge Badge) Advice {
	switch badge {
	case BadgeVerifiedSafe:
		return Advice{
			Payment: "Safe to proceed",
			Actions: []string{
				"business appears legitimate and verified",
				"use any payment method you're comfortable with",
				"keep order confirmations for your records",
			},
		}
	case BadgeLowRisk:
		return Advice{
			Payment: "Generally safe with minor concerns",
			Actions: []string{
				"check merchant reputation on marketplace platforms",
				"prefer secure payment methods (credit card, PayPal)",
				"verify contact details before large purchases",
			},
		}
	case BadgeCaution:
		return Advice{
			Payment: "Exercise caution",
			Actions: []string{
				"verify merchant credentials before ordering",
				"use COD or secure payment gateways only",
				"start with a small test order",
				"check seller reviews and ratings",
			},
		}
	case BadgeHighRisk:
		return Advice{
			Payment: "High risk - avoid unless independently verified",
			Actions: []string{
				"only use COD if you must proceed",
				"do not share card or banking details",
				"avoid advance bank transfers",
				"report suspicious merchants to the platform",
			},
		}
	case BadgeCritical:
		return Advice{
			Payment: "Do not proceed - likely fraudulent",
			Actions: []string{
				"this appears to be a scam website",
				"do not submit any payment information",
				"report to the platform and authorities",
				"use established, verified merchants instead",
			},
		}
	default:
		return Advice{}
	}
}
