package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdviceForEveryBadge(t *testing.T) {
	t.Parallel()

	for _, badge := range []Badge{
		BadgeVerifiedSafe, BadgeLowRisk, BadgeCaution, BadgeHighRisk, BadgeCritical,
	} {
		a := AdviceFor(50, badge)
		assert.NotEmpty(t, a.Payment, badge)
		assert.NotEmpty(t, a.Actions, badge)
	}
}

func TestAdviceMatchesSeverity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Safe to proceed", AdviceFor(5, BadgeVerifiedSafe).Payment)
	assert.Equal(t, "Do not proceed - likely fraudulent", AdviceFor(95, BadgeCritical).Payment)
	assert.Contains(t, AdviceFor(75, BadgeHighRisk).Actions, "do not share card or banking details")
}
