package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineUrgencyPattern(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"limited stock remaining",
		"act now before it's gone",
		"buy 1 get 2 free",
		"80% off everything",
		"today only sale",
	} {
		assert.True(t, baselineUrgency.MatchString(s), s)
	}

	assert.False(t, baselineUrgency.MatchString("free shipping on orders over $50"))
}
