package trust

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreatLayerWithoutCredentials(t *testing.T) {
	t.Parallel()

	l := &threatIntelLayer{cfg: DefaultConfig()}
	f := l.Analyze(context.Background(), mustTarget(t, "https://example-store.net"))

	require.True(t, f.OK, "missing credentials degrade to success, not failure")
	assert.Equal(t, 10.0, f.Score)
	assert.Less(t, f.Score, threatGateScore, "degraded score must never trip the threat gate")
}

func TestVisualBrandLayerNeutral(t *testing.T) {
	t.Parallel()

	l := &visualBrandLayer{cfg: DefaultConfig()}
	f := l.Analyze(context.Background(), mustTarget(t, "https://example-store.net"))

	require.True(t, f.OK)
	assert.Equal(t, 5.0, f.Score)
	assert.Equal(t, DefaultWeights()[LayerVisualBrand], f.Weight)
}
