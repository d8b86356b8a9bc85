package trust

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedback struct {
	total     int
	delivered int
	err       error
}

func (f *fakeFeedback) Summarize(_ string, _ int) (int, int, error) {
	return f.total, f.delivered, f.err
}

func feedbackTarget() AnalysisTarget {
	return AnalysisTarget{URL: "https://example-store.net", Host: "example-store.net", Domain: "example-store.net", Scheme: "https"}
}

func TestFeedbackLayerNoStore(t *testing.T) {
	t.Parallel()

	l := &userFeedbackLayer{cfg: DefaultConfig()}
	f := l.Analyze(context.Background(), feedbackTarget())

	require.True(t, f.OK)
	assert.Equal(t, neutralScore, f.Score)
}

func TestFeedbackLayerBelowMinimumSamples(t *testing.T) {
	t.Parallel()

	l := &userFeedbackLayer{cfg: DefaultConfig(), source: &fakeFeedback{total: 2, delivered: 0}}
	f := l.Analyze(context.Background(), feedbackTarget())

	require.True(t, f.OK)
	assert.Equal(t, neutralScore, f.Score, "two reports of anything stay neutral")
	assert.NotEmpty(t, f.Reasons)
}

func TestFeedbackLayerScoresFromDeliveredRatio(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total, delivered int
		want             float64
	}{
		{10, 10, 0},
		{10, 0, 100},
		{10, 7, 30},
		{4, 3, 25},
	}
	for _, tc := range cases {
		l := &userFeedbackLayer{cfg: DefaultConfig(), source: &fakeFeedback{total: tc.total, delivered: tc.delivered}}
		f := l.Analyze(context.Background(), feedbackTarget())
		require.True(t, f.OK)
		assert.InDelta(t, tc.want, f.Score, 1e-9, "%d/%d", tc.delivered, tc.total)
	}
}

func TestFeedbackLayerUndeliveredRaisesRisk(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	none := (&userFeedbackLayer{cfg: cfg, source: &fakeFeedback{}}).Analyze(context.Background(), feedbackTarget())
	bad := (&userFeedbackLayer{cfg: cfg, source: &fakeFeedback{total: 5, delivered: 0}}).Analyze(context.Background(), feedbackTarget())

	assert.Greater(t, bad.Score, none.Score, "failed deliveries must raise the sub-score above no-history neutral")
}

func TestFeedbackLayerSourceError(t *testing.T) {
	t.Parallel()

	l := &userFeedbackLayer{cfg: DefaultConfig(), source: &fakeFeedback{err: errors.New("db closed")}}
	f := l.Analyze(context.Background(), feedbackTarget())

	assert.False(t, f.OK)
	assert.Equal(t, neutralScore, f.Score)
}
