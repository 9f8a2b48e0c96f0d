package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderIncludesRegisteredMetrics(t *testing.T) {
	IncUpdate()
	IncUpdateRejected(RejectReasonOutOfRange)
	ObserveRebuild(2 * time.Millisecond)
	SetLiveCustomers(42)
	ObserveRequest("/leaderboard", 200, time.Millisecond)

	out := Render()

	assert.True(t, strings.Contains(out, "rankboard_updates_total"))
	assert.True(t, strings.Contains(out, "rankboard_updates_rejected_total"))
	assert.True(t, strings.Contains(out, "rankboard_rebuilds_total"))
	assert.True(t, strings.Contains(out, "rankboard_rebuild_duration_seconds"))
	assert.True(t, strings.Contains(out, "rankboard_live_customers{} 42"))
	assert.True(t, strings.Contains(out, "rankboard_http_requests_total"))
}

func TestIncUpdateRejectedDefaultsUnknownReason(t *testing.T) {
	IncUpdateRejected("")
	out := Render()
	assert.True(t, strings.Contains(out, "reason=\"unknown\""))
}

func TestHistogramBucketCountsAreCumulativeAndMonotonic(t *testing.T) {
	h := newHistogram([]float64{0.005, 0.01, 0.05})
	h.observe(0.002)

	var b strings.Builder
	writeHistogram(&b, "test_metric", h)
	out := b.String()

	assert.True(t, strings.Contains(out, `test_metric_bucket{le="0.005"} 1`))
	assert.True(t, strings.Contains(out, `test_metric_bucket{le="0.01"} 1`))
	assert.True(t, strings.Contains(out, `test_metric_bucket{le="0.05"} 1`))
	assert.True(t, strings.Contains(out, `test_metric_bucket{le="+Inf"} 1`))
	assert.True(t, strings.Contains(out, "test_metric_count 1"))
}

func TestHistogramCountsPerBucketNotCumulativeInternally(t *testing.T) {
	h := newHistogram([]float64{0.005, 0.01, 0.05})
	h.observe(0.002) // falls in the 0.005 bucket only
	h.observe(0.02)  // falls in the 0.05 bucket only

	buckets, counts, _, count := h.snapshot()
	require := func(cond bool) {
		if !cond {
			t.Fatal("unexpected per-bucket counts", buckets, counts)
		}
	}
	require(counts[0] == 1) // le=0.005
	require(counts[1] == 0) // le=0.01
	require(counts[2] == 1) // le=0.05
	require(count == 2)
}
