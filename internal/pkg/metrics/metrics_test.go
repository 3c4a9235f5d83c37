package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest_UsesNumericStatus(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/metrics-test", "200"))
	RecordHTTPRequest("GET", "/metrics-test", 200, 0.01)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/metrics-test", "200"))

	assert.Equal(t, before+1, after)
}

func TestRecordLookup(t *testing.T) {
	before := testutil.ToFloat64(LookupsTotal.WithLabelValues("local"))
	RecordLookup("local", 2, 0.001)
	assert.Equal(t, before+1, testutil.ToFloat64(LookupsTotal.WithLabelValues("local")))
}

func TestRecordStaleResult(t *testing.T) {
	before := testutil.ToFloat64(StaleResultsDiscarded)
	RecordStaleResult()
	assert.Equal(t, before+1, testutil.ToFloat64(StaleResultsDiscarded))
}

func TestRecordRemoteFallback(t *testing.T) {
	before := testutil.ToFloat64(RemoteFallbacksTotal.WithLabelValues("error"))
	RecordRemoteFallback("error")
	assert.Equal(t, before+1, testutil.ToFloat64(RemoteFallbacksTotal.WithLabelValues("error")))
}

func TestRecordCache(t *testing.T) {
	before := testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit"))
	RecordCache("hit")
	assert.Equal(t, before+1, testutil.ToFloat64(CacheRequestsTotal.WithLabelValues("hit")))
}

func TestRecordAuthAttempt(t *testing.T) {
	before := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("failure"))
	RecordAuthAttempt(false)
	assert.Equal(t, before+1, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("failure")))
}

func TestRecordRateLimited(t *testing.T) {
	before := testutil.ToFloat64(RateLimitedTotal.WithLabelValues("ip"))
	RecordRateLimited("ip")
	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitedTotal.WithLabelValues("ip")))
}
