package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/books", "GET", 200, 15*time.Millisecond)
	m.ObserveRequest("/api/v1/books", "GET", 200, 5*time.Millisecond)
	m.ObserveRequest("", "GET", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/books", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestUploadCounters(t *testing.T) {
	m := New()
	m.UploadAccepted(1024)
	m.UploadAccepted(2048)
	m.UploadRejected("too_large")
	m.SubmissionAccepted()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("too_large")))
	assert.Equal(t, 3072.0, testutil.ToFloat64(m.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/x", "GET", 200, time.Second)
		m.UploadAccepted(1)
		m.UploadRejected("x")
		m.SubmissionAccepted()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.UploadAccepted(10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "questionbank_book_uploads_total")
}
