package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPath(t *testing.T) {
	tests := map[string]string{
		"":                                  "/",
		"/":                                 "/",
		"/donations/DON-012":                "/donations/:donationNo",
		"/donations/DON-012/qrcode":         "/donations/:donationNo/qrcode",
		"/admin/donations/DON-7/status":     "/admin/donations/:donationNo/status",
		"/admin/food-items/V1StGXR8/status": "/admin/food-items/:itemID/status",
		"/admin/donors/abc123/donations":    "/admin/donors/:donorID/donations",
		"/verify-email/0b6a3c2e":            "/verify-email/:token",
		"/verify-email/resend":              "/verify-email/resend",
		"/media/food_items/food_1.png":      "/media",
		"/admin/donations":                  "/admin/donations",
	}

	for in, want := range tests {
		assert.Equal(t, want, CanonicalPath(in), in)
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveRequest("get", "/donations/DON-001", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("GET", "/donations/DON-002", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("GET", UnmatchedRoute, http.StatusNotFound, time.Millisecond)
	m.ObserveRequest("GET", UnmatchedRoute, http.StatusNotFound, time.Millisecond)
	m.DonationTransition("pending", "approved")
	m.AccountsPurged(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/donations/:donationNo", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", UnmatchedRoute, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.donationTransitions.WithLabelValues("pending", "approved")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.accountsPurged))

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.DonationSubmitted("ngo")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `foodshare_donations_submitted_total{delivery_method="ngo"} 1`))
}
