package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(timeout time.Duration) *Prober {
	return NewProber(&http.Client{}, timeout)
}

func TestCheckHealthyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out := newTestProber(2 * time.Second).Check(context.Background(), srv.URL)

	assert.Equal(t, StatusUp, out.Status)
	assert.Equal(t, int32(200), out.Code)
	assert.Equal(t, FailureNone, out.Kind)
	assert.Empty(t, out.Detail)
}

func TestCheckRedirectClassCountsAsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out := newTestProber(2 * time.Second).Check(context.Background(), srv.URL)

	assert.Equal(t, StatusUp, out.Status)
	assert.Equal(t, int32(204), out.Code)
}

func TestCheckServerErrorIsDown(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := newTestProber(2 * time.Second).Check(context.Background(), srv.URL)

	assert.Equal(t, StatusDown, out.Status)
	assert.Equal(t, int32(500), out.Code)
	assert.Equal(t, FailureNonSuccessStatus, out.Kind)
	assert.Contains(t, out.Detail, "non-2xx/3xx response")
	// DOWN triggers exactly one retry
	assert.Equal(t, int32(2), hits.Load())
}

func TestCheckRetryRecovers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out := newTestProber(2 * time.Second).Check(context.Background(), srv.URL)

	require.Equal(t, int32(2), hits.Load())
	assert.Equal(t, StatusUp, out.Status)
	assert.Equal(t, int32(200), out.Code)
}

func TestCheckUnreachableEndpoint(t *testing.T) {
	// grab a port nothing listens on
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := newTestProber(2 * time.Second).Check(context.Background(), url)

	assert.Equal(t, StatusDown, out.Status)
	assert.Equal(t, int32(0), out.Code)
	assert.Equal(t, FailureConnectionRefused, out.Kind)
	assert.Contains(t, out.Detail, "no response")
}

func TestCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	out := newTestProber(50 * time.Millisecond).Check(context.Background(), srv.URL)

	assert.Equal(t, StatusDown, out.Status)
	assert.Equal(t, int32(0), out.Code)
	assert.Equal(t, FailureTimeout, out.Kind)
}

func TestCheckDNSFailure(t *testing.T) {
	out := newTestProber(2 * time.Second).Check(context.Background(), "http://definitely-not-a-real-host.invalid/")

	assert.Equal(t, StatusDown, out.Status)
	assert.Equal(t, FailureDNS, out.Kind)
}
