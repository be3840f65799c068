// Package probe issues the outbound HTTP checks. A probe never returns
// an error: every transport failure is folded into a DOWN outcome with
// a classified failure kind.
package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"
)

type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureTimeout           FailureKind = "timeout"
	FailureConnectionRefused FailureKind = "connection_refused"
	FailureDNS               FailureKind = "dns_failure"
	FailureNonSuccessStatus  FailureKind = "non_success_status"
	FailureOther             FailureKind = "other"
)

// Outcome is the finalized classification of one monitor check.
// Code is 0 when no HTTP response was received at all.
type Outcome struct {
	Status    Status
	Code      int32
	LatencyMs int64
	Kind      FailureKind
	Detail    string
}

type Prober struct {
	client  *http.Client
	timeout time.Duration
}

func NewProber(client *http.Client, timeout time.Duration) *Prober {
	return &Prober{
		client:  client,
		timeout: timeout,
	}
}

// Check performs a GET against url. A DOWN result from the first attempt
// is retried once with a fresh deadline before being finalized; the
// retry's latency is what gets reported.
func (p *Prober) Check(ctx context.Context, url string) Outcome {
	outcome := p.attempt(ctx, url)
	if outcome.Status == StatusDown {
		outcome = p.attempt(ctx, url)
	}
	return outcome
}

func (p *Prober) attempt(ctx context.Context, url string) Outcome {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		// URL was validated at registration, this is our failure
		return Outcome{
			Status:    StatusDown,
			Code:      0,
			LatencyMs: time.Since(start).Milliseconds(),
			Kind:      FailureOther,
			Detail:    "invalid request: " + err.Error(),
		}
	}

	resp, err := p.client.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		kind, detail := classifyError(err)
		return Outcome{
			Status:    StatusDown,
			Code:      0,
			LatencyMs: latency,
			Kind:      kind,
			Detail:    detail,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Outcome{
			Status:    StatusUp,
			Code:      int32(resp.StatusCode),
			LatencyMs: latency,
		}
	}

	return Outcome{
		Status:    StatusDown,
		Code:      int32(resp.StatusCode),
		LatencyMs: latency,
		Kind:      FailureNonSuccessStatus,
		Detail:    "non-2xx/3xx response: " + resp.Status,
	}
}

func classifyError(err error) (FailureKind, string) {

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout, "no response: request timed out"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS, "no response: dns lookup failed for " + dnsErr.Name
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return FailureConnectionRefused, "no response: connection refused"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout, "no response: network timeout"
	}

	return FailureOther, "no response: " + err.Error()
}
