package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	sharederrors "github.com/gradescan/gradescan/internal/shared/errors"
)

// ProbeKind classifies why a single network probe failed.
type ProbeKind string

const (
	ProbeTimeout ProbeKind = "timeout"
	ProbeNetwork ProbeKind = "network"
	ProbeParse   ProbeKind = "parse"
)

// ProbeError is the typed failure of one probe. Probe errors never cross a
// stage boundary; each stage converts them to an error-status finding.
type ProbeError struct {
	Kind ProbeKind
	Op   string // "fetch", "resolve", "handshake", "dial"
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	switch e.Kind {
	case ProbeTimeout:
		return sharederrors.ErrProbeTimeout
	case ProbeParse:
		return sharederrors.ErrProbeParse
	default:
		return sharederrors.ErrProbeNetwork
	}
}

// classifyProbeErr wraps a raw network error with its probe kind.
func classifyProbeErr(op string, err error) *ProbeError {
	kind := ProbeNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ProbeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ProbeTimeout
	}
	return &ProbeError{Kind: kind, Op: op, Err: err}
}

// newProbeClient builds the HTTP client every stage probe uses: bounded by
// timeout, verifying TLS, and never keeping connections across scans.
func newProbeClient(timeout time.Duration, insecure bool) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: insecure},
			DisableKeepAlives: true,
		},
	}
}

// probeRequest builds a GET (or the target's override method) request with
// the target's custom headers and body applied.
func probeRequest(ctx context.Context, t *Target, rawURL string) (*http.Request, error) {
	method := t.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if t.Body != "" {
		body = strings.NewReader(t.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &ProbeError{Kind: ProbeParse, Op: "fetch", Err: err}
	}
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
