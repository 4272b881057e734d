package checker

import (
	"fmt"
	"net/url"
	"strings"

	sharederrors "github.com/gradescan/gradescan/internal/shared/errors"
)

// Target is the normalized subject of one scan, immutable for the scan's
// lifetime. Scheme defaults to https; the path is stripped for domain-level
// checks but preserved in URL for HTTP probes.
type Target struct {
	Raw    string // original input
	Scheme string // http or https
	Host   string // hostname without scheme, port, or path
	Port   string // explicit port, if any
	URL    string // full normalized URL for HTTP probes

	// Optional per-probe overrides.
	Method  string
	Headers map[string]string
	Body    string
}

// ParseTarget validates and normalizes a target string. It accepts bare
// domains, host:port, and full URLs. Invalid input fails here, before any
// network I/O is attempted.
func ParseTarget(raw string) (*Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, sharederrors.ErrEmptyTarget
	}

	parsed, err := url.Parse(trimmed)
	// A bare "example.com:8080" parses with scheme "example.com"; anything
	// with a dot in the scheme position is really a host.
	if err != nil || parsed.Scheme == "" || strings.Contains(parsed.Scheme, ".") || parsed.Host == "" && parsed.Opaque != "" {
		parsed, err = url.Parse("https://" + trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", sharederrors.ErrInvalidTarget, raw)
		}
	}

	switch parsed.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", sharederrors.ErrUnsupportedScheme, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" || strings.ContainsAny(host, " \t") {
		return nil, fmt.Errorf("%w: %q", sharederrors.ErrInvalidTarget, raw)
	}

	t := &Target{
		Raw:    raw,
		Scheme: parsed.Scheme,
		Host:   strings.ToLower(host),
		Port:   parsed.Port(),
		URL:    parsed.String(),
	}
	return t, nil
}

// IsHTTPS reports whether the target was requested over HTTPS.
func (t *Target) IsHTTPS() bool {
	return t.Scheme == "https"
}

// HostPort returns host:port, defaulting the port by scheme.
func (t *Target) HostPort() string {
	port := t.Port
	if port == "" {
		if t.Scheme == "http" {
			port = "80"
		} else {
			port = "443"
		}
	}
	return t.Host + ":" + port
}

// BaseURL returns scheme://host[:port] with any path stripped, for
// domain-level probes.
func (t *Target) BaseURL() string {
	base := t.Scheme + "://" + t.Host
	if t.Port != "" {
		base += ":" + t.Port
	}
	return base
}
