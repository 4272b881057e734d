package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultStageTimeout is the hard ceiling for a single analyzer stage.
	DefaultStageTimeout = 15 * time.Second
	// DefaultProbeTimeout bounds one HTTP probe inside a stage.
	DefaultProbeTimeout = 10 * time.Second
	// DefaultDNSTimeout bounds a single DNS lookup.
	DefaultDNSTimeout = 2 * time.Second
	// DefaultPortTimeout bounds a single port reachability probe.
	DefaultPortTimeout = 2 * time.Second
	// DefaultDNSCacheTTL is how long memoized DNS answers stay valid within a scan.
	DefaultDNSCacheTTL = 5 * time.Minute
)

const (
	// DefaultDiscoveryConcurrency bounds parallel subdomain resolutions.
	DefaultDiscoveryConcurrency = 10
	// DefaultDiscoveryRateLimit caps DNS queries per second during enumeration.
	DefaultDiscoveryRateLimit = 20
	// MaxPortProbeIPs caps how many resolved IPs per host get port-probed.
	MaxPortProbeIPs = 2
	// MaxTechnologies caps the deduplicated technology fingerprint list.
	MaxTechnologies = 20
	// LargeSurfaceThreshold is the subdomain count above which the surface
	// itself becomes a low-severity finding.
	LargeSurfaceThreshold = 20
	// BodySnippetLimitBytes caps how much of a response body probes inspect.
	BodySnippetLimitBytes = 64 * 1024
)

// WebPorts are probed over HTTP HEAD. Openness here means the port answered
// an HTTP exchange, not that a raw TCP connect would succeed.
var WebPorts = []int{80, 443, 8080, 8443}

// ServicePorts are non-web ports checked with a best-effort TCP reachability
// probe. An indeterminate result is reported closed.
var ServicePorts = []int{22, 1433, 3306, 3389, 5432, 6379, 27017}

// SubdomainWordlist is the fixed candidate list for attack-surface
// enumeration. Absence of a record for a candidate is the expected common
// case, not an error.
var SubdomainWordlist = []string{
	"www", "mail", "smtp", "webmail", "pop", "imap",
	"admin", "administrator", "portal", "intranet", "internal",
	"dev", "developer", "staging", "stage", "test", "testing", "demo", "beta", "qa",
	"api", "app", "apps", "m", "mobile",
	"vpn", "remote", "gateway",
	"git", "gitlab", "jenkins", "ci", "build",
	"cdn", "static", "assets", "img", "media",
	"blog", "shop", "store", "docs", "help", "support", "status",
	"db", "mysql", "phpmyadmin", "backup", "monitor", "grafana",
}
