package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gradescan/gradescan/internal/cache"
	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categorySurface = "Attack Surface"

// Subdomain is one discovered host with its resolved addresses.
type Subdomain struct {
	Name string   `json:"name"`
	IPs  []string `json:"ips"`
}

// OpenPort records one reachable port and the probe model that found it, so
// consumers can judge the accuracy of the openness claim.
type OpenPort struct {
	Host    string `json:"host"`
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	Service string `json:"service"`
	Probe   string `json:"probe"` // "http-head" or "tcp-dial"
}

// Surface is the combined discovery output the risk analyzer reads after
// the concurrency barrier.
type Surface struct {
	Subdomains   []Subdomain `json:"subdomains"`
	OpenPorts    []OpenPort  `json:"open_ports"`
	Technologies []string    `json:"technologies"`
}

var portServices = map[int]string{
	22:    "ssh",
	80:    "http",
	443:   "https",
	1433:  "mssql",
	3306:  "mysql",
	3389:  "rdp",
	5432:  "postgresql",
	6379:  "redis",
	8080:  "http-alt",
	8443:  "https-alt",
	27017: "mongodb",
}

// SurfaceChecker enumerates subdomains from a fixed wordlist, probes a
// small fixed port set on at most two resolved IPs, and fingerprints the
// root host's technology stack. Resolution failures are silently excluded:
// absence of a record is the expected common case.
type SurfaceChecker struct {
	DNSTimeout   time.Duration
	PortTimeout  time.Duration
	ProbeTimeout time.Duration
	Concurrency  int
	RateLimit    int
	CheckPorts   bool

	Resolver dnsResolver
	Cache    *cache.Cache
	Wordlist []string

	// Client overrides the HTTP probe client in tests.
	Client *http.Client
	// DialFunc overrides the TCP reachability dialer in tests.
	DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

	mu      sync.Mutex
	surface Surface
}

func (s *SurfaceChecker) Name() string { return "surface" }

// Surface returns the discovery snapshot. Valid only after Check has
// returned; the risk analyzer reads it behind the pipeline barrier.
func (s *SurfaceChecker) Surface() *Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.surface
	return &snapshot
}

func (s *SurfaceChecker) Check(ctx context.Context, target *Target) []Finding {
	resolver := s.Resolver
	if resolver == nil {
		resolver = &net.Resolver{PreferGo: true}
	}

	subdomains := s.enumerate(ctx, resolver, target.Host)

	var openPorts []OpenPort
	if s.CheckPorts {
		openPorts = s.probePorts(ctx, target.Host, subdomains)
	}

	technologies := s.fingerprint(ctx, target)

	s.mu.Lock()
	s.surface = Surface{
		Subdomains:   subdomains,
		OpenPorts:    openPorts,
		Technologies: technologies,
	}
	s.mu.Unlock()

	findings := make([]Finding, 0, 3)

	names := make([]string, 0, len(subdomains))
	for _, sd := range subdomains {
		names = append(names, sd.Name)
	}
	findings = append(findings, infoFinding("surface-subdomains", "Subdomains discovered", categorySurface,
		fmt.Sprintf("%d subdomain(s) resolved from the candidate list.", len(subdomains))).
		withDetails(strings.Join(names, ", ")))

	if s.CheckPorts {
		findings = append(findings, portSummaryFinding(openPorts))
	}

	if len(technologies) > 0 {
		findings = append(findings, infoFinding("surface-tech", "Technologies fingerprinted", categorySurface,
			fmt.Sprintf("%d technology signature(s) matched.", len(technologies))).
			withDetails(strings.Join(technologies, ", ")))
	}

	return findings
}

func portSummaryFinding(openPorts []OpenPort) Finding {
	if len(openPorts) == 0 {
		return infoFinding("surface-ports", "Port exposure", categorySurface,
			"No reachable ports detected by the probing model.").
			withDetails("Web ports probed via HTTP HEAD; service ports via best-effort TCP reachability. Indeterminate results are reported closed.")
	}

	descriptions := make([]string, 0, len(openPorts))
	for _, p := range openPorts {
		descriptions = append(descriptions, fmt.Sprintf("%s:%d (%s, %s)", p.IP, p.Port, p.Service, p.Probe))
	}
	return infoFinding("surface-ports", "Port exposure", categorySurface,
		fmt.Sprintf("%d reachable port(s) across probed IPs.", len(openPorts))).
		withDetails(strings.Join(descriptions, "; ") +
			". Openness is approximated by HTTP HEAD for web ports and TCP reachability otherwise; indeterminate results are reported closed.")
}

// enumerate resolves the candidate wordlist with bounded parallelism and a
// shared rate limit. The fixed list plus the limits bound worst-case scan
// latency.
func (s *SurfaceChecker) enumerate(ctx context.Context, resolver dnsResolver, domain string) []Subdomain {
	wordlist := s.Wordlist
	if len(wordlist) == 0 {
		wordlist = constants.SubdomainWordlist
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultDiscoveryConcurrency
	}
	rps := s.RateLimit
	if rps <= 0 {
		rps = constants.DefaultDiscoveryRateLimit
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)

	var mu sync.Mutex
	var resolved []Subdomain

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, prefix := range wordlist {
		fqdn := prefix + "." + domain
		g.Go(func() error {
			if err := limiter.Wait(groupCtx); err != nil {
				return nil
			}
			ips, err := s.resolveHost(groupCtx, resolver, fqdn)
			if err != nil || len(ips) == 0 {
				// Expected for most candidates; not an error condition.
				return nil
			}
			mu.Lock()
			resolved = append(resolved, Subdomain{Name: fqdn, IPs: ips})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Completion order is nondeterministic; sort for stable output.
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].Name < resolved[j].Name })
	return resolved
}

// resolveHost memoizes lookups through the caller-owned cache handle so
// repeated scans within the TTL reuse answers.
func (s *SurfaceChecker) resolveHost(ctx context.Context, resolver dnsResolver, fqdn string) ([]string, error) {
	cacheKey := "dns:" + fqdn
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(cacheKey); ok {
			return cached.([]string), nil
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.dnsTimeout())
	defer cancel()

	ips, err := resolver.LookupHost(lookupCtx, fqdn)
	if err != nil {
		return nil, err
	}
	sort.Strings(ips)
	if s.Cache != nil {
		s.Cache.Set(cacheKey, ips)
	}
	return ips, nil
}

// probePorts checks the fixed port sets against at most two IPs: the root
// domain's first address, then discovered subdomain addresses in order.
func (s *SurfaceChecker) probePorts(ctx context.Context, domain string, subdomains []Subdomain) []OpenPort {
	type candidate struct {
		host string
		ip   string
	}

	var candidates []candidate
	seen := make(map[string]bool)
	add := func(host string, ips []string) {
		for _, ip := range ips {
			if len(candidates) >= constants.MaxPortProbeIPs {
				return
			}
			if seen[ip] {
				continue
			}
			seen[ip] = true
			candidates = append(candidates, candidate{host: host, ip: ip})
		}
	}

	resolver := s.Resolver
	if resolver == nil {
		resolver = &net.Resolver{PreferGo: true}
	}
	if rootIPs, err := s.resolveHost(ctx, resolver, domain); err == nil {
		add(domain, rootIPs)
	}
	for _, sd := range subdomains {
		if len(candidates) >= constants.MaxPortProbeIPs {
			break
		}
		add(sd.Name, sd.IPs)
	}

	var open []OpenPort
	for _, c := range candidates {
		for _, port := range constants.WebPorts {
			if s.probeWebPort(ctx, c.ip, port) {
				open = append(open, OpenPort{Host: c.host, IP: c.ip, Port: port, Service: portServices[port], Probe: "http-head"})
			}
		}
		for _, port := range constants.ServicePorts {
			if s.probeServicePort(ctx, c.ip, port) {
				open = append(open, OpenPort{Host: c.host, IP: c.ip, Port: port, Service: portServices[port], Probe: "tcp-dial"})
			}
		}
	}
	return open
}

// probeWebPort reports whether the port completes an HTTP HEAD exchange.
// This under-reports ports serving non-HTTP protocols; the summary finding
// flags the approximation.
func (s *SurfaceChecker) probeWebPort(ctx context.Context, ip string, port int) bool {
	client := s.Client
	if client == nil {
		client = &http.Client{
			Timeout: s.portTimeout(),
			Transport: &http.Transport{
				TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
				DisableKeepAlives: true,
			},
		}
	}

	scheme := "http"
	if port == 443 || port == 8443 {
		scheme = "https"
	}
	probeURL := fmt.Sprintf("%s://%s:%d/", scheme, ip, port)

	probeCtx, cancel := context.WithTimeout(ctx, s.portTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}

// probeServicePort is a best-effort TCP reachability check. Any failure,
// including a timeout, reports closed: the bias is toward under-reporting
// exposure rather than claiming openness we did not observe.
func (s *SurfaceChecker) probeServicePort(ctx context.Context, ip string, port int) bool {
	dial := s.DialFunc
	if dial == nil {
		dialer := &net.Dialer{Timeout: s.portTimeout()}
		dial = dialer.DialContext
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.portTimeout())
	defer cancel()

	conn, err := dial(probeCtx, "tcp", net.JoinHostPort(ip, fmt.Sprintf("%d", port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// fingerprint fetches the root URL once and matches the signature table.
// Failure here is silent: fingerprinting is opportunistic.
func (s *SurfaceChecker) fingerprint(ctx context.Context, target *Target) []string {
	client := s.Client
	if client == nil {
		client = newProbeClient(s.probeTimeout(), true)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.BaseURL(), nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.BodySnippetLimitBytes))
	return FingerprintTechnologies(resp.Header, string(body))
}

func (s *SurfaceChecker) dnsTimeout() time.Duration {
	if s.DNSTimeout > 0 {
		return s.DNSTimeout
	}
	return constants.DefaultDNSTimeout
}

func (s *SurfaceChecker) portTimeout() time.Duration {
	if s.PortTimeout > 0 {
		return s.PortTimeout
	}
	return constants.DefaultPortTimeout
}

func (s *SurfaceChecker) probeTimeout() time.Duration {
	if s.ProbeTimeout > 0 {
		return s.ProbeTimeout
	}
	return constants.DefaultProbeTimeout
}
