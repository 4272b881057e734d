package checker

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categoryDNS = "DNS"

// dnsResolver is the slice of net.Resolver the DNS stage needs; tests
// substitute a fixture implementation.
type dnsResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupMX(ctx context.Context, host string) ([]*net.MX, error)
	LookupNS(ctx context.Context, host string) ([]*net.NS, error)
	LookupTXT(ctx context.Context, host string) ([]string, error)
}

// DNSChecker resolves the target's core record types and derives email
// security posture (SPF/DMARC) from TXT records. Missing email hygiene is
// capped at medium severity: it signals spoofability, not direct
// exploitability.
type DNSChecker struct {
	Timeout  time.Duration
	Resolver dnsResolver
}

func (d *DNSChecker) Name() string { return "dns" }

func (d *DNSChecker) Check(ctx context.Context, target *Target) []Finding {
	resolver := d.Resolver
	if resolver == nil {
		resolver = &net.Resolver{PreferGo: true}
	}
	host := target.Host

	findings := make([]Finding, 0, 8)

	aRecords, err := d.lookupHost(ctx, resolver, host)
	if err != nil {
		perr := classifyProbeErr("resolve", err)
		return []Finding{stageErrorFinding(d.Name(), perr.Error())}
	}

	aaaa, _ := d.lookupIPv6(ctx, resolver, host)
	findings = append(findings, passedFinding("dns-resolve", "DNS resolution", categoryDNS,
		fmt.Sprintf("%d A record(s), %d AAAA record(s).", len(aRecords), len(aaaa))).
		withDetails(strings.Join(aRecords, ", ")))

	cname := d.lookupCNAME(ctx, resolver, host)
	if cname != "" {
		findings = append(findings, infoFinding("dns-cname", "CNAME record", categoryDNS,
			fmt.Sprintf("%s is an alias for %s.", host, cname)))
	}

	mx := d.lookupMX(ctx, resolver, host)
	if len(mx) > 0 {
		findings = append(findings, infoFinding("dns-mx", "Mail exchangers", categoryDNS,
			fmt.Sprintf("%d MX record(s).", len(mx))).withDetails(strings.Join(mx, ", ")))
	}

	ns := d.lookupNS(ctx, resolver, host)
	if len(ns) > 0 {
		findings = append(findings, infoFinding("dns-ns", "Nameservers", categoryDNS,
			fmt.Sprintf("%d NS record(s).", len(ns))).withDetails(strings.Join(ns, ", ")))
	}

	txt := d.lookupTXT(ctx, resolver, host)
	findings = append(findings, spfFinding(txt))

	dmarcTXT := d.lookupTXT(ctx, resolver, "_dmarc."+host)
	findings = append(findings, dmarcFinding(dmarcTXT))

	if provider := detectCDN(cname, ns); provider != "" {
		findings = append(findings, infoFinding("dns-cdn", "CDN detected", categoryDNS,
			fmt.Sprintf("Traffic appears to be fronted by %s.", provider)))
	}

	return findings
}

// spfFinding derives SPF posture from the domain's TXT records.
func spfFinding(txtRecords []string) Finding {
	for _, record := range txtRecords {
		lower := strings.ToLower(strings.TrimSpace(record))
		if !strings.HasPrefix(lower, "v=spf1") {
			continue
		}
		if strings.Contains(lower, "+all") {
			return warningFinding("email-spf", "Permissive SPF record", categoryDNS, SeverityMedium,
				"SPF record uses +all, which authorizes any sender.").withDetails(record)
		}
		return passedFinding("email-spf", "SPF record", categoryDNS, "SPF record present.").withDetails(record)
	}
	return failedFinding("email-spf", "SPF record missing", categoryDNS, SeverityMedium,
		"No SPF record found; the domain's mail can be spoofed.")
}

// dmarcFinding derives DMARC posture from the _dmarc TXT records.
func dmarcFinding(txtRecords []string) Finding {
	for _, record := range txtRecords {
		lower := strings.ToLower(strings.TrimSpace(record))
		if !strings.HasPrefix(lower, "v=dmarc1") {
			continue
		}
		if policy := dmarcPolicy(lower); policy == "none" {
			return warningFinding("email-dmarc", "DMARC not enforcing", categoryDNS, SeverityLow,
				"DMARC policy is p=none; failures are only reported, not acted on.").withDetails(record)
		}
		return passedFinding("email-dmarc", "DMARC record", categoryDNS, "DMARC record present and enforcing.").withDetails(record)
	}
	return failedFinding("email-dmarc", "DMARC record missing", categoryDNS, SeverityMedium,
		"No DMARC record found; receivers get no policy for failed authentication.")
}

func dmarcPolicy(record string) string {
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "p=") {
			return strings.TrimPrefix(part, "p=")
		}
	}
	return ""
}

// cdnSuffixes maps DNS name suffixes to CDN providers. Detection is
// informational only and never penalizes the score.
var cdnSuffixes = []struct {
	suffix   string
	provider string
}{
	{"cloudflare.net", "Cloudflare"},
	{"cloudflare.com", "Cloudflare"},
	{"cloudfront.net", "Amazon CloudFront"},
	{"akamaiedge.net", "Akamai"},
	{"edgekey.net", "Akamai"},
	{"akam.net", "Akamai"},
	{"fastly.net", "Fastly"},
	{"azureedge.net", "Azure CDN"},
	{"cdn77.org", "CDN77"},
	{"incapdns.net", "Imperva"},
	{"sucuri.net", "Sucuri"},
}

func detectCDN(cname string, nameservers []string) string {
	candidates := append([]string{cname}, nameservers...)
	for _, candidate := range candidates {
		lower := strings.ToLower(strings.TrimSuffix(candidate, "."))
		for _, entry := range cdnSuffixes {
			if strings.HasSuffix(lower, entry.suffix) {
				return entry.provider
			}
		}
	}
	return ""
}

// Each lookup gets its own short timeout so one slow record type cannot
// consume the stage budget.

func (d *DNSChecker) lookupHost(ctx context.Context, r dnsResolver, host string) ([]string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	return r.LookupHost(lookupCtx, host)
}

func (d *DNSChecker) lookupIPv6(ctx context.Context, r dnsResolver, host string) ([]string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	ips, err := r.LookupIP(lookupCtx, "ip6", host)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ips))
	for _, ip := range ips {
		out = append(out, ip.String())
	}
	return out, nil
}

func (d *DNSChecker) lookupCNAME(ctx context.Context, r dnsResolver, host string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	cname, err := r.LookupCNAME(lookupCtx, host)
	if err != nil {
		return ""
	}
	cname = strings.TrimSuffix(cname, ".")
	if cname == host {
		return ""
	}
	return cname
}

func (d *DNSChecker) lookupMX(ctx context.Context, r dnsResolver, host string) []string {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	records, err := r.LookupMX(lookupCtx, host)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(records))
	for _, mx := range records {
		out = append(out, fmt.Sprintf("%s (pref %d)", strings.TrimSuffix(mx.Host, "."), mx.Pref))
	}
	return out
}

func (d *DNSChecker) lookupNS(ctx context.Context, r dnsResolver, host string) []string {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	records, err := r.LookupNS(lookupCtx, host)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(records))
	for _, ns := range records {
		out = append(out, strings.TrimSuffix(ns.Host, "."))
	}
	return out
}

func (d *DNSChecker) lookupTXT(ctx context.Context, r dnsResolver, host string) []string {
	lookupCtx, cancel := context.WithTimeout(ctx, d.lookupTimeout())
	defer cancel()
	records, err := r.LookupTXT(lookupCtx, host)
	if err != nil {
		return nil
	}
	return records
}

func (d *DNSChecker) lookupTimeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return constants.DefaultDNSTimeout
}
