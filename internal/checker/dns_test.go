package checker

import (
	"context"
	"errors"
	"net"
	"testing"
)

// fakeResolver serves DNS answers from fixed maps. A missing key behaves
// like NXDOMAIN.
type fakeResolver struct {
	hosts  map[string][]string
	cnames map[string]string
	mx     map[string][]*net.MX
	ns     map[string][]*net.NS
	txt    map[string][]string
}

var errNXDomain = errors.New("no such host")

func (f *fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ips, ok := f.hosts[host]; ok {
		return ips, nil
	}
	return nil, errNXDomain
}

func (f *fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	return nil, errNXDomain
}

func (f *fakeResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	if cname, ok := f.cnames[host]; ok {
		return cname, nil
	}
	return "", errNXDomain
}

func (f *fakeResolver) LookupMX(ctx context.Context, host string) ([]*net.MX, error) {
	if records, ok := f.mx[host]; ok {
		return records, nil
	}
	return nil, errNXDomain
}

func (f *fakeResolver) LookupNS(ctx context.Context, host string) ([]*net.NS, error) {
	if records, ok := f.ns[host]; ok {
		return records, nil
	}
	return nil, errNXDomain
}

func (f *fakeResolver) LookupTXT(ctx context.Context, host string) ([]string, error) {
	if records, ok := f.txt[host]; ok {
		return records, nil
	}
	return nil, errNXDomain
}

func TestDNSCheckerFullPosture(t *testing.T) {
	resolver := &fakeResolver{
		hosts:  map[string][]string{"example.com": {"93.184.216.34"}},
		cnames: map[string]string{"example.com": "example.com."},
		mx:     map[string][]*net.MX{"example.com": {{Host: "mail.example.com.", Pref: 10}}},
		ns:     map[string][]*net.NS{"example.com": {{Host: "ns1.example.com."}}},
		txt: map[string][]string{
			"example.com":        {"v=spf1 include:_spf.example.com ~all"},
			"_dmarc.example.com": {"v=DMARC1; p=reject; rua=mailto:dmarc@example.com"},
		},
	}

	target, err := ParseTarget("example.com")
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	chk := &DNSChecker{Resolver: resolver}
	findings := chk.Check(context.Background(), target)

	resolve := findByID(t, findings, "dns-resolve")
	if resolve.Status != StatusPassed {
		t.Errorf("dns-resolve = %s, want passed", resolve.Status)
	}

	spf := findByID(t, findings, "email-spf")
	if spf.Status != StatusPassed {
		t.Errorf("email-spf = %s, want passed (%s)", spf.Status, spf.Message)
	}

	dmarc := findByID(t, findings, "email-dmarc")
	if dmarc.Status != StatusPassed {
		t.Errorf("email-dmarc = %s, want passed (%s)", dmarc.Status, dmarc.Message)
	}

	if !hasID(findings, "dns-mx") || !hasID(findings, "dns-ns") {
		t.Error("MX/NS informational findings missing")
	}
	// CNAME pointing back at the host itself must not be reported.
	if hasID(findings, "dns-cname") {
		t.Error("self-referential CNAME reported as an alias")
	}
}

func TestDNSCheckerResolutionFailureDegrades(t *testing.T) {
	target, err := ParseTarget("nonexistent.invalid")
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	chk := &DNSChecker{Resolver: &fakeResolver{}}
	findings := chk.Check(context.Background(), target)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1 error finding", len(findings))
	}
	if findings[0].ID != "dns-error" || findings[0].Status != StatusError {
		t.Errorf("got %s/%s, want dns-error/error", findings[0].ID, findings[0].Status)
	}
}

func TestSPFFinding(t *testing.T) {
	tests := []struct {
		name     string
		records  []string
		status   Status
		severity Severity
	}{
		{name: "present and restrictive", records: []string{"v=spf1 include:_spf.example.com -all"}, status: StatusPassed, severity: SeverityInfo},
		{name: "permissive +all", records: []string{"v=spf1 +all"}, status: StatusWarning, severity: SeverityMedium},
		{name: "missing", records: nil, status: StatusFailed, severity: SeverityMedium},
		{name: "unrelated txt only", records: []string{"google-site-verification=abc"}, status: StatusFailed, severity: SeverityMedium},
		{name: "case insensitive", records: []string{"V=SPF1 -all"}, status: StatusPassed, severity: SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := spfFinding(tt.records)
			if f.Status != tt.status || f.Severity != tt.severity {
				t.Errorf("spfFinding = %s/%s, want %s/%s", f.Status, f.Severity, tt.status, tt.severity)
			}
		})
	}
}

func TestDMARCFinding(t *testing.T) {
	tests := []struct {
		name     string
		records  []string
		status   Status
		severity Severity
	}{
		{name: "enforcing reject", records: []string{"v=DMARC1; p=reject"}, status: StatusPassed, severity: SeverityInfo},
		{name: "enforcing quarantine", records: []string{"v=DMARC1; p=quarantine"}, status: StatusPassed, severity: SeverityInfo},
		{name: "monitoring only", records: []string{"v=DMARC1; p=none; rua=mailto:x@example.com"}, status: StatusWarning, severity: SeverityLow},
		{name: "missing", records: nil, status: StatusFailed, severity: SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dmarcFinding(tt.records)
			if f.Status != tt.status || f.Severity != tt.severity {
				t.Errorf("dmarcFinding = %s/%s, want %s/%s", f.Status, f.Severity, tt.status, tt.severity)
			}
		})
	}
}

func TestDetectCDN(t *testing.T) {
	tests := []struct {
		name        string
		cname       string
		nameservers []string
		want        string
	}{
		{name: "cloudflare nameservers", nameservers: []string{"tina.ns.cloudflare.com"}, want: "Cloudflare"},
		{name: "cloudflare cname", cname: "example.com.cdn.cloudflare.net", want: "Cloudflare"},
		{name: "cloudfront cname", cname: "d111111abcdef8.cloudfront.net", want: "Amazon CloudFront"},
		{name: "akamai edgekey", cname: "example.com.edgekey.net", want: "Akamai"},
		{name: "fastly with trailing dot", cname: "example.global.fastly.net.", want: "Fastly"},
		{name: "no cdn", cname: "origin.example.com", nameservers: []string{"ns1.example.com"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectCDN(tt.cname, tt.nameservers); got != tt.want {
				t.Errorf("detectCDN = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDMARCPolicy(t *testing.T) {
	tests := []struct {
		record string
		want   string
	}{
		{"v=dmarc1; p=none; rua=mailto:x@example.com", "none"},
		{"v=dmarc1; p=reject", "reject"},
		{"v=dmarc1;p=quarantine", "quarantine"},
		{"v=dmarc1", ""},
	}
	for _, tt := range tests {
		if got := dmarcPolicy(tt.record); got != tt.want {
			t.Errorf("dmarcPolicy(%q) = %q, want %q", tt.record, got, tt.want)
		}
	}
}
