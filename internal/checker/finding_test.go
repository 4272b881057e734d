package checker

import "testing"

func TestPassedAndInfoFindingsPinSeverityToInfo(t *testing.T) {
	p := passedFinding("ssl-valid", "Certificate valid", "SSL/TLS", "ok")
	if p.Severity != SeverityInfo {
		t.Errorf("passed finding severity = %s, want %s", p.Severity, SeverityInfo)
	}
	if p.Status != StatusPassed {
		t.Errorf("passed finding status = %s, want %s", p.Status, StatusPassed)
	}

	i := infoFinding("dns-cname", "CNAME record", "DNS", "alias")
	if i.Severity != SeverityInfo {
		t.Errorf("info finding severity = %s, want %s", i.Severity, SeverityInfo)
	}
	if i.Status != StatusInfo {
		t.Errorf("info finding status = %s, want %s", i.Status, StatusInfo)
	}
}

func TestErrorFindingSeverityIsMedium(t *testing.T) {
	f := errorFinding("ssl-error", "SSL/TLS check failed", "SSL/TLS", "handshake refused")
	if f.Status != StatusError {
		t.Errorf("status = %s, want %s", f.Status, StatusError)
	}
	if f.Severity != SeverityMedium {
		t.Errorf("severity = %s, want %s", f.Severity, SeverityMedium)
	}
}

func TestNegative(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPassed, false},
		{StatusInfo, false},
		{StatusWarning, false},
		{StatusFailed, true},
		{StatusError, true},
	}

	for _, tt := range tests {
		f := Finding{Status: tt.status}
		if got := f.negative(); got != tt.want {
			t.Errorf("negative() for status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestWithDetailsAndRecommendationDoNotMutateOriginal(t *testing.T) {
	base := failedFinding("header-csp", "CSP missing", "Headers", SeverityHigh, "not set")
	derived := base.withDetails("value").withRecommendation("add it")

	if base.Details != "" || base.Recommendation != "" {
		t.Errorf("base finding mutated: details=%q recommendation=%q", base.Details, base.Recommendation)
	}
	if derived.Details != "value" {
		t.Errorf("details = %q, want %q", derived.Details, "value")
	}
	if derived.Recommendation != "add it" {
		t.Errorf("recommendation = %q, want %q", derived.Recommendation, "add it")
	}
}

func TestSummarizeCountsErrorAsFailed(t *testing.T) {
	findings := []Finding{
		passedFinding("a", "a", "c", "ok"),
		infoFinding("b", "b", "c", "fyi"),
		warningFinding("c", "c", "c", SeverityLow, "warn"),
		failedFinding("d", "d", "c", SeverityCritical, "bad"),
		failedFinding("e", "e", "c", SeverityHigh, "bad"),
		errorFinding("f", "f", "c", "broken"),
	}

	s := summarize(findings)

	if s.Total != 6 {
		t.Errorf("total = %d, want 6", s.Total)
	}
	if s.Passed != 2 {
		t.Errorf("passed = %d, want 2 (passed + info)", s.Passed)
	}
	if s.Warning != 1 {
		t.Errorf("warning = %d, want 1", s.Warning)
	}
	if s.Failed != 3 {
		t.Errorf("failed = %d, want 3 (failed + error)", s.Failed)
	}
	if s.Critical != 1 || s.High != 1 || s.Low != 1 {
		t.Errorf("severity counts = crit %d high %d low %d, want 1/1/1", s.Critical, s.High, s.Low)
	}
	// The error finding carries medium severity and must be tallied.
	if s.Medium != 1 {
		t.Errorf("medium = %d, want 1", s.Medium)
	}
}

func TestSummarizeSkipsInfoSeverity(t *testing.T) {
	findings := []Finding{
		passedFinding("a", "a", "c", "ok"),
		passedFinding("b", "b", "c", "ok"),
	}
	s := summarize(findings)
	if s.Critical+s.High+s.Medium+s.Low != 0 {
		t.Errorf("passing findings inflated severity counts: %+v", s)
	}
}
