package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categoryHeaders = "Headers"

// headerSpec describes one entry of the fixed response-header checklist.
// The checklist is an ordered slice, not a map, so finding order is stable.
type headerSpec struct {
	id       string
	header   string
	name     string
	severity Severity // severity when missing or misconfigured
	required bool     // missing means failed, not warning (HSTS, CSP)
	weight   int      // contribution to the headers sub-grade
	validate func(value string) (ok bool, issue string)
	advice   string
}

var headerChecklist = []headerSpec{
	{
		id: "header-csp", header: "Content-Security-Policy", name: "Content-Security-Policy",
		severity: SeverityHigh, required: true, weight: 20,
		validate: validateCSP,
		advice:   "Define a Content-Security-Policy restricting script and resource origins.",
	},
	{
		id: "header-hsts", header: "Strict-Transport-Security", name: "Strict-Transport-Security",
		severity: SeverityHigh, required: true, weight: 20,
		validate: validateHSTS,
		advice:   "Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains'.",
	},
	{
		id: "header-xfo", header: "X-Frame-Options", name: "X-Frame-Options",
		severity: SeverityMedium, weight: 15,
		validate: func(v string) (bool, string) {
			upper := strings.ToUpper(v)
			if strings.Contains(upper, "DENY") || strings.Contains(upper, "SAMEORIGIN") {
				return true, ""
			}
			return false, "value should be DENY or SAMEORIGIN"
		},
		advice: "Add 'X-Frame-Options: DENY' or 'SAMEORIGIN' to prevent clickjacking.",
	},
	{
		id: "header-xcto", header: "X-Content-Type-Options", name: "X-Content-Type-Options",
		severity: SeverityMedium, weight: 15,
		validate: func(v string) (bool, string) {
			if strings.EqualFold(strings.TrimSpace(v), "nosniff") {
				return true, ""
			}
			return false, "value should be nosniff"
		},
		advice: "Add 'X-Content-Type-Options: nosniff'.",
	},
	{
		id: "header-referrer", header: "Referrer-Policy", name: "Referrer-Policy",
		severity: SeverityLow, weight: 10,
		validate: func(v string) (bool, string) {
			lower := strings.ToLower(v)
			for _, good := range []string{"no-referrer", "strict-origin", "strict-origin-when-cross-origin", "same-origin"} {
				if strings.Contains(lower, good) {
					return true, ""
				}
			}
			return false, "policy may leak referrer information"
		},
		advice: "Add 'Referrer-Policy: strict-origin-when-cross-origin' or 'no-referrer'.",
	},
	{
		id: "header-xss", header: "X-XSS-Protection", name: "X-XSS-Protection",
		severity: SeverityLow, weight: 5,
		validate: func(v string) (bool, string) {
			if strings.TrimSpace(v) == "0" {
				return true, ""
			}
			return false, "legacy XSS auditor is deprecated; set to 0 or remove"
		},
		advice: "Set 'X-XSS-Protection: 0'; rely on CSP instead of the legacy auditor.",
	},
	{
		id: "header-pcdp", header: "X-Permitted-Cross-Domain-Policies", name: "X-Permitted-Cross-Domain-Policies",
		severity: SeverityLow, weight: 5,
		validate: func(v string) (bool, string) {
			lower := strings.ToLower(strings.TrimSpace(v))
			if lower == "none" || lower == "master-only" {
				return true, ""
			}
			return false, "value should be none or master-only"
		},
		advice: "Add 'X-Permitted-Cross-Domain-Policies: none'.",
	},
	{
		id: "header-cache", header: "Cache-Control", name: "Cache-Control",
		severity: SeverityLow, weight: 10,
		validate: func(v string) (bool, string) {
			lower := strings.ToLower(v)
			for _, directive := range []string{"no-store", "no-cache", "max-age", "private"} {
				if strings.Contains(lower, directive) {
					return true, ""
				}
			}
			return false, "no explicit caching directive present"
		},
		advice: "Set an explicit Cache-Control policy; use 'no-store' for sensitive responses.",
	},
}

func validateHSTS(v string) (bool, string) {
	lower := strings.ToLower(v)
	if !strings.Contains(lower, "max-age=") {
		return false, "missing max-age directive"
	}
	if strings.Contains(lower, "max-age=0") {
		return false, "max-age=0 disables HSTS"
	}
	return true, ""
}

func validateCSP(v string) (bool, string) {
	lower := strings.ToLower(v)
	var issues []string
	if strings.Contains(lower, "'unsafe-inline'") {
		issues = append(issues, "'unsafe-inline' weakens the policy")
	}
	if strings.Contains(lower, "'unsafe-eval'") {
		issues = append(issues, "'unsafe-eval' allows eval()")
	}
	if !strings.Contains(lower, "default-src") {
		issues = append(issues, "missing default-src fallback")
	}
	if len(issues) > 0 {
		return false, strings.Join(issues, "; ")
	}
	return true, ""
}

// disclosureHeaders expose implementation details and should be removed.
var disclosureHeaders = []string{"Server", "X-Powered-By", "X-AspNet-Version", "X-AspNetMvc-Version"}

// HeadersChecker evaluates the response-header checklist plus CORS policy
// from a single GET request.
type HeadersChecker struct {
	Timeout time.Duration

	// Client overrides the probe client, used by tests against local
	// TLS servers.
	Client *http.Client
}

func (h *HeadersChecker) Name() string { return "headers" }

func (h *HeadersChecker) Check(ctx context.Context, target *Target) []Finding {
	client := h.Client
	if client == nil {
		client = newProbeClient(h.probeTimeout(), false)
	}

	req, err := probeRequest(ctx, target, target.URL)
	if err != nil {
		return []Finding{stageErrorFinding(h.Name(), err.Error())}
	}

	resp, err := client.Do(req)
	if err != nil {
		perr := classifyProbeErr("fetch", err)
		return []Finding{stageErrorFinding(h.Name(), perr.Error())}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.BodySnippetLimitBytes))

	return AnalyzeHeaders(resp.Header)
}

// AnalyzeHeaders runs the checklist against a header set. Split out so the
// same evaluation serves both the live probe and tests with fixture headers.
func AnalyzeHeaders(headers http.Header) []Finding {
	findings := make([]Finding, 0, len(headerChecklist)+3)
	gradeScore := 0

	for _, spec := range headerChecklist {
		value := headers.Get(spec.header)

		switch {
		case value == "" && spec.required:
			findings = append(findings, failedFinding(spec.id, spec.name+" missing", categoryHeaders, spec.severity,
				fmt.Sprintf("%s header is not set.", spec.header)).withRecommendation(spec.advice))
		case value == "":
			findings = append(findings, warningFinding(spec.id, spec.name+" missing", categoryHeaders, spec.severity,
				fmt.Sprintf("%s header is not set.", spec.header)).withRecommendation(spec.advice))
		default:
			ok, issue := spec.validate(value)
			if ok {
				gradeScore += spec.weight
				findings = append(findings, passedFinding(spec.id, spec.name, categoryHeaders,
					fmt.Sprintf("%s is set.", spec.header)).withDetails(value))
			} else {
				// Present but misconfigured is a warning, never a failure.
				gradeScore += spec.weight / 2
				findings = append(findings, warningFinding(spec.id, spec.name+" misconfigured", categoryHeaders, spec.severity,
					fmt.Sprintf("%s: %s.", spec.header, issue)).withDetails(value).withRecommendation(spec.advice))
			}
		}
	}

	findings = append(findings, corsFindings(headers)...)
	findings = append(findings, disclosureFindings(headers)...)
	findings = append(findings, headersGradeFinding(gradeScore))
	return findings
}

// corsFindings inspects CORS response headers. A wildcard origin alone is a
// warning; combined with allowed credentials it becomes the single
// highest-severity CORS misconfiguration we recognize.
func corsFindings(headers http.Header) []Finding {
	origin := strings.TrimSpace(headers.Get("Access-Control-Allow-Origin"))
	if origin != "*" {
		return nil
	}

	credentials := strings.EqualFold(strings.TrimSpace(headers.Get("Access-Control-Allow-Credentials")), "true")
	if !credentials {
		return []Finding{
			warningFinding("cors-wildcard", "CORS wildcard origin", categoryHeaders, SeverityMedium,
				"Access-Control-Allow-Origin is set to *; any site can read responses."),
		}
	}

	return []Finding{
		failedFinding("cors-wildcard", "CORS wildcard origin", categoryHeaders, SeverityHigh,
			"Access-Control-Allow-Origin is set to * alongside credential support."),
		failedFinding("cors-credentials-wildcard", "Credentialed wildcard CORS", categoryHeaders, SeverityCritical,
			"Access-Control-Allow-Credentials: true combined with a wildcard origin lets any site act as authenticated users."),
	}
}

func disclosureFindings(headers http.Header) []Finding {
	var exposed []string
	for _, name := range disclosureHeaders {
		if value := headers.Get(name); value != "" {
			exposed = append(exposed, fmt.Sprintf("%s: %s", name, value))
		}
	}
	if len(exposed) == 0 {
		return nil
	}
	return []Finding{
		warningFinding("headers-disclosure", "Server information disclosure", categoryHeaders, SeverityLow,
			fmt.Sprintf("%d header(s) expose server implementation details.", len(exposed))).
			withDetails(strings.Join(exposed, "; ")).
			withRecommendation("Remove or obfuscate version-revealing headers."),
	}
}

// headersGradeFinding turns the weighted checklist score (max 100) into the
// stage sub-grade finding that feeds the scorer bonus.
func headersGradeFinding(score int) Finding {
	grade := GradeFor(score)
	message := fmt.Sprintf("Security header grade: %s", grade)

	switch grade {
	case GradeAPlus, GradeA:
		return passedFinding("headers-grade", "Header grade", categoryHeaders, message)
	case GradeB:
		return warningFinding("headers-grade", "Header grade", categoryHeaders, SeverityLow, message)
	case GradeC:
		return failedFinding("headers-grade", "Header grade", categoryHeaders, SeverityMedium, message)
	case GradeD:
		return failedFinding("headers-grade", "Header grade", categoryHeaders, SeverityHigh, message)
	default:
		return failedFinding("headers-grade", "Header grade", categoryHeaders, SeverityCritical, message)
	}
}

func (h *HeadersChecker) probeTimeout() time.Duration {
	if h.Timeout > 0 {
		return h.Timeout
	}
	return constants.DefaultProbeTimeout
}
