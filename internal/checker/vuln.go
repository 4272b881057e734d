package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categoryVuln = "Vulnerabilities"

// fuzzPayload is the single fixed probe value. One request, one payload:
// this stage is a conservative heuristic, not a fuzzer, so it never
// generates abusive traffic against third-party targets.
const fuzzPayload = `"><gsprobe>'--`

// sqlErrorPatterns are response-body substrings that indicate database
// error disclosure.
var sqlErrorPatterns = []string{
	"SQL syntax",
	"mysql_fetch",
	"mysqli_",
	"ORA-01756",
	"ORA-00933",
	"PostgreSQL query failed",
	"pg_query",
	"sqlite3.OperationalError",
	"SQLite3::query",
	"Unclosed quotation mark",
	"Microsoft OLE DB Provider for SQL Server",
	"ODBC SQL Server Driver",
}

// VulnChecker issues at most one extra request with an injected fuzz
// parameter and inspects the response body for reflected input and SQL
// error disclosure.
type VulnChecker struct {
	Timeout time.Duration
	Client  *http.Client
}

func (v *VulnChecker) Name() string { return "vulnerabilities" }

func (v *VulnChecker) Check(ctx context.Context, target *Target) []Finding {
	client := v.Client
	if client == nil {
		client = newProbeClient(v.probeTimeout(), false)
	}

	probeURL, err := appendFuzzParam(target.URL)
	if err != nil {
		return []Finding{stageErrorFinding(v.Name(), fmt.Sprintf("build probe url: %v", err))}
	}

	req, reqErr := probeRequest(ctx, target, probeURL)
	if reqErr != nil {
		return []Finding{stageErrorFinding(v.Name(), reqErr.Error())}
	}
	req.Method = http.MethodGet // fuzz probe is always a GET

	resp, err := client.Do(req)
	if err != nil {
		// A failed fuzz probe is informational; it must never block the
		// rest of the pipeline or count against the score.
		perr := classifyProbeErr("fetch", err)
		return []Finding{{
			ID:       "vuln-fuzz",
			Name:     "Fuzzing probe failed",
			Category: categoryVuln,
			Status:   StatusError,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Passive fuzz probe could not complete: %v", perr),
		}}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, constants.BodySnippetLimitBytes))
	if readErr != nil {
		return []Finding{{
			ID:       "vuln-fuzz",
			Name:     "Fuzzing probe failed",
			Category: categoryVuln,
			Status:   StatusError,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Passive fuzz probe body unreadable: %v", readErr),
		}}
	}

	return AnalyzeFuzzResponse(string(body))
}

// AnalyzeFuzzResponse inspects a response body for the two passive signals
// this stage recognizes.
func AnalyzeFuzzResponse(body string) []Finding {
	var findings []Finding

	if strings.Contains(body, fuzzPayload) {
		findings = append(findings, failedFinding("vuln-reflected", "Reflected input", categoryVuln, SeverityMedium,
			"Injected query parameter is reflected unencoded in the response; the endpoint may be XSS-prone.").
			withRecommendation("Encode or strip user-supplied input before including it in responses."))
	}

	for _, pattern := range sqlErrorPatterns {
		if strings.Contains(body, pattern) {
			findings = append(findings, failedFinding("vuln-sql-error", "SQL error disclosure", categoryVuln, SeverityHigh,
				fmt.Sprintf("Response body contains a database error signature (%q).", pattern)).
				withRecommendation("Return generic error pages and log database errors server-side only."))
			break
		}
	}

	if len(findings) == 0 {
		findings = append(findings, passedFinding("vuln-fuzz", "Passive fuzz probe", categoryVuln,
			"No reflected input or database error disclosure observed."))
	}
	return findings
}

// appendFuzzParam adds the fixed payload as query parameter q, preserving
// any existing query string.
func appendFuzzParam(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("q", fuzzPayload)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (v *VulnChecker) probeTimeout() time.Duration {
	if v.Timeout > 0 {
		return v.Timeout
	}
	return constants.DefaultProbeTimeout
}
