package checker

import "sort"

// Effort and impact levels for remediation work.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Recommendation is an actionable remediation item derived from findings.
type Recommendation struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Effort      string   `json:"effort"`
	Impact      string   `json:"impact"`
	Steps       []string `json:"steps,omitempty"`
}

// playbook carries curated remediation metadata for well-known finding IDs.
type playbook struct {
	Title       string
	Description string
	Effort      string
	Impact      string
	Steps       []string
}

var playbooks = map[string]playbook{
	"no-https": {
		Title:       "Serve the site over HTTPS",
		Description: "The target is served over plaintext HTTP, exposing all traffic to interception and tampering.",
		Effort:      LevelMedium,
		Impact:      LevelHigh,
		Steps: []string{
			"Obtain a TLS certificate (Let's Encrypt issues them for free)",
			"Configure the web server to listen on 443 with the certificate",
			"Redirect all HTTP traffic to HTTPS",
			"Add a Strict-Transport-Security header once HTTPS is stable",
		},
	},
	"ssl-valid": {
		Title:       "Replace the invalid TLS certificate",
		Description: "Browsers reject connections with invalid certificates, and users are trained to ignore the resulting warnings at their peril.",
		Effort:      LevelLow,
		Impact:      LevelHigh,
		Steps: []string{
			"Check the certificate chain with your CA or openssl s_client",
			"Reissue the certificate for the exact hostnames served",
			"Install the full chain, including intermediates",
		},
	},
	"ssl-expiry": {
		Title:       "Renew the TLS certificate",
		Description: "An expired or soon-to-expire certificate will take the site offline for every browser user.",
		Effort:      LevelLow,
		Impact:      LevelHigh,
		Steps: []string{
			"Renew the certificate with your CA",
			"Automate renewal (certbot or an ACME client) to avoid repeats",
			"Monitor expiry with an external check",
		},
	},
	"header-csp": {
		Title:       "Add a Content-Security-Policy header",
		Description: "Without CSP, injected scripts run unrestricted. A policy confines what the browser may load and execute.",
		Effort:      LevelHigh,
		Impact:      LevelHigh,
		Steps: []string{
			"Start with Content-Security-Policy-Report-Only to observe violations",
			"Define default-src 'self' and allowlist required origins",
			"Remove 'unsafe-inline' by moving inline scripts to files or nonces",
			"Switch to enforcing mode once reports are clean",
		},
	},
	"header-hsts": {
		Title:       "Add a Strict-Transport-Security header",
		Description: "HSTS stops downgrade attacks by forcing browsers to use HTTPS for every future visit.",
		Effort:      LevelLow,
		Impact:      LevelHigh,
		Steps: []string{
			"Add 'Strict-Transport-Security: max-age=31536000; includeSubDomains'",
			"Verify all subdomains serve valid HTTPS first",
			"Consider the preload directive and browser preload list",
		},
	},
	"email-spf": {
		Title:       "Publish an SPF record",
		Description: "Without SPF, anyone can send mail claiming to be from this domain.",
		Effort:      LevelLow,
		Impact:      LevelMedium,
		Steps: []string{
			"List every service that legitimately sends mail for the domain",
			"Publish a TXT record such as 'v=spf1 include:_spf.example.com ~all'",
			"Tighten ~all to -all once delivery is verified",
		},
	},
	"email-dmarc": {
		Title:       "Publish a DMARC policy",
		Description: "DMARC tells receivers what to do with mail that fails SPF/DKIM and reports abuse attempts back to you.",
		Effort:      LevelLow,
		Impact:      LevelMedium,
		Steps: []string{
			"Publish '_dmarc' TXT record starting with 'v=DMARC1; p=none; rua=mailto:...'",
			"Review aggregate reports for legitimate senders failing alignment",
			"Move the policy to quarantine, then reject",
		},
	},
	"cors-credentials-wildcard": {
		Title:       "Remove credentialed wildcard CORS",
		Description: "Allowing credentials alongside a wildcard origin lets any site act on behalf of authenticated users.",
		Effort:      LevelLow,
		Impact:      LevelHigh,
		Steps: []string{
			"Replace Access-Control-Allow-Origin: * with an explicit origin allowlist",
			"Echo only validated request origins",
			"Keep Access-Control-Allow-Credentials: true only for trusted origins",
		},
	},
}

// Recommend derives the deduplicated, severity-ordered remediation list from
// findings. Pure: same findings, same output, stable order (severity
// ascending, critical first, ties broken by category name).
func Recommend(findings []Finding) []Recommendation {
	seen := make(map[string]bool)
	recs := make([]Recommendation, 0, len(findings))

	for _, f := range findings {
		if f.Status != StatusFailed && f.Status != StatusWarning {
			continue
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		recs = append(recs, recommendationFor(f))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if severityRank[recs[i].Severity] != severityRank[recs[j].Severity] {
			return severityRank[recs[i].Severity] < severityRank[recs[j].Severity]
		}
		return recs[i].Category < recs[j].Category
	})
	return recs
}

func recommendationFor(f Finding) Recommendation {
	if pb, ok := playbooks[f.ID]; ok {
		return Recommendation{
			ID:          f.ID,
			Title:       pb.Title,
			Description: pb.Description,
			Severity:    f.Severity,
			Category:    f.Category,
			Effort:      pb.Effort,
			Impact:      pb.Impact,
			Steps:       pb.Steps,
		}
	}

	desc := f.Recommendation
	if desc == "" {
		desc = f.Message
	}
	return Recommendation{
		ID:          f.ID,
		Title:       f.Name,
		Description: desc,
		Severity:    f.Severity,
		Category:    f.Category,
		Effort:      LevelMedium,
		Impact:      impactFor(f.Severity),
	}
}

func impactFor(s Severity) string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return LevelHigh
	case SeverityMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}
