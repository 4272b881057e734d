package checker

import (
	"fmt"
	"strings"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

const categoryRisk = "Risk"

// sensitivePrefixes name subdomains whose exposure widens the blast radius
// of any compromise.
var sensitivePrefixes = []string{"admin", "administrator", "dev", "staging", "stage", "internal", "intranet", "vpn"}

// criticalServicePorts are remote-access and database ports that should
// never face the internet.
var criticalServicePorts = map[int]bool{
	22:    true,
	1433:  true,
	3306:  true,
	3389:  true,
	5432:  true,
	6379:  true,
	27017: true,
}

// RiskChecker cross-references discovery output with the rest of the scan
// into composite findings. It runs after the concurrency barrier: discovery
// writes are complete before it reads, so no locking is needed beyond the
// surface snapshot.
type RiskChecker struct {
	Surface func() *Surface
}

func (r *RiskChecker) Name() string { return "risk" }

func (r *RiskChecker) Analyze(target *Target, findings []Finding) []Finding {
	var out []Finding

	surface := &Surface{}
	if r.Surface != nil {
		surface = r.Surface()
	}

	if sensitive := sensitiveSubdomains(surface.Subdomains); len(sensitive) > 0 {
		out = append(out, failedFinding("risk-sensitive-subdomains", "Exposed Sensitive Subdomains", categoryRisk, SeverityHigh,
			fmt.Sprintf("%d subdomain(s) with sensitive names resolve publicly.", len(sensitive))).
			withDetails(strings.Join(sensitive, ", ")).
			withRecommendation("Move administrative and staging hosts behind a VPN or IP allowlist."))
	}

	critical, rdp := criticalPorts(surface.OpenPorts)
	if len(critical) > 0 {
		out = append(out, failedFinding("risk-critical-ports", "Critical Ports Exposed", categoryRisk, SeverityCritical,
			fmt.Sprintf("%d remote-access or database port(s) are reachable from the internet.", len(critical))).
			withDetails(strings.Join(critical, ", ")).
			withRecommendation("Firewall SSH, RDP, and database ports; expose them only through a VPN or bastion."))
	}
	if rdp {
		out = append(out, failedFinding("risk-rdp", "RDP Exposed", categoryRisk, SeverityCritical,
			"Port 3389 (RDP) is reachable; internet-facing RDP is a primary ransomware entry point.").
			withRecommendation("Close 3389 externally and require a VPN for remote desktop access."))
	}

	out = append(out, rootTLSRisk(target, findings)...)
	out = append(out, emailRisk(findings)...)

	if len(surface.Subdomains) > constants.LargeSurfaceThreshold {
		out = append(out, failedFinding("risk-surface-size", "Large attack surface", categoryRisk, SeverityLow,
			fmt.Sprintf("%d subdomains resolved; each one is an asset to patch and monitor.", len(surface.Subdomains))).
			withRecommendation("Inventory subdomains and retire the ones no longer needed."))
	}

	return out
}

func sensitiveSubdomains(subdomains []Subdomain) []string {
	var matched []string
	for _, sd := range subdomains {
		prefix, _, _ := strings.Cut(sd.Name, ".")
		for _, sensitive := range sensitivePrefixes {
			if prefix == sensitive {
				matched = append(matched, sd.Name)
				break
			}
		}
	}
	return matched
}

func criticalPorts(openPorts []OpenPort) (descriptions []string, rdp bool) {
	for _, p := range openPorts {
		if !criticalServicePorts[p.Port] {
			continue
		}
		descriptions = append(descriptions, fmt.Sprintf("%s:%d (%s)", p.IP, p.Port, p.Service))
		if p.Port == 3389 {
			rdp = true
		}
	}
	return descriptions, rdp
}

// rootTLSRisk re-reads the SSL stage verdict for the root domain: absent
// HTTPS is high, an invalid certificate is critical.
func rootTLSRisk(target *Target, findings []Finding) []Finding {
	for _, f := range findings {
		switch {
		case f.ID == "no-https":
			return []Finding{failedFinding("risk-no-ssl", "Root domain without TLS", categoryRisk, SeverityHigh,
				fmt.Sprintf("%s is not served over HTTPS.", target.Host))}
		case f.ID == "ssl-valid" && f.Status == StatusFailed:
			return []Finding{failedFinding("risk-invalid-ssl", "Root domain TLS invalid", categoryRisk, SeverityCritical,
				fmt.Sprintf("The certificate for %s does not validate.", target.Host))}
		}
	}
	return nil
}

func emailRisk(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Status != StatusFailed {
			continue
		}
		switch f.ID {
		case "email-spf":
			out = append(out, failedFinding("risk-spf", "Mail spoofing: no SPF", categoryRisk, SeverityMedium,
				"Without SPF, attackers can send convincing mail as this domain."))
		case "email-dmarc":
			out = append(out, failedFinding("risk-dmarc", "Mail spoofing: no DMARC", categoryRisk, SeverityMedium,
				"Without DMARC, receivers have no policy for mail failing authentication."))
		}
	}
	return out
}
