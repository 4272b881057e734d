package checker

// Status classifies the outcome of one normalized check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusInfo    Status = "info"
	StatusError   Status = "error"
)

// Severity ranks how bad a negative finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities for sorting, critical first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Finding is the unit of normalized stage output. The ID is a stable slug
// (e.g. "ssl-expiry") unique per stage-check combination, so downstream
// consumers can deduplicate and diff across scans.
type Finding struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Status         Status   `json:"status"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Details        string   `json:"details,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Passing checks cannot themselves be a negative signal, so the passed and
// info constructors pin severity to info.

func passedFinding(id, name, category, message string) Finding {
	return Finding{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusPassed,
		Severity: SeverityInfo,
		Message:  message,
	}
}

func infoFinding(id, name, category, message string) Finding {
	return Finding{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusInfo,
		Severity: SeverityInfo,
		Message:  message,
	}
}

func warningFinding(id, name, category string, severity Severity, message string) Finding {
	return Finding{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusWarning,
		Severity: severity,
		Message:  message,
	}
}

func failedFinding(id, name, category string, severity Severity, message string) Finding {
	return Finding{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusFailed,
		Severity: severity,
		Message:  message,
	}
}

// errorFinding reports a stage that could not run. The stage is degraded,
// not the target, so severity stays at medium.
func errorFinding(id, name, category, message string) Finding {
	return Finding{
		ID:       id,
		Name:     name,
		Category: category,
		Status:   StatusError,
		Severity: SeverityMedium,
		Message:  message,
	}
}

func (f Finding) withDetails(details string) Finding {
	f.Details = details
	return f
}

func (f Finding) withRecommendation(text string) Finding {
	f.Recommendation = text
	return f
}

// negative reports whether the finding should count against the score.
func (f Finding) negative() bool {
	return f.Status == StatusFailed || f.Status == StatusError
}
