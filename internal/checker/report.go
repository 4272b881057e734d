package checker

import "time"

// Grade is the letter mapping of the 0-100 score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// Summary aggregates finding counts for one scan.
type Summary struct {
	Passed   int `json:"passed"`
	Warning  int `json:"warning"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
	Critical int `json:"critical_count"`
	High     int `json:"high_count"`
	Medium   int `json:"medium_count"`
	Low      int `json:"low_count"`
}

// Report is the terminal scan artifact. It is assembled once per invocation
// and treated as read-only by every downstream consumer.
type Report struct {
	ID              string           `json:"id"`
	Target          string           `json:"target"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationMs      int64            `json:"duration_ms"`
	Score           int              `json:"score"`
	Grade           Grade            `json:"grade"`
	Findings        []Finding        `json:"findings"`
	Summary         Summary          `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// summarize tallies statuses and severities. Error-status findings count as
// failed: a stage that could not run degrades the scan and the summary is
// how callers see that degradation. Severity tallies skip informational
// findings so passing checks never inflate the counts.
func summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Status {
		case StatusPassed, StatusInfo:
			s.Passed++
		case StatusWarning:
			s.Warning++
		case StatusFailed, StatusError:
			s.Failed++
		}

		switch f.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		}
	}
	return s
}
