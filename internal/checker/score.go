package checker

// severityPenalty is the fixed deduction per failed or error finding.
// Warnings and informational findings never affect the score directly.
var severityPenalty = map[Severity]int{
	SeverityCritical: 20,
	SeverityHigh:     10,
	SeverityMedium:   5,
	SeverityLow:      2,
}

// gradeBonus rewards top-tier stage sub-grades. Only a passed sub-grade
// finding earns its bonus.
var gradeBonus = map[string]int{
	"ssl-grade":     5,
	"headers-grade": 3,
}

// Score maps a finding list to a 0-100 score and letter grade. It is pure
// and stateless: identical findings always produce identical output.
func Score(findings []Finding) (int, Grade) {
	score := 100
	for _, f := range findings {
		if f.negative() {
			score -= severityPenalty[f.Severity]
		}
		if f.Status == StatusPassed {
			score += gradeBonus[f.ID]
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, GradeFor(score)
}

// GradeFor maps a clamped score to its letter grade. Every integer in
// [0,100] maps to exactly one grade.
func GradeFor(score int) Grade {
	switch {
	case score >= 95:
		return GradeAPlus
	case score >= 85:
		return GradeA
	case score >= 75:
		return GradeB
	case score >= 60:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}
