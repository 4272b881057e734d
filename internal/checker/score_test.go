package checker

import (
	"fmt"
	"testing"
)

func TestScorePenalties(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     int
	}{
		{
			name:     "empty findings keep the perfect score",
			findings: nil,
			want:     100,
		},
		{
			name: "one critical failure",
			findings: []Finding{
				failedFinding("no-https", "HTTPS not enabled", "SSL/TLS", SeverityCritical, "plaintext"),
			},
			want: 80,
		},
		{
			name: "mixed severities",
			findings: []Finding{
				failedFinding("a", "a", "c", SeverityCritical, "x"), // -20
				failedFinding("b", "b", "c", SeverityHigh, "x"),     // -10
				failedFinding("c", "c", "c", SeverityMedium, "x"),   // -5
				failedFinding("d", "d", "c", SeverityLow, "x"),      // -2
			},
			want: 63,
		},
		{
			name: "warnings never deduct",
			findings: []Finding{
				warningFinding("a", "a", "c", SeverityCritical, "x"),
				warningFinding("b", "b", "c", SeverityHigh, "x"),
			},
			want: 100,
		},
		{
			name: "error findings deduct by severity",
			findings: []Finding{
				errorFinding("ssl-error", "SSL check failed", "SSL/TLS", "timeout"), // medium, -5
			},
			want: 95,
		},
		{
			name: "score clamps at zero",
			findings: []Finding{
				failedFinding("a", "a", "c", SeverityCritical, "x"),
				failedFinding("b", "b", "c", SeverityCritical, "x"),
				failedFinding("c", "c", "c", SeverityCritical, "x"),
				failedFinding("d", "d", "c", SeverityCritical, "x"),
				failedFinding("e", "e", "c", SeverityCritical, "x"),
				failedFinding("f", "f", "c", SeverityCritical, "x"),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.findings)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreGradeBonuses(t *testing.T) {
	findings := []Finding{
		passedFinding("ssl-grade", "TLS grade", "SSL/TLS", "A"),
		passedFinding("headers-grade", "Header grade", "Headers", "A"),
		failedFinding("header-csp", "CSP missing", "Headers", SeverityHigh, "not set"), // -10
	}

	got, grade := Score(findings)
	// 100 - 10 + 5 + 3, clamped to 100 only if above.
	if got != 98 {
		t.Errorf("Score() = %d, want 98", got)
	}
	if grade != GradeAPlus {
		t.Errorf("grade = %s, want %s", grade, GradeAPlus)
	}
}

func TestScoreBonusRequiresPassedStatus(t *testing.T) {
	findings := []Finding{
		warningFinding("ssl-grade", "TLS grade", "SSL/TLS", SeverityLow, "B"),
		failedFinding("headers-grade", "Header grade", "Headers", SeverityMedium, "C"), // -5
	}
	got, _ := Score(findings)
	if got != 95 {
		t.Errorf("Score() = %d, want 95 (no bonus for non-passed sub-grades)", got)
	}
}

func TestScoreClampsAtHundred(t *testing.T) {
	findings := []Finding{
		passedFinding("ssl-grade", "TLS grade", "SSL/TLS", "A"),
		passedFinding("headers-grade", "Header grade", "Headers", "A"),
	}
	got, grade := Score(findings)
	if got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
	if grade != GradeAPlus {
		t.Errorf("grade = %s, want %s", grade, GradeAPlus)
	}
}

// Appending one more failed critical finding can never raise the score,
// including once the score is already clamped at zero.
func TestScoreMonotonicUnderAddedFailures(t *testing.T) {
	findings := []Finding{
		passedFinding("ssl-grade", "TLS grade", "SSL/TLS", "A"),
		passedFinding("headers-grade", "Header grade", "Headers", "A"),
		warningFinding("header-cache", "Cache-Control missing", "Headers", SeverityLow, "not set"),
	}

	previous, _ := Score(findings)
	for i := 0; i < 8; i++ {
		findings = append(findings, failedFinding(fmt.Sprintf("crit-%d", i), "failure", "Test", SeverityCritical, "x"))
		current, _ := Score(findings)
		if current > previous {
			t.Fatalf("score rose from %d to %d after adding a failed critical finding", previous, current)
		}
		previous = current
	}

	// 8 criticals overwhelm the bonuses; the floor must hold.
	if previous != 0 {
		t.Errorf("final score = %d, want clamped to 0", previous)
	}
	if _, grade := Score(findings); grade != GradeF {
		t.Errorf("grade at floor = %s, want F", grade)
	}
}

func TestScoreIsPure(t *testing.T) {
	findings := []Finding{
		failedFinding("a", "a", "c", SeverityHigh, "x"),
		warningFinding("b", "b", "c", SeverityLow, "x"),
		passedFinding("ssl-grade", "TLS grade", "SSL/TLS", "A"),
	}

	first, firstGrade := Score(findings)
	second, secondGrade := Score(findings)
	if first != second || firstGrade != secondGrade {
		t.Errorf("Score not deterministic: %d/%s then %d/%s", first, firstGrade, second, secondGrade)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeAPlus},
		{95, GradeAPlus},
		{94, GradeA},
		{85, GradeA},
		{84, GradeB},
		{75, GradeB},
		{74, GradeC},
		{60, GradeC},
		{59, GradeD},
		{40, GradeD},
		{39, GradeF},
		{0, GradeF},
	}

	for _, tt := range tests {
		if got := GradeFor(tt.score); got != tt.want {
			t.Errorf("GradeFor(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

// Every integer score in [0,100] must map to exactly one grade.
func TestGradeForCoversFullRange(t *testing.T) {
	for score := 0; score <= 100; score++ {
		switch GradeFor(score) {
		case GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF:
		default:
			t.Fatalf("GradeFor(%d) returned unknown grade", score)
		}
	}
}

// A credentialed wildcard CORS response costs 30 points: the escalated
// wildcard finding (high, -10) plus the combined finding (critical, -20).
func TestScoreCredentialedWildcardScenario(t *testing.T) {
	findings := corsFindings(headerSet(map[string]string{
		"Access-Control-Allow-Origin":      "*",
		"Access-Control-Allow-Credentials": "true",
	}))

	got, _ := Score(findings)
	if got != 70 {
		t.Errorf("Score() = %d, want 70 (-30 total for credentialed wildcard CORS)", got)
	}
}
