package cmd

import (
	"github.com/fatih/color"

	"github.com/gradescan/gradescan/internal/checker"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatus(status checker.Status) string {
	switch status {
	case checker.StatusPassed, checker.StatusInfo:
		return colorSuccess(string(status))
	case checker.StatusWarning:
		return colorWarn(string(status))
	default:
		return colorError(string(status))
	}
}

func formatSeverity(severity checker.Severity) string {
	switch severity {
	case checker.SeverityCritical, checker.SeverityHigh:
		return colorError(string(severity))
	case checker.SeverityMedium:
		return colorWarn(string(severity))
	case checker.SeverityLow:
		return colorInfo(string(severity))
	default:
		return string(severity)
	}
}

func formatGrade(grade checker.Grade) string {
	switch grade {
	case checker.GradeAPlus, checker.GradeA:
		return colorSuccess(string(grade))
	case checker.GradeB, checker.GradeC:
		return colorWarn(string(grade))
	default:
		return colorError(string(grade))
	}
}
