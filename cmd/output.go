package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gradescan/gradescan/internal/checker"
	"github.com/gradescan/gradescan/internal/shared/constants"
)

// printReport renders the human-readable scan summary. The report is
// read-only here: score, grade, and severities are already final.
func printReport(report *checker.Report) {
	fmt.Println()
	fmt.Printf("%s %s\n", colorInfo("Target:"), report.Target)
	fmt.Printf("%s %s (%d/100) in %dms\n", colorInfo("Grade:"), formatGrade(report.Grade), report.Score, report.DurationMs)
	fmt.Printf("%s %d passed, %d warnings, %d failed (of %d checks)\n",
		colorInfo("Summary:"), report.Summary.Passed, report.Summary.Warning, report.Summary.Failed, report.Summary.Total)
	fmt.Println()

	for _, f := range report.Findings {
		fmt.Printf("  [%s] %-10s %s — %s\n", formatStatus(f.Status), formatSeverity(f.Severity), f.Name, f.Message)
	}

	if len(report.Recommendations) > 0 {
		fmt.Println()
		fmt.Println(colorInfo("Recommendations (highest severity first):"))
		for i, rec := range report.Recommendations {
			fmt.Printf("  %d. [%s] %s (effort: %s, impact: %s)\n",
				i+1, formatSeverity(rec.Severity), rec.Title, rec.Effort, rec.Impact)
			for _, step := range rec.Steps {
				fmt.Printf("     - %s\n", step)
			}
		}
	}
	fmt.Println()
}

// emitReport writes the report as JSON to stdout, a file, or both the
// results directory and stdout summary depending on flags.
func emitReport(report *checker.Report, asJSON bool, outputPath string) error {
	if outputPath != "" {
		if err := writeReportFile(outputPath, report); err != nil {
			return err
		}
		fmt.Printf("%s %s\n", colorInfo("Report written:"), outputPath)
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	printReport(report)
	return nil
}

func writeReportFile(path string, report *checker.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// defaultReportPath places a report in the configured results directory.
func defaultReportPath(reportID string) string {
	return filepath.Join(resultsDir, reportID+".json")
}
