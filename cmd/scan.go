package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gradescan/gradescan/internal/checker"
)

var (
	scanTimeoutSecs int
	scanJSON        bool
	scanOutput      string
	scanSave        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Run a full security posture scan against a website or API endpoint",
	Long: `Scan a target with independent analyzer stages and aggregate the
results into a single score, letter grade, and prioritized remediation list.

Stages (run concurrently, each with its own timeout):
- SSL/TLS: certificate validity, expiry, protocol version support
- Headers: security response headers and CORS policy
- DNS: record resolution plus SPF/DMARC email security
- Vulnerabilities: one passive fuzz probe for reflected input and SQL
  error disclosure

A stage failure degrades to a single error finding; the scan always
returns a complete best-effort report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanTimeoutSecs <= 0 {
			scanTimeoutSecs = cliConfig.Scan.StageTimeoutSecs
		}
		stageTimeout := time.Duration(scanTimeoutSecs) * time.Second
		probeTimeout := time.Duration(cliConfig.Scan.ProbeTimeoutSecs) * time.Second

		stages := []checker.Checker{
			&checker.SSLChecker{Timeout: probeTimeout},
			&checker.HeadersChecker{Timeout: probeTimeout},
			&checker.DNSChecker{},
			&checker.VulnChecker{Timeout: probeTimeout},
		}

		progress := newStageProgress(len(stages), !scanJSON)
		pipeline := checker.NewPipeline(checker.Config{
			StageTimeout: stageTimeout,
			Progress:     progress.Update,
			Logger:       logger,
		}, stages)

		report, err := pipeline.Run(cmd.Context(), args[0])
		progress.Finish()
		if err != nil {
			return err
		}

		outputPath := scanOutput
		if scanSave && outputPath == "" {
			outputPath = defaultReportPath(report.ID)
		}
		return emitReport(report, scanJSON, outputPath)
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeoutSecs, "timeout", 0, "per-stage timeout in seconds (default 15)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the report as JSON to stdout")
	scanCmd.Flags().StringVar(&scanOutput, "output", "", "write the JSON report to this file")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "save the JSON report under the results directory")
}
