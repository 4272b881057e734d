package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gradescan/gradescan/internal/cache"
	"github.com/gradescan/gradescan/internal/checker"
	"github.com/gradescan/gradescan/internal/shared/constants"
)

var (
	surfaceTimeoutSecs int
	surfaceConcurrency int
	surfaceRateLimit   int
	surfaceCheckPorts  bool
	surfaceJSON        bool
	surfaceOutput      string
	surfaceSave        bool
)

var surfaceCmd = &cobra.Command{
	Use:   "surface <target>",
	Short: "Map the attack surface of a domain and assess the resulting risk",
	Long: `Run the full scan pipeline plus attack-surface discovery: subdomain
enumeration from a built-in wordlist, optional open-port probing on a
small set of common ports, and technology fingerprinting from the root
page. A risk stage then correlates the discovered surface with the scan
findings (sensitive subdomains, exposed services, SSL and email posture).

Discovery is rate limited and only touches hosts that resolve; no
wordlist miss is ever reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if surfaceTimeoutSecs <= 0 {
			surfaceTimeoutSecs = cliConfig.Scan.StageTimeoutSecs
		}
		stageTimeout := time.Duration(surfaceTimeoutSecs) * time.Second
		probeTimeout := time.Duration(cliConfig.Scan.ProbeTimeoutSecs) * time.Second

		if !cmd.Flags().Lookup("concurrency").Changed {
			surfaceConcurrency = cliConfig.Surface.Concurrency
		}
		if !cmd.Flags().Lookup("rate-limit").Changed {
			surfaceRateLimit = cliConfig.Surface.RateLimit
		}
		if !cmd.Flags().Lookup("check-ports").Changed {
			surfaceCheckPorts = cliConfig.Surface.CheckPorts
		}

		surfaceChk := &checker.SurfaceChecker{
			DNSTimeout:   time.Duration(cliConfig.Surface.DNSTimeoutSecs) * time.Second,
			PortTimeout:  time.Duration(cliConfig.Surface.PortTimeoutSecs) * time.Second,
			ProbeTimeout: probeTimeout,
			Concurrency:  surfaceConcurrency,
			RateLimit:    surfaceRateLimit,
			CheckPorts:   surfaceCheckPorts,
			Cache:        cache.New(constants.DefaultDNSCacheTTL),
		}

		stages := []checker.Checker{
			&checker.SSLChecker{Timeout: probeTimeout},
			&checker.HeadersChecker{Timeout: probeTimeout},
			&checker.DNSChecker{},
			&checker.VulnChecker{Timeout: probeTimeout},
			surfaceChk,
		}

		progress := newStageProgress(len(stages), !surfaceJSON)
		pipeline := checker.NewPipeline(checker.Config{
			StageTimeout: stageTimeout,
			Progress:     progress.Update,
			Logger:       logger,
		}, stages, &checker.RiskChecker{Surface: surfaceChk.Surface})

		report, err := pipeline.Run(cmd.Context(), args[0])
		progress.Finish()
		if err != nil {
			return err
		}

		outputPath := surfaceOutput
		if surfaceSave && outputPath == "" {
			outputPath = defaultReportPath(report.ID)
		}
		return emitReport(report, surfaceJSON, outputPath)
	},
}

func init() {
	surfaceCmd.Flags().IntVar(&surfaceTimeoutSecs, "timeout", 0, "per-stage timeout in seconds (default 15)")
	surfaceCmd.Flags().IntVar(&surfaceConcurrency, "concurrency", constants.DefaultDiscoveryConcurrency, "maximum concurrent DNS lookups during enumeration")
	surfaceCmd.Flags().IntVar(&surfaceRateLimit, "rate-limit", constants.DefaultDiscoveryRateLimit, "maximum discovery operations per second")
	surfaceCmd.Flags().BoolVar(&surfaceCheckPorts, "check-ports", false, "probe common web and service ports on discovered hosts")
	surfaceCmd.Flags().BoolVar(&surfaceJSON, "json", false, "emit the report as JSON to stdout")
	surfaceCmd.Flags().StringVar(&surfaceOutput, "output", "", "write the JSON report to this file")
	surfaceCmd.Flags().BoolVar(&surfaceSave, "save", false, "save the JSON report under the results directory")
}
