package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultStageTimeoutSecs = 15
	defaultProbeTimeoutSecs = 10
	defaultDNSTimeoutSecs   = 2
	defaultPortTimeoutSecs  = 2
	defaultConcurrency      = 10
	defaultRateLimit        = 20
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan    ScanRuntimeConfig
	Surface SurfaceRuntimeConfig
}

// ScanRuntimeConfig consolidates flag-driven settings for the scan command.
type ScanRuntimeConfig struct {
	StageTimeoutSecs int
	ProbeTimeoutSecs int
}

// SurfaceRuntimeConfig groups attack-surface discovery options.
type SurfaceRuntimeConfig struct {
	Concurrency     int
	RateLimit       int
	CheckPorts      bool
	DNSTimeoutSecs  int
	PortTimeoutSecs int
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanRuntimeConfig{
			StageTimeoutSecs: defaultStageTimeoutSecs,
			ProbeTimeoutSecs: defaultProbeTimeoutSecs,
		},
		Surface: SurfaceRuntimeConfig{
			Concurrency:     defaultConcurrency,
			RateLimit:       defaultRateLimit,
			DNSTimeoutSecs:  defaultDNSTimeoutSecs,
			PortTimeoutSecs: defaultPortTimeoutSecs,
		},
	}
}

// applyConfigDefaults merges config file values into the runtime config
// when the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("scan.timeout_secs") {
		applyIntDefault(scanCmd.Flags(), "timeout", viper.GetInt("scan.timeout_secs"), func(v int) {
			cliConfig.Scan.StageTimeoutSecs = v
		})
		applyIntDefault(surfaceCmd.Flags(), "timeout", viper.GetInt("scan.timeout_secs"), func(v int) {
			cliConfig.Scan.StageTimeoutSecs = v
		})
	}

	if viper.IsSet("scan.probe_timeout_secs") {
		cliConfig.Scan.ProbeTimeoutSecs = viper.GetInt("scan.probe_timeout_secs")
	}

	if viper.IsSet("surface.concurrency") {
		applyIntDefault(surfaceCmd.Flags(), "concurrency", viper.GetInt("surface.concurrency"), func(v int) {
			cliConfig.Surface.Concurrency = v
		})
	}

	if viper.IsSet("surface.rate_limit") {
		applyIntDefault(surfaceCmd.Flags(), "rate-limit", viper.GetInt("surface.rate_limit"), func(v int) {
			cliConfig.Surface.RateLimit = v
		})
	}

	if viper.IsSet("surface.check_ports") {
		applyBoolDefault(surfaceCmd.Flags(), "check-ports", viper.GetBool("surface.check_ports"), func(v bool) {
			cliConfig.Surface.CheckPorts = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
