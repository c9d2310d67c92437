package di

import (
	"flag"
	"fmt"
	"io"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/postfix-stats/internal/adapters/check"
	"github.com/mikey/postfix-stats/internal/config"
	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/factory"
	"github.com/mikey/postfix-stats/internal/logging"
	"github.com/mikey/postfix-stats/internal/metrics"
)

// CLIFlags contains all command line flags for the check command
type CLIFlags struct {
	// Check flags
	LogFile  string
	Mode     string
	Warning  string
	Critical string
	Timeout  int

	// General flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line arguments into a CLIFlags struct
func ParseFlags(name string, args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	// Check flags, each with a short and a long name
	for _, n := range []string{"l", "logfile"} {
		fs.StringVar(&flags.LogFile, n, "/var/log/mail.log", "Postfix logfile")
	}
	for _, n := range []string{"m", "mode"} {
		fs.StringVar(&flags.Mode, n, "minute", "mode to check: minute, hour, day, week")
	}
	for _, n := range []string{"w", "warning"} {
		fs.StringVar(&flags.Warning, n, "", "return warning if value is outside RANGE")
	}
	for _, n := range []string{"c", "critical"} {
		fs.StringVar(&flags.Critical, n, "", "return critical if value is outside RANGE")
	}
	for _, n := range []string{"t", "timeout"} {
		fs.IntVar(&flags.Timeout, n, 120, "abort the check after this many seconds")
	}

	// General flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the check command
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCounterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register metrics collector, a single run has nobody to report to
	if err := container.Provide(func() core.MetricsCollector {
		return &metrics.NoopCollector{}
	}); err != nil {
		return nil, err
	}

	// Register window counter with no cache
	if err := container.Provide(func(f *factory.CounterFactory) (core.WindowCounter, error) {
		return f.CreateWindowCounter(nil, false, 0)
	}); err != nil {
		return nil, err
	}

	// Register stats service
	if err := container.Provide(newStatsService); err != nil {
		return nil, err
	}

	// Register the check
	if err := container.Provide(func(f *factory.FrontendFactory) (*check.NagiosCheck, error) {
		return f.CreateCheck(out)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	v.Set("log.file", flags.LogFile)
	v.Set("check.mode", flags.Mode)
	v.Set("check.warning", flags.Warning)
	v.Set("check.critical", flags.Critical)
	v.Set("check.timeout", (time.Duration(flags.Timeout) * time.Second).String())

	// A single run gains nothing from caching
	v.Set("cache.enabled", false)

	return config.NewFromViper(v)
}
