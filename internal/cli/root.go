// Package cli implements the prayer-times command line interface. Every
// schedule is computed locally; the network is only used to find out where
// the user is and, for `compare`, to fetch reference timings.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
)

// Global flags read directly by the commands. The location and
// calculation flags are merged into the config by effectiveConfig.
var (
	FlagJSON    bool
	FlagOffline bool
	FlagVerbose bool
)

// settingFlags maps persistent flags onto the config keys they override.
var settingFlags = []struct{ flag, key string }{
	{"country", "country"},
	{"latitude", "latitude"},
	{"longitude", "longitude"},
	{"elevation", "elevation"},
	{"timezone", "timezone"},
	{"method", "method"},
	{"school", "school"},
	{"cache-dir", "cache_dir"},
	{"time-format", "time_format"},
}

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// logger is configured in PersistentPreRunE and writes to stderr.
var logger = zerolog.Nop()

// nowFunc is the clock used by every command.
var nowFunc = time.Now

// NewRootCmd creates the root command for the prayer-times CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayer-times",
		Short:   "Islamic prayer times CLI",
		Long:    "Islamic prayer times computed offline from the position of the sun.\nNo API is needed once the location is known.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(cmd.ErrOrStderr(), FlagVerbose)

			if err := config.LoadEnv(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			loadedConfig = cfg

			if FlagJSON {
				display.SetEnabled(false)
			}
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("prayer-times version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.String("city", "", "Override city (looked up online, takes precedence over config)")
	pf.String("country", "", "Country used with --city")
	pf.Float64("latitude", 0, "Override latitude in decimal degrees")
	pf.Float64("longitude", 0, "Override longitude in decimal degrees")
	pf.Float64("elevation", 0, "Observer elevation in metres")
	pf.String("timezone", "", "IANA time zone, e.g. Asia/Riyadh (default: detected or system)")
	pf.String("method", "", "Calculation method ID or slug, see `methods`")
	pf.String("school", "", "Asr school: 0/shafi or 1/hanafi")
	pf.String("cache-dir", "", "Cache directory (default: ~/.cache/prayer-times/)")
	pf.String("time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.BoolVar(&FlagOffline, "offline", false, "Never use the network; requires configured coordinates")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Log debug details to stderr")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd(version))
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newLocateCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// newLogger returns a human-readable logger on w. Only warnings are shown
// unless verbose is set.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !display.Enabled()}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// effectiveConfig merges the command line into the loaded config.
// Priority: flags > environment > config file > defaults. Flag values go
// through config.Set, so they are validated like stored values.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	changed := func(name string) *pflag.Flag {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return f
		}
		if f := cmd.Root().PersistentFlags().Lookup(name); f != nil && f.Changed {
			return f
		}
		return nil
	}

	city := changed("city")
	if city != nil {
		cfg.City = strings.TrimSpace(city.Value.String())
		// A city on the command line replaces configured coordinates.
		cfg.Latitude, cfg.Longitude = nil, nil
	}
	lat, lon := changed("latitude"), changed("longitude")
	if (lat == nil) != (lon == nil) {
		return nil, fmt.Errorf("--latitude and --longitude must be given together")
	}
	if lat != nil && city == nil {
		cfg.City, cfg.Country = "", ""
	}

	for _, sf := range settingFlags {
		f := changed(sf.flag)
		if f == nil {
			continue
		}
		if err := cfg.Set(sf.key, f.Value.String()); err != nil {
			return nil, fmt.Errorf("--%s: %w", sf.flag, err)
		}
	}

	defaults := config.Defaults()
	if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if cfg.School == nil {
		cfg.School = defaults.School
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	return &cfg, nil
}

func stdout(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
