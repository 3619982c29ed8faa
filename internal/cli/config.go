package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long: "Without a subcommand, print every setting with the value in effect and where it\n" +
			"comes from: the environment, the config file, or the built-in default.",
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a config value",
			Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\n"+
				"Examples:\n"+
				"  prayer-times config set city Riyadh\n"+
				"  prayer-times config set latitude 24.7136\n"+
				"  prayer-times config set method umm-al-qura\n"+
				"  prayer-times config set high_lat_rule seventh-of-the-night\n"+
				"  prayer-times config set adjustments fajr=2,isha=-1\n\n"+
				"Every key can also be set with the environment variable %s<KEY>.",
				strings.Join(config.ValidKeys, ", "), config.EnvPrefix),
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(cmd, func(c *config.Config) error { return c.Set(args[0], args[1]) },
					"Set %s = %s", args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "unset <key>",
			Short: "Clear a config value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfig(cmd, func(c *config.Config) error { return c.Unset(args[0]) },
					"Unset %s", args[0])
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(stdout(cmd), "Configuration reset to defaults.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.Path()
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout(cmd), path)
				return nil
			},
		},
	)
	return cmd
}

// editConfig applies edit to the file config, without environment
// overrides, and saves it.
func editConfig(cmd *cobra.Command, edit func(*config.Config) error, format string, a ...any) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := edit(cfg); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), format+"\n", a...)
	return nil
}

// Setting sources.
const (
	sourceEnv     = "env"
	sourceFile    = "file"
	sourceDefault = "default"
)

type settingJSON struct {
	Value  string `json:"value"`
	Source string `json:"source,omitempty"`
}

// resolveSetting returns the value in effect for key and its source.
func resolveSetting(key string, file *config.Config, defaults config.Config) (string, string) {
	if v, ok := os.LookupEnv(config.EnvName(key)); ok {
		return strings.TrimSpace(v), sourceEnv
	}
	if v, _ := file.Get(key); v != "" {
		return v, sourceFile
	}
	if v, _ := defaults.Get(key); v != "" {
		return v, sourceDefault
	}
	return "", ""
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	file, err := config.Load()
	if err != nil {
		return err
	}
	defaults := config.Defaults()

	if FlagJSON {
		out := make(map[string]settingJSON, len(config.ValidKeys))
		for _, key := range config.ValidKeys {
			v, src := resolveSetting(key, file, defaults)
			out[key] = settingJSON{Value: v, Source: src}
		}
		return writeJSON(stdout(cmd), out)
	}

	tbl := display.NewTable([]string{"Key", "Value", "Source"})
	for _, key := range config.ValidKeys {
		v, src := resolveSetting(key, file, defaults)
		tbl.AddRow([]string{key, describeSetting(key, v), src})
		switch src {
		case sourceEnv:
			tbl.SetRowStyle(tbl.Len()-1, display.StyleAccent)
		case "", sourceDefault:
			tbl.SetRowStyle(tbl.Len()-1, display.StyleDim)
		}
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "\n  %s\n  %s\n\n", display.Bold("Configuration"), display.Gray(path))
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

// describeSetting labels numeric method and school values with their names.
func describeSetting(key, v string) string {
	if v == "" {
		return "(not set)"
	}
	switch key {
	case "method":
		if m, err := prayer.ParseMethod(v); err == nil {
			return fmt.Sprintf("%d (%s)", int(m), m)
		}
	case "school":
		if id, err := strconv.Atoi(v); err == nil {
			if s, err := prayer.ParseMadhab(v); err == nil {
				return fmt.Sprintf("%d (%s)", id, s)
			}
		}
	}
	return v
}
