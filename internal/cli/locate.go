package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/cache"
	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/geo"
)

var (
	flagLocateRefresh bool
	flagLocateSave    bool
)

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show the location prayer times are computed for",
		Long: "Resolve the location the same way every other command does and print it.\n" +
			"--refresh clears the cached detection first; --save writes the result to the config\n" +
			"so later runs work offline.",
		Args: cobra.NoArgs,
		RunE: runLocate,
	}
	cmd.Flags().BoolVar(&flagLocateRefresh, "refresh", false, "Forget the cached location and detect again")
	cmd.Flags().BoolVar(&flagLocateSave, "save", false, "Store the coordinates and time zone in the config file")
	return cmd
}

func runLocate(cmd *cobra.Command, args []string) error {
	if flagLocateRefresh {
		cfg, err := effectiveConfig(cmd)
		if err != nil {
			return err
		}
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return err
		}
		logger.Debug().Str("dir", c.Dir()).Msg("cache cleared")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if flagLocateSave {
		if err := saveLocation(s.location, s.tz.String()); err != nil {
			return err
		}
	}

	if FlagJSON {
		return writeJSON(stdout(cmd), s.locationJSON())
	}

	w := stdout(cmd)
	fmt.Fprintf(w, "  %-10s %s\n", "location", s.location.Label())
	fmt.Fprintf(w, "  %-10s %s\n", "coords", s.location.Coordinates())
	fmt.Fprintf(w, "  %-10s %s\n", "timezone", s.tz)
	fmt.Fprintf(w, "  %-10s %s\n", "source", s.location.Source)
	if flagLocateSave {
		fmt.Fprintln(w, "\nSaved to config.")
	}
	return nil
}

// saveLocation persists loc into the config file. The file is reloaded so
// that environment overrides are not written back.
func saveLocation(loc geo.Location, tz string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lat, lon := loc.Latitude, loc.Longitude
	cfg.Latitude, cfg.Longitude = &lat, &lon
	cfg.Elevation = loc.Elevation
	if loc.City != geo.Unknown {
		cfg.City = loc.City
	}
	if loc.Country != geo.Unknown {
		cfg.Country = loc.Country
	}
	if tz != "Local" {
		cfg.Timezone = tz
	}
	return cfg.Save()
}
