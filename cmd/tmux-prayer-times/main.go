package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	_ "time/tzdata"

	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salat/internal/cli"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run parses the status-bar flags and forwards them to "prayer-times next",
// so both binaries share configuration, location resolution and output.
func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("tmux-prayer-times", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	// Location flags
	latitude := fs.Float64("latitude", 0, "Latitude for prayer time calculation")
	longitude := fs.Float64("longitude", 0, "Longitude for prayer time calculation")
	city := fs.String("city", "", "City name (alternative to coordinates)")
	country := fs.String("country", "", "Country name or code (used with --city)")
	timezone := fs.String("timezone", "", "IANA time zone (default: detected or system)")

	// Calculation flags
	method := fs.String("method", "", "Calculation method ID or slug (see --list-methods)")
	school := fs.String("school", "", "Juristic school: 0=Shafi, 1=Hanafi")

	// Display flags
	format := fs.String("format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}')")
	timeFormat := fs.String("time-format", "", "Time format: 12h or 24h")
	prayers := fs.String("prayers", "", "Comma-separated list of prayers to track (default: Fajr,Sunrise,Dhuhr,Asr,Maghrib,Isha)")

	cacheDir := fs.String("cache-dir", "", "Cache directory (default: ~/.cache/prayer-times/)")
	offline := fs.Bool("offline", false, "Never use the network; requires configured coordinates")

	// Info flags
	showVersion := fs.Bool("version", false, "Print version and exit")
	listMethods := fs.Bool("list-methods", false, "Print supported calculation methods and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "tmux-prayer-times %s\n", version)
		return nil
	}
	if *listMethods {
		return execute(stdout, stderr, []string{"methods"})
	}

	next := []string{"next", "--format", *format}
	if fs.Changed("latitude") || fs.Changed("longitude") {
		next = append(next,
			"--latitude", strconv.FormatFloat(*latitude, 'f', -1, 64),
			"--longitude", strconv.FormatFloat(*longitude, 'f', -1, 64))
	}
	for _, f := range []struct{ name, value string }{
		{"city", *city},
		{"country", *country},
		{"timezone", *timezone},
		{"method", *method},
		{"school", *school},
		{"time-format", *timeFormat},
		{"prayers", *prayers},
		{"cache-dir", *cacheDir},
	} {
		if f.value != "" {
			next = append(next, "--"+f.name, f.value)
		}
	}
	if *offline {
		next = append(next, "--offline")
	}
	return execute(stdout, stderr, next)
}

func execute(stdout, stderr io.Writer, args []string) error {
	root := cli.NewRootCmd(version)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	return root.Execute()
}
