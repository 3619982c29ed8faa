package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/server"
)

var (
	flagListen    string
	flagRateLimit int
)

func newServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prayer times over HTTP",
		Long: "Run a JSON HTTP API computing schedules on request.\n\n" +
			"Endpoints:\n" +
			"  GET /health\n" +
			"  GET /v1/methods\n" +
			"  GET /v1/schedule?lat=&lon=[&date=YYYY-MM-DD&tz=&method=&school=&elevation=]\n" +
			"  GET /v1/status?lat=&lon=[&tz=&method=&school=&elevation=]\n" +
			"  GET /v1/hijri[?date=YYYY-MM-DD&adjust=]",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}
	cmd.Flags().StringVar(&flagListen, "listen", "", "Address to listen on (default: listen from config, 127.0.0.1:8080)")
	cmd.Flags().IntVar(&flagRateLimit, "rate-limit", server.DefaultRateLimit, "Requests per minute per client IP")
	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}
	tz, err := cfg.Location()
	if err != nil {
		return err
	}

	addr := cfg.ListenOrDefault()
	if cmd.Flags().Changed("listen") {
		addr = flagListen
	}

	// Access logs are JSON on stderr, as a service would write them.
	level := zerolog.InfoLevel
	if FlagVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Str("service", "prayer-times").Logger()

	srv := server.New(server.Config{
		Addr:       addr,
		Version:    version,
		Logger:     log,
		Location:   tz,
		Parameters: params,
		RateLimit:  flagRateLimit,
		Now:        nowFunc,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
