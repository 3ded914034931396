package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/cli"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/logging"
)

var (
	raw      = flag.Bool("raw", false, "print plain markdown without terminal styling")
	logLevel = flag.String("log-level", "warn", "log level for diagnostics on stderr")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	env := &cli.Env{
		Open: func(ctx context.Context) (*app.App, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			logger := logging.New(*logLevel, "console")
			log.Logger = logger
			return app.New(ctx, cfg, logger)
		},
	}
	cli.Register(commander, env)

	flag.Parse()
	env.Raw = *raw

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()

	if err := env.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
	os.Exit(int(status))
}
