package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"CoinPulse/internal/di"
	"CoinPulse/pkg/config"
)

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadWithEnv(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Bool("check") {
		fmt.Printf("config ok: env=%s prices=%s sink=%s symbols=%v\n",
			cfg.Environment, cfg.PriceSource.Type, cfg.Sink.Type, cfg.Symbols.Defaults)
		return nil
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunContext(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:  "coinpulse",
		Usage: "directional signal service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config/config.yaml",
				Usage:   "config file path",
				Sources: cli.EnvVars("COINPULSE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "validate the configuration and exit",
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Printf("coinpulse: %v", err)
		os.Exit(1)
	}
}
