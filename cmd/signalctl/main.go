package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"CoinPulse/internal/domain/models"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/registry"
	"CoinPulse/internal/services/analytics"
	"CoinPulse/internal/services/features"
	"CoinPulse/internal/services/signal"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/util"
)

func priceSource(cmd *cli.Command) *binance.PriceSource {
	return binance.NewPriceSource("", "", cmd.String("binance-url"), cmd.Duration("timeout"),
		binance.WithQuote(cmd.String("quote")),
		binance.WithInterval(cmd.String("interval")),
	)
}

func externalModel(cmd *cli.Command) domsvc.ExternalModel {
	base := cmd.String("model-url")
	if base == "" {
		return nil
	}
	return analytics.NewHTTPModelClient(base, analytics.WithModelTimeout(cmd.Duration("timeout")))
}

// evaluateAction scores one symbol and blends in the external opinion when a
// model URL is given.
func evaluateAction(ctx context.Context, cmd *cli.Command) error {
	symbol := util.NormalizeSymbol(cmd.String("symbol"))
	closes, err := priceSource(cmd).GetCloses(ctx, symbol, int(cmd.Int("bars")))
	if err != nil {
		return fmt.Errorf("fetch %s: %w", symbol, err)
	}

	ext := optional.None[models.ExternalScore]()
	if m := externalModel(cmd); m != nil {
		if v, err := m.Predict(ctx, symbol); err != nil {
			fmt.Println(HelpStyle.Render("external model unavailable: " + err.Error()))
		} else {
			ext = v
		}
	}

	local := signal.Score(closes)
	res := signal.Blend(local, ext)

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%s (%d bars)", symbol, len(closes))))
	fmt.Printf("state  %s\n", FormatState(res.State))
	fmt.Printf("score  %.4f\n", res.Score)
	fmt.Printf("local  %.4f  %s\n", local.Score, HelpStyle.Render(local.Explanation))
	if signal.HasOpinion(ext) {
		e := ext.Unwrap()
		fmt.Printf("model  %.4f  %s (confidence %.2f)\n", e.Score, e.Prediction, e.Confidence)
	}
	return nil
}

// volAction prints the realized volatility series and its EWMA forecast.
func volAction(ctx context.Context, cmd *cli.Command) error {
	symbol := util.NormalizeSymbol(cmd.String("symbol"))
	window := int(cmd.Int("window"))
	lambda := cmd.Float("lambda")

	closes, err := priceSource(cmd).GetCloses(ctx, symbol, int(cmd.Int("bars")))
	if err != nil {
		return fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(closes) < usecase.MinVolCloses {
		return fmt.Errorf("%s: %d closes, need %d: %w", symbol, len(closes), usecase.MinVolCloses, usecase.ErrInsufficientData)
	}

	realized := features.ScaleSeries(
		features.RealizedVolatilitySeries(features.ComputeLogReturns(closes), window, features.HoursPerYear), 100)
	forecast := features.EWMAForecast(realized, lambda)

	fmt.Println(TitleStyle.Render(fmt.Sprintf("%s volatility (window %d, lambda %.2f)", symbol, window, lambda)))
	tail := int(cmd.Int("tail"))
	start := max(0, len(realized)-tail)
	for i := start; i < len(realized); i++ {
		fmt.Printf("%4d  realized %7.2f%%  forecast %7.2f%%\n", i, realized[i], forecast[i])
	}
	if v, err := features.LatestForecast(realized, lambda).Take(); err == nil {
		fmt.Printf("next  %s\n", TitleStyle.Render(fmt.Sprintf("%.2f%%", v)))
	}
	return nil
}

// aggregateAction runs one full cycle over the given symbols.
func aggregateAction(ctx context.Context, cmd *cli.Command) error {
	symbols := util.SplitSymbols(cmd.String("symbols"))
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given")
	}

	reg := registry.New(cache.NewMemoryCache(), registry.WithDefaults(symbols))
	cycle := usecase.NewSignalCycle(
		priceSource(cmd),
		externalModel(cmd),
		reg,
		metrics.New(prometheus.NewRegistry()),
		usecase.WithBars(int(cmd.Int("bars"))),
		usecase.WithSymbolTimeout(cmd.Duration("timeout")),
	)
	snap, err := cycle.Run(ctx)
	if err != nil {
		return fmt.Errorf("cycle: %w", err)
	}

	fmt.Println(TitleStyle.Render("Signals " + snap.Timestamp.Format(time.RFC3339)))
	for _, sig := range snap.Signals {
		fmt.Println(FormatSignalLine(sig))
	}
	fmt.Println()
	fmt.Printf("%s  %s\n", FormatClassification(snap.Aggregate.Classification), snap.Aggregate.Explanation)
	return nil
}

func newCommand() *cli.Command {
	symbolFlag := &cli.StringFlag{
		Name:     "symbol",
		Aliases:  []string{"s"},
		Usage:    "Coin ticker, e.g. BTC",
		Required: true,
	}
	barsFlag := &cli.IntFlag{
		Name:  "bars",
		Usage: "Number of hourly closes to fetch",
		Value: 200,
	}

	return &cli.Command{
		Name:  "signalctl",
		Usage: "Evaluate crypto directional signals from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "binance-url",
				Usage:   "Binance REST base URL",
				Sources: cli.EnvVars("BINANCE_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "quote",
				Usage: "Quote asset appended to every coin",
				Value: "USDT",
			},
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Kline interval",
				Value: "1h",
			},
			&cli.StringFlag{
				Name:    "model-url",
				Usage:   "Prediction service base URL",
				Sources: cli.EnvVars("MODEL_API_BASE"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per request timeout",
				Value: 10 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "evaluate",
				Usage:  "Score one symbol",
				Flags:  []cli.Flag{symbolFlag, barsFlag},
				Action: evaluateAction,
			},
			{
				Name:  "vol",
				Usage: "Show realized volatility and its EWMA forecast",
				Flags: []cli.Flag{
					symbolFlag,
					barsFlag,
					&cli.IntFlag{Name: "window", Usage: "Rolling window in bars", Value: features.DefaultVolWindow},
					&cli.FloatFlag{Name: "lambda", Usage: "EWMA decay", Value: features.DefaultEWMALambda},
					&cli.IntFlag{Name: "tail", Usage: "Rows to print", Value: 10},
				},
				Action: volAction,
			},
			{
				Name:  "aggregate",
				Usage: "Score several symbols and aggregate them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "symbols",
						Usage: "Comma separated tickers",
						Value: strings.Join(registry.DefaultSymbols, ","),
					},
					barsFlag,
				},
				Action: aggregateAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(ErrorStyle.Render(err.Error()))
	}
}
