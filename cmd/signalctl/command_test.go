package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"CoinPulse/internal/services/features"
)

func subcommand(t *testing.T, root *cli.Command, name string) *cli.Command {
	t.Helper()
	for _, c := range root.Commands {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %q command", name)
	return nil
}

func TestVolFlags(t *testing.T) {
	cases := []struct {
		args   []string
		lambda float64
		window int64
	}{
		{[]string{"signalctl", "vol", "--symbol", "BTC"}, features.DefaultEWMALambda, int64(features.DefaultVolWindow)},
		{[]string{"signalctl", "vol", "-s", "eth", "--lambda", "0.9", "--window", "12"}, 0.9, 12},
	}
	for _, tc := range cases {
		root := newCommand()
		var gotLambda float64
		var gotWindow int64
		subcommand(t, root, "vol").Action = func(_ context.Context, cmd *cli.Command) error {
			gotLambda = cmd.Float("lambda")
			gotWindow = cmd.Int("window")
			return nil
		}

		require.NoError(t, root.Run(context.Background(), tc.args))
		assert.InDelta(t, tc.lambda, gotLambda, 1e-12)
		assert.Equal(t, tc.window, gotWindow)
	}
}

func TestVolRequiresSymbol(t *testing.T) {
	root := newCommand()
	subcommand(t, root, "vol").Action = func(context.Context, *cli.Command) error { return nil }
	assert.Error(t, root.Run(context.Background(), []string{"signalctl", "vol"}))
}
