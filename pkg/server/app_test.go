package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/pkg/config"
)

type recorder struct{ events []string }

func (r *recorder) component(name string, startErr error) Component {
	return Component{
		Name: name,
		Start: func(context.Context) error {
			r.events = append(r.events, "start "+name)
			return startErr
		},
		Stop: func(context.Context) error {
			r.events = append(r.events, "stop "+name)
			return nil
		},
	}
}

func TestRunContextStartsAndStopsInReverse(t *testing.T) {
	rec := &recorder{}
	app := New(config.Default(), nil, nil)
	app.Register(rec.component("a", nil))
	app.Register(Component{Name: "closer-only", Stop: func(context.Context) error {
		rec.events = append(rec.events, "stop closer-only")
		return nil
	}})
	app.Register(rec.component("b", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, app.RunContext(ctx))

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop closer-only", "stop a"}, rec.events)
}

func TestRunContextUnwindsOnStartFailure(t *testing.T) {
	rec := &recorder{}
	app := New(config.Default(), nil, nil)
	app.Register(rec.component("a", nil))
	app.Register(rec.component("b", errors.New("boom")))
	app.Register(rec.component("c", nil))

	err := app.RunContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start b")
	assert.Equal(t, []string{"start a", "start b", "stop a"}, rec.events)
}
