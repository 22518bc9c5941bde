package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// Component is a background part of the application. Start and Stop are both
// optional.
type Component struct {
	Name  string
	Start func(ctx context.Context) error
	Stop  func(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	components []Component
}

// New creates a new App instance.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, httpServer: httpServer}
}

// Register adds a component. Components start in registration order and stop
// in reverse.
func (a *App) Register(c Component) {
	a.components = append(a.components, c)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts everything and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	started, err := a.start(runCtx)
	if err != nil {
		a.l.Error("startup failed", applogger.String("component", a.components[started].Name), applogger.Error(err))
		a.stop(started)
		return fmt.Errorf("start %s: %w", a.components[started].Name, err)
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.stop(started)
			return fmt.Errorf("http server: %w", err)
		}
	}
	a.l.Info("app started", applogger.String("env", a.cfg.Environment), applogger.Int("components", started))

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown(started)
}

// start runs Start of every component and returns how many succeeded.
func (a *App) start(ctx context.Context) (int, error) {
	for i, c := range a.components {
		if c.Start != nil {
			if err := c.Start(ctx); err != nil {
				return i, err
			}
			a.l.Info("component started", applogger.String("component", c.Name))
		}
	}
	return len(a.components), nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(started int) error {
	var errs []error
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		if err := a.httpServer.Stop(ctx); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
		cancel()
	}
	if err := a.stop(started); err != nil {
		errs = append(errs, err)
	}
	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}

// stop runs Stop of the first n components in reverse order.
func (a *App) stop(n int) error {
	var errs []error
	for i := n - 1; i >= 0; i-- {
		c := a.components[i]
		if c.Stop == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		if err := c.Stop(ctx); err != nil {
			a.l.Warn("component stop error", applogger.String("component", c.Name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
		cancel()
	}
	return errors.Join(errs...)
}
