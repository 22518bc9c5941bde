package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/moznion/go-optional"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/metrics"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/registry"
	"CoinPulse/internal/services/signal"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

// SignalService is the part of the signal cycle the API reads from.
type SignalService interface {
	LatestOrRun(ctx context.Context) (*models.Snapshot, error)
	EvaluateOne(ctx context.Context, symbol string, bars int) models.SymbolSignal
	VolSeries(ctx context.Context, symbol string, bars int) (*models.VolatilitySeries, error)
}

// RefreshRequester asks for an out-of-band cycle.
type RefreshRequester interface {
	Request(ctx context.Context, reason string, symbols []string) error
}

// SignalsEchoHandler serves the signal API.
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	signals   SignalService
	registry  domrepo.SymbolRegistry
	history   *usecase.HistoryUseCase
	refresher RefreshRequester

	cache     icache.BytesCache
	signalTTL time.Duration
	volTTL    time.Duration
	rl        *ratelimit.Limiter
}

type HandlerOption func(*SignalsEchoHandler)

// WithResponseCache caches the per-symbol and volatility responses.
func WithResponseCache(c icache.BytesCache, signalTTL, volTTL time.Duration) HandlerOption {
	return func(h *SignalsEchoHandler) {
		h.cache = c
		h.signalTTL = signalTTL
		h.volTTL = volTTL
	}
}

func WithRateLimiter(rl *ratelimit.Limiter) HandlerOption {
	return func(h *SignalsEchoHandler) { h.rl = rl }
}

func WithHistory(uc *usecase.HistoryUseCase) HandlerOption {
	return func(h *SignalsEchoHandler) { h.history = uc }
}

func WithRefresher(r RefreshRequester) HandlerOption {
	return func(h *SignalsEchoHandler) { h.refresher = r }
}

func NewSignalsEchoHandler(logger *xlogger.Logger, signals SignalService, reg domrepo.SymbolRegistry, opts ...HandlerOption) *SignalsEchoHandler {
	metrics.Register()
	h := &SignalsEchoHandler{
		logger:    logger,
		signals:   signals,
		registry:  reg,
		history:   usecase.NewHistoryUseCase(nil),
		signalTTL: 30 * time.Second,
		volTTL:    60 * time.Second,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Snapshot)
	g.GET("/signals/:symbol", h.Symbol)
	g.GET("/vol", h.Vol)
	g.POST("/evaluate", h.Evaluate)
	g.POST("/aggregate", h.Aggregate)
	g.GET("/history", h.History)
	g.GET("/symbols", h.ListSymbols)
	g.POST("/symbols", h.AddSymbol)
	g.DELETE("/symbols/:index", h.RemoveSymbol)
	g.POST("/refresh", h.Refresh)
}

// Snapshot returns the latest cycle snapshot.
func (h *SignalsEchoHandler) Snapshot(c echo.Context) error {
	defer h.observe("signals", time.Now())

	snap, err := h.signals.LatestOrRun(c.Request().Context())
	if err != nil {
		return h.fail(c, "signals", err)
	}
	return xhttp.SuccessResponse(c, snap)
}

// Symbol evaluates one symbol on demand.
func (h *SignalsEchoHandler) Symbol(c echo.Context) error {
	const endpoint = "signal"
	defer h.observe(endpoint, time.Now())

	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	sym := util.NormalizeSymbol(req.Symbol)
	key := fmt.Sprintf("signal:%s:%d", sym, req.Limit)

	return h.cached(c, endpoint, key, h.signalTTL, func(ctx context.Context) (interface{}, error) {
		sig := h.signals.EvaluateOne(ctx, sym, req.Limit)
		if !sig.Available {
			return nil, xhttp.UnavailableError("price data unavailable").
				WithParam("symbol", sym).
				WithError(errors.New(sig.Error))
		}
		return sig, nil
	})
}

// Vol returns the realized volatility series of a symbol with its forecast.
func (h *SignalsEchoHandler) Vol(c echo.Context) error {
	const endpoint = "vol"
	defer h.observe(endpoint, time.Now())

	req := &models.VolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, endpoint) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
	}
	sym := util.NormalizeSymbol(req.Symbol)
	key := fmt.Sprintf("vol:%s:%d", sym, req.Limit)

	return h.cached(c, endpoint, key, h.volTTL, func(ctx context.Context) (interface{}, error) {
		return h.signals.VolSeries(ctx, sym, req.Limit)
	})
}

// Evaluate scores posted closes, blended with an optional external opinion.
func (h *SignalsEchoHandler) Evaluate(c echo.Context) error {
	defer h.observe("evaluate", time.Now())

	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ext := optional.None[models.ExternalScore]()
	if req.External != nil {
		ext = optional.Some(*req.External)
	}
	return xhttp.SuccessResponse(c, signal.EvaluateSymbol(req.Closes, ext))
}

// Aggregate combines posted scores. Missing weights come from the registry.
func (h *SignalsEchoHandler) Aggregate(c echo.Context) error {
	defer h.observe("aggregate", time.Now())

	req := &models.AggregateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	weights := signal.Weights{BySymbol: make(map[string]float64, len(req.Scores)), Default: signal.DefaultWeight}
	scores := make([]signal.SymbolScore, 0, len(req.Scores))
	for _, in := range req.Scores {
		sym := util.NormalizeSymbol(in.Symbol)
		weights.BySymbol[sym] = h.registry.Weight(sym)
		if in.Score == nil {
			scores = append(scores, signal.Absent(sym))
			continue
		}
		scores = append(scores, signal.Present(sym, *in.Score))
	}
	for sym, w := range req.Weights {
		weights.BySymbol[util.NormalizeSymbol(sym)] = w
	}
	return xhttp.SuccessResponse(c, signal.Aggregate(scores, weights))
}

// History returns stored aggregate readings.
func (h *SignalsEchoHandler) History(c echo.Context) error {
	defer h.observe("history", time.Now())

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		From:  util.ParseTimeDefault(req.From, time.Time{}),
		To:    util.ParseTimeDefault(req.To, time.Time{}),
		Limit: req.Limit,
	})
	if err != nil {
		return h.fail(c, "history", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) ListSymbols(c echo.Context) error {
	list, err := h.registry.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "symbols", err)
	}
	return xhttp.SuccessResponse(c, models.SymbolsResponse{Symbols: list})
}

func (h *SignalsEchoHandler) AddSymbol(c echo.Context) error {
	req := &models.AddSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	list, err := h.registry.Add(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "symbols", err)
	}
	return xhttp.CreatedResponse(c, models.SymbolsResponse{Symbols: list})
}

func (h *SignalsEchoHandler) RemoveSymbol(c echo.Context) error {
	req := &models.RemoveSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	list, err := h.registry.Remove(c.Request().Context(), req.Index)
	if err != nil {
		return h.fail(c, "symbols", err)
	}
	return xhttp.SuccessResponse(c, models.SymbolsResponse{Symbols: list})
}

// Refresh requests a new cycle.
func (h *SignalsEchoHandler) Refresh(c echo.Context) error {
	if h.refresher == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("refresh is not configured"))
	}
	req := &models.RefreshSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.refresher.Request(c.Request().Context(), req.Reason, util.NormalizeSymbols(req.Symbols)); err != nil {
		// a failed enqueue still triggers locally
		h.logger.Warn("signals.refresh enqueue failed", xlogger.Error(err))
	}
	return xhttp.AcceptedResponse(c, map[string]string{"status": "accepted"})
}

// cached serves key from the response cache, or computes, stores and writes it.
func (h *SignalsEchoHandler) cached(c echo.Context, endpoint, key string, ttl time.Duration, load func(ctx context.Context) (interface{}, error)) error {
	ctx := c.Request().Context()
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(ctx, key); err != nil {
			h.logger.Warn("signals.cache get failed", xlogger.String("key", key), xlogger.Error(err))
		} else if ok {
			metrics.CacheHits.WithLabelValues(endpoint).Inc()
			h.logger.Debug("signals.cache hit", xlogger.String("key", key))
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	data, err := load(ctx)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	b, err := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: data})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	if h.cache != nil && ttl > 0 {
		if err := h.cache.SetBytes(ctx, key, b, ttl); err != nil {
			h.logger.Warn("signals.cache set failed", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *SignalsEchoHandler) allow(c echo.Context, endpoint string) bool {
	if h.rl == nil || h.rl.Allow(c.RealIP()+":"+endpoint) {
		return true
	}
	h.logger.Warn("signals.rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return false
}

func (h *SignalsEchoHandler) observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *SignalsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals."+endpoint+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, registry.ErrAlreadyListed):
		return xhttp.ConflictError(err.Error())
	case errors.Is(err, registry.ErrIndexOutOfRange):
		return xhttp.NotFoundError(err.Error())
	case errors.Is(err, registry.ErrEmptySymbol), errors.Is(err, registry.ErrInvalidSymbol):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, usecase.ErrInsufficientData):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, usecase.ErrHistoryDisabled):
		return xhttp.NotFoundError(err.Error())
	case errors.Is(err, usecase.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, usecase.ErrPriceUnavailable), errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableError("price data unavailable").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
