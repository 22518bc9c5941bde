package usecase

import (
	"context"
	"fmt"
	"time"

	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/queue"
)

// RefreshJobType is the queue message type that requests a new cycle.
const RefreshJobType = "signals.refresh"

// RefreshRequest is the queued payload.
type RefreshRequest struct {
	Reason      string    `json:"reason"`
	Symbols     []string  `json:"symbols,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Triggerer starts an out-of-band cycle.
type Triggerer interface {
	Trigger()
}

// RefreshJob handles queued refresh requests.
type RefreshJob struct {
	trigger Triggerer
	l       *applogger.Logger
}

func NewRefreshJob(trigger Triggerer, l *applogger.Logger) *RefreshJob {
	if l == nil {
		l = applogger.Nop()
	}
	return &RefreshJob{trigger: trigger, l: l}
}

func (j *RefreshJob) Name() string { return "refresh-signals" }
func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(_ context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[RefreshRequest](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	j.l.Debug("refresh requested", applogger.String("reason", req.Reason), applogger.Strings("symbols", req.Symbols))
	j.trigger.Trigger()
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)

// Refresher requests cycles through the queue when one is configured,
// otherwise directly.
type Refresher struct {
	q       queue.QueueService
	trigger Triggerer
	l       *applogger.Logger
}

// NewRefresher creates a Refresher. q may be nil.
func NewRefresher(q queue.QueueService, trigger Triggerer, l *applogger.Logger) *Refresher {
	if l == nil {
		l = applogger.Nop()
	}
	return &Refresher{q: q, trigger: trigger, l: l}
}

// Request asks for a new cycle.
func (r *Refresher) Request(ctx context.Context, reason string, symbols []string) error {
	if r.q == nil {
		r.trigger.Trigger()
		return nil
	}
	req := RefreshRequest{Reason: reason, Symbols: symbols, RequestedAt: time.Now().UTC()}
	if err := r.q.PublishMessage(ctx, RefreshJobType, req); err != nil {
		r.l.Warn("enqueue refresh failed, triggering locally", applogger.Error(err))
		r.trigger.Trigger()
		return fmt.Errorf("enqueue refresh: %w", err)
	}
	return nil
}

// OnRegistryChange adapts Request to the registry change hook.
func (r *Refresher) OnRegistryChange(ctx context.Context, symbols []string) {
	_ = r.Request(ctx, "symbols changed", symbols)
}
