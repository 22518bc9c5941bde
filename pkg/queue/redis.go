package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"CoinPulse/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// promoteDue moves retry entries whose time has come back onto the pending
// list in one step so concurrent promoters never duplicate a message.
var promoteDue = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, m in ipairs(due) do
	redis.call('ZREM', KEYS[1], m)
	redis.call('LPUSH', KEYS[2], m)
end
return #due
`)

const promoteBatch = 100

// Stats reports queue depth.
type Stats struct {
	Pending int64
	Delayed int64
	Dead    int64
}

// RedisQueue is a list-backed work queue with delayed retries and a dead
// letter list.
type RedisQueue struct {
	l         *logger.Logger
	cfg       *QueueConfig
	client    *redis.Client
	keyPrefix string
	now       func() time.Time

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets the prefix of every key the queue touches.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(r *RedisQueue) {
		r.keyPrefix = prefix
	}
}

// NewRedisQueue creates a queue. Nothing runs until Start.
func NewRedisQueue(l *logger.Logger, cfg *QueueConfig, client *redis.Client, opts ...RedisQueueOption) *RedisQueue {
	if l == nil {
		l = logger.Nop()
	}
	r := &RedisQueue{
		l:         l,
		cfg:       cfg.withDefaults(),
		client:    client,
		keyPrefix: "coinpulse:queue",
		now:       time.Now,
		jobs:      make(map[string]Job),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ QueueService = (*RedisQueue)(nil)

// RegisterJob binds a job to its message type.
func (r *RedisQueue) RegisterJob(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.Type()]; ok {
		return fmt.Errorf("job type %q already registered", job.Type())
	}
	r.jobs[job.Type()] = job
	r.l.Info("job registered", logger.String("job", job.Name()), logger.String("type", job.Type()))
	return nil
}

// Start verifies the connection and launches the workers and the retry
// promoter.
func (r *RedisQueue) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("queue already running")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	r.cancel = stop
	r.running = true

	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.work(runCtx, i)
	}
	r.wg.Add(1)
	go r.promote(runCtx)

	r.l.Info("redis queue started",
		logger.Int("workers", r.cfg.Workers),
		logger.String("prefix", r.keyPrefix))
	return nil
}

// Stop cancels the workers and waits for in-flight messages.
func (r *RedisQueue) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for queue workers: %w", ctx.Err())
	case <-done:
		r.l.Info("redis queue stopped")
		return nil
	}
}

// PublishMessage enqueues payload under msgType.
func (r *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload any) error {
	r.mu.RLock()
	_, known := r.jobs[msgType]
	r.mu.RUnlock()
	if !known {
		return fmt.Errorf("no job registered for type %q", msgType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(Message{
		ID:         uuid.NewString(),
		Type:       msgType,
		Payload:    raw,
		EnqueuedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.LPush(ctx, r.pendingKey(), data).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", r.pendingKey(), err)
	}
	return nil
}

// Stats reads the current depth of each list.
func (r *RedisQueue) Stats(ctx context.Context) (Stats, error) {
	pipe := r.client.Pipeline()
	pending := pipe.LLen(ctx, r.pendingKey())
	delayed := pipe.ZCard(ctx, r.delayedKey())
	dead := pipe.LLen(ctx, r.deadKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	return Stats{Pending: pending.Val(), Delayed: delayed.Val(), Dead: dead.Val()}, nil
}

func (r *RedisQueue) work(ctx context.Context, id int) {
	defer r.wg.Done()
	for ctx.Err() == nil {
		res, err := r.client.BRPop(ctx, r.cfg.PollTimeout, r.pendingKey()).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			continue
		default:
			r.l.Error("brpop failed", logger.Int("worker_id", id), logger.Error(err))
			sleep(ctx, r.cfg.PollTimeout)
			continue
		}
		if len(res) < 2 {
			continue
		}
		r.handle(ctx, []byte(res[1]))
	}
}

func (r *RedisQueue) handle(ctx context.Context, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.l.Error("drop malformed message", logger.Error(err))
		return
	}

	r.mu.RLock()
	job, ok := r.jobs[msg.Type]
	r.mu.RUnlock()
	if !ok {
		r.bury(ctx, msg, fmt.Errorf("no job for type %q", msg.Type))
		return
	}

	err := job.Handle(ctx, msg.Payload)
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		// shutting down: keep the message for the next run
		r.delay(context.Background(), msg, 0)
		return
	}
	msg.LastError = err.Error()
	if msg.Attempts >= r.cfg.RetryLimit {
		r.bury(ctx, msg, err)
		return
	}
	msg.Attempts++
	wait := r.cfg.retryDelay(msg.Attempts)
	r.l.Warn("job failed, retrying",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts),
		logger.Duration("in", wait),
		logger.Error(err))
	r.delay(ctx, msg, wait)
}

func (r *RedisQueue) delay(ctx context.Context, msg Message, wait time.Duration) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.l.Error("marshal retry", logger.Error(err))
		return
	}
	due := float64(r.now().Add(wait).UnixMilli())
	if err := r.client.ZAdd(ctx, r.delayedKey(), redis.Z{Score: due, Member: data}).Err(); err != nil {
		r.l.Error("schedule retry", logger.String("id", msg.ID), logger.Error(err))
	}
}

func (r *RedisQueue) bury(ctx context.Context, msg Message, cause error) {
	r.l.Error("message moved to dead letters",
		logger.String("id", msg.ID),
		logger.String("type", msg.Type),
		logger.Int("attempts", msg.Attempts),
		logger.Error(cause))
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := r.client.LPush(ctx, r.deadKey(), data).Err(); err != nil {
		r.l.Error("lpush dead letter", logger.Error(err))
	}
}

func (r *RedisQueue) promote(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.PollTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := strconv.FormatInt(r.now().UnixMilli(), 10)
			n, err := promoteDue.Run(ctx, r.client, []string{r.delayedKey(), r.pendingKey()}, now, promoteBatch).Int()
			if err != nil && ctx.Err() == nil {
				r.l.Error("promote retries", logger.Error(err))
				continue
			}
			if n > 0 {
				r.l.Debug("retries promoted", logger.Int("count", n))
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (r *RedisQueue) pendingKey() string { return r.keyPrefix + ":pending" }
func (r *RedisQueue) delayedKey() string { return r.keyPrefix + ":delayed" }
func (r *RedisQueue) deadKey() string    { return r.keyPrefix + ":dead" }
