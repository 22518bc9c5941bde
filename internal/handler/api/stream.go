package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/metrics"
	"CoinPulse/internal/usecase"
	xlogger "CoinPulse/pkg/logger"
)

// SignalStream pushes every finished snapshot to websocket subscribers.
// New subscribers first receive the most recent snapshot. Each subscriber
// has its own queue and writer goroutine; one whose queue is full is dropped.
type SignalStream struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	sendBuffer   int
	l            *xlogger.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
	last *models.Snapshot
}

type subscriber struct {
	conn *websocket.Conn
	send chan *models.Snapshot
	done chan struct{}
}

var _ usecase.Broadcaster = (*SignalStream)(nil)

func NewSignalStream(l *xlogger.Logger) *SignalStream {
	if l == nil {
		l = xlogger.Nop()
	}
	metrics.Register()
	return &SignalStream{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: 5 * time.Second,
		sendBuffer:   8,
		l:            l,
		subs:         make(map[*subscriber]struct{}),
	}
}

func (s *SignalStream) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/signals", s.Serve)
}

// Serve upgrades the request and keeps the connection until the client leaves.
func (s *SignalStream) Serve(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already replied
		s.l.Debug("stream.upgrade failed", xlogger.Error(err))
		return nil
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan *models.Snapshot, s.sendBuffer),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	metrics.StreamClients.Inc()
	if s.last != nil {
		sub.send <- s.last
	}
	s.mu.Unlock()

	go s.writeLoop(sub)
	defer s.drop(sub)

	// Clients only listen; reading surfaces the close frame.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Broadcast queues snap for every subscriber without waiting on any of them.
func (s *SignalStream) Broadcast(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = snap
	for sub := range s.subs {
		select {
		case sub.send <- snap:
		default:
			s.l.Debug("stream.subscriber too slow, dropping")
			s.remove(sub)
		}
	}
}

// Clients returns the number of connected subscribers.
func (s *SignalStream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close disconnects every subscriber.
func (s *SignalStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		s.remove(sub)
	}
}

func (s *SignalStream) writeLoop(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case snap := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := sub.conn.WriteJSON(snap); err != nil {
				s.l.Debug("stream.write failed", xlogger.Error(err))
				s.drop(sub)
				return
			}
		}
	}
}

func (s *SignalStream) drop(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(sub)
}

// remove must be called with mu held.
func (s *SignalStream) remove(sub *subscriber) {
	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	metrics.StreamClients.Dec()
	close(sub.done)
	_ = sub.conn.Close()
}
