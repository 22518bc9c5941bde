package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	xlogger "CoinPulse/pkg/logger"
)

func startStream(t *testing.T) (*SignalStream, string) {
	t.Helper()
	stream := NewSignalStream(xlogger.Nop())
	e := echo.New()
	stream.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		stream.Close()
		srv.Close()
	})
	return stream, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signals"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSignalStreamBroadcast(t *testing.T) {
	stream, url := startStream(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return stream.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	stream.Broadcast(&models.Snapshot{CycleID: "c-1", Aggregate: models.AggregateResult{Classification: models.ClassBear, Score: -0.8}})

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got models.Snapshot
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "c-1", got.CycleID)
		assert.Equal(t, models.ClassBear, got.Aggregate.Classification)
	}
}

func TestSignalStreamSendsLatestOnConnect(t *testing.T) {
	stream, url := startStream(t)
	stream.Broadcast(&models.Snapshot{CycleID: "c-7"})

	conn := dial(t, url)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Snapshot
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "c-7", got.CycleID)
}

func TestSignalStreamForgetsClosedClients(t *testing.T) {
	stream, url := startStream(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return stream.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return stream.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)

	stream.Broadcast(nil)
	stream.Broadcast(&models.Snapshot{CycleID: "c-2"})
	assert.Equal(t, 0, stream.Clients())
}

func TestSignalStreamDoesNotWaitForStalledClient(t *testing.T) {
	stream, url := startStream(t)
	dial(t, url) // never reads
	require.Eventually(t, func() bool { return stream.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	big := strings.Repeat("x", 512<<10)
	start := time.Now()
	for i := 0; i < 64; i++ {
		stream.Broadcast(&models.Snapshot{CycleID: "c", Aggregate: models.AggregateResult{Explanation: big}})
	}
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Eventually(t, func() bool { return stream.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}
