package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTC", r.URL.Query().Get("coin"))
		assert.Equal(t, "coinpulse-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score":0.4}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithUserAgent("coinpulse-test"))
	var out struct {
		Score float64 `json:"score"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		URL:         srv.URL + "/predict",
		QueryParams: map[string][]string{"coin": {"BTC"}},
	}, &out)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, out.Score, 1e-12)
}

func TestSendAndParseStatusError(t *testing.T) {
	codes := map[int]bool{
		http.StatusBadRequest:          false,
		http.StatusNotFound:            false,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
	}
	for code, retryable := range codes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", code)
		}))

		err := NewClient().SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, nil)
		srv.Close()

		var se *StatusError
		require.True(t, errors.As(err, &se), "code %d", code)
		assert.Equal(t, code, se.Code)
		assert.Contains(t, se.Body, "nope")
		assert.Equal(t, retryable, se.Retryable(), "code %d", code)
	}
}

func TestSendAndParseRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	var raw []byte
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   map[string]string{"ping": "1"},
	}, &raw)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(raw))
}
