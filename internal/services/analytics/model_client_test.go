package analytics

import (
    "context"
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestPredictParsesResponse(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/api/predict", r.URL.Path)
        assert.Equal(t, "BTC", r.URL.Query().Get("coin"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"coin":"BTC","prediction":"up","score":0.42,"confidence":71}`))
    }))
    defer srv.Close()

    got, err := NewHTTPModelClient(srv.URL+"/").Predict(context.Background(), "btc")
    require.NoError(t, err)
    require.True(t, got.IsSome())
    assert.Equal(t, "UP", got.Unwrap().Prediction)
    assert.Equal(t, 0.42, got.Unwrap().Score)
    assert.Equal(t, 71.0, got.Unwrap().Confidence)
}

func TestPredictWithoutPredictionIsNone(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte(`{"coin":"BTC","score":0.9}`))
    }))
    defer srv.Close()

    got, err := NewHTTPModelClient(srv.URL).Predict(context.Background(), "BTC")
    require.NoError(t, err)
    assert.True(t, got.IsNone())
}

func TestPredictRetriesServerErrors(t *testing.T) {
    var calls int32
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if atomic.AddInt32(&calls, 1) == 1 {
            w.WriteHeader(http.StatusBadGateway)
            return
        }
        _, _ = w.Write([]byte(`{"prediction":"DOWN","score":-0.3,"confidence":60}`))
    }))
    defer srv.Close()

    got, err := NewHTTPModelClient(srv.URL, WithModelAttempts(3)).Predict(context.Background(), "XRP")
    require.NoError(t, err)
    assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
    assert.Equal(t, -0.3, got.Unwrap().Score)
}

func TestPredictDoesNotRetryClientErrors(t *testing.T) {
    var calls int32
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        atomic.AddInt32(&calls, 1)
        w.WriteHeader(http.StatusNotFound)
    }))
    defer srv.Close()

    got, err := NewHTTPModelClient(srv.URL, WithModelAttempts(3)).Predict(context.Background(), "NOPE")
    assert.Error(t, err)
    assert.True(t, got.IsNone())
    assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPredictDisabledWithoutBaseURL(t *testing.T) {
    got, err := NewHTTPModelClient("").Predict(context.Background(), "BTC")
    require.NoError(t, err)
    assert.True(t, got.IsNone())
}
