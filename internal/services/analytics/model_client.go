package analytics

import (
    "context"
    "fmt"
    "math"
    "strings"

    "github.com/moznion/go-optional"

    "CoinPulse/internal/domain/models"
    domsvc "CoinPulse/internal/domain/service"
)

// HTTPModelClient queries the prediction service: GET /api/predict?coin=BTC.
type HTTPModelClient struct {
    base     *HTTPServiceBase
    attempts int
}

func NewHTTPModelClient(baseURL string, opts ...ModelOption) *HTTPModelClient {
    c := &HTTPModelClient{attempts: 2}
    cfg := modelConfig{}
    for _, o := range opts {
        o(&cfg)
    }
    if cfg.attempts > 0 {
        c.attempts = cfg.attempts
    }
    c.base = NewHTTPServiceBase(strings.TrimRight(baseURL, "/"), cfg.timeout)
    return c
}

type predictResponse struct {
    Coin       string  `json:"coin"`
    Prediction string  `json:"prediction"`
    Score      float64 `json:"score"`
    Confidence float64 `json:"confidence"`
}

// Predict returns the model's opinion on symbol. A response without a
// prediction, or with a non-finite score, is None.
func (m *HTTPModelClient) Predict(ctx context.Context, symbol string) (optional.Option[models.ExternalScore], error) {
    if !m.base.Enabled() {
        return optional.None[models.ExternalScore](), nil
    }
    var pr predictResponse
    q := map[string][]string{"coin": {strings.ToUpper(symbol)}}
    if err := m.base.GetJSONWithRetry(ctx, "/api/predict", q, &pr, m.attempts); err != nil {
        return optional.None[models.ExternalScore](), fmt.Errorf("predict %s: %w", symbol, err)
    }
    if pr.Prediction == "" || math.IsNaN(pr.Score) || math.IsInf(pr.Score, 0) {
        return optional.None[models.ExternalScore](), nil
    }
    return optional.Some(models.ExternalScore{
        Coin:       pr.Coin,
        Prediction: strings.ToUpper(pr.Prediction),
        Score:      pr.Score,
        Confidence: pr.Confidence,
    }), nil
}

var _ domsvc.ExternalModel = (*HTTPModelClient)(nil)
