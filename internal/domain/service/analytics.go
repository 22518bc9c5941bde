package service

import (
	"context"

	"github.com/moznion/go-optional"

	"CoinPulse/internal/domain/models"
)

// ExternalModel asks an external model for its opinion on a symbol.
// None means the model answered without a prediction.
type ExternalModel interface {
	Predict(ctx context.Context, symbol string) (optional.Option[models.ExternalScore], error)
}
