package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SymbolRequest struct {
	Symbol string `param:"symbol" query:"symbol" json:"symbol" validate:"required,alphanum,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"200" validate:"gte=60,lte=1000"`
}

type VolRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,alphanum,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"200" validate:"gte=50,lte=1000"`
}

type EvaluateRequest struct {
	Closes   []float64      `json:"closes" validate:"required,min=1,max=5000"`
	External *ExternalScore `json:"external"`
}

type ScoreInput struct {
	Symbol string   `json:"symbol" validate:"required"`
	Score  *float64 `json:"score"`
}

type AggregateRequest struct {
	Scores  []ScoreInput       `json:"scores" validate:"required,min=1,dive"`
	Weights map[string]float64 `json:"weights"`
}

type AddSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,max=20"`
}

type RemoveSymbolRequest struct {
	Index int `param:"index" validate:"gte=0"`
}

type HistoryRequest struct {
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=5000"`
}

type RefreshSignalsRequest struct {
	Reason  string   `json:"reason" default:"manual" validate:"max=100"`
	Symbols []string `json:"symbols" validate:"max=100"`
}

type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}
