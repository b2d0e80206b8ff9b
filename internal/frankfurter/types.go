package frankfurter

// LatestResponse is the raw body of GET /latest.
type LatestResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// RangeResponse is the raw body of GET /{start}..{end}.
// Rates is keyed by ISO date; map order is not chronological.
type RangeResponse struct {
	Amount    float64                       `json:"amount"`
	Base      string                        `json:"base"`
	StartDate string                        `json:"start_date"`
	EndDate   string                        `json:"end_date"`
	Rates     map[string]map[string]float64 `json:"rates"`
}

// errorResponse is returned by the API on 4xx.
type errorResponse struct {
	Message string `json:"message"`
}
