package response

type WalkPackResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Walks        int    `json:"walks"`
	Price        string `json:"price"`
	PricePerWalk string `json:"price_per_walk"`
	Currency     string `json:"currency"`
}

type PaymentAppliedResponse struct {
	EventID      string `json:"event_id"`
	Applied      bool   `json:"applied"`
	WalkTokens   int    `json:"walk_tokens"`
	WalksPerWeek int    `json:"walks_per_week"`
}
