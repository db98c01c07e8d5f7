package request

// PaymentConfirmedEvent is the body of a payment.confirmed message. Either
// GrantedTokens, PackID or a subscription tier must be set.
type PaymentConfirmedEvent struct {
	EventID        string `json:"event_id" validate:"required,max=255"`
	UserID         string `json:"user_id" validate:"required"`
	GrantedTokens  int    `json:"granted_tokens" validate:"min=0"`
	PackID         string `json:"pack_id" validate:"omitempty,max=64"`
	WalksPerWeek   int    `json:"walks_per_week" validate:"min=0,max=14"`
	SubscriptionID string `json:"subscription_id" validate:"omitempty,max=255"`
}
