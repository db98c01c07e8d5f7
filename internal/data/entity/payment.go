package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentEventKind string

const (
	PaymentEventTokens       PaymentEventKind = "tokens"
	PaymentEventSubscription PaymentEventKind = "subscription"
)

// PaymentEvent records an applied payment confirmation. The ID comes from the
// payment provider and is the de-duplication key.
type PaymentEvent struct {
	ID             string           `db:"id"`
	SubjectID      string           `db:"subject_id"`
	Kind           PaymentEventKind `db:"kind"`
	GrantedTokens  int              `db:"granted_tokens"`
	WalksPerWeek   int              `db:"walks_per_week"`
	SubscriptionID *string          `db:"subscription_id"`
	ProcessedAt    time.Time        `db:"processed_at"`
}

// WalkPack is a purchasable bundle of walk tokens.
type WalkPack struct {
	ID    string
	Name  string
	Walks int
	Price decimal.Decimal
}

func (p WalkPack) PricePerWalk() decimal.Decimal {
	if p.Walks <= 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromInt(int64(p.Walks))).Round(2)
}
