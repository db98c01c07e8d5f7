// Package ledger decides whether a user may reserve one more walk and applies
// the balance side of reservations and cancellations.
//
// Policies mutate the *entity.User they are given and never touch storage.
// Callers load the user and persist it inside the same transaction as the
// booking write; called any other way the ledger loses updates.
package ledger

import (
	"fmt"

	"walk-booking/internal/data/entity"
	"walk-booking/pkg/apperr"

	"github.com/google/uuid"
)

type Model string

const (
	ModelTokens   Model = "tokens"
	ModelFreeWalk Model = "free_walk"
)

// Consumed describes what a successful Consume took from the user.
type Consumed struct {
	TokensDebited int
	FreeWalk      bool
}

type Policy interface {
	Model() Model
	HasReservationRight(u *entity.User) bool
	Consume(u *entity.User, bookingID uuid.UUID) (Consumed, error)
	Restore(u *entity.User, bookingID uuid.UUID)
}

func New(model Model) (Policy, error) {
	switch model {
	case ModelTokens:
		return TokenPolicy{}, nil
	case ModelFreeWalk:
		return FreeWalkPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown balance model %q", model)
	}
}

type TokenPolicy struct{}

func (TokenPolicy) Model() Model { return ModelTokens }

func (TokenPolicy) HasReservationRight(u *entity.User) bool {
	return u.WalkTokens >= 1
}

func (p TokenPolicy) Consume(u *entity.User, _ uuid.UUID) (Consumed, error) {
	if !p.HasReservationRight(u) {
		return Consumed{}, apperr.ErrInsufficientBalance
	}
	u.WalkTokens--
	return Consumed{TokensDebited: 1}, nil
}

func (TokenPolicy) Restore(u *entity.User, _ uuid.UUID) {
	u.WalkTokens++
}

// FreeWalkPolicy lets an unvetted user hold a single free walk and a vetted
// subscriber book without per-slot debits.
type FreeWalkPolicy struct{}

func (FreeWalkPolicy) Model() Model { return ModelFreeWalk }

func (FreeWalkPolicy) HasReservationRight(u *entity.User) bool {
	switch e := u.Eligibility().(type) {
	case entity.Unvetted:
		return e.ActiveFreeBookingID == nil
	case entity.Vetted:
		return e.Tier != nil
	}
	return false
}

var errSubscriptionRequired = apperr.New(apperr.KindInsufficientBalance, "an active subscription is required to book walks")

func (p FreeWalkPolicy) Consume(u *entity.User, bookingID uuid.UUID) (Consumed, error) {
	if !p.HasReservationRight(u) {
		return Consumed{}, p.denial(u)
	}
	if _, ok := u.Eligibility().(entity.Unvetted); ok {
		ref := bookingID
		u.FreeWalkBookingID = &ref
		return Consumed{FreeWalk: true}, nil
	}
	return Consumed{}, nil
}

func (FreeWalkPolicy) denial(u *entity.User) error {
	if _, ok := u.Eligibility().(entity.Unvetted); ok {
		return apperr.ErrFreeWalkUsed
	}
	return errSubscriptionRequired
}

func (FreeWalkPolicy) Restore(u *entity.User, bookingID uuid.UUID) {
	if u.FreeWalkBookingID != nil && *u.FreeWalkBookingID == bookingID {
		u.FreeWalkBookingID = nil
	}
}

// RequireRight is HasReservationRight reported as the business error a
// caller should see when the right is missing.
func RequireRight(p Policy, u *entity.User) error {
	if p.HasReservationRight(u) {
		return nil
	}
	if d, ok := p.(interface{ denial(*entity.User) error }); ok {
		return d.denial(u)
	}
	return apperr.ErrInsufficientBalance
}

// Credit adds purchased tokens. Only payment confirmation calls it.
func Credit(u *entity.User, tokens int) error {
	if tokens <= 0 {
		return apperr.New(apperr.KindValidation, "granted tokens must be positive")
	}
	u.WalkTokens += tokens
	return nil
}

// Subscribe activates or replaces the user's subscription tier.
func Subscribe(u *entity.User, tier entity.SubscriptionTier) error {
	if tier.WalksPerWeek < 1 || tier.SubscriptionID == "" {
		return apperr.New(apperr.KindValidation, "subscription tier requires walks per week and a subscription id")
	}
	id := tier.SubscriptionID
	u.SubscriptionID = &id
	u.WalksPerWeek = tier.WalksPerWeek
	return nil
}
