package entity

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User is keyed by the subject id issued by the identity provider.
type User struct {
	Timestamps
	ID                string     `db:"id"`
	Name              string     `db:"name"`
	Email             string     `db:"email"`
	Role              UserRole   `db:"role"`
	IsVetted          bool       `db:"is_vetted"`
	WalkTokens        int        `db:"walk_tokens"`
	WalksPerWeek      int        `db:"walks_per_week"`
	SubscriptionID    *string    `db:"subscription_id"`
	FreeWalkBookingID *uuid.UUID `db:"free_walk_booking_id"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SubscriptionTier is a recurring entitlement; capacity is enforced by slot
// availability only.
type SubscriptionTier struct {
	WalksPerWeek   int
	SubscriptionID string
}

// Eligibility is either Unvetted or Vetted.
type Eligibility interface {
	eligibility()
}

type Unvetted struct {
	ActiveFreeBookingID *uuid.UUID
}

type Vetted struct {
	Tier *SubscriptionTier
}

func (Unvetted) eligibility() {}
func (Vetted) eligibility()   {}

// Eligibility derives the free-walk/subscription view of the stored columns.
func (u *User) Eligibility() Eligibility {
	if !u.IsVetted {
		return Unvetted{ActiveFreeBookingID: u.FreeWalkBookingID}
	}
	if u.SubscriptionID == nil || *u.SubscriptionID == "" || u.WalksPerWeek < 1 {
		return Vetted{}
	}
	return Vetted{Tier: &SubscriptionTier{
		WalksPerWeek:   u.WalksPerWeek,
		SubscriptionID: *u.SubscriptionID,
	}}
}
