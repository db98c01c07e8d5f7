package response

import (
	"time"

	"walk-booking/internal/data/entity"
)

type BalanceResponse struct {
	Model        string `json:"model"`
	Tokens       int    `json:"tokens"`
	HasFreeWalk  bool   `json:"has_free_walk"`
	WalksPerWeek int    `json:"walks_per_week"`
	CanReserve   bool   `json:"can_reserve"`
}

type ProfileResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      entity.UserRole `json:"role"`
	IsVetted  bool            `json:"is_vetted"`
	Balance   BalanceResponse `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

type UserSummary struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	WalkTokens        int     `json:"walk_tokens"`
	WalksPerWeek      int     `json:"walks_per_week"`
	SubscriptionID    *string `json:"subscription_id,omitempty"`
	FreeWalkBookingID *string `json:"free_walk_booking_id,omitempty"`
}

type RosterResponse struct {
	Vetted   []UserSummary `json:"vetted"`
	Unvetted []UserSummary `json:"unvetted"`
}

func UserToSummary(u *entity.User) UserSummary {
	summary := UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		WalkTokens:     u.WalkTokens,
		WalksPerWeek:   u.WalksPerWeek,
		SubscriptionID: u.SubscriptionID,
	}
	if u.FreeWalkBookingID != nil {
		id := u.FreeWalkBookingID.String()
		summary.FreeWalkBookingID = &id
	}
	return summary
}
