package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserEligibility(t *testing.T) {
	ref := uuid.New()
	sub := "sub_123"

	t.Run("unvetted carries free walk reference", func(t *testing.T) {
		u := &User{FreeWalkBookingID: &ref}
		e, ok := u.Eligibility().(Unvetted)
		require.True(t, ok)
		assert.Equal(t, &ref, e.ActiveFreeBookingID)
	})

	t.Run("vetted without subscription has no tier", func(t *testing.T) {
		u := &User{IsVetted: true, WalksPerWeek: 2}
		e, ok := u.Eligibility().(Vetted)
		require.True(t, ok)
		assert.Nil(t, e.Tier)
	})

	t.Run("vetted with subscription", func(t *testing.T) {
		u := &User{IsVetted: true, WalksPerWeek: 3, SubscriptionID: &sub}
		e, ok := u.Eligibility().(Vetted)
		require.True(t, ok)
		require.NotNil(t, e.Tier)
		assert.Equal(t, 3, e.Tier.WalksPerWeek)
		assert.Equal(t, sub, e.Tier.SubscriptionID)
	})
}
