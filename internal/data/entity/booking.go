package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	return s == BookingStatusBooked || s == BookingStatusCancelled
}

// Booking reserves one slot. SlotKey is the canonical start instant; at most
// one booking per SlotKey may be in BookingStatusBooked.
type Booking struct {
	ID          uuid.UUID     `db:"id"`
	SlotKey     string        `db:"slot_key"`
	UserID      string        `db:"user_id"`
	UserName    string        `db:"user_name"`
	UserEmail   string        `db:"user_email"`
	DogName     string        `db:"dog_name"`
	StartTime   time.Time     `db:"start_time"`
	EndTime     time.Time     `db:"end_time"`
	Status      BookingStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	CancelledAt *time.Time    `db:"cancelled_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusBooked
}
