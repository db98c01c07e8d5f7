package response

import (
	"time"

	"walk-booking/internal/data/entity"
)

type BookingResponse struct {
	BookingID   string               `json:"booking_id"`
	Slot        string               `json:"slot"`
	UserID      string               `json:"user_id"`
	UserName    string               `json:"user_name,omitempty"`
	UserEmail   string               `json:"user_email,omitempty"`
	DogName     string               `json:"dog_name"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	Status      entity.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
}

type SlotResponse struct {
	Slot      string    `json:"slot"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsPast    bool      `json:"is_past"`
	IsBooked  bool      `json:"is_booked"`
}

type AvailabilityResponse struct {
	Date   string         `json:"date"`
	Booked []string       `json:"booked"`
	Slots  []SlotResponse `json:"slots"`
}

type CancelResponse struct {
	OK bool `json:"ok"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		BookingID:   b.ID.String(),
		Slot:        b.SlotKey,
		UserID:      b.UserID,
		UserName:    b.UserName,
		UserEmail:   b.UserEmail,
		DogName:     b.DogName,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}
