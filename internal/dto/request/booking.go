package request

import "time"

type CreateBookingRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	DogName   string    `json:"dog_name" validate:"required,max=100"`
}

type AvailabilityRequest struct {
	Date string `json:"date" validate:"required"`
}

type UpcomingBookingsRequest struct {
	Limit  int    `json:"limit" validate:"min=0,max=500"`
	Status string `json:"status" validate:"omitempty,oneof=booked cancelled all"`
}
