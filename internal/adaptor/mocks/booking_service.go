package mocks

import (
	"context"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

// BookingService is a mock type for the usecase.BookingService type
type BookingService struct {
	mock.Mock
}

func (m *BookingService) Reserve(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	ret := m.Called(ctx, userID, req)
	booking, _ := ret.Get(0).(*response.BookingResponse)
	return booking, ret.Error(1)
}

func (m *BookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	return m.Called(ctx, userID, bookingID).Error(0)
}

func (m *BookingService) Availability(ctx context.Context, date string) (*response.AvailabilityResponse, error) {
	ret := m.Called(ctx, date)
	availability, _ := ret.Get(0).(*response.AvailabilityResponse)
	return availability, ret.Error(1)
}

func (m *BookingService) MyBooking(ctx context.Context, userID string) (*response.BookingResponse, error) {
	ret := m.Called(ctx, userID)
	booking, _ := ret.Get(0).(*response.BookingResponse)
	return booking, ret.Error(1)
}

func (m *BookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	ret := m.Called(ctx, userID, req)
	page, _ := ret.Get(0).(*response.PaginatedResponse[response.BookingResponse])
	return page, ret.Error(1)
}
