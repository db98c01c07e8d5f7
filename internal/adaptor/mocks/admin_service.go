package mocks

import (
	"context"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

// AdminService is a mock type for the usecase.AdminService type
type AdminService struct {
	mock.Mock
}

func (m *AdminService) UpcomingBookings(ctx context.Context, callerID string, req *request.UpcomingBookingsRequest) ([]response.BookingResponse, error) {
	ret := m.Called(ctx, callerID, req)
	bookings, _ := ret.Get(0).([]response.BookingResponse)
	return bookings, ret.Error(1)
}

func (m *AdminService) Roster(ctx context.Context, callerID string) (*response.RosterResponse, error) {
	ret := m.Called(ctx, callerID)
	roster, _ := ret.Get(0).(*response.RosterResponse)
	return roster, ret.Error(1)
}
