package mocks

import (
	"context"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

// UserService is a mock type for the usecase.UserService type
type UserService struct {
	mock.Mock
}

func (m *UserService) SyncProfile(ctx context.Context, identity request.Identity, req *request.SyncProfileRequest) (*response.ProfileResponse, error) {
	ret := m.Called(ctx, identity, req)
	profile, _ := ret.Get(0).(*response.ProfileResponse)
	return profile, ret.Error(1)
}

func (m *UserService) GetProfile(ctx context.Context, userID string) (*response.ProfileResponse, error) {
	ret := m.Called(ctx, userID)
	profile, _ := ret.Get(0).(*response.ProfileResponse)
	return profile, ret.Error(1)
}
