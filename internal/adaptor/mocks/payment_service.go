package mocks

import (
	"context"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"

	"github.com/stretchr/testify/mock"
)

// PaymentService is a mock type for the usecase.PaymentService type
type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) ApplyEvent(ctx context.Context, event *request.PaymentConfirmedEvent) (*response.PaymentAppliedResponse, error) {
	ret := m.Called(ctx, event)
	applied, _ := ret.Get(0).(*response.PaymentAppliedResponse)
	return applied, ret.Error(1)
}

func (m *PaymentService) ListWalkPacks(ctx context.Context) []response.WalkPackResponse {
	packs, _ := m.Called(ctx).Get(0).([]response.WalkPackResponse)
	return packs
}
