package adaptor

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walk-booking/internal/adaptor/mocks"
	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var noon = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func asSubject(r *http.Request, subject string) *http.Request {
	if subject == "" {
		return r
	}
	return r.WithContext(utils.SetIdentityContext(r.Context(), subject, subject+"@example.com", "Walker"))
}

func bookingRouter(svc *mocks.BookingService) *chi.Mux {
	h := NewBookingHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/bookings", h.Reserve)
	r.Delete("/api/bookings/{id}", h.Cancel)
	r.Get("/api/bookings/availability", h.Availability)
	r.Get("/api/user/booking", h.MyBooking)
	r.Get("/api/user/bookings", h.GetUserBookings)
	return r
}

func TestBookingHandler_Reserve(t *testing.T) {
	t.Parallel()

	booked := &response.BookingResponse{BookingID: "b-1", Slot: "2024-06-01T12:00", UserID: "u1", DogName: "Rex", StartTime: noon, Status: "booked"}
	matchReq := mock.MatchedBy(func(req *request.CreateBookingRequest) bool {
		return req.StartTime.Equal(noon) && req.DogName == "Rex"
	})

	testCases := []struct {
		name           string
		subject        string
		body           string
		mockSetup      func(m *mocks.BookingService)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:    "Success",
			subject: "u1",
			body:    `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup: func(m *mocks.BookingService) {
				m.On("Reserve", mock.Anything, "u1", matchReq).Return(booked, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"booking_id":"b-1"`)
				assert.Contains(t, body, `"slot":"2024-06-01T12:00"`)
			},
		},
		{
			name:           "Anonymous",
			body:           `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup:      func(m *mocks.BookingService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid JSON",
			subject:        "u1",
			body:           `not json`,
			mockSetup:      func(m *mocks.BookingService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "Invalid request body")
			},
		},
		{
			name:           "Missing dog name",
			subject:        "u1",
			body:           `{"start_time":"2024-06-01T12:00:00Z"}`,
			mockSetup:      func(m *mocks.BookingService) {},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"dog_name":"This field is required"`)
			},
		},
		{
			name:    "Slot taken",
			subject: "u1",
			body:    `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup: func(m *mocks.BookingService) {
				m.On("Reserve", mock.Anything, "u1", matchReq).Return(nil, apperr.ErrSlotConflict)
			},
			expectedStatus: http.StatusConflict,
			checkBody: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"status":false,"message":"slot already booked","errors":{"code":"slot_conflict"}}`, body)
			},
		},
		{
			name:    "No balance",
			subject: "u1",
			body:    `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup: func(m *mocks.BookingService) {
				m.On("Reserve", mock.Anything, "u1", matchReq).Return(nil, apperr.ErrFreeWalkUsed)
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"code":"insufficient_balance"`)
			},
		},
		{
			name:    "Contention",
			subject: "u1",
			body:    `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup: func(m *mocks.BookingService) {
				m.On("Reserve", mock.Anything, "u1", matchReq).Return(nil, apperr.ErrTransactionAborted)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:    "Storage failure hides cause",
			subject: "u1",
			body:    `{"start_time":"2024-06-01T12:00:00Z","dog_name":"Rex"}`,
			mockSetup: func(m *mocks.BookingService) {
				m.On("Reserve", mock.Anything, "u1", matchReq).Return(nil, errors.New("dial tcp 10.0.0.1: refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body string) {
				assert.NotContains(t, body, "10.0.0.1")
				assert.Contains(t, body, "service temporarily unavailable")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.BookingService{}
			tc.mockSetup(svc)

			req := asSubject(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(tc.body)), tc.subject)
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			bookingRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_ContentionSetsRetryAfter(t *testing.T) {
	svc := &mocks.BookingService{}
	svc.On("Cancel", mock.Anything, "u1", "b-1").Return(apperr.ErrTransactionAborted)

	rr := httptest.NewRecorder()
	bookingRouter(svc).ServeHTTP(rr, asSubject(httptest.NewRequest(http.MethodDelete, "/api/bookings/b-1", nil), "u1"))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestBookingHandler_Cancel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		subject        string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"Success", "u1", nil, http.StatusOK, `{"status":true,"message":"Booking cancelled","data":{"ok":true}}`},
		{"Not found", "u1", apperr.ErrBookingNotFound, http.StatusNotFound, `{"status":false,"message":"booking not found","errors":{"code":"booking_not_found"}}`},
		{"Not owner", "u1", apperr.ErrForbidden, http.StatusForbidden, ""},
		{"Already cancelled", "u1", apperr.ErrBookingNotActive, http.StatusConflict, ""},
		{"Anonymous", "", nil, http.StatusUnauthorized, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mocks.BookingService{}
			if tc.subject != "" {
				svc.On("Cancel", mock.Anything, tc.subject, "b-1").Return(tc.err)
			}

			rr := httptest.NewRecorder()
			bookingRouter(svc).ServeHTTP(rr, asSubject(httptest.NewRequest(http.MethodDelete, "/api/bookings/b-1", nil), tc.subject))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_Availability(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		svc := &mocks.BookingService{}
		svc.On("Availability", mock.Anything, "2024-06-01").Return(&response.AvailabilityResponse{
			Date:   "2024-06-01",
			Booked: []string{"2024-06-01T12:00"},
			Slots:  []response.SlotResponse{{Slot: "2024-06-01T12:00", StartTime: noon, EndTime: noon.Add(30 * time.Minute), IsBooked: true}},
		}, nil)

		rr := httptest.NewRecorder()
		bookingRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/availability?date=2024-06-01", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"booked":["2024-06-01T12:00"]`)
		assert.Contains(t, rr.Body.String(), `"is_booked":true`)
		svc.AssertExpectations(t)
	})

	t.Run("Missing date", func(t *testing.T) {
		svc := &mocks.BookingService{}

		rr := httptest.NewRecorder()
		bookingRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/availability", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Availability", mock.Anything, mock.Anything)
	})

	t.Run("Malformed date", func(t *testing.T) {
		svc := &mocks.BookingService{}
		svc.On("Availability", mock.Anything, "June 1st").Return(nil, apperr.ErrInvalidDate)

		rr := httptest.NewRecorder()
		bookingRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/bookings/availability?date=June+1st", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"code":"invalid_date"`)
	})
}

func TestBookingHandler_MyBooking(t *testing.T) {
	t.Parallel()

	t.Run("Upcoming", func(t *testing.T) {
		svc := &mocks.BookingService{}
		svc.On("MyBooking", mock.Anything, "u1").Return(&response.BookingResponse{BookingID: "b-1"}, nil)

		rr := httptest.NewRecorder()
		bookingRouter(svc).ServeHTTP(rr, asSubject(httptest.NewRequest(http.MethodGet, "/api/user/booking", nil), "u1"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"booking_id":"b-1"`)
	})

	t.Run("Nothing booked", func(t *testing.T) {
		svc := &mocks.BookingService{}
		svc.On("MyBooking", mock.Anything, "u1").Return(nil, nil)

		rr := httptest.NewRecorder()
		bookingRouter(svc).ServeHTTP(rr, asSubject(httptest.NewRequest(http.MethodGet, "/api/user/booking", nil), "u1"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":true,"message":"No upcoming booking"}`, rr.Body.String())
	})
}

func TestBookingHandler_GetUserBookings(t *testing.T) {
	svc := &mocks.BookingService{}
	svc.On("GetUserBookings", mock.Anything, "u1", &request.PaginatedRequest{Page: 2, PerPage: 5}).
		Return(&response.PaginatedResponse[response.BookingResponse]{Data: []response.BookingResponse{{BookingID: "b-9"}}}, nil)

	rr := httptest.NewRecorder()
	bookingRouter(svc).ServeHTTP(rr, asSubject(httptest.NewRequest(http.MethodGet, "/api/user/bookings?page=2&per_page=5", nil), "u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"booking_id":"b-9"`)
	svc.AssertExpectations(t)
}
