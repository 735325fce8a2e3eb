package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pgstay/internal/bookings/service"
	"pgstay/pkg/config"
	apperrors "pgstay/pkg/errors"
	"pgstay/pkg/logger"
	"pgstay/pkg/middleware"
	"pgstay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockBookingService struct {
	checkAvailabilityFunc func(ctx context.Context, propertyID string, roomType model.RoomType) (*service.AvailabilityResult, error)
	createFunc            func(ctx context.Context, identity model.Identity, req *service.BookingRequest) (*model.Booking, error)
	changeStatusFunc      func(ctx context.Context, identity model.Identity, id string, newStatus model.BookingStatus) (*model.Booking, error)
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, propertyID string, roomType model.RoomType) (*service.AvailabilityResult, error) {
	if m.checkAvailabilityFunc != nil {
		return m.checkAvailabilityFunc(ctx, propertyID, roomType)
	}
	return &service.AvailabilityResult{}, nil
}

func (m *mockBookingService) Create(ctx context.Context, identity model.Identity, req *service.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, identity, req)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	return &model.Booking{}, nil
}

func (m *mockBookingService) ChangeStatus(ctx context.Context, identity model.Identity, id string, newStatus model.BookingStatus) (*model.Booking, error) {
	if m.changeStatusFunc != nil {
		return m.changeStatusFunc(ctx, identity, id, newStatus)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) Delete(ctx context.Context, identity model.Identity, id string) error {
	return nil
}

func (m *mockBookingService) ListUserBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) ListOwnerBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func newTestHandler(svc service.BookingService) (*BookingHandler, *httprouter.Router) {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
	h := NewBookingHandler(cfg, svc)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return h, router
}

func withIdentity(req *http.Request, identity model.Identity) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.IdentityKey, identity)
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Code
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	_, router := newTestHandler(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != apperrors.CodeUnauthorized {
		t.Errorf("expected %s, got %s", apperrors.CodeUnauthorized, code)
	}
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	_, router := newTestHandler(&mockBookingService{})

	body := `{"property_id":"507f191e810c19729de860ea","room_type":"double","months":3,"rent_per_month":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req = withIdentity(req, model.Identity{ID: "507f1f77bcf86cd799439011", Role: model.RoleUser})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("clients must not set the rent, expected 400, got %d", rec.Code)
	}
}

func TestCreate_PassesIdentityAndRequest(t *testing.T) {
	var gotIdentity model.Identity
	var gotReq *service.BookingRequest
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, identity model.Identity, req *service.BookingRequest) (*model.Booking, error) {
			gotIdentity = identity
			gotReq = req
			return &model.Booking{ID: "65f2a4c8e1b2c3d4e5f60718", Status: model.BookingPending}, nil
		},
	}
	_, router := newTestHandler(svc)

	start := time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339)
	body := `{"property_id":"507f191e810c19729de860ea","room_type":"double","start_date":"` + start + `","months":3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req = withIdentity(req, model.Identity{ID: "507f1f77bcf86cd799439011", Role: model.RoleUser})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotIdentity.ID != "507f1f77bcf86cd799439011" {
		t.Errorf("expected identity to reach the service, got %q", gotIdentity.ID)
	}
	if gotReq == nil || gotReq.RoomType != model.RoomDouble || gotReq.Months != 3 {
		t.Errorf("unexpected request payload: %+v", gotReq)
	}
}

func TestChangeStatus_MapsNoAvailabilityTo409(t *testing.T) {
	svc := &mockBookingService{
		changeStatusFunc: func(ctx context.Context, identity model.Identity, id string, newStatus model.BookingStatus) (*model.Booking, error) {
			return nil, apperrors.NoAvailability("double")
		},
	}
	_, router := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/id/65f2a4c8e1b2c3d4e5f60718/status", strings.NewReader(`{"status":"confirmed"}`))
	req = withIdentity(req, model.Identity{ID: "507f1f77bcf86cd799439012", Role: model.RoleOwner})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if code := decodeError(t, rec); code != apperrors.CodeNoAvailability {
		t.Errorf("expected %s, got %s", apperrors.CodeNoAvailability, code)
	}
}

func TestCheckAvailability_IsPublic(t *testing.T) {
	svc := &mockBookingService{
		checkAvailabilityFunc: func(ctx context.Context, propertyID string, roomType model.RoomType) (*service.AvailabilityResult, error) {
			return &service.AvailabilityResult{
				PropertyID: propertyID,
				RoomType:   roomType,
				Total:      4,
				Available:  2,
				Bookable:   true,
			}, nil
		},
	}
	_, router := newTestHandler(svc)

	body := `{"property_id":"507f191e810c19729de860ea","room_type":"double"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/check-availability", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("availability probe needs no auth, expected 200, got %d", rec.Code)
	}
}

func TestCheckAvailability_MissingPropertyID(t *testing.T) {
	_, router := newTestHandler(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/check-availability", strings.NewReader(`{"room_type":"double"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
