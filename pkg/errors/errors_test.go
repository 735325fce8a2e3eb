package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHelperStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   string
		status int
	}{
		{NotFound("booking"), CodeNotFound, http.StatusNotFound},
		{Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{Conflict("raced"), CodeConflict, http.StatusConflict},
		{NoAvailability("double"), CodeNoAvailability, http.StatusConflict},
		{Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.StatusCode() != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.StatusCode())
		}
	}
}

func TestNoAvailabilityCarriesRoomType(t *testing.T) {
	err := NoAvailability("triple")
	if err.Details["room_type"] != "triple" {
		t.Errorf("expected room_type detail, got %v", err.Details)
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("store failure", cause)

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, CodeInternal) {
		t.Errorf("expected IsCode to see through wrapping")
	}
	if AsAppError(wrapped) == nil {
		t.Errorf("expected AsAppError to see through wrapping")
	}
}

func TestIsCode(t *testing.T) {
	if IsCode(nil, CodeNotFound) {
		t.Errorf("nil is no code")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Errorf("plain errors carry no code")
	}
	if !IsCode(Conflict("raced"), CodeConflict) {
		t.Errorf("expected conflict code")
	}
}
