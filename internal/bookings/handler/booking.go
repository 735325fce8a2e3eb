package handler

import (
	"encoding/json"
	"net/http"

	"pgstay/internal/bookings/service"
	"pgstay/pkg/config"
	apperrors "pgstay/pkg/errors"
	pkghttp "pgstay/pkg/http"
	"pgstay/pkg/middleware"
	"pgstay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	cfg     *config.Config
	service service.BookingService
}

func NewBookingHandler(cfg *config.Config, svc service.BookingService) *BookingHandler {
	return &BookingHandler{cfg: cfg, service: svc}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodPost, "/api/v1/bookings/check-availability", h.CheckAvailability)
	router.HandlerFunc(http.MethodPost, "/api/v1/bookings", h.Create)
	router.HandlerFunc(http.MethodGet, "/api/v1/bookings/id/:id", h.Get)
	router.HandlerFunc(http.MethodGet, "/api/v1/bookings/me", h.ListMine)
	router.HandlerFunc(http.MethodGet, "/api/v1/bookings/owner", h.ListOwner)
	router.HandlerFunc(http.MethodPut, "/api/v1/bookings/id/:id/status", h.ChangeStatus)
	router.HandlerFunc(http.MethodDelete, "/api/v1/bookings/id/:id", h.Delete)
}

type checkAvailabilityRequest struct {
	PropertyID string         `json:"property_id"`
	RoomType   model.RoomType `json:"room_type"`
}

type changeStatusRequest struct {
	Status model.BookingStatus `json:"status"`
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req checkAvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if req.PropertyID == "" {
		pkghttp.WriteError(w, apperrors.InvalidInput("property_id is required"))
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), req.PropertyID, req.RoomType)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, result)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req service.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	booking, err := h.service.Create(r.Context(), identity, &req)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteCreated(w, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	booking, err := h.service.GetByID(r.Context(), identity, id)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	limit, offset, err := pkghttp.ExtractLimitOffset(r)
	if err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	bookings, total, err := h.service.ListUserBookings(r.Context(), identity, limit, offset)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WritePaginated(w, bookings, total, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
}

func (h *BookingHandler) ListOwner(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	limit, offset, err := pkghttp.ExtractLimitOffset(r)
	if err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	bookings, total, err := h.service.ListOwnerBookings(r.Context(), identity, limit, offset)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WritePaginated(w, bookings, total, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
}

func (h *BookingHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	var req changeStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), identity, id, req.Status)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, booking)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteNoContent(w)
}
