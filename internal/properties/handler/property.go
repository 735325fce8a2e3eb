package handler

import (
	"encoding/json"
	"net/http"

	"pgstay/internal/properties/service"
	"pgstay/pkg/config"
	apperrors "pgstay/pkg/errors"
	pkghttp "pgstay/pkg/http"
	"pgstay/pkg/middleware"
	"pgstay/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PropertyHandler struct {
	cfg     *config.Config
	service service.PropertyService
}

func NewPropertyHandler(cfg *config.Config, svc service.PropertyService) *PropertyHandler {
	return &PropertyHandler{cfg: cfg, service: svc}
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/api/v1/properties", h.List)
	router.HandlerFunc(http.MethodGet, "/api/v1/properties/id/:id", h.Get)
	router.HandlerFunc(http.MethodPost, "/api/v1/properties", h.Create)
	router.HandlerFunc(http.MethodPut, "/api/v1/properties/id/:id", h.Update)
	router.HandlerFunc(http.MethodPut, "/api/v1/properties/id/:id/availability", h.SetAvailability)
	router.HandlerFunc(http.MethodDelete, "/api/v1/properties/id/:id", h.Delete)
	router.HandlerFunc(http.MethodGet, "/api/v1/properties/owner", h.ListOwner)
	router.HandlerFunc(http.MethodGet, "/api/v1/properties/owner/dashboard", h.Dashboard)
}

type createPropertyRequest struct {
	Name        string           `json:"name"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	Amenities   []string         `json:"amenities"`
	Images      []string         `json:"images"`
	RoomConfig  model.RoomConfig `json:"room_config"`
}

type setAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pkghttp.ExtractLimitOffset(r)
	if err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	properties, total, err := h.service.ListAvailable(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WritePaginated(w, properties, total, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	property, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, property)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	var req createPropertyRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	property := &model.Property{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Amenities:   req.Amenities,
		Images:      req.Images,
		RoomConfig:  req.RoomConfig,
	}

	created, err := h.service.Create(r.Context(), identity, property)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteCreated(w, created)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	var update model.PropertyUpdate
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	property, err := h.service.Update(r.Context(), identity, id, &update)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, property)
}

func (h *PropertyHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	var req setAvailabilityRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}
	if req.IsAvailable == nil {
		pkghttp.WriteError(w, apperrors.InvalidInput("is_available is required"))
		return
	}

	property, err := h.service.SetAvailability(r.Context(), identity, id, *req.IsAvailable)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, property)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *PropertyHandler) ListOwner(w http.ResponseWriter, r *http.Request) {
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

	properties, total, err := h.service.ListByOwner(r.Context(), identity, limit, offset)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WritePaginated(w, properties, total, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
}

func (h *PropertyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		pkghttp.WriteError(w, apperrors.Unauthorized("authentication required"))
		return
	}

	stats, err := h.service.Dashboard(r.Context(), identity)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteSuccess(w, stats)
}
