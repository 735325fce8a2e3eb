package service

import (
	"context"
	"errors"
	"sync"

	propertieserrors "pgstay/internal/properties/errors"
	"pgstay/internal/properties/repository"
	propertyvalidator "pgstay/internal/properties/validator"
	"pgstay/pkg/cache"
	"pgstay/pkg/config"
	apperrors "pgstay/pkg/errors"
	"pgstay/pkg/model"
	"pgstay/pkg/sanitizer"
)

// BookingStats is the slice of the bookings store the dashboard needs.
// Kept as a local interface so the two domains stay decoupled.
type BookingStats interface {
	CountByPropertiesAndStatus(ctx context.Context, propertyIDs []string, status model.BookingStatus) (int64, error)
}

// DashboardStats aggregates an owner's portfolio for the dashboard view.
type DashboardStats struct {
	TotalProperties   int64   `json:"total_properties"`
	TotalBeds         int     `json:"total_beds"`
	OccupiedBeds      int     `json:"occupied_beds"`
	AvailableBeds     int     `json:"available_beds"`
	PendingBookings   int64   `json:"pending_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	MonthlyRevenue    float64 `json:"monthly_revenue"`
}

type PropertyService interface {
	Create(ctx context.Context, identity model.Identity, property *model.Property) (*model.Property, error)
	GetByID(ctx context.Context, id string) (*model.Property, error)
	ListAvailable(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	ListByOwner(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, identity model.Identity, id string, update *model.PropertyUpdate) (*model.Property, error)
	SetAvailability(ctx context.Context, identity model.Identity, id string, isAvailable bool) (*model.Property, error)
	Delete(ctx context.Context, identity model.Identity, id string) error
	Dashboard(ctx context.Context, identity model.Identity) (*DashboardStats, error)
}

type propertyService struct {
	cfg       *config.Config
	repo      repository.PropertyRepository
	stats     BookingStats
	validator *propertyvalidator.PropertyValidator
	cache     *cache.Cache
}

func NewPropertyService(cfg *config.Config, repo repository.PropertyRepository, stats BookingStats, v *propertyvalidator.PropertyValidator, c *cache.Cache) PropertyService {
	return &propertyService{
		cfg:       cfg,
		repo:      repo,
		stats:     stats,
		validator: v,
		cache:     c,
	}
}

func (s *propertyService) Create(ctx context.Context, identity model.Identity, property *model.Property) (*model.Property, error) {
	if !identity.IsOwner() {
		return nil, apperrors.Forbidden("only owners can list properties")
	}

	property.ID = ""
	property.OwnerID = identity.ID
	property.IsAvailable = true
	s.sanitize(property)

	// Counters always derive from the room configuration; the client
	// never supplies them.
	property.BedsSummary = property.RoomConfig.FreshBedsSummary()

	if err := s.validator.Validate(property); err != nil {
		return nil, translateValidation(err)
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, apperrors.Internal("failed to create property", err)
	}

	s.cfg.Log.Info("property created",
		"property_id", property.ID,
		"owner_id", property.OwnerID,
	)
	return property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return property, nil
}

func (s *propertyService) ListAvailable(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg         sync.WaitGroup
		properties []*model.Property
		total      int64
		listErr    error
		countErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		properties, listErr = s.repo.FindAvailable(ctx, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountAvailable(ctx)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, 0, apperrors.Internal("failed to list properties", listErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("failed to count properties", countErr)
	}

	return properties, total, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Property, int64, error) {
	if !identity.IsOwner() {
		return nil, 0, apperrors.Forbidden("only owners can view their listings")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg         sync.WaitGroup
		properties []*model.Property
		total      int64
		listErr    error
		countErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		properties, listErr = s.repo.FindByOwner(ctx, identity.ID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountByOwner(ctx, identity.ID)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, 0, apperrors.Internal("failed to list owner properties", listErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("failed to count owner properties", countErr)
	}

	return properties, total, nil
}

func (s *propertyService) Update(ctx context.Context, identity model.Identity, id string, update *model.PropertyUpdate) (*model.Property, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, translateValidation(err)
	}

	property, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		property.Name = sanitizer.NormalizeName(update.Name)
	}
	if update.Location != "" {
		property.Location = sanitizer.NormalizeLocation(update.Location)
	}
	if update.Description != nil {
		property.Description = sanitizer.TrimAndNormalize(*update.Description)
	}
	if update.Amenities != nil {
		amenities := make([]string, 0, len(*update.Amenities))
		for _, a := range *update.Amenities {
			if normalized := sanitizer.NormalizeAmenity(a); normalized != "" {
				amenities = append(amenities, normalized)
			}
		}
		property.Amenities = amenities
	}
	if update.Images != nil {
		property.Images = sanitizer.NormalizeURLs(*update.Images)
	}

	roomConfigChanged := false
	if update.RoomConfig != nil {
		property.RoomConfig = *update.RoomConfig
		// Rebasing keeps the occupied bed count intact so in-flight
		// bookings stay accounted for after a resize.
		property.BedsSummary = property.BedsSummary.Rebase(property.RoomConfig)
		roomConfigChanged = true
	}

	if _, err := s.repo.Update(ctx, id, property); err != nil {
		return nil, translateRepoError(err, id)
	}

	if roomConfigChanged {
		s.invalidateAvailability(ctx, id)
	}

	s.cfg.Log.Info("property updated",
		"property_id", id,
		"owner_id", identity.ID,
		"room_config_changed", roomConfigChanged,
	)
	return property, nil
}

func (s *propertyService) SetAvailability(ctx context.Context, identity model.Identity, id string, isAvailable bool) (*model.Property, error) {
	property, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetAvailability(ctx, id, isAvailable); err != nil {
		return nil, translateRepoError(err, id)
	}

	property.IsAvailable = isAvailable
	s.invalidateAvailability(ctx, id)
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, identity model.Identity, id string) error {
	if _, err := s.loadOwned(ctx, identity, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id)
	}

	s.invalidateAvailability(ctx, id)
	s.cfg.Log.Info("property deleted", "property_id", id, "owner_id", identity.ID)
	return nil
}

func (s *propertyService) Dashboard(ctx context.Context, identity model.Identity) (*DashboardStats, error) {
	if !identity.IsOwner() {
		return nil, apperrors.Forbidden("only owners have a dashboard")
	}

	total, err := s.repo.CountByOwner(ctx, identity.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to count owner properties", err)
	}

	stats := &DashboardStats{TotalProperties: total}

	propertyIDs := make([]string, 0, total)
	var offset int64
	for {
		page, err := s.repo.FindByOwner(ctx, identity.ID, config.DefaultPaginationLimit, offset)
		if err != nil {
			return nil, apperrors.Internal("failed to list owner properties", err)
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			propertyIDs = append(propertyIDs, p.ID)
			for _, rt := range model.RoomTypes {
				summary := p.BedsSummary.ForType(rt)
				occupied := summary.Total - summary.Available
				stats.TotalBeds += summary.Total
				stats.AvailableBeds += summary.Available
				stats.OccupiedBeds += occupied
				stats.MonthlyRevenue += float64(occupied) * p.RoomConfig.ForType(rt).Price
			}
		}
		offset += int64(len(page))
	}

	if len(propertyIDs) > 0 {
		pending, err := s.stats.CountByPropertiesAndStatus(ctx, propertyIDs, model.BookingPending)
		if err != nil {
			return nil, apperrors.Internal("failed to count pending bookings", err)
		}
		confirmed, err := s.stats.CountByPropertiesAndStatus(ctx, propertyIDs, model.BookingConfirmed)
		if err != nil {
			return nil, apperrors.Internal("failed to count confirmed bookings", err)
		}
		stats.PendingBookings = pending
		stats.ConfirmedBookings = confirmed
	}

	return stats, nil
}

// loadOwned fetches a property and enforces that the caller owns it.
// A property that exists but belongs to someone else is Forbidden, not
// NotFound; listings are public so hiding existence buys nothing.
func (s *propertyService) loadOwned(ctx context.Context, identity model.Identity, id string) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	if property.OwnerID != identity.ID {
		return nil, apperrors.Forbidden("property belongs to another owner")
	}

	return property, nil
}

func (s *propertyService) sanitize(property *model.Property) {
	property.Name = sanitizer.NormalizeName(property.Name)
	property.Location = sanitizer.NormalizeLocation(property.Location)
	property.Description = sanitizer.TrimAndNormalize(property.Description)

	amenities := make([]string, 0, len(property.Amenities))
	for _, a := range property.Amenities {
		if normalized := sanitizer.NormalizeAmenity(a); normalized != "" {
			amenities = append(amenities, normalized)
		}
	}
	property.Amenities = amenities
	property.Images = sanitizer.NormalizeURLs(property.Images)
}

func (s *propertyService) invalidateAvailability(ctx context.Context, propertyID string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(model.RoomTypes))
	for _, rt := range model.RoomTypes {
		keys = append(keys, cache.AvailabilityKey(propertyID, string(rt)))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.cfg.Log.Warn("failed to invalidate availability cache",
			"property_id", propertyID,
			"error", err,
		)
	}
}

func translateValidation(err error) error {
	var verrs propertyvalidator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, ve := range verrs {
			fields[ve.Field] = ve.Message
		}
		return apperrors.Validation("property validation failed", fields)
	}
	return apperrors.Validation(err.Error(), nil)
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, propertieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("property", id)
	case errors.Is(err, propertieserrors.ErrInvalidID):
		return apperrors.InvalidInput("invalid property id")
	default:
		return apperrors.Internal("property store failure", err)
	}
}
