package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingerrors "pgstay/internal/bookings/errors"
	"pgstay/internal/bookings/repository"
	bookingvalidator "pgstay/internal/bookings/validator"
	"pgstay/internal/events"
	propertieserrors "pgstay/internal/properties/errors"
	"pgstay/pkg/cache"
	"pgstay/pkg/config"
	mongotx "pgstay/pkg/db/mongo"
	apperrors "pgstay/pkg/errors"
	"pgstay/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// PropertyStore is the slice of the property catalog the booking engine
// needs: lookups, the guarded counter adjustment, and a transaction scope
// that spans both collections.
type PropertyStore interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error)
	AdjustAvailable(ctx context.Context, id string, roomType model.RoomType, delta int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// BookingRequest carries the client-supplied fields of a new booking.
// Price and amounts are always snapshotted server-side.
type BookingRequest struct {
	PropertyID string         `json:"property_id"`
	RoomType   model.RoomType `json:"room_type"`
	StartDate  time.Time      `json:"start_date"`
	Months     int            `json:"months"`
}

// AvailabilityResult is the cached answer to an availability probe.
type AvailabilityResult struct {
	PropertyID   string         `json:"property_id"`
	RoomType     model.RoomType `json:"room_type"`
	Total        int            `json:"total"`
	Available    int            `json:"available"`
	RentPerMonth float64        `json:"rent_per_month"`
	Bookable     bool           `json:"bookable"`
}

type BookingService interface {
	CheckAvailability(ctx context.Context, propertyID string, roomType model.RoomType) (*AvailabilityResult, error)
	Create(ctx context.Context, identity model.Identity, req *BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error)
	ChangeStatus(ctx context.Context, identity model.Identity, id string, newStatus model.BookingStatus) (*model.Booking, error)
	Delete(ctx context.Context, identity model.Identity, id string) error
	ListUserBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error)
	ListOwnerBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	cfg        *config.Config
	repo       repository.BookingRepository
	locks      repository.TransitionLockRepository
	properties PropertyStore
	validator  *bookingvalidator.BookingValidator
	cache      *cache.Cache
	publisher  events.Publisher
}

func NewBookingService(
	cfg *config.Config,
	repo repository.BookingRepository,
	locks repository.TransitionLockRepository,
	properties PropertyStore,
	v *bookingvalidator.BookingValidator,
	c *cache.Cache,
	publisher events.Publisher,
) BookingService {
	return &bookingService{
		cfg:        cfg,
		repo:       repo,
		locks:      locks,
		properties: properties,
		validator:  v,
		cache:      c,
		publisher:  publisher,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, propertyID string, roomType model.RoomType) (*AvailabilityResult, error) {
	if !roomType.Valid() {
		return nil, apperrors.InvalidInput("invalid room type")
	}

	key := cache.AvailabilityKey(propertyID, string(roomType))
	if s.cache != nil {
		var cached AvailabilityResult
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.cfg.Log.Warn("availability cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, translatePropertyError(err, propertyID)
	}

	result := buildAvailability(property, roomType)

	// An exhausted room type is an error, not a snapshot. Never cache it;
	// a release must make the next check succeed immediately.
	if result.Available <= 0 {
		return nil, apperrors.NoAvailability(string(roomType))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.cfg.Log.Warn("availability cache write failed", "key", key, "error", err)
		}
	}

	return result, nil
}

func buildAvailability(property *model.Property, roomType model.RoomType) *AvailabilityResult {
	summary := property.BedsSummary.ForType(roomType)
	option := property.RoomConfig.ForType(roomType)

	return &AvailabilityResult{
		PropertyID:   property.ID,
		RoomType:     roomType,
		Total:        summary.Total,
		Available:    summary.Available,
		RentPerMonth: option.Price,
		Bookable:     property.IsAvailable && option.Rooms > 0 && summary.Available > 0,
	}
}

// Create records a pending booking request. Pending bookings hold no
// inventory; beds are only committed when the owner confirms.
func (s *bookingService) Create(ctx context.Context, identity model.Identity, req *BookingRequest) (*model.Booking, error) {
	if !req.RoomType.Valid() {
		return nil, apperrors.InvalidInput("invalid room type")
	}

	property, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, translatePropertyError(err, req.PropertyID)
	}

	if !property.IsAvailable {
		return nil, apperrors.Conflict("property is not accepting bookings")
	}

	option := property.RoomConfig.ForType(req.RoomType)
	if option.Rooms == 0 {
		return nil, apperrors.NoAvailability(string(req.RoomType))
	}
	if property.BedsSummary.ForType(req.RoomType).Available <= 0 {
		return nil, apperrors.NoAvailability(string(req.RoomType))
	}

	booking := &model.Booking{
		UserID:        identity.ID,
		PropertyID:    req.PropertyID,
		RoomType:      req.RoomType,
		StartDate:     req.StartDate.UTC(),
		Months:        req.Months,
		RentPerMonth:  option.Price,
		TotalAmount:   option.Price * float64(req.Months),
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentUnpaid,
	}

	if err := s.validator.Validate(booking); err != nil {
		return nil, translateValidation(err)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, apperrors.Internal("failed to create booking", err)
	}

	s.cfg.Log.Info("booking created",
		"booking_id", booking.ID,
		"property_id", booking.PropertyID,
		"room_type", booking.RoomType,
		"user_id", booking.UserID,
	)
	s.publisher.BookingChanged(ctx, events.BookingCreated, booking)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, identity model.Identity, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateBookingError(err, id)
	}

	if booking.UserID != identity.ID {
		if _, err := s.loadOwnedProperty(ctx, identity, booking.PropertyID); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

// ChangeStatus drives the booking lifecycle. The sequence is: authorize,
// take the per-booking advisory lock, then commit the counter adjustment
// and the status-guarded booking write in a single transaction. Any
// guard that matches nothing aborts the whole transaction.
func (s *bookingService) ChangeStatus(ctx context.Context, identity model.Identity, id string, newStatus model.BookingStatus) (*model.Booking, error) {
	if !newStatus.Valid() {
		return nil, apperrors.InvalidInput("invalid booking status")
	}
	if newStatus == model.BookingPending {
		return nil, apperrors.Conflict("bookings cannot return to pending")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateBookingError(err, id)
	}

	if err := s.authorizeTransition(ctx, identity, booking); err != nil {
		return nil, err
	}

	if booking.Status == newStatus {
		// Retried request; the transition already happened.
		return booking, nil
	}
	if booking.Status == model.BookingCancelled && newStatus == model.BookingConfirmed {
		return nil, apperrors.Conflict("cancelled bookings cannot be confirmed")
	}

	if err := s.locks.Acquire(ctx, id); err != nil {
		if errors.Is(err, bookingerrors.ErrLockHeld) {
			return nil, apperrors.Conflict("another transition for this booking is in progress")
		}
		return nil, apperrors.Internal("failed to acquire transition lock", err)
	}
	defer s.releaseLock(ctx, id)

	// Re-read under the lock: the first read raced other transitions.
	booking, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateBookingError(err, id)
	}
	if booking.Status == newStatus {
		return booking, nil
	}
	if booking.Status == model.BookingCancelled && newStatus == model.BookingConfirmed {
		return nil, apperrors.Conflict("cancelled bookings cannot be confirmed")
	}

	delta := inventoryDelta(booking.Status, newStatus)
	from := booking.Status

	err = s.properties.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if delta != 0 {
			if err := s.adjustInventory(sessCtx, booking, delta); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateStatusGuarded(sessCtx, id, from, newStatus); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusGuardFailed) {
				return apperrors.Conflict("booking was modified concurrently")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("booking transition failed", err)
	}

	booking.Status = newStatus
	s.invalidateAvailability(ctx, booking.PropertyID, booking.RoomType)

	eventType := events.BookingConfirmed
	if newStatus == model.BookingCancelled {
		eventType = events.BookingCancelled
	}
	s.cfg.Log.Info("booking status changed",
		"booking_id", id,
		"from", from,
		"to", newStatus,
	)
	s.publisher.BookingChanged(ctx, eventType, booking)

	return booking, nil
}

// Delete removes a booking record. Only the property owner may delete;
// it is the owner's compensating operation, not a user-facing cancel.
// Deleting a confirmed booking frees its bed in the same transaction;
// pending and cancelled bookings hold no inventory so the record is
// simply dropped.
func (s *bookingService) Delete(ctx context.Context, identity model.Identity, id string) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateBookingError(err, id)
	}

	if _, err := s.loadOwnedProperty(ctx, identity, booking.PropertyID); err != nil {
		return err
	}

	if err := s.locks.Acquire(ctx, id); err != nil {
		if errors.Is(err, bookingerrors.ErrLockHeld) {
			return apperrors.Conflict("another transition for this booking is in progress")
		}
		return apperrors.Internal("failed to acquire transition lock", err)
	}
	defer s.releaseLock(ctx, id)

	booking, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return translateBookingError(err, id)
	}

	if booking.Status != model.BookingConfirmed {
		if err := s.repo.Delete(ctx, id); err != nil {
			return translateBookingError(err, id)
		}
	} else {
		err = s.properties.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.adjustInventory(sessCtx, booking, +1); err != nil {
				return err
			}
			deleted, err := s.repo.DeleteGuarded(sessCtx, id, model.BookingConfirmed)
			if err != nil {
				return err
			}
			if !deleted {
				return apperrors.Conflict("booking was modified concurrently")
			}
			return nil
		})
		if err != nil {
			if apperrors.IsAppError(err) {
				return err
			}
			return apperrors.Internal("booking deletion failed", err)
		}
	}

	s.invalidateAvailability(ctx, booking.PropertyID, booking.RoomType)
	s.cfg.Log.Info("booking deleted", "booking_id", id, "status", booking.Status)
	s.publisher.BookingChanged(ctx, events.BookingDeleted, booking)

	return nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg       sync.WaitGroup
		bookings []*model.Booking
		total    int64
		listErr  error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, listErr = s.repo.FindByUser(ctx, identity.ID, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountByUser(ctx, identity.ID)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, 0, apperrors.Internal("failed to list bookings", listErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("failed to count bookings", countErr)
	}

	return bookings, total, nil
}

func (s *bookingService) ListOwnerBookings(ctx context.Context, identity model.Identity, limit int, offset int64) ([]*model.Booking, int64, error) {
	if !identity.IsOwner() {
		return nil, 0, apperrors.Forbidden("only owners can view property bookings")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	propertyIDs, err := s.ownerPropertyIDs(ctx, identity.ID)
	if err != nil {
		return nil, 0, err
	}
	if len(propertyIDs) == 0 {
		return []*model.Booking{}, 0, nil
	}

	var (
		wg       sync.WaitGroup
		bookings []*model.Booking
		total    int64
		listErr  error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, listErr = s.repo.FindByProperties(ctx, propertyIDs, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountByProperties(ctx, propertyIDs)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, 0, apperrors.Internal("failed to list property bookings", listErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("failed to count property bookings", countErr)
	}

	return bookings, total, nil
}

// authorizeTransition enforces who may drive a transition: only the
// owner of the booking's property. The booking's user sees state
// changes but does not drive them.
func (s *bookingService) authorizeTransition(ctx context.Context, identity model.Identity, booking *model.Booking) error {
	_, err := s.loadOwnedProperty(ctx, identity, booking.PropertyID)
	return err
}

func (s *bookingService) loadOwnedProperty(ctx context.Context, identity model.Identity, propertyID string) (*model.Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, translatePropertyError(err, propertyID)
	}
	if property.OwnerID != identity.ID {
		return nil, apperrors.Forbidden("booking belongs to another owner's property")
	}
	return property, nil
}

// adjustInventory applies the guarded counter update. A failed decrement
// means the last bed went to someone else. A failed increment means the
// counter is already at its cap, which happens after an owner shrinks
// the room configuration; the bed was reclaimed by the resize, so the
// transition proceeds without it.
func (s *bookingService) adjustInventory(ctx context.Context, booking *model.Booking, delta int) error {
	err := s.properties.AdjustAvailable(ctx, booking.PropertyID, booking.RoomType, delta)
	if err == nil {
		return nil
	}
	if errors.Is(err, propertieserrors.ErrGuardFailed) {
		if delta < 0 {
			return apperrors.NoAvailability(string(booking.RoomType))
		}
		s.cfg.Log.Warn("bed release skipped, counter already at capacity",
			"property_id", booking.PropertyID,
			"room_type", booking.RoomType,
		)
		return nil
	}
	return err
}

func inventoryDelta(from, to model.BookingStatus) int {
	switch {
	case from == model.BookingPending && to == model.BookingConfirmed:
		return -1
	case from == model.BookingConfirmed && to == model.BookingCancelled:
		return +1
	default:
		return 0
	}
}

func (s *bookingService) ownerPropertyIDs(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	var offset int64
	for {
		page, err := s.properties.FindByOwner(ctx, ownerID, config.DefaultPaginationLimit, offset)
		if err != nil {
			return nil, apperrors.Internal("failed to list owner properties", err)
		}
		if len(page) == 0 {
			return ids, nil
		}
		for _, p := range page {
			ids = append(ids, p.ID)
		}
		offset += int64(len(page))
	}
}

// releaseLock runs on a detached context so a cancelled request still
// frees the lock; the TTL index is only the backstop.
func (s *bookingService) releaseLock(ctx context.Context, id string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()
	if err := s.locks.Release(releaseCtx, id); err != nil {
		s.cfg.Log.Error("failed to release transition lock", "booking_id", id, "error", err)
	}
}

func (s *bookingService) invalidateAvailability(ctx context.Context, propertyID string, roomType model.RoomType) {
	if s.cache == nil {
		return
	}
	key := cache.AvailabilityKey(propertyID, string(roomType))
	if err := s.cache.Del(ctx, key); err != nil {
		s.cfg.Log.Warn("failed to invalidate availability cache", "key", key, "error", err)
	}
}

func translateValidation(err error) error {
	var verrs bookingvalidator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, ve := range verrs {
			fields[ve.Field] = ve.Message
		}
		return apperrors.Validation("booking validation failed", fields)
	}
	return apperrors.Validation(err.Error(), nil)
}

func translateBookingError(err error, id string) error {
	switch {
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("booking", id)
	case errors.Is(err, bookingerrors.ErrInvalidID):
		return apperrors.InvalidInput("invalid booking id")
	default:
		return apperrors.Internal("booking store failure", err)
	}
}

func translatePropertyError(err error, id string) error {
	switch {
	case errors.Is(err, propertieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("property", id)
	case errors.Is(err, propertieserrors.ErrInvalidID):
		return apperrors.InvalidInput("invalid property id")
	default:
		return apperrors.Internal("property store failure", err)
	}
}
