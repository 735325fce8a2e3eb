package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "pgstay/internal/bookings/errors"
	"pgstay/pkg/config"
	mongotx "pgstay/pkg/db/mongo"
	"pgstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	FindByProperties(ctx context.Context, propertyIDs []string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByProperties(ctx context.Context, propertyIDs []string) (int64, error)
	CountByPropertiesAndStatus(ctx context.Context, propertyIDs []string, status model.BookingStatus) (int64, error)
	UpdateStatusGuarded(ctx context.Context, id string, from, to model.BookingStatus) error
	DeleteGuarded(ctx context.Context, id string, status model.BookingStatus) (bool, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit, offset)
}

func (r *mongoBookingRepository) FindByProperties(ctx context.Context, propertyIDs []string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"property_id": bson.M{"$in": propertyIDs}}, limit, offset)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) CountByProperties(ctx context.Context, propertyIDs []string) (int64, error) {
	return r.count(ctx, bson.M{"property_id": bson.M{"$in": propertyIDs}})
}

func (r *mongoBookingRepository) CountByPropertiesAndStatus(ctx context.Context, propertyIDs []string, status model.BookingStatus) (int64, error) {
	return r.count(ctx, bson.M{
		"property_id": bson.M{"$in": propertyIDs},
		"status":      status,
	})
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

// UpdateStatusGuarded moves a booking from one status to another only if
// it still holds the expected status. A zero match count surfaces as
// ErrStatusGuardFailed so the caller can abort the surrounding
// transaction instead of applying a transition twice.
func (r *mongoBookingRepository) UpdateStatusGuarded(ctx context.Context, id string, from, to model.BookingStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingerrors.ErrStatusGuardFailed
	}

	return nil
}

// DeleteGuarded removes the booking only while it holds the given
// status. It reports whether a document was deleted; the caller uses
// that to decide whether compensation already happened elsewhere.
func (r *mongoBookingRepository) DeleteGuarded(ctx context.Context, id string, status model.BookingStatus) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "status": status})
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}

	return result.DeletedCount > 0, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingerrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
