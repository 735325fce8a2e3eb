package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	propertieserrors "pgstay/internal/properties/errors"
	"pgstay/pkg/config"
	mongotx "pgstay/pkg/db/mongo"
	"pgstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Properties"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *model.Property) error
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindAvailable(ctx context.Context, limit int, offset int64) ([]*model.Property, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error)
	Update(ctx context.Context, id string, property *model.Property) (*mongo.UpdateResult, error)
	SetAvailability(ctx context.Context, id string, isAvailable bool) error
	AdjustAvailable(ctx context.Context, id string, roomType model.RoomType, delta int) error
	Delete(ctx context.Context, id string) error
	CountAvailable(ctx context.Context) (int64, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is already a
// transaction session context, which must not be re-wrapped.
func (r *mongoPropertyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	property.CreatedAt = now
	property.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	var property model.Property
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, propertieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}

	return &property, nil
}

func (r *mongoPropertyRepository) FindAvailable(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"is_available": true}, limit, offset)
}

func (r *mongoPropertyRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID}, limit, offset)
}

func (r *mongoPropertyRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Property, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	defer cursor.Close(ctx)

	var properties []*model.Property
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	return properties, nil
}

func (r *mongoPropertyRepository) Update(ctx context.Context, id string, property *model.Property) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":         property.Name,
			"location":     property.Location,
			"description":  property.Description,
			"amenities":    property.Amenities,
			"images":       property.Images,
			"room_config":  property.RoomConfig,
			"beds_summary": property.BedsSummary,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, propertieserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoPropertyRepository) SetAvailability(ctx context.Context, id string, isAvailable bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"is_available": isAvailable,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set property availability: %w", err)
	}

	if result.MatchedCount == 0 {
		return propertieserrors.ErrNotFound
	}

	return nil
}

// AdjustAvailable applies a guarded atomic increment to one bed counter.
// delta must be -1 or +1. The filter encodes the invariant: a decrement
// only matches while available > 0, an increment only while available <
// total. A zero match count means the guard lost; callers decide whether
// that is exhausted inventory or a lost race.
func (r *mongoPropertyRepository) AdjustAvailable(ctx context.Context, id string, roomType model.RoomType, delta int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if delta != 1 && delta != -1 {
		return fmt.Errorf("unsupported availability delta: %d", delta)
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	availableField := fmt.Sprintf("beds_summary.%s.available", roomType)
	totalField := fmt.Sprintf("beds_summary.%s.total", roomType)

	filter := bson.M{"_id": objectID}
	if delta < 0 {
		filter[availableField] = bson.M{"$gt": 0}
	} else {
		filter["$expr"] = bson.M{"$lt": bson.A{"$" + availableField, "$" + totalField}}
	}

	update := bson.M{
		"$inc": bson.M{availableField: delta},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust bed availability: %w", err)
	}

	if result.MatchedCount == 0 {
		return propertieserrors.ErrGuardFailed
	}

	return nil
}

func (r *mongoPropertyRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	if result.DeletedCount == 0 {
		return propertieserrors.ErrNotFound
	}

	return nil
}

func (r *mongoPropertyRepository) CountAvailable(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"is_available": true})
}

func (r *mongoPropertyRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return r.count(ctx, bson.M{"owner_id": ownerID})
}

func (r *mongoPropertyRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}

	return count, nil
}

func (r *mongoPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
