package repository

import (
	"context"
	"fmt"
	"time"

	bookingerrors "pgstay/internal/bookings/errors"
	"pgstay/pkg/config"
	"pgstay/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "BookingTransitionLocks"
)

// TransitionLockRepository serializes status transitions per booking.
// Acquire is an insert-once on the booking id: exactly one caller wins,
// everyone else sees ErrLockHeld. A TTL index on expires_at reaps locks
// abandoned by crashed processes.
type TransitionLockRepository interface {
	Acquire(ctx context.Context, bookingID string) error
	Release(ctx context.Context, bookingID string) error
}

type mongoTransitionLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransitionLockRepository(cfg *config.Config) TransitionLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransitionLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoTransitionLockRepository) Acquire(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.TransitionLock{
		ID:        bookingID,
		ExpiresAt: now.Add(r.cfg.TransitionLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire transition lock: %w", err)
	}

	return nil
}

func (r *mongoTransitionLockRepository) Release(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": bookingID})
	if err != nil {
		return fmt.Errorf("failed to release transition lock: %w", err)
	}

	return nil
}
