package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking is one user's reservation of a single bed. RentPerMonth is a
// snapshot of the property's price at creation time and is never recomputed
// from the catalog.
type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string        `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	PropertyID    string        `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	RoomType      RoomType      `json:"room_type" bson:"room_type" validate:"required,oneof=single double triple"`
	StartDate     time.Time     `json:"start_date" bson:"start_date" validate:"required"`
	Months        int           `json:"months" bson:"months" validate:"required,min=1,max=36"`
	RentPerMonth  float64       `json:"rent_per_month" bson:"rent_per_month" validate:"min=0"`
	TotalAmount   float64       `json:"total_amount" bson:"total_amount" validate:"min=0"`
	Status        BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid"`
	CreatedAt     time.Time     `json:"created_at,omitempty" bson:"created_at"`
}

// TransitionLock is an advisory lock document serializing status
// transitions of one booking. Insert succeeds for at most one holder;
// ExpiresAt backs a TTL index so crashed holders cannot wedge a booking.
type TransitionLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
