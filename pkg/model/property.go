package model

import "time"

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomTriple RoomType = "triple"
)

// RoomTypes is the closed set of valid room type tags.
var RoomTypes = []RoomType{RoomSingle, RoomDouble, RoomTriple}

func (rt RoomType) Valid() bool {
	switch rt {
	case RoomSingle, RoomDouble, RoomTriple:
		return true
	}
	return false
}

// Occupancy is the number of beds one room of this type holds.
func (rt RoomType) Occupancy() int {
	switch rt {
	case RoomSingle:
		return 1
	case RoomDouble:
		return 2
	case RoomTriple:
		return 3
	}
	return 0
}

// RoomOption describes one room type of a property: how many rooms it has
// and the flat monthly rent per bed.
type RoomOption struct {
	Rooms int     `json:"rooms" bson:"rooms" validate:"min=0,max=500"`
	Price float64 `json:"price" bson:"price" validate:"min=0"`
}

// RoomConfig holds one field per room type so the set of tags stays closed.
type RoomConfig struct {
	Single RoomOption `json:"single" bson:"single"`
	Double RoomOption `json:"double" bson:"double"`
	Triple RoomOption `json:"triple" bson:"triple"`
}

func (rc RoomConfig) ForType(rt RoomType) RoomOption {
	switch rt {
	case RoomSingle:
		return rc.Single
	case RoomDouble:
		return rc.Double
	case RoomTriple:
		return rc.Triple
	}
	return RoomOption{}
}

// BedSummary tracks the bed counters for one room type.
// Invariant: 0 <= Available <= Total.
type BedSummary struct {
	Total     int `json:"total" bson:"total"`
	Available int `json:"available" bson:"available"`
}

type BedsSummary struct {
	Single BedSummary `json:"single" bson:"single"`
	Double BedSummary `json:"double" bson:"double"`
	Triple BedSummary `json:"triple" bson:"triple"`
}

func (bs BedsSummary) ForType(rt RoomType) BedSummary {
	switch rt {
	case RoomSingle:
		return bs.Single
	case RoomDouble:
		return bs.Double
	case RoomTriple:
		return bs.Triple
	}
	return BedSummary{}
}

type Property struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID     string      `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name        string      `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    string      `json:"location" bson:"location" validate:"required,min=2,max=150"`
	Description string      `json:"description,omitempty" bson:"description" validate:"omitempty,max=2000"`
	Amenities   []string    `json:"amenities,omitempty" bson:"amenities" validate:"omitempty,max=50,dive,required,max=60"`
	Images      []string    `json:"images,omitempty" bson:"images" validate:"omitempty,max=10,dive,url"`
	IsAvailable bool        `json:"is_available" bson:"is_available"`
	RoomConfig  RoomConfig  `json:"room_config" bson:"room_config"`
	BedsSummary BedsSummary `json:"beds_summary" bson:"beds_summary"`
	CreatedAt   time.Time   `json:"created_at,omitempty" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty" bson:"updated_at"`
}

// PropertyUpdate carries the owner-editable fields. Nil / empty fields
// are left untouched; BedsSummary is never settable directly.
type PropertyUpdate struct {
	Name        string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    string      `json:"location,omitempty" validate:"omitempty,min=2,max=150"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=2000"`
	Amenities   *[]string   `json:"amenities,omitempty" validate:"omitempty,max=50,dive,required,max=60"`
	Images      *[]string   `json:"images,omitempty" validate:"omitempty,max=10,dive,url"`
	RoomConfig  *RoomConfig `json:"room_config,omitempty"`
}

// SummaryFor derives the bed counters a room configuration implies, with
// every bed available. Used at property creation.
func (rc RoomConfig) SummaryFor(rt RoomType) BedSummary {
	total := rc.ForType(rt).Rooms * rt.Occupancy()
	return BedSummary{Total: total, Available: total}
}

// FreshBedsSummary computes the full summary for a new property.
func (rc RoomConfig) FreshBedsSummary() BedsSummary {
	return BedsSummary{
		Single: rc.SummaryFor(RoomSingle),
		Double: rc.SummaryFor(RoomDouble),
		Triple: rc.SummaryFor(RoomTriple),
	}
}

// Rebase recomputes totals from a new room configuration while preserving
// the occupied bed count per type. Available is clamped into [0, Total].
func (bs BedsSummary) Rebase(rc RoomConfig) BedsSummary {
	rebase := func(cur BedSummary, rt RoomType) BedSummary {
		total := rc.ForType(rt).Rooms * rt.Occupancy()
		occupied := cur.Total - cur.Available
		available := total - occupied
		if available < 0 {
			available = 0
		}
		if available > total {
			available = total
		}
		return BedSummary{Total: total, Available: available}
	}
	return BedsSummary{
		Single: rebase(bs.Single, RoomSingle),
		Double: rebase(bs.Double, RoomDouble),
		Triple: rebase(bs.Triple, RoomTriple),
	}
}
