package store

// RowStatus is the status for a catalog row.
type RowStatus string

const (
	// Normal is the status for an active row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for a soft-deleted row. Archived rows never
	// surface through retrieval.
	Archived RowStatus = "ARCHIVED"
)

func (s RowStatus) String() string {
	return string(s)
}

// Tier is one of the three fixed pricing/quality classes.
type Tier string

const (
	TierBudget Tier = "Budget"
	TierMid    Tier = "Mid-tier"
	TierLuxury Tier = "Luxury"
)

// Tiers lists all valid tiers.
func Tiers() []Tier {
	return []Tier{TierBudget, TierMid, TierLuxury}
}

// IsValid reports whether t is one of the three known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierBudget, TierMid, TierLuxury:
		return true
	}
	return false
}

// Cities returns the fixed city set the catalog covers.
func Cities() []string {
	return []string{"Sydney", "Melbourne", "Brisbane"}
}

// IsValidCity reports whether location is one of the catalog cities.
func IsValidCity(location string) bool {
	for _, c := range Cities() {
		if c == location {
			return true
		}
	}
	return false
}

// Hotel is a catalog record.
type Hotel struct {
	ID int32

	// Standard fields
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	Name        string
	Description string
	Location    string
	Price       float64
	Tier        *Tier
	Amenities   []string
}

// FindHotel is the filter object for listing hotels.
type FindHotel struct {
	ID        *int32
	UID       *string
	RowStatus *RowStatus
	Location  *string
	Tier      *Tier
	MinPrice  *float64
	MaxPrice  *float64
	Limit     *int
}

// UpdateHotel is the patch object for updating a hotel.
type UpdateHotel struct {
	ID          int32
	UpdatedTs   *int64
	RowStatus   *RowStatus
	Name        *string
	Description *string
	Location    *string
	Price       *float64
	Tier        *Tier
	Amenities   []string
}

// DeleteHotel identifies a hotel to delete.
type DeleteHotel struct {
	ID int32
}

// ScoredHotel is a hotel surfaced by vector retrieval, annotated with its
// cosine-derived similarity in [-1, 1].
type ScoredHotel struct {
	Hotel      *Hotel
	Similarity float32
}

// VectorSearchOptions are the hard constraints for hybrid retrieval.
// Location, price bounds and tier are hard filters; amenities and keywords
// stay soft ranking signals and never appear here.
type VectorSearchOptions struct {
	Embedding []float32
	Location  *string
	MinPrice  *float64
	MaxPrice  *float64
	Tier      *Tier
	Limit     int
}
