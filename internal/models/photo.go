package models

import (
	"math"
	"time"
)

// PlaceholderImageURL is substituted when a stored record has no image URL.
const PlaceholderImageURL = "placeholder.jpg"

// Photo represents an uploaded photo record. Records are immutable after
// creation: there is no edit or delete path.
type Photo struct {
	ID          string    `json:"id"`
	OwnerID     int       `json:"owner_id"`
	ImageURL    string    `json:"image_url"`
	Caption     string    `json:"caption,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
}

// Coordinates returns the photo's position. ok is false unless both
// coordinates are present and finite; a partially tagged record counts as
// untagged.
func (p *Photo) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	lat, lon = *p.Latitude, *p.Longitude
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, 0, false
	}
	return lat, lon, true
}
