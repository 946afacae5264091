package geo

import (
	"context"

	"photomap-backend/internal/models"
)

// Searcher finds photos near a point. The interface isolates the search
// strategy: the current implementation scans the full geo-tagged set
// in-process, a known limitation inherited from the reference client; a
// store-side geo query can be substituted here later.
type Searcher interface {
	Search(ctx context.Context, center Point, radiusKm float64) ([]models.Photo, error)
}

// PhotoLister supplies the candidate set for a scan.
type PhotoLister interface {
	ListGeoTagged(ctx context.Context) ([]models.Photo, error)
}

// ScanSearcher fetches every geo-tagged photo and filters client-side.
type ScanSearcher struct {
	Photos PhotoLister
}

func (s *ScanSearcher) Search(ctx context.Context, center Point, radiusKm float64) ([]models.Photo, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	all, err := s.Photos.ListGeoTagged(ctx)
	if err != nil {
		return nil, err
	}
	return Nearby(center, radiusKm, all), nil
}
