package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"photomap-backend/internal/geo"
	"photomap-backend/internal/models"
)

// Profiles is the profile-store surface the service needs.
type Profiles interface {
	GetByUserID(ctx context.Context, userID int) (*models.Profile, error)
	Update(ctx context.Context, userID int, username, bio *string) (*models.Profile, error)
	SetPicture(ctx context.Context, userID int, url string) error
}

// ProfileService handles profile reads/edits, avatar changes, and the
// nearby-photo lookup shown on the profile page.
type ProfileService struct {
	profiles Profiles
	blobs    Blobs
	searcher geo.Searcher
	radiusKm float64
}

func NewProfileService(profiles Profiles, blobs Blobs, searcher geo.Searcher, radiusKm float64) *ProfileService {
	if radiusKm <= 0 {
		radiusKm = geo.DefaultRadiusKm
	}
	return &ProfileService{profiles: profiles, blobs: blobs, searcher: searcher, radiusKm: radiusKm}
}

func (s *ProfileService) Get(ctx context.Context, userID int) (*models.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID int, req models.UpdateProfileRequest) (*models.Profile, error) {
	return s.profiles.Update(ctx, userID, req.Username, req.Bio)
}

// SetAvatar stores the picture blob and points the profile at its URL.
func (s *ProfileService) SetAvatar(ctx context.Context, userID int, filename string, r io.Reader, size int64, contentType string) (*models.Profile, error) {
	if r == nil || size <= 0 {
		return nil, fmt.Errorf("%w: empty picture payload", ErrInvalidInput)
	}

	ext := filepath.Ext(filename)
	key := fmt.Sprintf("avatars/%d/%d%s", userID, time.Now().UnixNano(), ext)

	if err := s.blobs.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	url, err := s.blobs.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	if err := s.profiles.SetPicture(ctx, userID, url); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// Nearby returns the photos within radiusKm of the caller's position. A
// non-positive radius falls back to the configured default.
func (s *ProfileService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.Photo, error) {
	if radiusKm <= 0 {
		radiusKm = s.radiusKm
	}
	photos, err := s.searcher.Search(ctx, geo.Point{Lat: lat, Lon: lon}, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return photos, nil
}
