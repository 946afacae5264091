package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"
	"time"

	"photomap-backend/internal/models"
)

// Blobs is the blob-store surface the services write through.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// PhotoInserter is the slice of the photo store the upload path needs.
type PhotoInserter interface {
	Insert(ctx context.Context, p *models.Photo) error
}

// UploadRequest carries one photo upload. Coordinates are optional; a
// request with only one of them set is stored untagged.
type UploadRequest struct {
	OwnerID     int
	Filename    string
	Reader      io.Reader
	Size        int64
	ContentType string
	Caption     string
	Description string
	Tags        []string
	Latitude    *float64
	Longitude   *float64
}

// UploadService orchestrates the upload pipeline: blob write, URL
// resolution, then the photo record. There is no rollback: if the record
// write fails after the blob write, the orphaned blob stays (the key is
// logged so the inconsistency is observable).
type UploadService struct {
	blobs  Blobs
	photos PhotoInserter
}

func NewUploadService(blobs Blobs, photos PhotoInserter) *UploadService {
	return &UploadService{blobs: blobs, photos: photos}
}

func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*models.Photo, error) {
	if req.OwnerID <= 0 {
		return nil, ErrNotAuthenticated
	}
	if req.Reader == nil || req.Size <= 0 {
		return nil, fmt.Errorf("%w: empty photo payload", ErrInvalidInput)
	}

	lat, lon := normalizeCoordinates(req.Latitude, req.Longitude)
	if (req.Latitude != nil || req.Longitude != nil) && lat == nil {
		log.Printf("upload: dropping partial coordinates for user %d", req.OwnerID)
	}

	// Key namespaced by owner plus a timestamp uniqueness token
	ext := filepath.Ext(req.Filename)
	key := fmt.Sprintf("photos/%d/%d%s", req.OwnerID, time.Now().UnixNano(), ext)

	if err := s.blobs.Put(ctx, key, req.Reader, req.Size, req.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	url, err := s.blobs.URL(ctx, key)
	if err != nil {
		log.Printf("upload: blob %s stored but URL resolution failed, blob orphaned", key)
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	photo := &models.Photo{
		OwnerID:     req.OwnerID,
		ImageURL:    url,
		Caption:     req.Caption,
		Description: req.Description,
		Tags:        req.Tags,
		Latitude:    lat,
		Longitude:   lon,
	}
	if err := s.photos.Insert(ctx, photo); err != nil {
		// No compensation: the stored blob is orphaned
		log.Printf("upload: record write failed, blob %s orphaned", key)
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return photo, nil
}

// normalizeCoordinates enforces the all-or-nothing geo-tag invariant:
// anything short of two finite coordinates comes back as absent.
func normalizeCoordinates(lat, lon *float64) (*float64, *float64) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	if !isFinite(*lat) || !isFinite(*lon) {
		return nil, nil
	}
	return lat, lon
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// DecodeDataURL converts a base64 data URL (the camera-capture payload
// format) into raw bytes and a content type. Only image payloads are
// accepted.
func DecodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", nil, fmt.Errorf("%w: payload must be an image data URL", ErrInvalidInput)
	}
	parts := strings.SplitN(dataURL, ",", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("%w: malformed data URL", ErrInvalidInput)
	}

	header := strings.TrimPrefix(parts[0], "data:")
	contentType = strings.SplitN(header, ";", 2)[0]

	data, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid base64 payload", ErrInvalidInput)
	}
	return contentType, data, nil
}
