package store

import (
	"context"
	"errors"
	"fmt"

	"photomap-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

const photoColumns = `id, owner_id, image_url, caption, description, tags, latitude, longitude, created_at`

// PhotoStore persists photo records. Records are insert-only: ownership and
// content are fixed at creation.
type PhotoStore struct {
	pool *pgxpool.Pool
}

func NewPhotoStore(pool *pgxpool.Pool) *PhotoStore {
	return &PhotoStore{pool: pool}
}

// Insert writes a new photo record. The store assigns the id and the
// creation timestamp and fills them in on the passed record.
func (s *PhotoStore) Insert(ctx context.Context, p *models.Photo) error {
	p.ID = uuid.New().String()
	if p.Tags == nil {
		p.Tags = []string{}
	}
	query := `INSERT INTO photos (id, owner_id, image_url, caption, description, tags, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
	err := s.pool.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.ImageURL, p.Caption, p.Description, p.Tags, p.Latitude, p.Longitude,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// PageByOwner returns up to limit photos owned by ownerID, newest first,
// starting strictly after the cursor when one is given.
func (s *PhotoStore) PageByOwner(ctx context.Context, ownerID int, after *Cursor, limit int) ([]models.Photo, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		query := `SELECT ` + photoColumns + ` FROM photos
			WHERE owner_id = $1
			ORDER BY created_at DESC, id DESC LIMIT $2`
		rows, err = s.pool.Query(ctx, query, ownerID, limit)
	} else {
		query := `SELECT ` + photoColumns + ` FROM photos
			WHERE owner_id = $1 AND (created_at, id) < ($2, $3::uuid)
			ORDER BY created_at DESC, id DESC LIMIT $4`
		rows, err = s.pool.Query(ctx, query, ownerID, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// ListAll returns every photo, newest first. A non-empty tag narrows the
// result to photos carrying it.
func (s *PhotoStore) ListAll(ctx context.Context, tag string) ([]models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos ORDER BY created_at DESC, id DESC`
	args := []any{}
	if tag != "" {
		query = `SELECT ` + photoColumns + ` FROM photos
			WHERE $1 = ANY(tags) ORDER BY created_at DESC, id DESC`
		args = append(args, tag)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// ListGeoTagged returns every photo that has both coordinates set, newest
// first. Candidate set for the nearby scan.
func (s *PhotoStore) ListGeoTagged(ctx context.Context) ([]models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPhotos(rows)
}

// GetByID fetches a single photo. Returns ErrNotFound when absent.
func (s *PhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	row := s.pool.QueryRow(ctx, query, id)

	var p models.Photo
	err := row.Scan(&p.ID, &p.OwnerID, &p.ImageURL, &p.Caption, &p.Description,
		&p.Tags, &p.Latitude, &p.Longitude, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.ImageURL == "" {
		p.ImageURL = models.PlaceholderImageURL
	}
	return &p, nil
}

func scanPhotos(rows pgx.Rows) ([]models.Photo, error) {
	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.ImageURL, &p.Caption, &p.Description,
			&p.Tags, &p.Latitude, &p.Longitude, &p.CreatedAt); err != nil {
			return nil, err
		}
		// Fallback for records stored without an image URL
		if p.ImageURL == "" {
			p.ImageURL = models.PlaceholderImageURL
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
