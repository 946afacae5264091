package store

import (
	"context"
	"errors"
	"fmt"

	"photomap-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileStore persists user profiles. A profile row is created exactly once
// at signup and mutated only through owner-initiated edits.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID int) (*models.Profile, error) {
	query := `SELECT user_id, username, bio, profile_picture_url, created_at
		FROM profiles WHERE user_id = $1`
	var p models.Profile
	err := s.pool.QueryRow(ctx, query, userID).
		Scan(&p.UserID, &p.Username, &p.Bio, &p.ProfilePictureURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update edits the display fields. Nil fields are left unchanged.
func (s *ProfileStore) Update(ctx context.Context, userID int, username, bio *string) (*models.Profile, error) {
	query := `UPDATE profiles
		SET username = COALESCE($2, username), bio = COALESCE($3, bio)
		WHERE user_id = $1
		RETURNING user_id, username, bio, profile_picture_url, created_at`
	var p models.Profile
	err := s.pool.QueryRow(ctx, query, userID, username, bio).
		Scan(&p.UserID, &p.Username, &p.Bio, &p.ProfilePictureURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

// SetPicture replaces the profile picture URL.
func (s *ProfileStore) SetPicture(ctx context.Context, userID int, url string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE profiles SET profile_picture_url = $2 WHERE user_id = $1`, userID, url)
	if err != nil {
		return fmt.Errorf("set profile picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
