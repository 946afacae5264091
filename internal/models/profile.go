package models

import "time"

// Profile holds a user's mutable display fields. Created once at signup,
// edited only by its owner.
type Profile struct {
	UserID            int       `json:"user_id"`
	Username          string    `json:"username"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}
