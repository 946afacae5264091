package handlers

import (
	"net/http"
	"strconv"

	"photomap-backend/internal/models"
	"photomap-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(profileService *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)
		p, err := profileService.Get(c.Context(), userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProfileHandler updates username and bio for the authenticated user
func UpdateProfileHandler(profileService *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req models.UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}

		updated, err := profileService.Update(c.Context(), userID, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(updated)
	}
}

// UploadAvatarHandler replaces the profile picture. Expects a multipart form
// file named "picture".
func UploadAvatarHandler(profileService *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		fileHeader, err := c.FormFile("picture")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "picture file is required"})
		}
		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unreadable picture file"})
		}
		defer file.Close()

		updated, err := profileService.SetAvatar(c.Context(), userID,
			fileHeader.Filename, file, fileHeader.Size, contentTypeOf(fileHeader))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(updated)
	}
}

// NearbyPhotosHandler returns photos within a radius of the caller's
// position. lat and lon are required; a missing position is the client's
// geolocation failure and yields a plain 400, never a crash.
func NearbyPhotosHandler(profileService *services.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
		if err1 != nil || err2 != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "lat and lon are required"})
		}

		radius := 0.0
		if v := c.Query("radius"); v != "" {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r <= 0 {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid radius"})
			}
			radius = r
		}

		photos, err := profileService.Nearby(c.Context(), lat, lon, radius)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"photos": photos})
	}
}
