package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"photomap-backend/internal/models"
	"photomap-backend/internal/services"
	"photomap-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// ListPhotosHandler serves the global gallery, newest first, with an
// optional ?tag= filter.
func ListPhotosHandler(photos *store.PhotoStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := photos.ListAll(c.Context(), c.Query("tag"))
		if err != nil {
			return fail(c, err)
		}
		if result == nil {
			result = []models.Photo{}
		}
		return c.JSON(fiber.Map{"photos": result})
	}
}

// MyPhotosHandler serves one cursor page of the caller's own photos.
// The response carries the next cursor token and the exhaustion flag.
func MyPhotosHandler(photos *store.PhotoStore, defaultPageSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		limit := defaultPageSize
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 100 {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
			}
			limit = n
		}

		after, err := store.ParseCursor(c.Query("after"))
		if err != nil {
			return fail(c, err)
		}

		page, err := photos.PageByOwner(c.Context(), userID, after, limit)
		if err != nil {
			return fail(c, err)
		}

		resp := fiber.Map{
			"photos":    page,
			"exhausted": len(page) < limit,
		}
		if page == nil {
			resp["photos"] = []models.Photo{}
		}
		if len(page) > 0 {
			resp["next_cursor"] = store.CursorFor(page[len(page)-1]).Token()
		}
		return c.JSON(resp)
	}
}

// GetPhotoHandler fetches a single photo by id.
func GetPhotoHandler(photos *store.PhotoStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := photos.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

// UploadPhotoHandler accepts either a multipart file named "photo" or a
// base64 data URL in the "data_url" field (the camera-capture path), plus
// optional caption, description, tags and coordinates. A missing or partial
// location never fails the upload; the photo is stored untagged and the
// response carries a warning.
func UploadPhotoHandler(upload *services.UploadService, hub *FeedHub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		req := services.UploadRequest{
			OwnerID:     userID,
			Caption:     c.FormValue("caption"),
			Description: c.FormValue("description"),
			Tags:        parseTags(c.FormValue("tags")),
		}

		latStr, lonStr := c.FormValue("latitude"), c.FormValue("longitude")
		req.Latitude = parseCoord(latStr)
		req.Longitude = parseCoord(lonStr)

		fileHeader, err := c.FormFile("photo")
		switch {
		case err == nil:
			file, err := fileHeader.Open()
			if err != nil {
				return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "unreadable photo file"})
			}
			defer file.Close()
			req.Filename = fileHeader.Filename
			req.Reader = file
			req.Size = fileHeader.Size
			req.ContentType = contentTypeOf(fileHeader)
		case c.FormValue("data_url") != "":
			contentType, data, err := services.DecodeDataURL(c.FormValue("data_url"))
			if err != nil {
				return fail(c, err)
			}
			req.Filename = "captured_photo." + strings.TrimPrefix(contentType, "image/")
			req.Reader = bytes.NewReader(data)
			req.Size = int64(len(data))
			req.ContentType = contentType
		default:
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}

		photo, err := upload.Upload(c.Context(), req)
		if err != nil {
			return fail(c, err)
		}

		hub.BroadcastPhotoAdded(*photo)

		resp := fiber.Map{"photo": photo}
		if (latStr != "" || lonStr != "") && photo.Latitude == nil {
			resp["warning"] = "location unavailable, photo saved without coordinates"
		}
		return c.Status(http.StatusCreated).JSON(resp)
	}
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func contentTypeOf(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}
