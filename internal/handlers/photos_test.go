package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"photomap-backend/internal/models"
	"photomap-backend/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	assert.Nil(t, parseTags(""))
	assert.Equal(t, []string{"sky"}, parseTags("sky"))
	assert.Equal(t, []string{"sky", "evening"}, parseTags(" sky , evening "))
	assert.Equal(t, []string{"sky"}, parseTags("sky,,"))
}

func TestParseCoord(t *testing.T) {
	assert.Nil(t, parseCoord(""))
	assert.Nil(t, parseCoord("not-a-number"))

	got := parseCoord("-122.42")
	require.NotNil(t, got)
	assert.Equal(t, -122.42, *got)
}

type stubBlobs struct{}

func (stubBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (stubBlobs) URL(ctx context.Context, key string) (string, error) {
	return "https://blobs.example.com/" + key, nil
}

type stubInserter struct {
	inserted []*models.Photo
}

func (s *stubInserter) Insert(ctx context.Context, p *models.Photo) error {
	p.ID = "photo-id"
	s.inserted = append(s.inserted, p)
	return nil
}

func uploadApp(hub *FeedHub) (*fiber.App, *stubInserter) {
	inserter := &stubInserter{}
	svc := services.NewUploadService(stubBlobs{}, inserter)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", 1)
		return c.Next()
	})
	app.Post("/photos", UploadPhotoHandler(svc, hub))
	return app, inserter
}

func multipartUpload(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fw, err := w.CreateFormFile("photo", "shot.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("image bytes"))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type uploadResponse struct {
	Photo   models.Photo `json:"photo"`
	Warning string       `json:"warning"`
}

// Geolocation failing on the client (only one coordinate arrives) must not
// fail the upload: the photo is stored untagged and the response carries a
// non-fatal warning.
func TestUploadHandlerMissingLocationWarns(t *testing.T) {
	app, inserter := uploadApp(NewFeedHub())

	req := multipartUpload(t, map[string]string{"latitude": "37.77"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Nil(t, got.Photo.Latitude)
	assert.Nil(t, got.Photo.Longitude)
	assert.Equal(t, "location unavailable, photo saved without coordinates", got.Warning)

	require.Len(t, inserter.inserted, 1)
	assert.Nil(t, inserter.inserted[0].Latitude)
}

func TestUploadHandlerWithLocation(t *testing.T) {
	hub := NewFeedHub()
	conn := &recordingConn{}
	_, unsubscribe := hub.Subscribe("conn-1", 2, conn)
	defer unsubscribe()

	app, _ := uploadApp(hub)

	req := multipartUpload(t, map[string]string{
		"latitude":  "37.77",
		"longitude": "-122.42",
		"caption":   "golden gate",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Empty(t, got.Warning)
	require.NotNil(t, got.Photo.Latitude)
	assert.Equal(t, 37.77, *got.Photo.Latitude)
	assert.Equal(t, "golden gate", got.Photo.Caption)

	// New photo pushed to the subscribed gallery session
	require.Equal(t, 1, conn.writeCount())
	pushed, ok := conn.writes[0].(WSResponse)
	require.True(t, ok)
	assert.Equal(t, "photo_added", pushed.Event)
}

func TestUploadHandlerWithoutFile(t *testing.T) {
	app, _ := uploadApp(NewFeedHub())

	req := httptest.NewRequest(http.MethodPost, "/photos", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
