package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"photomap-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobs struct {
	putKeys []string
	putErr  error
	urlErr  error
}

func (f *fakeBlobs) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return nil
}

func (f *fakeBlobs) URL(ctx context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://blobs.example.com/" + key, nil
}

type fakeInserter struct {
	inserted []*models.Photo
	err      error
}

func (f *fakeInserter) Insert(ctx context.Context, p *models.Photo) error {
	if f.err != nil {
		return f.err
	}
	p.ID = "generated-id"
	f.inserted = append(f.inserted, p)
	return nil
}

func ptr(f float64) *float64 { return &f }

func uploadReq(lat, lon *float64) UploadRequest {
	body := []byte("image bytes")
	return UploadRequest{
		OwnerID:     1,
		Filename:    "shot.png",
		Reader:      bytes.NewReader(body),
		Size:        int64(len(body)),
		ContentType: "image/png",
		Caption:     "sunset",
		Tags:        []string{"sky", "evening"},
		Latitude:    lat,
		Longitude:   lon,
	}
}

func TestUploadStoresBlobThenRecord(t *testing.T) {
	blobs := &fakeBlobs{}
	inserter := &fakeInserter{}
	svc := NewUploadService(blobs, inserter)

	photo, err := svc.Upload(context.Background(), uploadReq(ptr(37.77), ptr(-122.42)))
	require.NoError(t, err)

	require.Len(t, blobs.putKeys, 1)
	assert.True(t, strings.HasPrefix(blobs.putKeys[0], "photos/1/"))
	assert.True(t, strings.HasSuffix(blobs.putKeys[0], ".png"))

	require.Len(t, inserter.inserted, 1)
	assert.Equal(t, "https://blobs.example.com/"+blobs.putKeys[0], photo.ImageURL)
	assert.Equal(t, "sunset", photo.Caption)
	assert.Equal(t, []string{"sky", "evening"}, photo.Tags)
	require.NotNil(t, photo.Latitude)
	assert.Equal(t, 37.77, *photo.Latitude)
}

func TestUploadWithoutLocationSucceeds(t *testing.T) {
	svc := NewUploadService(&fakeBlobs{}, &fakeInserter{})

	photo, err := svc.Upload(context.Background(), uploadReq(nil, nil))
	require.NoError(t, err)
	assert.Nil(t, photo.Latitude)
	assert.Nil(t, photo.Longitude)
}

func TestUploadDropsPartialCoordinates(t *testing.T) {
	svc := NewUploadService(&fakeBlobs{}, &fakeInserter{})

	photo, err := svc.Upload(context.Background(), uploadReq(ptr(37.77), nil))
	require.NoError(t, err)
	assert.Nil(t, photo.Latitude)
	assert.Nil(t, photo.Longitude)
}

func TestUploadDropsNonFiniteCoordinates(t *testing.T) {
	svc := NewUploadService(&fakeBlobs{}, &fakeInserter{})

	photo, err := svc.Upload(context.Background(), uploadReq(ptr(math.NaN()), ptr(-122.42)))
	require.NoError(t, err)
	assert.Nil(t, photo.Latitude)
	assert.Nil(t, photo.Longitude)
}

func TestUploadRequiresIdentity(t *testing.T) {
	svc := NewUploadService(&fakeBlobs{}, &fakeInserter{})

	req := uploadReq(nil, nil)
	req.OwnerID = 0
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	svc := NewUploadService(&fakeBlobs{}, &fakeInserter{})

	req := uploadReq(nil, nil)
	req.Reader = nil
	req.Size = 0
	_, err := svc.Upload(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUploadBlobFailureWritesNoRecord(t *testing.T) {
	inserter := &fakeInserter{}
	svc := NewUploadService(&fakeBlobs{putErr: errors.New("storage down")}, inserter)

	_, err := svc.Upload(context.Background(), uploadReq(nil, nil))
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Empty(t, inserter.inserted)
}

func TestUploadRecordFailureLeavesOrphanedBlob(t *testing.T) {
	blobs := &fakeBlobs{}
	svc := NewUploadService(blobs, &fakeInserter{err: errors.New("insert failed")})

	_, err := svc.Upload(context.Background(), uploadReq(nil, nil))
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	// No compensation: the blob write already happened
	assert.Len(t, blobs.putKeys, 1)
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	contentType, data, err := DecodeDataURL(dataURL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, payload, data)
}

func TestDecodeDataURLRejectsNonImage(t *testing.T) {
	_, _, err := DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecodeDataURLRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"data:image/png;base64",          // no comma
		"data:image/png;base64,???not!!", // bad base64
		"plain string",
	} {
		_, _, err := DecodeDataURL(s)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", s)
	}
}
