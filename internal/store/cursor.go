package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"photomap-backend/internal/models"
)

// ErrBadCursor is returned when a cursor token cannot be decoded.
var ErrBadCursor = errors.New("malformed cursor token")

// Cursor points at the last photo of a fetched page. Pagination resumes
// strictly after it in (created_at, id) descending order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorFor builds a cursor pointing at the given photo.
func CursorFor(p models.Photo) Cursor {
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// Token renders the cursor as an opaque URL-safe string.
func (c Cursor) Token() string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by Token. An empty token yields a nil
// cursor, meaning "start from the newest record".
func ParseCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrBadCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, ErrBadCursor
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrBadCursor
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos), ID: parts[1]}, nil
}
