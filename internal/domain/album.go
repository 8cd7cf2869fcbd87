package domain

import (
	"time"

	"github.com/google/uuid"
)

type Album struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AlbumUsage counts the rows still pointing at an album.
type AlbumUsage struct {
	Posts  int64 `db:"posts"`
	Images int64 `db:"images"`
	Videos int64 `db:"videos"`
}

func (u AlbumUsage) IsOrphaned() bool {
	return u.Posts == 0 && u.Images == 0 && u.Videos == 0
}
