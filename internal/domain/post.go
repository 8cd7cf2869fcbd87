package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	EventDate *time.Time `json:"event_date,omitempty" db:"event_date"`
	AlbumID   *uuid.UUID `json:"album_id,omitempty" db:"album_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type CreatePostInput struct {
	Title     string
	Content   string
	EventDate *time.Time
	AlbumID   *uuid.UUID
	Files     UploadSet
}

type MediaRefs struct {
	Images []uuid.UUID
	Videos []uuid.UUID
}

func (m MediaRefs) Len() int {
	return len(m.Images) + len(m.Videos)
}

type UpdatePostInput struct {
	PostID    uuid.UUID
	Title     string
	Content   string
	EventDate *time.Time
	// AlbumID is the requested album; nil means "named after the title".
	AlbumID *uuid.UUID
	// CurrentAlbumID is what the client believed the album to be. The
	// stored post wins when they differ.
	CurrentAlbumID *uuid.UUID
	MediaToRemove  MediaRefs
	NewFiles       UploadSet
}

// PostView is the denormalized read model: a post with its album name and
// media. Images and Videos are never nil.
type PostView struct {
	Post
	AlbumName *string `json:"album_name,omitempty" db:"album_name"`
	Images    []Media `json:"images" db:"-"`
	Videos    []Media `json:"videos" db:"-"`
}
