package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) IsValid() bool {
	switch k {
	case MediaImage, MediaVideo:
		return true
	}
	return false
}

// Media is a row of either the images or the videos relation. Title,
// Description and Visible are only persisted for videos.
type Media struct {
	Kind        MediaKind  `json:"kind" db:"-"`
	ID          uuid.UUID  `json:"id" db:"id"`
	URL         string     `json:"url" db:"url"`
	PostID      *uuid.UUID `json:"post_id,omitempty" db:"post_id"`
	AlbumID     *uuid.UUID `json:"album_id,omitempty" db:"album_id"`
	Title       string     `json:"title,omitempty" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Visible     bool       `json:"visible" db:"visible"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type MediaIDs struct {
	Images []uuid.UUID `json:"images"`
	Videos []uuid.UUID `json:"videos"`
}

func (m *MediaIDs) Add(kind MediaKind, id uuid.UUID) {
	if kind == MediaVideo {
		m.Videos = append(m.Videos, id)
		return
	}
	m.Images = append(m.Images, id)
}

func (m MediaIDs) Len() int {
	return len(m.Images) + len(m.Videos)
}

// Each visits images first, then videos.
func (m MediaIDs) Each(fn func(kind MediaKind, id uuid.UUID)) {
	for _, id := range m.Images {
		fn(MediaImage, id)
	}
	for _, id := range m.Videos {
		fn(MediaVideo, id)
	}
}

// Upload is a file received by the HTTP layer, not yet written to the store.
type Upload struct {
	FileName    string
	Size        int64
	MimeType    string
	Content     io.Reader
	Title       *string
	Description *string
	Visible     *bool
}

type UploadSet struct {
	Images []Upload
	Videos []Upload
}

func (u UploadSet) Len() int {
	return len(u.Images) + len(u.Videos)
}
