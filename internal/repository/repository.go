package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Post     PostRepository
	Album    AlbumRepository
	Media    MediaRepository
	PostView PostViewRepository
	AuditLog AuditLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Post:     NewPostRepository(db),
		Album:    NewAlbumRepository(db),
		Media:    NewMediaRepository(db),
		PostView: NewPostViewRepository(db),
		AuditLog: NewAuditLogRepository(db),
	}
}
