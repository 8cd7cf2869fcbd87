package service

import (
	"github.com/redis/go-redis/v9"

	"memoria/internal/config"
	"memoria/internal/repository"
	"memoria/internal/service/alert"
	"memoria/internal/service/album"
	"memoria/internal/service/audit"
	"memoria/internal/service/post"
	"memoria/internal/storage"
)

type Services struct {
	Post  post.Service
	Album album.Service
	Audit audit.Service
	Alert alert.Service
}

func NewServices(repos *repository.Repositories, stager *storage.Stager, redis *redis.Client, cfg *config.Config) *Services {
	alertService := alert.NewService(cfg)
	reconciler := album.NewReconciler(repos.Album, repos.Post, repos.Media)
	postService := post.NewService(repos, reconciler, stager, redis, alertService, post.Options{
		MaxImageSize:   cfg.MaxImageSize,
		MaxVideoSize:   cfg.MaxVideoSize,
		PublicMediaURL: cfg.PublicMediaURL,
		CacheTTL:       cfg.PostCacheTTL,
	})

	return &Services{
		Post:  postService,
		Album: album.NewService(repos.Album),
		Audit: audit.NewService(repos.AuditLog),
		Alert: alertService,
	}
}
