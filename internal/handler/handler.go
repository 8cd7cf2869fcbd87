package handler

import "memoria/internal/service"

type Handlers struct {
	Post  *PostHandler
	Album *AlbumHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Post:  NewPostHandler(services.Post, services.Audit),
		Album: NewAlbumHandler(services.Album),
	}
}
