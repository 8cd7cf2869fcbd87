package handler

import (
	"github.com/gofiber/fiber/v2"

	"memoria/internal/service/album"
)

type AlbumHandler struct {
	albumService album.Service
}

func NewAlbumHandler(albumService album.Service) *AlbumHandler {
	return &AlbumHandler{albumService: albumService}
}

func (h *AlbumHandler) List(c *fiber.Ctx) error {
	result, err := h.albumService.List(c.Context(), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
