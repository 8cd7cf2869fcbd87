package handler

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"memoria/internal/domain"
	"memoria/internal/middleware"
	"memoria/internal/service/audit"
	"memoria/internal/service/post"
)

type PostHandler struct {
	postService  post.Service
	auditService audit.Service
}

func NewPostHandler(postService post.Service, auditService audit.Service) *PostHandler {
	return &PostHandler{
		postService:  postService,
		auditService: auditService,
	}
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return middleware.BadRequest("Invalid multipart form")
	}

	eventDate, err := parseEventDate(formValue(form, "event_date"))
	if err != nil {
		return middleware.BadRequest("Invalid event_date")
	}
	albumID, err := parseOptionalUUID(formValue(form, "album"))
	if err != nil {
		return middleware.BadRequest("Invalid album")
	}

	files, closers, err := readUploads(form)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	view, err := h.postService.Create(c.Context(), domain.CreatePostInput{
		Title:     formValue(form, "title"),
		Content:   formValue(form, "content"),
		EventDate: eventDate,
		AlbumID:   albumID,
		Files:     files,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *PostHandler) Update(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return middleware.BadRequest("Invalid post ID")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return middleware.BadRequest("Invalid multipart form")
	}

	eventDate, err := parseEventDate(formValue(form, "event_date"))
	if err != nil {
		return middleware.BadRequest("Invalid event_date")
	}
	albumID, err := parseOptionalUUID(formValue(form, "album"))
	if err != nil {
		return middleware.BadRequest("Invalid album")
	}
	currentAlbumID, err := parseOptionalUUID(formValue(form, "album_id"))
	if err != nil {
		return middleware.BadRequest("Invalid album_id")
	}
	removeImages, err := parseUUIDs(form.Value["remove_image"])
	if err != nil {
		return middleware.BadRequest("Invalid remove_image")
	}
	removeVideos, err := parseUUIDs(form.Value["remove_video"])
	if err != nil {
		return middleware.BadRequest("Invalid remove_video")
	}

	files, closers, err := readUploads(form)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	view, err := h.postService.Update(c.Context(), domain.UpdatePostInput{
		PostID:         postID,
		Title:          formValue(form, "title"),
		Content:        formValue(form, "content"),
		EventDate:      eventDate,
		AlbumID:        albumID,
		CurrentAlbumID: currentAlbumID,
		MediaToRemove: domain.MediaRefs{
			Images: removeImages,
			Videos: removeVideos,
		},
		NewFiles: files,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return middleware.BadRequest("Invalid post ID")
	}

	view, err := h.postService.Get(c.Context(), postID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *PostHandler) History(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return middleware.BadRequest("Invalid post ID")
	}

	result, err := h.auditService.PostHistory(c.Context(), postID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// parseEventDate accepts RFC3339 or a plain date. Empty means absent.
func parseEventDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse(time.DateOnly, value)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC().Truncate(time.Microsecond)
	return &t, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// readUploads opens the image and video parts of the form. Video metadata
// fields are matched to the video files by position.
func readUploads(form *multipart.Form) (domain.UploadSet, []io.Closer, error) {
	var set domain.UploadSet
	var closers []io.Closer

	open := func(fh *multipart.FileHeader) (domain.Upload, error) {
		f, err := fh.Open()
		if err != nil {
			return domain.Upload{}, middleware.BadRequest("Failed to read file " + fh.Filename)
		}
		closers = append(closers, f)
		return domain.Upload{
			FileName: fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Content:  f,
		}, nil
	}

	for _, fh := range form.File["image"] {
		u, err := open(fh)
		if err != nil {
			return set, closers, err
		}
		set.Images = append(set.Images, u)
	}

	titles := form.Value["video_title"]
	descriptions := form.Value["video_description"]
	visibility := form.Value["video_visible"]
	for i, fh := range form.File["video"] {
		u, err := open(fh)
		if err != nil {
			return set, closers, err
		}
		if i < len(titles) {
			u.Title = &titles[i]
		}
		if i < len(descriptions) {
			u.Description = &descriptions[i]
		}
		if i < len(visibility) {
			visible, err := strconv.ParseBool(visibility[i])
			if err != nil {
				return set, closers, middleware.BadRequest("Invalid video_visible")
			}
			u.Visible = &visible
		}
		set.Videos = append(set.Videos, u)
	}
	return set, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 50),
	}
	params.Validate()
	return params
}
