// Package post coordinates writes that span the database and the media
// store. A failed create or edit is rolled back step by step so that
// neither side is left half-changed.
package post

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"memoria/internal/domain"
	"memoria/internal/repository"
	"memoria/internal/service/alert"
	"memoria/internal/service/album"
	"memoria/internal/storage"
)

const entityType = "POST"

type Service interface {
	Create(ctx context.Context, input domain.CreatePostInput) (*domain.PostView, error)
	// Update applies an edit. On failure the returned *domain.Error carries
	// the reverted view of the post.
	Update(ctx context.Context, input domain.UpdatePostInput) (*domain.PostView, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PostView, error)
}

type Options struct {
	MaxImageSize   int64
	MaxVideoSize   int64
	PublicMediaURL string
	CacheTTL       time.Duration
}

type service struct {
	posts     repository.PostRepository
	media     repository.MediaRepository
	views     repository.PostViewRepository
	auditRepo repository.AuditLogRepository
	albums    album.Reconciler
	stager    *storage.Stager
	redis     *redis.Client
	alerts    alert.Service
	validate  *validator
	opts      Options
	now       func() time.Time
}

func NewService(repos *repository.Repositories, albums album.Reconciler, stager *storage.Stager, redis *redis.Client, alerts alert.Service, opts Options) Service {
	return &service{
		posts:     repos.Post,
		media:     repos.Media,
		views:     repos.PostView,
		auditRepo: repos.AuditLog,
		albums:    albums,
		stager:    stager,
		redis:     redis,
		alerts:    alerts,
		validate:  newValidator(opts.MaxImageSize, opts.MaxVideoSize),
		opts:      opts,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func (s *service) Create(ctx context.Context, input domain.CreatePostInput) (*domain.PostView, error) {
	title, content, err := s.validate.text(input.Title, input.Content)
	if err != nil {
		return nil, err
	}
	if err := s.validate.uploads(&input.Files); err != nil {
		return nil, err
	}

	res, err := s.albums.Resolve(ctx, input.AlbumID, title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eventDate := input.EventDate
	if eventDate == nil {
		eventDate = &now
	}
	albumID := res.Album.ID
	post := &domain.Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		EventDate: eventDate,
		AlbumID:   &albumID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	j := &createJournal{postID: post.ID}
	if res.Created {
		j.album = &albumID
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, s.failCreate(ctx, j, domain.PersistenceError("failed to create post", err))
	}
	j.postInserted = true

	items, err := s.placeFiles(ctx, input.Files, &j.files)
	if err != nil {
		return nil, s.failCreate(ctx, j, err)
	}
	ids, err := s.media.Insert(ctx, post.ID, &albumID, items)
	j.inserted = ids
	if err != nil {
		return nil, s.failCreate(ctx, j, domain.PersistenceError("failed to save media", err))
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		Action:     domain.AuditCreate,
		EntityType: entityType,
		EntityID:   post.ID,
		NewValue:   post,
	})
	log.Printf("[post] created %s in album %s with %d media", post.ID, albumID, ids.Len())

	return s.Get(ctx, post.ID)
}

func (s *service) failCreate(ctx context.Context, j *createJournal, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.compensateCreate(ctx, j); err != nil {
		s.alert(ctx, "create", j.postID, cause, err)
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		Action:     domain.AuditRollbackCreate,
		EntityType: entityType,
		EntityID:   j.postID,
		NewValue:   map[string]string{"error": cause.Error()},
	})
	return cause
}

func (s *service) Update(ctx context.Context, input domain.UpdatePostInput) (*domain.PostView, error) {
	title, content, err := s.validate.text(input.Title, input.Content)
	if err != nil {
		return nil, err
	}
	if err := s.validate.uploads(&input.NewFiles); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, input.PostID)
	if err != nil {
		return nil, domain.PersistenceError("failed to load post", err)
	}
	if post == nil {
		return nil, domain.NotFoundError(domain.ErrPostNotFound)
	}
	if input.CurrentAlbumID != nil && (post.AlbumID == nil || *post.AlbumID != *input.CurrentAlbumID) {
		log.Printf("[post] edit of %s sent album %s, stored album is %v", post.ID, input.CurrentAlbumID, post.AlbumID)
	}

	removals, err := s.loadRemovals(ctx, post.ID, input.MediaToRemove)
	if err != nil {
		return nil, err
	}

	j := &editJournal{before: *post, session: s.stager.Begin()}

	tr, err := s.albums.Reconcile(ctx, post, input.AlbumID, title)
	j.transition = tr
	if err != nil {
		return nil, s.failEdit(ctx, j, err)
	}

	updated := *post
	updated.Title = title
	updated.Content = content
	if input.EventDate != nil {
		updated.EventDate = input.EventDate
	}
	updated.AlbumID = tr.TargetID()
	updated.UpdatedAt = s.now()

	j.fieldsTouched = true
	if err := s.posts.Update(ctx, &updated); err != nil {
		return nil, s.failEdit(ctx, j, domain.PersistenceError("failed to update post", err))
	}

	// A row goes before its file so no row ever points at a missing file
	// outside of this step.
	for _, m := range removals {
		j.removed = append(j.removed, m)
		if err := s.media.DeleteByID(ctx, m.Kind, m.ID); err != nil {
			return nil, s.failEdit(ctx, j, domain.PersistenceError("failed to remove media", err))
		}
		if _, err := j.session.Stage(ctx, m.URL); err != nil {
			return nil, s.failEdit(ctx, j, domain.FilesystemError("failed to stage media", err))
		}
	}

	items, err := s.placeFiles(ctx, input.NewFiles, &j.files)
	if err != nil {
		return nil, s.failEdit(ctx, j, err)
	}
	ids, err := s.media.Insert(ctx, post.ID, updated.AlbumID, items)
	j.inserted = ids
	if err != nil {
		return nil, s.failEdit(ctx, j, domain.PersistenceError("failed to save media", err))
	}

	if err := j.session.Discard(ctx); err != nil {
		log.Printf("[post] edit of %s: %v", post.ID, err)
	}

	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		Action:     domain.AuditUpdate,
		EntityType: entityType,
		EntityID:   post.ID,
		OldValue:   post,
		NewValue:   updated,
	})
	s.invalidate(ctx, post.ID)
	log.Printf("[post] updated %s: removed %d media, added %d", post.ID, len(removals), ids.Len())

	return s.Get(ctx, post.ID)
}

// loadRemovals snapshots the media marked for removal. Every id must exist
// and belong to the post.
func (s *service) loadRemovals(ctx context.Context, postID uuid.UUID, refs domain.MediaRefs) ([]domain.Media, error) {
	var ids domain.MediaIDs
	ids.Images = refs.Images
	ids.Videos = refs.Videos

	removals := make([]domain.Media, 0, ids.Len())
	seen := make(map[uuid.UUID]bool, ids.Len())
	var err error
	ids.Each(func(kind domain.MediaKind, id uuid.UUID) {
		if err != nil || seen[id] {
			return
		}
		seen[id] = true

		m, fetchErr := s.media.FetchByID(ctx, kind, id)
		if fetchErr != nil {
			err = domain.PersistenceError("failed to load media", fetchErr)
			return
		}
		if m == nil || m.PostID == nil || *m.PostID != postID {
			err = domain.NotFoundError(domain.ErrMediaNotFound)
			return
		}
		removals = append(removals, *m)
	})
	if err != nil {
		return nil, err
	}
	return removals, nil
}

func (s *service) failEdit(ctx context.Context, j *editJournal, cause error) error {
	ctx = context.WithoutCancel(ctx)
	postID := j.before.ID

	if !j.mutated() {
		if err := j.session.Discard(ctx); err != nil {
			log.Printf("[post] edit of %s: %v", postID, err)
		}
		return cause
	}

	if err := s.compensateEdit(ctx, j); err != nil {
		s.alert(ctx, "edit", postID, cause, err)
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		Action:     domain.AuditRollbackUpdate,
		EntityType: entityType,
		EntityID:   postID,
		OldValue:   j.before,
		NewValue:   map[string]string{"error": cause.Error()},
	})
	s.invalidate(ctx, postID)

	reverted, err := s.Get(ctx, postID)
	if err != nil {
		log.Printf("[post] failed to load reverted post %s: %v", postID, err)
		reverted = nil
	}
	return withReverted(cause, reverted)
}

func withReverted(cause error, view *domain.PostView) error {
	var domainErr *domain.Error
	if errors.As(cause, &domainErr) {
		out := *domainErr
		out.Reverted = view
		return &out
	}
	return &domain.Error{
		Kind:     domain.KindPersistence,
		Message:  "failed to update post",
		Err:      cause,
		Reverted: view,
	}
}

// placeFiles writes every upload to its final directory, recording each
// stored path in placed as soon as it exists.
func (s *service) placeFiles(ctx context.Context, files domain.UploadSet, placed *[]string) ([]domain.Media, error) {
	items := make([]domain.Media, 0, files.Len())
	place := func(kind domain.MediaKind, u domain.Upload) error {
		p, err := s.stager.Place(ctx, kind, u)
		if err != nil {
			return domain.FilesystemError("failed to store "+string(kind), err)
		}
		*placed = append(*placed, p)

		item := domain.Media{Kind: kind, URL: p}
		if kind == domain.MediaVideo {
			item.Visible = true
			if u.Title != nil {
				item.Title = strings.TrimSpace(*u.Title)
			}
			if u.Description != nil {
				item.Description = *u.Description
			}
			if u.Visible != nil {
				item.Visible = *u.Visible
			}
		}
		items = append(items, item)
		return nil
	}

	for _, u := range files.Images {
		if err := place(domain.MediaImage, u); err != nil {
			return nil, err
		}
	}
	for _, u := range files.Videos {
		if err := place(domain.MediaVideo, u); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.PostView, error) {
	cacheKey := "post:view:" + id.String()

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var view domain.PostView
			if json.Unmarshal([]byte(cached), &view) == nil {
				return &view, nil
			}
		}
	}

	view, err := s.views.Get(ctx, id)
	if err != nil {
		return nil, domain.PersistenceError("failed to load post", err)
	}
	if view == nil {
		return nil, domain.NotFoundError(domain.ErrPostNotFound)
	}
	s.publish(view)

	if s.redis != nil {
		if viewJSON, err := json.Marshal(view); err == nil {
			_ = s.redis.Set(ctx, cacheKey, viewJSON, s.opts.CacheTTL).Err()
		}
	}
	return view, nil
}

// publish turns stored relative paths into public URLs.
func (s *service) publish(view *domain.PostView) {
	base := strings.TrimRight(s.opts.PublicMediaURL, "/")
	if base == "" {
		return
	}
	for i := range view.Images {
		view.Images[i].URL = base + "/" + view.Images[i].URL
	}
	for i := range view.Videos {
		view.Videos[i].URL = base + "/" + view.Videos[i].URL
	}
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, "post:view:"+id.String()).Err(); err != nil {
		log.Printf("[post] failed to invalidate cache for %s: %v", id, err)
	}
}

func (s *service) alert(ctx context.Context, op string, postID uuid.UUID, cause, failures error) {
	report := alert.Report{
		Operation: op,
		PostID:    postID,
		Cause:     cause.Error(),
	}
	for _, f := range unjoin(failures) {
		report.Failures = append(report.Failures, f.Error())
	}
	if s.alerts == nil {
		return
	}
	if err := s.alerts.CompensationFailed(ctx, report); err != nil {
		log.Printf("[post] failed to send rollback alert for %s: %v", postID, err)
	}
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
