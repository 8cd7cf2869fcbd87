// Package album keeps a post's album consistent with the post: it resolves
// the album for a new post, moves a post between albums on edit, deletes
// albums left without posts or media, and undoes all of that on rollback.
package album

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"memoria/internal/domain"
	"memoria/internal/repository"
)

type Reconciler interface {
	// Resolve picks the album of a new post: the requested one, else an
	// existing album named title, else a new album named title.
	Resolve(ctx context.Context, requested *uuid.UUID, title string) (*Resolution, error)
	// Reconcile moves an existing post to the album implied by requested and
	// title. The returned transition is non-nil even on error so the caller
	// can undo whatever was applied.
	Reconcile(ctx context.Context, post *domain.Post, requested *uuid.UUID, title string) (*Transition, error)
	Undo(ctx context.Context, tr *Transition) error
	// DiscardIfOrphaned deletes the album when nothing references it.
	DiscardIfOrphaned(ctx context.Context, albumID uuid.UUID) (bool, error)
}

type Resolution struct {
	Album   domain.Album
	Created bool
}

// Transition records what Reconcile did to a post's album.
type Transition struct {
	PostID uuid.UUID
	// Previous is the album the post belonged to before the edit, captured
	// before anything changed. Nil when the post had no album.
	Previous *domain.Album
	Target   *domain.Album
	// Created is set when Target was created by this transition.
	Created bool
	// Changed is set when the post moves to a different album.
	Changed bool
	// Reassigned is set once the post and its media started moving to Target.
	Reassigned      bool
	PreviousDeleted bool
}

func (t *Transition) TargetID() *uuid.UUID {
	if t == nil || t.Target == nil {
		return nil
	}
	id := t.Target.ID
	return &id
}

type reconciler struct {
	albumRepo repository.AlbumRepository
	postRepo  repository.PostRepository
	mediaRepo repository.MediaRepository
	now       func() time.Time
}

func NewReconciler(albumRepo repository.AlbumRepository, postRepo repository.PostRepository, mediaRepo repository.MediaRepository) Reconciler {
	return &reconciler{
		albumRepo: albumRepo,
		postRepo:  postRepo,
		mediaRepo: mediaRepo,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func (r *reconciler) Resolve(ctx context.Context, requested *uuid.UUID, title string) (*Resolution, error) {
	if requested != nil {
		album, err := r.albumRepo.GetByID(ctx, *requested)
		if err != nil {
			return nil, domain.PersistenceError("failed to load album", err)
		}
		if album == nil {
			return nil, domain.NotFoundError(domain.ErrAlbumNotFound)
		}
		return &Resolution{Album: *album}, nil
	}

	existing, err := r.albumRepo.GetByName(ctx, title)
	if err != nil {
		return nil, domain.PersistenceError("failed to look up album", err)
	}
	if existing != nil {
		return &Resolution{Album: *existing}, nil
	}

	album, err := r.create(ctx, title)
	if err != nil {
		return nil, err
	}
	return &Resolution{Album: *album, Created: true}, nil
}

func (r *reconciler) Reconcile(ctx context.Context, post *domain.Post, requested *uuid.UUID, title string) (*Transition, error) {
	tr := &Transition{PostID: post.ID}

	if post.AlbumID != nil {
		previous, err := r.albumRepo.GetByID(ctx, *post.AlbumID)
		if err != nil {
			return tr, domain.PersistenceError("failed to load current album", err)
		}
		tr.Previous = previous
	}

	target, created, err := r.target(ctx, tr.Previous, requested, title)
	if err != nil {
		return tr, err
	}
	tr.Target = target
	tr.Created = created

	if tr.Previous != nil && tr.Previous.ID == target.ID {
		return tr, nil
	}
	tr.Changed = true

	tr.Reassigned = true
	if err := r.postRepo.SetAlbum(ctx, post.ID, &target.ID); err != nil {
		return tr, domain.PersistenceError("failed to move post to album", err)
	}
	if err := r.mediaRepo.ReassignAlbum(ctx, post.ID, &target.ID); err != nil {
		return tr, domain.PersistenceError("failed to move media to album", err)
	}

	// Only the album captured before the move can have become orphaned.
	if tr.Previous != nil {
		deleted, err := r.DiscardIfOrphaned(ctx, tr.Previous.ID)
		if err != nil {
			return tr, err
		}
		tr.PreviousDeleted = deleted
	}
	return tr, nil
}

// target decides the album the post should end up in. A nil requested album
// means the album named after the title, which may already be the current one.
func (r *reconciler) target(ctx context.Context, previous *domain.Album, requested *uuid.UUID, title string) (*domain.Album, bool, error) {
	if requested != nil {
		if previous != nil && previous.ID == *requested {
			return previous, false, nil
		}
		album, err := r.albumRepo.GetByID(ctx, *requested)
		if err != nil {
			return nil, false, domain.PersistenceError("failed to load album", err)
		}
		if album == nil {
			return nil, false, domain.NotFoundError(domain.ErrAlbumNotFound)
		}
		return album, false, nil
	}

	if previous != nil && previous.Name == title {
		return previous, false, nil
	}
	existing, err := r.albumRepo.GetByName(ctx, title)
	if err != nil {
		return nil, false, domain.PersistenceError("failed to look up album", err)
	}
	if existing != nil {
		return existing, false, nil
	}
	album, err := r.create(ctx, title)
	if err != nil {
		return nil, false, err
	}
	return album, true, nil
}

func (r *reconciler) create(ctx context.Context, name string) (*domain.Album, error) {
	album := &domain.Album{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: r.now(),
	}
	if err := r.albumRepo.Create(ctx, album); err != nil {
		return nil, domain.PersistenceError("failed to create album", err)
	}
	log.Printf("[album] created %s %q", album.ID, album.Name)
	return album, nil
}

func (r *reconciler) DiscardIfOrphaned(ctx context.Context, albumID uuid.UUID) (bool, error) {
	usage, err := r.mediaRepo.CountByAlbum(ctx, albumID)
	if err != nil {
		return false, domain.PersistenceError("failed to count album usage", err)
	}
	if !usage.IsOrphaned() {
		return false, nil
	}
	if err := r.albumRepo.Delete(ctx, albumID); err != nil {
		return false, domain.PersistenceError("failed to delete orphaned album", err)
	}
	log.Printf("[album] deleted orphaned album %s", albumID)
	return true, nil
}

// Undo reverses a transition: the previous album is re-created verbatim if
// it is gone, the post and its media move back to it, and an album created
// by the transition is deleted once nothing references it. Every step is
// attempted; failures are joined.
func (r *reconciler) Undo(ctx context.Context, tr *Transition) error {
	if tr == nil {
		return nil
	}
	var errs []error

	if tr.Previous != nil && (tr.Changed || tr.PreviousDeleted) {
		existing, err := r.albumRepo.GetByID(ctx, tr.Previous.ID)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("load previous album: %w", err))
		case existing == nil:
			restored := *tr.Previous
			if err := r.albumRepo.Create(ctx, &restored); err != nil {
				errs = append(errs, fmt.Errorf("re-create previous album: %w", err))
			} else {
				log.Printf("[album] re-created album %s %q", restored.ID, restored.Name)
			}
		}
	}

	if tr.Reassigned {
		var previousID *uuid.UUID
		if tr.Previous != nil {
			id := tr.Previous.ID
			previousID = &id
		}
		if err := r.postRepo.SetAlbum(ctx, tr.PostID, previousID); err != nil {
			errs = append(errs, fmt.Errorf("move post back: %w", err))
		}
		if err := r.mediaRepo.ReassignAlbum(ctx, tr.PostID, previousID); err != nil {
			errs = append(errs, fmt.Errorf("move media back: %w", err))
		}
	}

	if tr.Created && tr.Target != nil {
		if _, err := r.DiscardIfOrphaned(ctx, tr.Target.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete created album: %w", err))
		}
	}

	return errors.Join(errs...)
}
