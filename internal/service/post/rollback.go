package post

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/google/uuid"

	"memoria/internal/domain"
	"memoria/internal/service/album"
	"memoria/internal/storage"
)

// step is one named action of a rollback procedure.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes every step in order regardless of earlier failures and
// returns the joined failures.
func runSteps(ctx context.Context, op string, postID uuid.UUID, steps []step) error {
	var errs []error
	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			log.Printf("[post] %s rollback of %s: %s failed: %v", op, postID, st.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", st.name, err))
		}
	}
	return errors.Join(errs...)
}

// createJournal records the side effects of a create as they happen.
type createJournal struct {
	postID       uuid.UUID
	postInserted bool
	// album is set only when the create made a new album.
	album    *uuid.UUID
	files    []string
	inserted domain.MediaIDs
}

func (s *service) compensateCreate(ctx context.Context, j *createJournal) error {
	steps := []step{
		{"deleteInsertedMedia", func(ctx context.Context) error {
			return s.deleteMedia(ctx, j.inserted)
		}},
		{"deletePost", func(ctx context.Context) error {
			if !j.postInserted {
				return nil
			}
			return s.posts.Delete(ctx, j.postID)
		}},
		{"deleteCreatedAlbum", func(ctx context.Context) error {
			if j.album == nil {
				return nil
			}
			_, err := s.albums.DiscardIfOrphaned(ctx, *j.album)
			return err
		}},
		{"removeUploadedFiles", func(ctx context.Context) error {
			s.stager.RemoveFinal(ctx, j.files)
			return nil
		}},
	}
	return runSteps(ctx, "create", j.postID, steps)
}

// editJournal records the side effects of an edit. before is the post as
// loaded, removals are full snapshots of the media marked for removal.
type editJournal struct {
	before        domain.Post
	session       *storage.Session
	transition    *album.Transition
	fieldsTouched bool
	removed       []domain.Media
	files         []string
	inserted      domain.MediaIDs
}

func (j *editJournal) mutated() bool {
	tr := j.transition
	if tr != nil && (tr.Created || tr.Reassigned || tr.PreviousDeleted) {
		return true
	}
	return j.fieldsTouched || len(j.removed) > 0 || len(j.files) > 0 || j.inserted.Len() > 0
}

func (s *service) compensateEdit(ctx context.Context, j *editJournal) error {
	postID := j.before.ID
	restored := true

	steps := []step{
		{"undoAlbum", func(ctx context.Context) error {
			return s.albums.Undo(ctx, j.transition)
		}},
		{"revertPostFields", func(ctx context.Context) error {
			if !j.fieldsTouched {
				return nil
			}
			before := j.before
			return s.posts.Update(ctx, &before)
		}},
		{"reassignMediaBack", func(ctx context.Context) error {
			if j.transition == nil || !j.transition.Reassigned {
				return nil
			}
			return s.media.ReassignAlbum(ctx, postID, j.before.AlbumID)
		}},
		{"restoreRemovedMedia", func(ctx context.Context) error {
			err := s.restoreMedia(ctx, j.session, j.removed)
			if err != nil {
				restored = false
			}
			return err
		}},
		{"discardNewMedia", func(ctx context.Context) error {
			err := s.deleteMedia(ctx, j.inserted)
			s.stager.RemoveFinal(ctx, j.files)
			return err
		}},
		{"discardTempArea", func(ctx context.Context) error {
			// A staged file that could not be put back is the only copy left.
			if !restored {
				return fmt.Errorf("kept %s for manual recovery", j.session.Dir())
			}
			return j.session.Discard(ctx)
		}},
	}
	return runSteps(ctx, "edit", postID, steps)
}

// restoreMedia puts staged files back and re-inserts rows that are gone,
// keeping the original ids, urls and timestamps.
func (s *service) restoreMedia(ctx context.Context, session *storage.Session, items []domain.Media) error {
	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		m := items[i]
		if _, err := session.Restore(ctx, m.Kind, path.Base(m.URL)); err != nil {
			errs = append(errs, err)
		}

		existing, err := s.media.FetchByID(ctx, m.Kind, m.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s %s: %w", m.Kind, m.ID, err))
			continue
		}
		if existing != nil {
			continue
		}
		if err := s.media.Restore(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("re-insert %s %s: %w", m.Kind, m.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) deleteMedia(ctx context.Context, ids domain.MediaIDs) error {
	var errs []error
	ids.Each(func(kind domain.MediaKind, id uuid.UUID) {
		if err := s.media.DeleteByID(ctx, kind, id); err != nil {
			errs = append(errs, fmt.Errorf("delete %s %s: %w", kind, id, err))
		}
	})
	return errors.Join(errs...)
}
