package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"memoria/internal/config"
	"memoria/internal/domain"
)

// Stager moves media between the final directories and the holding area.
// Every staging step keeps a copy of the bytes in one of the two places.
type Stager struct {
	store FileStore
	dirs  config.UploadsConfig
}

func NewStager(store FileStore, dirs config.UploadsConfig) *Stager {
	return &Stager{store: store, dirs: dirs}
}

// Init creates the images, videos and tmp directories.
func (s *Stager) Init(ctx context.Context) error {
	for _, dir := range []string{s.dirs.ImagesDir, s.dirs.VideosDir, s.dirs.TmpDir} {
		if err := s.store.MkdirAll(ctx, dir); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Stager) FinalDir(kind domain.MediaKind) string {
	if kind == domain.MediaVideo {
		return s.dirs.VideosDir
	}
	return s.dirs.ImagesDir
}

// Place writes a new upload into its final directory under a fresh name
// and returns the stored relative path.
func (s *Stager) Place(ctx context.Context, kind domain.MediaKind, upload domain.Upload) (string, error) {
	if upload.Content == nil {
		return "", errors.New("upload has no content")
	}
	name := uuid.New().String() + strings.ToLower(filepath.Ext(upload.FileName))
	dest := path.Join(s.FinalDir(kind), name)

	if _, err := s.store.Write(ctx, dest, upload.Content, upload.Size, upload.MimeType); err != nil {
		// A failed write may still leave bytes behind on some backends.
		_ = s.store.Delete(ctx, dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// RemoveFinal deletes files from the final directories. Failures are
// logged and skipped since the database is authoritative.
func (s *Stager) RemoveFinal(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Printf("[stager] failed to remove %s: %v", p, err)
			continue
		}
		log.Printf("[stager] removed %s", p)
	}
}

// Residue lists staging sessions left in the holding area. A session that
// outlives its request means a crash happened mid-operation.
func (s *Stager) Residue(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, s.dirs.TmpDir)
}

// Begin opens a staging session with its own directory under tmp, so
// concurrent operations never discard each other's staged files.
func (s *Stager) Begin() *Session {
	return &Session{
		stager: s,
		dir:    path.Join(s.dirs.TmpDir, uuid.New().String()),
	}
}

type Session struct {
	stager *Stager
	dir    string
}

func (s *Session) Dir() string {
	return s.dir
}

// Stage copies the file at relPath into the session directory and then
// deletes the original. When the copy succeeds but the delete fails, the
// staged path is returned together with the error.
func (s *Session) Stage(ctx context.Context, relPath string) (string, error) {
	store := s.stager.store
	staged := path.Join(s.dir, path.Base(relPath))

	if err := store.Copy(ctx, relPath, staged); err != nil {
		return "", fmt.Errorf("stage %s: %w", relPath, err)
	}
	ok, err := store.Exists(ctx, staged)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", relPath, err)
	}
	if !ok {
		return "", fmt.Errorf("stage %s: copy not found at %s", relPath, staged)
	}
	if err := store.Delete(ctx, relPath); err != nil {
		return staged, fmt.Errorf("stage %s: remove original: %w", relPath, err)
	}
	return staged, nil
}

// Restore moves a staged file back to the final directory of kind. It is
// idempotent: a file already back in place with no staged copy is success.
func (s *Session) Restore(ctx context.Context, kind domain.MediaKind, filename string) (string, error) {
	store := s.stager.store
	staged := path.Join(s.dir, filename)
	final := path.Join(s.stager.FinalDir(kind), filename)

	finalExists, err := store.Exists(ctx, final)
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", filename, err)
	}
	stagedExists, err := store.Exists(ctx, staged)
	if err != nil {
		return "", fmt.Errorf("restore %s: %w", filename, err)
	}

	if !stagedExists {
		if finalExists {
			return final, nil
		}
		return "", fmt.Errorf("restore %s: no staged copy in %s", filename, s.dir)
	}
	if !finalExists {
		if err := store.Copy(ctx, staged, final); err != nil {
			return "", fmt.Errorf("restore %s: %w", filename, err)
		}
	}
	if err := store.Delete(ctx, staged); err != nil {
		return final, fmt.Errorf("restore %s: remove staged copy: %w", filename, err)
	}
	return final, nil
}

// Discard clears the session directory. Safe to call more than once.
func (s *Session) Discard(ctx context.Context) error {
	if err := s.stager.store.RemoveAll(ctx, s.dir); err != nil {
		return fmt.Errorf("discard %s: %w", s.dir, err)
	}
	return nil
}
