package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files on the local filesystem under a root directory.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create uploads root %q: %w", root, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads root: %w", err)
	}
	return &Local{root: absRoot}, nil
}

func (l *Local) Root() string {
	return l.root
}

// abs resolves a key to a filesystem path, refusing anything that escapes root.
func (l *Local) abs(path string) (string, error) {
	joined := filepath.Join(l.root, filepath.Clean(filepath.FromSlash(path)))
	rel, err := filepath.Rel(l.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes uploads root", path)
	}
	return joined, nil
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	abs, err := l.abs(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Write streams r into a sibling temp file and renames it into place, so a
// reader never observes a partial file.
func (l *Local) Write(_ context.Context, path string, r io.Reader, _ int64, _ string) (int64, error) {
	dest, err := l.abs(path)
	if err != nil {
		return 0, err
	}
	return writeAtomic(dest, r)
}

func (l *Local) Copy(_ context.Context, src, dst string) error {
	absSrc, err := l.abs(src)
	if err != nil {
		return err
	}
	absDst, err := l.abs(dst)
	if err != nil {
		return err
	}
	return copyFile(absSrc, absDst)
}

func (l *Local) Move(_ context.Context, src, dst string) error {
	absSrc, err := l.abs(src)
	if err != nil {
		return err
	}
	absDst, err := l.abs(dst)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absDst), 0o750); err != nil {
		return fmt.Errorf("mkdir %q: %w", filepath.Dir(absDst), err)
	}

	// Rename fails across filesystems; fall back to copy then delete.
	if err := os.Rename(absSrc, absDst); err != nil {
		if err := copyFile(absSrc, absDst); err != nil {
			return err
		}
		if err := os.Remove(absSrc); err != nil {
			return fmt.Errorf("remove %q after copy: %w", src, err)
		}
	}
	return nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	abs, err := l.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) RemoveAll(_ context.Context, dir string) error {
	abs, err := l.abs(dir)
	if err != nil {
		return err
	}
	if abs == l.root {
		return fmt.Errorf("refusing to remove uploads root")
	}
	return os.RemoveAll(abs)
}

func (l *Local) MkdirAll(_ context.Context, dir string) error {
	abs, err := l.abs(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(abs, 0o750)
}

func (l *Local) List(_ context.Context, dir string) ([]string, error) {
	abs, err := l.abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer in.Close()

	if _, err := writeAtomic(dst, in); err != nil {
		return fmt.Errorf("copy to %q: %w", dst, err)
	}
	return nil
}

func writeAtomic(dest string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return 0, fmt.Errorf("mkdir %q: %w", filepath.Dir(dest), err)
	}

	tmp := dest + ".part"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("open %q: %w", tmp, err)
	}

	n, werr := io.Copy(f, r)
	if werr == nil {
		werr = f.Sync()
	}
	cerr := f.Close()

	if werr != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("write: %w", werr)
	}
	if cerr != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("flush: %w", cerr)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return 0, fmt.Errorf("rename to %q: %w", dest, err)
	}
	return n, nil
}
