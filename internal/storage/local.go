package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidName is returned for names or URLs that would escape the
	// storage directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNotFound is returned when deleting a file that does not exist.
	ErrNotFound = errors.New("file not found")
)

// BlobStore persists uploaded files and returns the public URL for each.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStore keeps uploads as flat files in Dir, served under BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string // e.g. "/uploads"
}

var _ BlobStore = (*LocalStore)(nil)

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Put writes r to Dir/name and returns BaseURL/name. Existing files are
// never overwritten.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return s.BaseURL + "/" + name, nil
}

// Delete removes the file a previous Put returned url for. Absolute URLs
// are accepted as long as their path lies under BaseURL.
func (s *LocalStore) Delete(ctx context.Context, url string) error {
	p := url
	if i := strings.Index(p, "://"); i >= 0 {
		rest := p[i+3:]
		j := strings.IndexByte(rest, '/')
		if j < 0 {
			return ErrInvalidName
		}
		p = rest[j:]
	}
	if q := strings.IndexAny(p, "?#"); q >= 0 {
		p = p[:q]
	}

	prefix := s.BaseURL + "/"
	if !strings.HasPrefix(p, prefix) {
		return ErrInvalidName
	}
	name := strings.TrimPrefix(p, prefix)
	if !validName(name) || path.Clean(p) != p {
		return ErrInvalidName
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
