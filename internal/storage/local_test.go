package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"), "/uploads/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return s
}

func TestPutAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url, err := s.Put(ctx, "umkm-1.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/umkm-1.png" {
		t.Errorf("url = %q", url)
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, "umkm-1.png"))
	if err != nil || string(b) != "png-bytes" {
		t.Fatalf("stored file = %q, %v", b, err)
	}

	if _, err := s.Put(ctx, "umkm-1.png", strings.NewReader("again")); err == nil {
		t.Error("Put should not overwrite an existing file")
	}

	if err := s.Delete(ctx, "http://localhost:3000"+url+"?v=1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, url); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "..", "../evil.png", "a/b.png", `a\b.png`} {
		if _, err := s.Put(ctx, name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
		}
	}

	for _, url := range []string{
		"/uploads/../jambearum.db",
		"/uploads/",
		"/static/logo.png",
		"/uploads/a/b.png",
		"http://example.com",
	} {
		if err := s.Delete(ctx, url); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Delete(%q) error = %v, want ErrInvalidName", url, err)
		}
	}
}
