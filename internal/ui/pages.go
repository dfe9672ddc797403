package ui

import (
	"io"
	"io/fs"
	"net/http"
	"strings"
)

// Page pairs a route pattern with the shell served for it.
type Page struct {
	Pattern string
	File    string
}

// PublicPages are open to every visitor.
var PublicPages = []Page{
	{"/", "index.html"},
	{"/umkm", "umkm.html"},
	{"/umkm/{id}", "umkm-detail.html"},
	{"/wisata", "wisata.html"},
}

// AdminPages sit behind the admin page guard.
var AdminPages = []Page{
	{"/admin/login", "admin/login.html"},
	{"/admin/dashboard", "admin/dashboard.html"},
	{"/admin/umkm", "admin/umkm.html"},
	{"/admin/umkm/edit/{id}", "admin/umkm-edit.html"},
	{"/admin/homepage-images", "admin/homepage-images.html"},
	{"/admin/settings", "admin/settings.html"},
}

// Site serves shells and assets out of an fs.FS rooted at dist.
type Site struct {
	files fs.FS
}

// NewSite roots the embedded filesystem at dist.
func NewSite() (*Site, error) {
	sub, err := fs.Sub(Dist, "dist")
	if err != nil {
		return nil, err
	}
	return &Site{files: sub}, nil
}

// Shell returns a handler that always serves file as HTML.
func (s *Site) Shell(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := s.files.Open(file)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		stat, err := f.Stat()
		if err != nil {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}
		rs, ok := f.(io.ReadSeeker)
		if !ok {
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), rs)
	}
}

// Assets serves /assets/* and /favicon.svg. Directory listings are refused.
func (s *Site) Assets() http.Handler {
	fileServer := http.FileServer(http.FS(s.files))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
