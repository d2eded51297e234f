package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/config"
	"github.com/gabrielperales/gabriel.perales.me/internal/render"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T, opts Options) (*Server, config.Config) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data", "projects.yaml"), "- title: Portfolio\n  description: This site.\n")
	writeFile(t, filepath.Join(dir, "content", "posts", "a.md"), "---\ntitle: Public post\ndate: 2025-04-08\ntags: [go]\n---\n\nHello.\n")
	writeFile(t, filepath.Join(dir, "content", "posts", "b.md"), "---\ntitle: Hidden draft\ndate: 2025-03-29\ndraft: true\ntags: [go]\n---\n\nSoon.\n")
	writeFile(t, filepath.Join(dir, "static", "css", "site.css"), "body{color:red}")

	cfg := config.Default()
	cfg.ContentDir = filepath.Join(dir, "content")
	cfg.ProjectsFile = filepath.Join(dir, "data", "projects.yaml")
	cfg.StaticDir = filepath.Join(dir, "static")
	cfg.LayoutsDir = filepath.Join(dir, "layouts")
	cfg.OutputDir = filepath.Join(dir, "public")

	log := quietLogger()
	s, err := site.Load(cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	r, err := render.NewFromDir(cfg.LayoutsDir, log)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, s, r, opts, log), cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	h := srv.Handler()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Portfolio"},
		{"/projects/", http.StatusOK, "This site."},
		{"/posts/", http.StatusOK, "Public post"},
		{"/posts/public-post/", http.StatusOK, "Hello."},
		{"/posts/public-post", http.StatusOK, "Hello."},
		{"/posts/no-such-post/", http.StatusNotFound, "<h1>404</h1>"},
		{"/posts/hidden-draft/", http.StatusNotFound, "<h1>404</h1>"},
		{"/tags/", http.StatusOK, "Go"},
		{"/tags/go/", http.StatusOK, "Public post"},
		{"/tags/rust/", http.StatusNotFound, "<h1>404</h1>"},
		{"/css/site.css", http.StatusOK, "color:red"},
		{"/missing.png", http.StatusNotFound, "<h1>404</h1>"},
	}
	for _, tt := range tests {
		rec := get(t, h, tt.path)
		if rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s body missing %q", tt.path, tt.want)
		}
		if rec.Header().Get("Cache-Control") != "no-cache, no-store, must-revalidate" {
			t.Errorf("GET %s Cache-Control = %q", tt.path, rec.Header().Get("Cache-Control"))
		}
	}

	for _, path := range []string{"/", "/posts/", "/tags/go/"} {
		if body := get(t, h, path).Body.String(); strings.Contains(body, "Hidden draft") {
			t.Errorf("GET %s lists a draft", path)
		}
	}
}

func TestDraftPreview(t *testing.T) {
	srv, _ := newTestServer(t, Options{Drafts: true})
	h := srv.Handler()

	rec := get(t, h, "/posts/hidden-draft/")
	if rec.Code != http.StatusOK {
		t.Fatalf("draft status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Draft preview") {
		t.Error("draft page lacks the preview banner")
	}
	if body := get(t, h, "/posts/").Body.String(); strings.Contains(body, "Hidden draft") {
		t.Error("post list includes a draft in preview mode")
	}
}

func TestTagData(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rec := get(t, srv.Handler(), "/tag-data.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var counts map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatal(err)
	}
	if counts["go"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestReloadReplacesCachedPages(t *testing.T) {
	srv, cfg := newTestServer(t, Options{})
	h := srv.Handler()

	if body := get(t, h, "/posts/").Body.String(); strings.Contains(body, "Brand new") {
		t.Fatal("post present before it was written")
	}

	writeFile(t, filepath.Join(cfg.ContentDir, "posts", "c.md"), "---\ntitle: Brand new\ndate: 2025-05-01\n---\n\nFresh.\n")
	if err := srv.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if body := get(t, h, "/posts/").Body.String(); !strings.Contains(body, "Brand new") {
		t.Error("post list served from a stale cache")
	}
	if rec := get(t, h, "/posts/brand-new/"); rec.Code != http.StatusOK {
		t.Errorf("new post status = %d", rec.Code)
	}
}

func TestReloadKeepsSiteOnError(t *testing.T) {
	srv, cfg := newTestServer(t, Options{})
	h := srv.Handler()

	writeFile(t, filepath.Join(cfg.ContentDir, "posts", "broken.md"), "---\ntitle: Broken\n---\n")
	if err := srv.Reload(); err == nil {
		t.Fatal("Reload() succeeded with a broken post")
	}
	if rec := get(t, h, "/posts/public-post/"); rec.Code != http.StatusOK {
		t.Errorf("status after failed reload = %d", rec.Code)
	}
}

func TestReloadsDoNotOverlap(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	current := srv.state.Load()

	var active, calls atomic.Int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	srv.load = func() (*site.Site, *render.Renderer, error) {
		if active.Add(1) != 1 {
			t.Error("two reloads ran at once")
		}
		defer active.Add(-1)

		n := calls.Add(1)
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
		}
		return &site.Site{Title: fmt.Sprintf("load %d", n), Posts: current.site.Posts}, current.renderer, nil
	}

	first := make(chan error, 1)
	go func() { first <- srv.Reload() }()
	<-firstStarted

	second := make(chan error, 1)
	go func() { second <- srv.Reload() }()

	// Give the second reload time to reach the lock while the first is slow.
	time.Sleep(50 * time.Millisecond)
	close(releaseFirst)

	for _, ch := range []chan error{first, second} {
		if err := <-ch; err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
	}
	if got := srv.state.Load().site.Title; got != "load 2" {
		t.Errorf("serving %q after both reloads, want the later load", got)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir, filepath.Join(dir, "missing")}, 20*time.Millisecond, quietLogger(), func() {
			calls.Add(1)
		})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		writeFile(t, filepath.Join(dir, "post.md"), "changed "+time.Now().String())
		time.Sleep(100 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Fatal("onChange never called")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}
