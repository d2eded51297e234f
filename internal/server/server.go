// Package server serves a loaded site straight from memory for local preview.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/gabrielperales/gabriel.perales.me/internal/catalog"
	"github.com/gabrielperales/gabriel.perales.me/internal/config"
	"github.com/gabrielperales/gabriel.perales.me/internal/render"
	"github.com/gabrielperales/gabriel.perales.me/internal/site"
)

// Options controls what the preview exposes.
type Options struct {
	// Drafts makes draft posts reachable at their permalink. They are still
	// left out of every listing.
	Drafts bool
}

// state is swapped as a whole on reload so a request never mixes an old
// site with new layouts.
type state struct {
	generation uint64
	site       *site.Site
	renderer   *render.Renderer
}

type Server struct {
	cfg   config.Config
	opts  Options
	log   logrus.FieldLogger
	state atomic.Pointer[state]
	gen   atomic.Uint64
	pages *cache.Cache

	// reloadMu keeps reloads in order so an older load never replaces a
	// newer one.
	reloadMu sync.Mutex
	load     func() (*site.Site, *render.Renderer, error)
}

// New returns a server that renders s with r until the next Swap or Reload.
func New(cfg config.Config, s *site.Site, r *render.Renderer, opts Options, log logrus.FieldLogger) *Server {
	srv := &Server{
		cfg:   cfg,
		opts:  opts,
		log:   log,
		pages: cache.New(10*time.Minute, 20*time.Minute),
	}
	srv.load = srv.loadFromDisk
	srv.Swap(s, r)
	return srv
}

// Swap replaces the served site and drops every cached page.
func (s *Server) Swap(st *site.Site, r *render.Renderer) {
	s.state.Store(&state{generation: s.gen.Add(1), site: st, renderer: r})
	s.pages.Flush()
}

// Reload loads the site and layouts again from disk. On error the current
// site keeps being served. Concurrent calls run one at a time.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	st, r, err := s.load()
	if err != nil {
		return err
	}
	s.Swap(st, r)
	return nil
}

func (s *Server) loadFromDisk() (*site.Site, *render.Renderer, error) {
	st, err := site.Load(s.cfg, s.log)
	if err != nil {
		return nil, nil, err
	}
	r, err := render.NewFromDir(s.cfg.LayoutsDir, s.log)
	if err != nil {
		return nil, nil, err
	}
	return st, r, nil
}

// Handler returns the preview routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(noCache)

	r.Get("/", s.page(func(st *state, _ *http.Request) (string, render.PageData, error) {
		return render.HomeLayout, render.Home(st.site), nil
	}))
	r.Get("/projects", s.page(func(st *state, _ *http.Request) (string, render.PageData, error) {
		return render.ProjectsLayout, render.Projects(st.site), nil
	}))
	r.Get("/posts", s.page(func(st *state, _ *http.Request) (string, render.PageData, error) {
		return render.PostListLayout, render.PostList(st.site), nil
	}))
	r.Get("/posts/{slug}", s.page(func(st *state, req *http.Request) (string, render.PageData, error) {
		p, err := st.site.Posts.Lookup(chi.URLParam(req, "slug"), catalog.ListOptions{IncludeDrafts: s.opts.Drafts})
		if err != nil {
			return "", render.PageData{}, err
		}
		return st.renderer.LayoutFor(p), render.Post(st.site, p), nil
	}))
	r.Get("/tags", s.page(func(st *state, _ *http.Request) (string, render.PageData, error) {
		return render.TagIndexLayout, render.TagIndex(st.site), nil
	}))
	r.Get("/tags/{tag}", s.page(func(st *state, req *http.Request) (string, render.PageData, error) {
		g, err := st.site.Posts.Tag(chi.URLParam(req, "tag"), catalog.ListOptions{})
		if err != nil {
			return "", render.PageData{}, err
		}
		return render.TagLayout, render.Tag(st.site, g), nil
	}))
	r.Get("/tag-data.json", s.tagData)
	r.NotFound(s.staticOrNotFound)
	return r
}

type resolver func(st *state, r *http.Request) (layout string, data render.PageData, err error)

// page renders through the page cache. Cache keys carry the state generation
// so a render racing a Swap cannot leave a stale page behind.
func (s *Server) page(resolve resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.state.Load()
		key := fmt.Sprintf("%d:%s", st.generation, r.URL.Path)
		if body, ok := s.pages.Get(key); ok {
			writeHTML(w, http.StatusOK, body.([]byte))
			return
		}

		layout, data, err := resolve(st, r)
		if errors.Is(err, catalog.ErrNotFound) {
			s.notFound(w, r, st)
			return
		}
		if err != nil {
			s.log.WithError(err).WithField("path", r.URL.Path).Error("failed to resolve page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := st.renderer.Render(&buf, layout, data); err != nil {
			s.log.WithError(err).WithField("path", r.URL.Path).Error("failed to render page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.pages.Set(key, buf.Bytes(), cache.DefaultExpiration)
		writeHTML(w, http.StatusOK, buf.Bytes())
	}
}

func (s *Server) tagData(w http.ResponseWriter, _ *http.Request) {
	st := s.state.Load()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st.site.Posts.TagCounts(catalog.ListOptions{})); err != nil {
		s.log.WithError(err).Error("failed to encode tag data")
	}
}

// staticOrNotFound serves files from the static directory the way a build
// copies them to the output root, and the 404 page for anything else.
func (s *Server) staticOrNotFound(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(s.cfg.StaticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	s.notFound(w, r, s.state.Load())
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, st *state) {
	var buf bytes.Buffer
	if err := st.renderer.Render(&buf, render.NotFoundLayout, render.NotFound(st.site)); err != nil {
		s.log.WithError(err).Error("failed to render 404 page")
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
