// Package server is the thin HTTP surface over the library: request
// routing, basic auth, and CORS for the browser-extension caller. All real
// behavior lives in core/library; handlers only translate.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gaurav-prasanna/webshelf/core"
	"github.com/gaurav-prasanna/webshelf/core/library"
)

// Server serves the webshelf HTTP API and the reading-list index page.
type Server struct {
	lib      *library.Library
	logger   *slog.Logger
	pageSize int
}

// New creates a Server around an opened library.
func New(lib *library.Library, logger *slog.Logger, pageSize int) *Server {
	return &Server{lib: lib, logger: logger, pageSize: pageSize}
}

// Handler builds the router. Every route sits behind basic auth; CORS is
// permissive so the capture extension can call from any origin.
func (s *Server) Handler(username, password string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(allowAllCORS)
	r.Use(middleware.BasicAuth("webshelf", map[string]string{username: password}))

	r.Get("/", s.handleIndex)
	r.Post("/api/articles", s.handleCreate)
	r.Get("/api/articles", s.handleList)
	r.Delete("/api/articles/{id}", s.handleDelete)
	r.Get("/articles/{id}/download", s.handleDownload)

	return r
}

type createRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusUnprocessableEntity, "URL is required")
		return
	}

	record, err := s.lib.Submit(r.Context(), req.URL)
	if err != nil {
		s.logger.Warn("submit failed", "url", req.URL, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.lib.List())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.lib.Delete(id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, data, err := s.lib.ReadArtifact(id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(record.Title)))
	w.Write(data)
}

// downloadName shortens a title for the Content-Disposition filename. The
// cut is on a rune boundary so a multi-byte character is never split.
func downloadName(title string) string {
	runes := []rune(title)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes) + ".pdf"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	s.renderIndex(w, s.lib.Page(page, s.pageSize))
}

// statusFor maps pipeline failure kinds onto HTTP statuses: caller errors,
// upstream-dependent errors, and internal storage errors stay distinct.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFetch), errors.Is(err, core.ErrExtract), errors.Is(err, core.ErrRender):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// allowAllCORS mirrors the permissive policy of the original deployment:
// the capture extension may call from any origin.
func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
