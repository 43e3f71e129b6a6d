package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/hafizhrmd/cropscan/internal/application/analysis"
	"github.com/hafizhrmd/cropscan/internal/middleware"
)

type Router struct {
	svc *appanalysis.Service
}

func NewRouter(svc *appanalysis.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	// the frontend dev server runs on another origin
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Post("/api/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/api/history", r.wrap(r.handleHistory))
	mux.Delete("/api/history", r.wrap(r.handleClearHistory))
	mux.Get("/uploads/{filename}", r.wrap(r.handleUpload))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, map[string]string{"message": "Crop Disease Analysis API is running"})
}

// POST /api/analyze — multipart field "file"
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	file, header, err := req.FormFile("file")
	if err != nil {
		http.Error(w, `multipart field "file" is required`, http.StatusBadRequest)
		return nil
	}
	defer file.Close()

	middleware.IncrementAnalyses()
	result, err := r.svc.Analyze(req.Context(), header.Filename, file)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	if !result.RawAnalysis.Succeeded {
		middleware.IncrementAnalysesFailed()
	}

	return writeJSON(w, result)
}

// GET /api/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.History(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// DELETE /api/history
func (r *Router) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.Clear(req.Context()); err != nil {
		return err
	}
	return writeJSON(w, map[string]string{"message": "History cleared"})
}

// GET /uploads/{filename}
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	filename := chi.URLParam(req, "filename")

	img, err := r.svc.Image(req.Context(), filename)
	if err != nil {
		return err
	}
	defer img.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, err = io.Copy(w, img)
	return err
}
