package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/outfit"
)

// DefaultMaxUploadBytes bounds the request body of an analysis upload.
const DefaultMaxUploadBytes = 20 << 20

// shutdownTimeout bounds graceful shutdown of the HTTP listener.
const shutdownTimeout = 10 * time.Second

// APIConfig configures the HTTP API.
type APIConfig struct {
	// Analyzer runs uploaded images. Required.
	Analyzer *outfit.Analyzer

	// AllowedOrigins lists the CORS origins; "*" allows any.
	AllowedOrigins []string

	// MaxUploadBytes bounds the request body. If zero,
	// DefaultMaxUploadBytes is used.
	MaxUploadBytes int64

	Logger hclog.Logger
}

// API serves the HTTP analysis endpoints.
type API struct {
	analyzer  *outfit.Analyzer
	origins   []string
	maxUpload int64
	logger    hclog.Logger
}

// NewAPI creates an API from cfg.
func NewAPI(cfg APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &API{
		analyzer:  cfg.Analyzer,
		origins:   slices.Clone(cfg.AllowedOrigins),
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Handler returns the routed handler with CORS and request logging applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze-image", a.handleAnalyzeImage)
	mux.HandleFunc("GET /api/health", a.handleHealth)
	return a.logRequests(a.cors(mux))
}

// ListenAndServe serves the API on addr until ctx is done, then shuts down
// gracefully.
func (a *API) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is done.
func (a *API) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (a *API) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			a.writeDetail(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, http.ErrMissingFile):
			a.writeDetail(w, http.StatusBadRequest, "File is required")
		default:
			a.writeDetail(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		}
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.writeDetail(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}
	if !isImage(header, data) {
		a.writeDetail(w, http.StatusBadRequest, "File must be an image")
		return
	}

	gender, err := garment.ParseGender(r.FormValue("gender"))
	if err != nil {
		a.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	a.logger.Debug("analyzing upload", "filename", header.Filename, "bytes", len(data), "gender", gender)
	result, err := a.analyzer.Analyze(r.Context(), data, gender)
	if err != nil {
		a.logger.Error("analysis failed", "filename", header.Filename, "error", err)
		a.writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	a.writeJSON(w, http.StatusOK, result)
}

// isImage reports whether the upload declares an image content type, or
// sniffs as one when it declares nothing specific.
func isImage(header *multipart.FileHeader, data []byte) bool {
	ct := header.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = http.DetectContentType(data)
	}
	return strings.HasPrefix(strings.ToLower(ct), "image/")
}

// cors applies the configured origin policy and answers preflight requests.
func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !a.originAllowed(origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) originAllowed(origin string) bool {
	return slices.Contains(a.origins, "*") || slices.Contains(a.origins, origin)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

func (a *API) writeDetail(w http.ResponseWriter, status int, detail string) {
	a.writeJSON(w, status, map[string]string{"detail": detail})
}

// writeJSON sends v with status. Encode failures happen after the header is
// out, so they are only logged.
func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Debug("failed to write response", "status", status, "error", err)
	}
}
