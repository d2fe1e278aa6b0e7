package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// DefaultMaxUploadBytes caps the size of an uploaded document.
const DefaultMaxUploadBytes = 256 << 20

// Config holds router configuration.
type Config struct {
	// MaxUploadBytes caps request bodies of uploads. Zero uses the default.
	MaxUploadBytes int64

	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration

	// Mounts attaches extra handlers under path prefixes, such as the
	// MCP endpoint at /mcp. They bypass the request timeout.
	Mounts map[string]http.Handler
}

// NewRouter creates the API router.
func NewRouter(documents driving.DocumentService, dispatcher driving.Dispatcher, cfg Config) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	h := &handler{
		documents:  documents,
		dispatcher: dispatcher,
		maxUpload:  cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	for prefix, mounted := range cfg.Mounts {
		r.Mount(prefix, mounted)
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}
		h.routes(r)
	})

	return r
}

func (h *handler) routes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "documentviewer"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.upload)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.Put("/", h.update)
			r.Delete("/", h.delete)
			r.Get("/status", h.status)
			r.Post("/convert", h.convert)
			r.Get("/search", h.search)
			r.Get("/pages/{kind}", h.pages)
			r.Get("/pages/{kind}/{page}", h.page)
		})
	})
}

// requestLogger logs each request through the application logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("http: %s %s %d %dB %s [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), chimiddleware.GetReqID(r.Context()))
	})
}
