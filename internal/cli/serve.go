package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/buildinfo"
	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/cmap"
	"github.com/matzehuels/conceptmap/pkg/config"
	"github.com/matzehuels/conceptmap/pkg/errors"
	cmio "github.com/matzehuels/conceptmap/pkg/io"
	"github.com/matzehuels/conceptmap/pkg/library"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

const (
	maxBodyBytes    = 10 << 20
	exportCacheTTL  = 24 * time.Hour
	shutdownTimeout = 5 * time.Second
)

// Cache backends for served exports.
const (
	cacheFile  = "file"
	cacheRedis = "redis"
	cacheNone  = "none"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		cacheKind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map library over HTTP",
		Long: `Serve the map library over HTTP.

Routes:
  GET    /maps                        list maps
  POST   /maps?name=...               add a map (body: document JSON)
  GET    /maps/{id}                   fetch a map
  PUT    /maps/{id}?name=...          create or replace a map
  DELETE /maps/{id}                   remove a map
  GET    /maps/{id}/export/{format}   export as svg, png, pdf, dot, triples or json
  GET    /metrics                     Prometheus metrics
  GET    /healthz                     liveness and version

Exports are cached by document content, so repeated requests for an
unchanged map are served without re-rendering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			store, err := c.openLibrary(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			exports, err := openExportCache(ctx, cacheKind, cfg)
			if err != nil {
				return err
			}
			defer exports.Close()

			metrics := observability.NewMetrics(appName)
			observability.SetDocumentHooks(metrics)
			observability.SetCacheHooks(metrics)
			defer observability.Reset()

			s := &server{store: store, cache: exports, metrics: metrics, cfg: cfg, logger: c.Logger, ui: c.ui}
			return s.listenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&cacheKind, "cache", cacheFile, "export cache: file, redis or none")

	return cmd
}

func openExportCache(ctx context.Context, kind string, cfg *config.Config) (cache.Cache, error) {
	switch kind {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheFile:
		if cfg.Server.CacheDir == "" {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(cfg.Server.CacheDir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "open export cache")
		}
		return fc, nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Library.RedisAddr, cfg.Library.RedisDB)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "open export cache")
		}
		return rc, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache %q (want file, redis or none)", kind)
}

// =============================================================================
// Server
// =============================================================================

// server holds the HTTP handlers' dependencies. Documents are decoded per
// request and never shared between requests.
type server struct {
	store   library.Store
	cache   cache.Cache
	metrics *observability.Metrics
	cfg     *config.Config
	logger  *log.Logger
	ui      printer
}

func (s *server) listenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "listen on %s", addr)
	}

	srv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.ui.success("Serving on %s", StyleLink.Render("http://"+ln.Addr().String()))
	s.ui.detail("Library: %s", s.cfg.Library.Backend)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/maps", func(r chi.Router) {
		r.Get("/", s.listMaps)
		r.Post("/", s.createMap)
		r.Get("/{id}", s.getMap)
		r.Put("/{id}", s.putMap)
		r.Delete("/{id}", s.deleteMap)
		r.Get("/{id}/export/{format}", s.exportMap)
	})

	return r
}

// instrument records every request in the metrics and the debug log.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "bytes", ww.BytesWritten(), "dur", d.Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *server) listMaps(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []library.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) createMap(w http.ResponseWriter, r *http.Request) {
	data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	e, err := library.NewEntry(nameParam(r, "untitled"), data)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "new entry"))
		return
	}
	if err := s.put(r.Context(), e); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/maps/"+e.ID)
	writeJSON(w, http.StatusCreated, e.Summary())
}

func (s *server) putMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	e := &library.Entry{ID: id, Name: nameParam(r, ""), Data: data}
	status := http.StatusOK
	old, err := s.store.Get(r.Context(), id)
	switch {
	case stderrors.Is(err, library.ErrNotFound):
		status = http.StatusCreated
	case err != nil:
		s.writeError(w, err)
		return
	default:
		e.CreatedAt = old.CreatedAt
		if e.Name == "" {
			e.Name = old.Name
		}
	}
	if e.Name == "" {
		e.Name = "untitled"
	}

	if err := s.put(r.Context(), e); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, e.Summary())
}

func (s *server) put(ctx context.Context, e *library.Entry) error {
	start := time.Now()
	err := s.store.Put(ctx, e)
	observability.Document().OnSave(ctx, "library", len(e.Data), time.Since(start), err)
	return err
}

func (s *server) getMap(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *server) deleteMap(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) exportMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := chi.URLParam(r, "format")
	if !slices.Contains(validFormats, format) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format))
		return
	}

	e, err := s.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := cache.ExportKey(cache.Hash(e.Data), format)
	data, hit, err := cache.GetOrCompute(ctx, s.cache, key, exportCacheTTL, func() ([]byte, error) {
		doc, err := s.decode(ctx, e.Data, "library")
		if err != nil {
			return nil, err
		}
		return export(ctx, doc, format, exportOpts{
			width:  s.cfg.Canvas.Width,
			height: s.cfg.Canvas.Height,
			scale:  1,
		})
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if hit {
		observability.Cache().OnCacheHit(ctx, format)
		w.Header().Set("X-Cache", "HIT")
	} else {
		observability.Cache().OnCacheMiss(ctx, format)
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Helpers
// =============================================================================

// readDocument validates the request body as a document and returns its
// normalized JSON.
func (s *server) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	doc, err := s.decode(r.Context(), body, "http")
	if err != nil {
		return nil, err
	}
	return cmio.MarshalJSON(doc)
}

// decode parses a document with a face of its own; faces are not safe for
// concurrent use.
func (s *server) decode(ctx context.Context, data []byte, source string) (*cmap.Document, error) {
	m, err := textMetrics(s.cfg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := cmio.ReadJSON(bytes.NewReader(data), m)
	nodes := 0
	if doc != nil {
		nodes = doc.NodeCount()
	}
	observability.Document().OnLoad(ctx, source, nodes, time.Since(start), err)
	return doc, err
}

func nameParam(r *http.Request, fallback string) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return fallback
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if stderrors.Is(err, library.ErrNotFound) {
		code = errors.ErrCodeNotFound
	}

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidArrow, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case "":
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}

	writeJSON(w, status, errorResponse{Error: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
