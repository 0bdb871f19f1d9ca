package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/importer/ofx"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// DefaultUserHeader carries the user id set by the authenticating proxy.
const DefaultUserHeader = "X-User-ID"

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Records    *services.RecordService
	Dashboards *services.DashboardService
	Importer   *ofx.Parser
	Logger     *log.Logger
}

// Options tune the transport layer.
type Options struct {
	UserHeader         string
	RateLimitPerMinute int
	// Today defaults to core.Today; tests pin it.
	Today func() core.Date
}

type appMetrics struct {
	uptime          time.Time
	recordsCreated  int64
	recordsUpdated  int64
	recordsDeleted  int64
	importedRecords int64
	exports         int64
}

type Server struct {
	http.Server
	templates  *template.Template
	records    *services.RecordService
	dashboards *services.DashboardService
	importer   *ofx.Parser
	userHeader string
	today      func() core.Date
	logger     *log.Logger

	limiter    *ratelimit.Limiter
	detector   *security.Detector
	tracer     *trace.Middleware
	appMetrics *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Dependencies, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	if opts.UserHeader == "" {
		opts.UserHeader = DefaultUserHeader
	}
	if opts.Today == nil {
		opts.Today = core.Today
	}
	importer := deps.Importer
	if importer == nil {
		importer = ofx.NewParser()
	}

	s := &Server{
		records:    deps.Records,
		dashboards: deps.Dashboards,
		importer:   importer,
		userHeader: opts.UserHeader,
		today:      opts.Today,
		logger:     logger,
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:   security.NewDetector(logger),
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = s.detector.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /{$}", s.authed(s.handleIndex))
	mux.Handle("GET /api/dashboard", s.authed(s.handleDashboard))
	mux.Handle("GET /api/reports/categories", s.authed(s.handleCategoryReport))
	mux.Handle("GET /api/reports/monthly", s.authed(s.handleMonthlyReport))

	registerResource(mux, s, transactionResource(s.records))
	registerResource(mux, s, billResource(s.records))
	registerResource(mux, s, goalResource(s.records))
	registerResource(mux, s, investmentResource(s.records))
	mux.Handle("POST /api/bills/{id}/pay", s.authed(s.handlePayBill))

	mux.Handle("POST /api/import/ofx", s.authed(s.handleImportOFX))
	mux.Handle("GET /export/{file}", s.authed(s.handleExport))
}

// authed applies rate limiting, resolves the caller's session from the
// identity header and marks the response as private.
func (s *Server) authed(next http.HandlerFunc) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := core.NewSession(r.Header.Get(s.userHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := core.WithSession(r.Context(), sess)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, sess.UserID))
		next(w, r.WithContext(ctx))
	})
	h = security.NoStoreMiddleware(h)
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errRateLimited)
	})(h)
}

// session returns the caller placed in the context by authed.
func session(r *http.Request) core.Session {
	sess, _ := core.SessionFrom(r.Context())
	return sess
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe runs until Shutdown; the usual ErrServerClosed is not an
// error for callers.
func (s *Server) ListenAndServe() error {
	err := s.Server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) countWrite(op string) {
	switch op {
	case amqp.OpCreated:
		atomic.AddInt64(&s.appMetrics.recordsCreated, 1)
	case amqp.OpUpdated:
		atomic.AddInt64(&s.appMetrics.recordsUpdated, 1)
	case amqp.OpDeleted:
		atomic.AddInt64(&s.appMetrics.recordsDeleted, 1)
	}
}

var templateFuncs = template.FuncMap{
	"euros":   formatEuros,
	"percent": formatPercent,
	"kinds":   func() []export.Kind { return export.Kinds },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}
