// Package api exposes the bookstore over HTTP using huma operations on a chi router.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfmark/bookstore-server/internal/ratelimit"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const apiPrefix = "/api/v1"

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string

	// LoginRatePerSecond and LoginBurst bound login attempts per client IP.
	LoginRatePerSecond float64
	LoginBurst         int
}

// Server is the HTTP entry point.
type Server struct {
	store        store.Store
	services     *Services
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
	loginLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates the router, installs middleware and registers every route.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.LoginRatePerSecond <= 0 {
		opts.LoginRatePerSecond = 1
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}

	router := chi.NewRouter()

	s := &Server{
		store:        st,
		services:     services,
		router:       router,
		logger:       logger,
		loginLimiter: ratelimit.New(opts.LoginRatePerSecond, opts.LoginBurst, 10*time.Minute),
	}

	s.setupMiddleware(opts)

	config := huma.DefaultConfig("Bookstore API", "1.0.0")
	config.Info.Description = "Catalog, cart and order management for an online bookstore."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(router, config)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(requestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCartRoutes()
	s.registerOrderRoutes()
	s.registerBookRoutes()
	s.registerCategoryRoutes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}
