// Package api provides the HTTP API server and handlers for the ReviewShelf application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/media/images"
	"github.com/reviewshelf/reviewshelf-server/internal/ratelimit"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// maxImageUploadSize caps multipart image uploads at 25 MB.
const maxImageUploadSize = 25 << 20

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	authService    *service.AuthService
	sessionService *service.SessionService
	bookService    *service.BookService
	reviewService  *service.ReviewService
	userService    *service.UserService
	searchService  *service.SearchService
	coverStorage   *images.Storage
	avatarStorage  *images.Storage
	loginLimiter   *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// Options configures a Server.
type Options struct {
	Store          *store.Store
	AuthService    *service.AuthService
	SessionService *service.SessionService
	BookService    *service.BookService
	ReviewService  *service.ReviewService
	UserService    *service.UserService
	SearchService  *service.SearchService
	CoverStorage   *images.Storage
	AvatarStorage  *images.Storage
	LoginLimiter   *ratelimit.KeyedRateLimiter
	CORSOrigins    []string
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	s := &Server{
		store:          opts.Store,
		authService:    opts.AuthService,
		sessionService: opts.SessionService,
		bookService:    opts.BookService,
		reviewService:  opts.ReviewService,
		userService:    opts.UserService,
		searchService:  opts.SearchService,
		coverStorage:   opts.CoverStorage,
		avatarStorage:  opts.AvatarStorage,
		loginLimiter:   opts.LoginLimiter,
		router:         chi.NewRouter(),
		logger:         opts.Logger,
	}

	s.setupMiddleware(opts.CORSOrigins)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Auth endpoints (public). Credential endpoints are rate limited
		// per client IP to slow down guessing.
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitByIP).Post("/register", s.handleRegister)
			r.With(s.rateLimitByIP).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		// Current user endpoints.
		r.Route("/users/me", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetCurrentUser)
			r.Patch("/", s.handleUpdateProfile)
			r.Put("/password", s.handleChangePassword)
			r.Post("/avatar", s.handleUploadAvatar)
			r.Delete("/avatar", s.handleRemoveAvatar)
			r.Get("/sessions", s.handleListSessions)
		})

		// Book catalog. Browsing is public, mutation requires auth.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/reviews", s.handleListReviews)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleAddBook)
				r.Get("/my", s.handleListMyBooks)
				r.Put("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
				r.Post("/{id}/cover", s.handleUploadCover)
				r.Post("/{id}/reviews", s.handleAddReview)
				r.Put("/{id}/reviews/{reviewID}", s.handleUpdateReview)
				r.Delete("/{id}/reviews/{reviewID}", s.handleDeleteReview)
			})
		})

		r.Get("/search", s.handleSearch)
	})

	// Stored images are public. Filenames are unguessable nanoids.
	s.router.Get("/covers/{filename}", s.serveImage(s.coverStorage))
	s.router.Get("/avatars/{filename}", s.serveImage(s.avatarStorage))
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// serveImage serves a stored image file with long-lived caching.
// Storage.Resolve rejects path traversal before the file is touched.
func (s *Server) serveImage(storage *images.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")

		path, err := storage.Resolve(filename)
		if err != nil {
			response.NotFound(w, "Image not found", s.logger)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, path)
	}
}

// rateLimitByIP limits requests per client IP. 429 when exceeded.
func (s *Server) rateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.loginLimiter.Allow(ip) {
			s.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP from the request.
// middleware.RealIP has already folded X-Forwarded-For and X-Real-IP
// into RemoteAddr, so only the port needs stripping.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// HTTPServer wraps the API in an http.Server with the given timeouts.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
