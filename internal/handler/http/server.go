package http

import (
	"Shortly-Backend/internal/auth"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	linksHandler    *LinksHandler
	redirectHandler *RedirectHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	maxBodyBytes    int64
	log             *zap.Logger
}

// Deps зависимости HTTP слоя
type Deps struct {
	Storage        repository.Storage
	Registry       *service.Registry
	Resolver       *service.Resolver
	JWTService     *auth.JWTService
	Analytics      StatsProvider
	BaseURL        string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewServer создает новый HTTP сервер
func NewServer(deps Deps, log *zap.Logger) *Server {
	return &Server{
		linksHandler:    NewLinksHandler(deps.Registry, log, deps.BaseURL),
		redirectHandler: NewRedirectHandler(deps.Resolver, log),
		healthHandler:   NewHealthHandler(deps.Storage, deps.Analytics, log),
		authMiddleware:  auth.NewMiddleware(deps.JWTService, deps.AllowedOrigins, log),
		maxBodyBytes:    deps.MaxBodyBytes,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(s.log))
	r.Use(middleware.Recoverer)
	r.Use(MaxBodySize(s.maxBodyBytes))

	// Health checks (без аутентификации)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/ready", s.healthHandler.Ready)
	r.Get("/", s.healthHandler.Index)

	// Swagger документация
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API (с аутентификацией)
	r.Route("/links", func(r chi.Router) {
		r.Use(s.authMiddleware.CORS)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth)
			r.Get("/", s.linksHandler.ListLinks)
			r.Post("/", s.linksHandler.CreateLink)
			r.Get("/{code}/stats", s.linksHandler.GetStats)
		})
	})

	// Редирект по короткому коду
	r.Get("/{code}", s.redirectHandler.HandleRedirect)

	return r
}
