package rest

import (
	"net/http"
	"strings"

	"triptrek-backend/application/commands/bus"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/interfaces/http/rest/handlers"
	"triptrek-backend/interfaces/http/rest/middleware"
	v1 "triptrek-backend/interfaces/http/rest/v1"
	"triptrek-backend/pkg/auth"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options configures the router
type Options struct {
	AllowedOrigins []string
	EnableCORS     bool
	// ExposeMetrics mounts /metrics. Lambda deployments leave it off.
	ExposeMetrics bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	images     *services.ImageService
	assistant  *services.AssistantService
	limiter    auth.RateLimiter
	collector  *observability.Collector
	errHandler *errors.ErrorHandler
	opts       Options
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	images *services.ImageService,
	assistant *services.AssistantService,
	limiter auth.RateLimiter,
	collector *observability.Collector,
	errHandler *errors.ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		images:     images,
		assistant:  assistant,
		limiter:    limiter,
		collector:  collector,
		errHandler: errHandler,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errHandler.Middleware)
	router.Use(middleware.Owner(rt.logger))
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.collector.HTTPMiddleware)
	router.Use(versionMiddleware)

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.ExposeMetrics {
		router.Handle("/metrics", rt.collector.Handler())
	}

	// API v1 routes (legacy function endpoints)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.errHandler))
		r.Mount("/api/v1", v1.NewRouter(rt.commandBus, rt.queryBus, rt.images, rt.logger))
	})

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.limiter, rt.errHandler))

		r.Route("/trips", func(r chi.Router) {
			tripHandler := handlers.NewTripHandler(rt.commandBus, rt.queryBus, rt.collector, rt.errHandler, rt.logger)
			r.Post("/", tripHandler.CreateTrip)
			r.Get("/", tripHandler.ListTrips)
			r.Get("/{tripID}", tripHandler.GetTrip)
			r.Put("/{tripID}", tripHandler.SaveTrip)
			r.Patch("/{tripID}", tripHandler.PatchTrip)
			r.Delete("/{tripID}", tripHandler.DeleteTrip)
		})

		r.Route("/itinerary", func(r chi.Router) {
			itineraryHandler := handlers.NewItineraryHandler(rt.queryBus, rt.errHandler)
			r.Post("/preview", itineraryHandler.Preview)
			r.Post("/validate", itineraryHandler.Validate)
		})

		r.Route("/images", func(r chi.Router) {
			imageHandler := handlers.NewImageHandler(rt.commandBus, rt.queryBus, rt.images, rt.collector, rt.errHandler, rt.logger)
			r.Post("/upload-url", imageHandler.RequestUploadURL)
			r.Post("/metadata", imageHandler.SaveMetadata)
			r.Get("/{locationName}", imageHandler.ListLocationImages)
		})

		r.Route("/assistant", func(r chi.Router) {
			assistantHandler := handlers.NewAssistantHandler(rt.queryBus, rt.assistant, rt.errHandler)
			r.Post("/chat", assistantHandler.Chat)
			r.Post("/suggestions", assistantHandler.Suggestions)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errHandler.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.HasPrefix(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		next.ServeHTTP(w, r)
	})
}
