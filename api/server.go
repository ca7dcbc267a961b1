package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/blog-admin-backend/authz"
	"github.com/rpupo63/blog-admin-backend/config"
	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rs/zerolog/log"
)

const defaultCoverPath = "images/blog/default.png"

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(database database.Database, opts ...RouterOption) (Server, error) {
	// Capture startup time
	startupTime := time.Now()

	r := router{config: config.New()}
	for _, opt := range opts {
		opt(&r)
	}
	c := r.config

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	routerOpts := append([]RouterOption{WithConfig(c)}, opts...)
	handler, err := newRouter(database, append(routerOpts, withStartupTime(startupTime))...)
	if err != nil {
		return Server{}, err
	}

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	covers      services.CoverStorage
	redis       *redis.Client
	serviceOpts []func(*services.BlogService)
}

type RouterOption func(*router)

func WithConfig(c map[string]string) RouterOption {
	return func(r *router) {
		r.config = c
	}
}

// WithCoverStorage sets where uploaded covers go. A local storage is also served under /storage.
func WithCoverStorage(covers services.CoverStorage) RouterOption {
	return func(r *router) {
		r.covers = covers
	}
}

// WithRedis caches the country list in redis.
func WithRedis(client *redis.Client) RouterOption {
	return func(r *router) {
		r.redis = client
	}
}

func withStartupTime(startupTime time.Time) RouterOption {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withServiceOptions(opts ...func(*services.BlogService)) RouterOption {
	return func(r *router) {
		r.serviceOpts = append(r.serviceOpts, opts...)
	}
}

// defaultCoverURL resolves BLOG_DEFAULT_COVER against APP_URL unless it is already absolute.
func defaultCoverURL(appURL, cover string) string {
	if strings.HasPrefix(cover, "http://") || strings.HasPrefix(cover, "https://") {
		return cover
	}
	return appURL + "/" + strings.TrimLeft(cover, "/")
}

func newRouter(database database.Database, opts ...RouterOption) (*chi.Mux, error) {
	r := router{config: map[string]string{}}
	for _, opt := range opts {
		opt(&r)
	}
	c := r.config

	verifier, err := authz.NewTokenVerifier(config.GetString(c, "JWT_SECRET", ""), config.GetString(c, "JWT_ISSUER", ""))
	if err != nil {
		return nil, err
	}
	policy := authz.PrincipalPolicy{}

	appURL := strings.TrimRight(config.GetString(c, "APP_URL", ""), "/")
	coverMaxKB := config.GetInt(c, "COVER_MAX_KB", services.DefaultCoverMaxKB)
	maxBodyBytes := int64(coverMaxKB)*1024 + 1<<20
	cacheTTL := time.Duration(config.GetInt(c, "COUNTRY_CACHE_TTL_SECONDS", 3600)) * time.Second

	directory := services.NewCachedCountryDirectory(services.NewCountryDirectory(database.CountryRepo()), r.redis, cacheTTL)
	serviceOpts := append([]func(*services.BlogService){
		services.WithCountryDirectory(directory),
		services.WithCoverMaxKB(coverMaxKB),
		services.WithDefaultCover(defaultCoverURL(appURL, config.GetString(c, "BLOG_DEFAULT_COVER", defaultCoverPath))),
	}, r.serviceOpts...)
	blogService := services.NewBlogService(database, r.covers, serviceOpts...)

	flashes := newFlashStore(log.With().Str("handlerName", "flashStore").Logger(), config.GetString(c, "SESSION_KEY", ""))
	handlers := initializeHandlers(blogService, policy, flashes, blogHandlerOptions{
		baseURL:       appURL,
		exactFiltered: config.GetBool(c, "LISTING_EXACT_FILTERED_COUNT", false),
		maxBodyBytes:  maxBodyBytes,
	}, r.startupTime)

	authMiddleware := newAuthMiddleware(verifier, policy)

	acceptedOrigins := config.GetStrings(c, "ACCEPTED_ORIGINS")

	chiRouter := chi.NewRouter()
	chiRouter.Use(RequestIDMiddleware)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(MetricsMiddleware)
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	chiRouter.Use(MethodOverrideMiddleware(maxBodyBytes))
	chiRouter.Use(ColoredHTTPLoggingMiddleware)

	var storage http.Handler
	if local, ok := r.covers.(*services.LocalCoverStorage); ok {
		storage = local.Handler()
	}

	setupPublicRoutes(chiRouter, handlers, storage)
	csrfProtect := newCSRFMiddleware(log.With().Str("handlerName", "csrf").Logger(), config.GetString(c, "CSRF_KEY", ""), appURL, maxBodyBytes)
	setupAdminRoutes(chiRouter, handlers, authMiddleware, csrfProtect)

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
