package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"warung-menu/internal/cart"
	"warung-menu/internal/config"
	"warung-menu/internal/imaging"
	custommiddleware "warung-menu/internal/middleware"
	"warung-menu/internal/repository"
	"warung-menu/internal/service"
	"warung-menu/internal/settings"
	"warung-menu/internal/storage"
	"warung-menu/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client

	janitorStop chan struct{}
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Shared state: per-session carts and the settings cache
	cartManager := cart.NewManager()
	settingsCache := settings.NewCache(settingsRepo, logger)

	// Initialize services
	catalogService := service.NewCatalogService(categoryRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, settingsCache, cfg.WhatsApp.CountryCode, logger)
	authService := service.NewAuthService(adminRepo, refreshTokenRepo, cfg.JWT.Secret)

	var uploadService service.UploadService
	if cfg.Storage.CloudinaryURL != "" {
		blobStore, err := storage.NewCloudinaryStore(cfg.Storage.CloudinaryURL)
		if err != nil {
			logger.Warn("Blob storage unavailable, image uploads disabled", zap.Error(err))
		} else {
			uploadService = service.NewUploadService(imaging.NewCompressor(), blobStore, logger)
		}
	} else {
		logger.Warn("CLOUDINARY_URL not configured, image uploads disabled")
	}

	// Auth middleware stack for the admin surface
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminOnly := func(next http.Handler) http.Handler {
		return authMiddleware(custommiddleware.RequireAdmin(logger)(next))
	}

	// Redis-backed rate limiting on checkout
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	checkoutRateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:checkout",
	}, logger)

	// Cookie store identifying each shopper's cart
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Key))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Secure = cfg.Server.Env == "production"

	// Initialize handlers
	cartHandler := transport.NewCartHandler(cartManager, catalogService, sessionStore, logger)
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, cartHandler, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, uploadService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	settingsHandler := transport.NewSettingsHandler(settingsCache, settingsRepo, logger)
	authHandler := transport.NewAuthHandler(authService, logger)

	// Register routes
	catalogHandler.RegisterRoutes(router, adminOnly)
	cartHandler.RegisterRoutes(router)
	checkoutHandler.RegisterRoutes(router, checkoutRateLimit)
	orderHandler.RegisterRoutes(router, adminOnly)
	settingsHandler.RegisterRoutes(router, adminOnly)
	authHandler.RegisterRoutes(router, authMiddleware)
	if uploadService != nil {
		uploadHandler := transport.NewUploadHandler(uploadService, logger)
		uploadHandler.RegisterRoutes(router, adminOnly)
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		janitorStop: make(chan struct{}),
	}

	// Bootstrap the first admin account and warm the settings cache
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authService.Bootstrap(startCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Warn("Admin bootstrap failed", zap.Error(err))
	}
	if _, err := settingsCache.Refresh(startCtx); err != nil {
		logger.Warn("Initial settings load failed, serving defaults", zap.Error(err))
	}

	server.startCartJanitor(cartManager, time.Duration(cfg.Session.CartIdleMinutes)*time.Minute)

	return server
}

// startCartJanitor periodically evicts carts nobody has touched for the
// configured idle window
func (s *Server) startCartJanitor(manager *cart.Manager, maxIdle time.Duration) {
	if maxIdle <= 0 {
		maxIdle = 2 * time.Hour
	}

	ticker := time.NewTicker(maxIdle / 4)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if purged := manager.PurgeIdle(maxIdle); purged > 0 {
					s.logger.Debug("Purged idle carts", zap.Int("count", purged))
				}
			case <-s.janitorStop:
				return
			}
		}
	}()
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	close(s.janitorStop)

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
