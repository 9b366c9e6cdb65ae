package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"artfolio_backend/database"
	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/config"
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/handlers"
	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/middleware"
	"artfolio_backend/internal/routes"
	"artfolio_backend/internal/services"
	"artfolio_backend/internal/session"
	"artfolio_backend/internal/storage"
	"artfolio_backend/internal/validator"
	"artfolio_backend/internal/workers"
	"artfolio_backend/pkg/apperrors"
	"artfolio_backend/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// App - собранное приложение: роутер и фоновые компоненты
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Router   *gin.Engine
	Identity *identity.Provider
	Sessions *session.Manager

	wsManager *ws.WebSocketManager
	worker    *workers.PendingUploadWorker
	stopFeed  func() error
	pool      *pgxpool.Pool
	cancel    context.CancelFunc
}

// Run - точка входа сервера
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected")

	application, err := New(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	application.Close()
	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
	logger.Info("Server stopped")
}

// New собирает приложение поверх открытой и смигрированной БД
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	apperrors.SetDebug(cfg.Server.Env == "development")

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{Config: cfg, DB: db, cancel: cancel}

	feed, err := a.initializeFeed(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	storageInstance, err := storage.NewStorage(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	store := gateway.NewSQLGateway(db, feed)
	a.Identity = identity.NewProvider(auth.NewTokenIssuer(cfg.JWT.Secret, cfg.TokenTTL()))

	// WebSocket и сессии
	a.wsManager = ws.NewWebSocketManager()
	go a.wsManager.Run(ctx)

	a.Sessions = session.NewManager(store, a.Identity, a.wsManager, session.Options{
		MaxPendingUploads: cfg.Upload.MaxPending,
		PendingUploadTTL:  cfg.PendingTTL(),
	})

	serviceContainer := services.NewServiceContainer(store, a.Identity, storageInstance, services.UploadConfigFrom(cfg))
	appHandlers := initializeHandlers(cfg, serviceContainer, a.Sessions, storageInstance)
	wsHandler := ws.NewWebSocketHandler(a.wsManager, a.Identity, a.Sessions, a.Sessions, cfg.CORS.AllowedOrigins)

	a.Router = initializeGinRouter(cfg, db)
	routes.RegisterRoutes(a.Router, appHandlers, wsHandler, a.Identity)

	a.worker = workers.NewPendingUploadWorker(a.Sessions, sweepInterval)
	a.worker.Start(ctx)

	return a, nil
}

// Close освобождает сессии, ленту добавлений и фоновые горутины
func (a *App) Close() {
	if a.Sessions != nil {
		a.Sessions.Close()
	}
	if a.stopFeed != nil {
		if err := a.stopFeed(); err != nil {
			logger.Warn("Failed to stop artwork feed", "error", err)
		}
	}

	a.cancel()
	if a.worker != nil {
		<-a.worker.Done()
	}
	if a.wsManager != nil {
		<-a.wsManager.Done()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// initializeFeed выбирает ленту добавлений: in-process для SQLite,
// LISTEN/NOTIFY (pgx или lib/pq) для Postgres
func (a *App) initializeFeed(ctx context.Context) (gateway.Feed, error) {
	cfg := a.Config
	if cfg.Database.Driver == "sqlite" {
		return gateway.NewLocalFeed(), nil
	}

	var newListener func(ctx context.Context) (gateway.Listener, error)
	switch cfg.Database.Listener {
	case "pq":
		newListener = func(context.Context) (gateway.Listener, error) {
			return gateway.NewPQListener(cfg.Database.DSN, func(event pq.ListenerEventType, err error) {
				if err != nil {
					logger.Warn("pq listener event", "event", event, "error", err)
				}
			}), nil
		}
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		a.pool = pool
		newListener = func(context.Context) (gateway.Listener, error) {
			return gateway.NewPGXListener(pool), nil
		}
	}

	feed := gateway.NewPGFeed(a.DB, cfg.Database.Channel, newListener)
	if err := feed.Start(ctx); err != nil {
		return nil, err
	}
	a.stopFeed = feed.Stop
	logger.Info("Artwork feed started", "listener", cfg.Database.Listener, "channel", cfg.Database.Channel)
	return feed, nil
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, sessions *session.Manager, storageInstance storage.Storage) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, svc.AuthService),
		ArtworkHandler: handlers.NewArtworkHandler(baseHandler, svc.ArtworkService, cfg.Upload.MaxSize),
		SessionHandler: handlers.NewSessionHandler(baseHandler, sessions, svc.ArtworkService, cfg.Upload.MaxSize),
		FileHandler:    handlers.NewFileHandler(baseHandler, storageInstance),
		HealthHandler:  handlers.NewHealthHandler(baseHandler, sessions),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
