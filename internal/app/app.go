package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"learnhub/internal/cache"
	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/event"
	"learnhub/internal/handler"
	"learnhub/internal/jobs"
	"learnhub/internal/mail"
	"learnhub/internal/media"
	"learnhub/internal/middleware"
	"learnhub/internal/repository"
	"learnhub/internal/router"
	"learnhub/internal/search"
	"learnhub/internal/service"
	"learnhub/internal/token"
	"learnhub/internal/websocket"
)

type App struct {
	cfg          *config.Config
	server       *http.Server
	scheduler    *jobs.Scheduler
	workers      []func(ctx context.Context)
	cleanupFuncs []func()
}

// New connects to every store, waiting until Postgres and Redis are
// reachable, and wires the HTTP stack.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	slog.Info("connecting to PostgreSQL")
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.ConnectRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.Migrate(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("connecting to Redis")
	rdb, err := cache.Connect(ctx, cfg.RedisURL, cfg.ConnectRetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = rdb.Close() })

	store, mediaHandler, err := newMediaStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()
	mailer := newMailer(cfg)
	images := media.NewUploader(store)
	catalog := cache.NewCatalog(rdb)

	tokens := token.NewService(token.Options{
		ActivationSecret: cfg.ActivationSecret,
		AccessSecret:     cfg.AccessTokenSecret,
		RefreshSecret:    cfg.RefreshTokenSecret,
		ActivationTTL:    cfg.ActivationTTL,
		AccessTTL:        cfg.AccessTokenTTL,
		RefreshTTL:       cfg.RefreshTokenTTL,
	})
	sessions := service.NewSessionService(tokens, cache.NewSessionStore(rdb, cfg.RefreshTokenTTL))

	userService := service.NewUserService(userRepo, tokens, sessions, images, mailer, bus)
	productService := service.NewProductService(productRepo, catalog, images, bus, cfg.CatalogInvalidateOnWrite)
	courseService := service.NewCourseService(courseRepo, catalog, images, mailer, bus, cfg.CatalogInvalidateOnWrite)
	orderService := service.NewOrderService(orderRepo, userRepo, courseRepo, productRepo, sessions, mailer, bus)
	notificationService := service.NewNotificationService(notificationRepo, bus)
	a.workers = append(a.workers, notificationService.Run)

	if len(cfg.ElasticsearchURLs) > 0 {
		index, err := search.NewProductIndex(cfg.ElasticsearchURLs, cfg.ElasticsearchIndex)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize search index: %w", err)
		}
		productService.WithSearch(index)
		a.workers = append(a.workers, func(ctx context.Context) { index.Run(ctx, bus) })
		slog.Info("product search backed by elasticsearch", "index", cfg.ElasticsearchIndex)
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink := event.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.workers = append(a.workers, func(ctx context.Context) { sink.Run(ctx, bus) })
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = sink.Close() })
		slog.Info("forwarding events to kafka", "topic", cfg.KafkaTopic)
	}

	hub := websocket.NewHub(bus, cfg.CORSOrigins)
	a.workers = append(a.workers, hub.Run)

	if cfg.CleanupEnabled {
		a.scheduler = jobs.NewScheduler(cfg.CleanupTimeout)
		cleanup := jobs.NewNotificationCleanup(notificationRepo, cfg.NotificationRetention)
		err := a.scheduler.Add(cfg.CleanupSchedule, "notification-cleanup", func(ctx context.Context) error {
			_, err := cleanup.Run(ctx)
			return err
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("invalid CLEANUP_SCHEDULE: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cookies := middleware.Cookies{Secure: cfg.IsProduction()}
	authMiddleware := middleware.NewAuthMiddleware(sessions, cookies, handler.WriteError)

	appRouter := router.New(cfg, authMiddleware, middleware.NewMetrics(registry), router.Handlers{
		Auth:          handler.NewAuthHandler(userService, sessions, cookies),
		User:          handler.NewUserHandler(userService),
		Product:       handler.NewProductHandler(productService),
		Course:        handler.NewCourseHandler(courseService),
		Order:         handler.NewOrderHandler(orderService),
		Notification:  handler.NewNotificationHandler(notificationService),
		Health:        handler.NewHealthHandler(healthChecks(db, rdb)),
		Stream:        handler.NewNotificationStreamHandler(hub),
		Media:         mediaHandler,
		MetricsGather: registry,
	})

	a.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, worker := range a.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx)
		}()
	}

	if a.scheduler != nil {
		a.scheduler.Start()
		slog.Info("cleanup scheduled", "spec", a.cfg.CleanupSchedule)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr, "env", a.cfg.AppEnv)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case runErr = <-serveErr:
		slog.Error("server failed", "error", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if a.scheduler != nil {
		a.scheduler.Stop(shutdownCtx)
	}

	cancel()
	wg.Wait()
	a.close()

	slog.Info("server stopped")
	return runErr
}

// close runs cleanups in reverse registration order.
func (a *App) close() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, http.Handler, error) {
	if cfg.S3Bucket != "" {
		store, err := media.NewS3Store(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.MediaPublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("media stored in s3", "bucket", cfg.S3Bucket)
		return store, nil, nil
	}

	store, err := media.NewLocalStore(cfg.MediaRoot, cfg.MediaPublicURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("media stored on disk", "root", store.Root())
	return store, http.FileServer(http.Dir(store.Root())), nil
}

func newMailer(cfg *config.Config) mail.Sender {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, outgoing mail is only logged")
		return mail.LogSender{}
	}

	return mail.NewSMTPSender(mail.SMTPOptions{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

func healthChecks(db *database.DB, rdb *redis.Client) map[string]handler.Check {
	return map[string]handler.Check{
		"postgres": db.Health,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
}
