package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdox72/ITZone/internal/cleanup"
	"github.com/Abdox72/ITZone/internal/gateway"
	"github.com/Abdox72/ITZone/internal/handlers"
	"github.com/Abdox72/ITZone/internal/logging"
	appmiddleware "github.com/Abdox72/ITZone/internal/middleware"
	"github.com/Abdox72/ITZone/internal/ratelimit"
	"github.com/Abdox72/ITZone/internal/repository"
	"github.com/Abdox72/ITZone/internal/services"
	"github.com/Abdox72/ITZone/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Тело запроса не ограничено по времени чтения: запись встречи загружается долго,
	// ее размер ограничивает MaxUploadBytes.
	defaultReadHeaderTimeout = 10 * time.Second
	// Анализ встречи длится минутами, поэтому запись ответа ограничена таймаутом шлюза.
	defaultWriteTimeout    = gateway.DefaultHTTPTimeout + time.Minute
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 15 * time.Second
	tokenIssuer            = "itzone"
)

// Подменяются в тестах.
var (
	newPostgresDB = repository.NewPostgresDB
	runMigrations = repository.RunMigrations
)

// routes содержит обработчики и middleware, из которых собирается роутер.
type routes struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	items         *handlers.ItemHandler
	meetings      *handlers.MeetingHandler
	authenticator func(http.Handler) http.Handler
	// limiter равен nil, если Redis не настроен.
	limiter   appmiddleware.Limiter
	rateLimit ratelimit.Policy
}

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db      *sqlx.DB
	redis   *redis.Client
	sweeper *cleanup.Sweeper
	routes  routes
}

// Close освобождает внешние соединения.
func (d *dependencies) Close(log logrus.FieldLogger) {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Errorf("Ошибка закрытия соединения с Redis: %v", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Errorf("Ошибка закрытия соединения с БД: %v", err)
		}
	}
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка выполнения сервера: %v\n", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("ошибка настройки логирования: %w", err)
	}
	logger.Info("Запуск сервера ITZone...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.Close(logger)

	deps.sweeper.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		deps.sweeper.Stop(stopCtx)
	}()

	server := newHTTPServer(cfg, setupRouter(deps.routes, logger))

	errCh := make(chan error, 1)
	go func() {
		var serveErr error
		if cfg.TLSEnabled() {
			logger.Infof("Запуск HTTPS-сервера на порту %s (сертификат: %s, ключ: %s)", cfg.Port, cfg.CertFile, cfg.KeyFile)
			serveErr = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			logger.Infof("Запуск HTTP-сервера на порту %s", cfg.Port)
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Получен сигнал завершения, остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	return nil
}

// newHTTPServer создает http.Server с таймаутами сервера.
func newHTTPServer(cfg *config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config, logger logrus.FieldLogger) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	// 1. Подключение к БД и миграции
	deps.db, err = newPostgresDB(cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}
	if err = runMigrations(ctx, deps.db.DB); err != nil {
		deps.Close(logger)
		return nil, err
	}

	// 2. Репозитории и сервисы
	userRepo := repository.NewPostgresUserRepository(deps.db, logger)
	itemRepo := repository.NewPostgresItemRepository(deps.db, logger)
	uow := repository.NewPostgresUnitOfWork(deps.db, logger)

	tokens, err := services.NewTokenService(cfg.JWTSecret, tokenIssuer)
	if err != nil {
		deps.Close(logger)
		return nil, fmt.Errorf("ошибка инициализации сервиса токенов: %w", err)
	}
	authService := services.NewAuthService(userRepo, tokens, cfg.TokenTTL, logger)
	sessionService := services.NewSessionService(tokens, userRepo, logger)
	itemService := services.NewItemService(itemRepo, uow, logger)

	if cfg.Seed {
		if _, err = services.NewSeeder(userRepo, authService, itemService, logger).Seed(ctx); err != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("ошибка заполнения БД: %w", err)
		}
	}

	// 3. Шлюзы моделей и архив отчетов
	meetingOpts := []services.MeetingOption{services.WithUploadDir(cfg.UploadDir)}
	if cfg.MinioEndpoint != "" {
		minioClient, minioErr := storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
		}, logger)
		if minioErr != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", minioErr)
		}
		meetingOpts = append(meetingOpts, services.WithReportArchive(storage.NewReportStore(minioClient)))
	} else {
		logger.Info("MINIO_ENDPOINT не задан, архив отчетов отключен")
	}

	transcriber := gateway.NewHTTPTranscriber(gateway.TranscriberConfig{
		BaseURL:  cfg.TranscriberURL,
		APIKey:   cfg.TranscriberKey,
		Language: cfg.TranscriberLang,
	}, logger)
	analyzer := gateway.NewHTTPAnalyzer(gateway.AnalyzerConfig{
		URL:    cfg.AnalyzerURL,
		APIKey: cfg.AnalyzerKey,
	}, logger)
	meetingService := services.NewMeetingService(transcriber, analyzer, logger, meetingOpts...)

	// 4. Ограничение частоты
	deps.routes.rateLimit = ratelimit.Policy{Name: "api", Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	if cfg.RedisAddr != "" {
		deps.redis, err = ratelimit.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			deps.Close(logger)
			return nil, fmt.Errorf("ошибка инициализации Redis: %w", err)
		}
		deps.routes.limiter = ratelimit.NewRedisLimiter(deps.redis, logger)
	} else {
		logger.Info("REDIS_ADDR не задан, ограничение частоты отключено")
	}

	// 5. Очистка временных файлов
	deps.sweeper, err = cleanup.NewSweeper(cleanup.Config{
		Dir:      cfg.UploadDir,
		Prefix:   services.UploadFilePrefix,
		MaxAge:   cfg.SweepMaxAge,
		Schedule: cfg.SweepSchedule,
	}, logger)
	if err != nil {
		deps.Close(logger)
		return nil, fmt.Errorf("ошибка инициализации очистки: %w", err)
	}

	// 6. Обработчики
	deps.routes.health = handlers.NewHealthHandler(logger)
	deps.routes.auth = handlers.NewAuthHandler(authService, logger)
	deps.routes.items = handlers.NewItemHandler(itemService, logger)
	deps.routes.meetings = handlers.NewMeetingHandler(meetingService, cfg.MaxUploadBytes, logger)
	deps.routes.authenticator = appmiddleware.Authenticator(sessionService, logger)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(rt routes, logger logrus.FieldLogger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// Ограничение частоты защищает только вход и анализ аудио
	limit := appmiddleware.RateLimit(rt.limiter, rt.rateLimit, logger)

	// --- Маршруты --- //
	r.Get("/", rt.health.Root)
	r.Get("/health", rt.health.Health)

	r.With(limit).Post("/auth/token", rt.auth.Token)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", rt.auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator)
			r.Get("/", rt.auth.ListUsers)
			r.Get("/me", rt.auth.Me)
			r.Get("/{id}", rt.auth.GetUser)
		})
	})

	r.Route("/items", func(r chi.Router) {
		// Публичные маршруты
		r.Get("/", rt.items.List)
		r.Get("/{id}", rt.items.Get)

		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator)
			r.Post("/", rt.items.Create)
			r.Get("/my-items", rt.items.ListOwned)
			r.Put("/{id}", rt.items.Update)
			r.Delete("/{id}", rt.items.Delete)
		})
	})

	r.Route("/audio", func(r chi.Router) {
		r.Use(limit)
		r.Use(rt.authenticator)
		r.Post("/analyze-meeting/", rt.meetings.AnalyzeMeeting)
		r.Get("/reports/{id}", rt.meetings.GetReport)
	})

	return r
}
