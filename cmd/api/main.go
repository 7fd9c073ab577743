package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	v1 "go-inbox/cmd/api/router/v1"
	"go-inbox/internal/config"
	cacheAdapter "go-inbox/internal/infrastructure/cache/adapter"
	feedAdapter "go-inbox/internal/infrastructure/changefeed/adapter"
	feedport "go-inbox/internal/infrastructure/changefeed/port"
	"go-inbox/internal/infrastructure/database"
	queueAdapter "go-inbox/internal/infrastructure/queue/adapter"
	"go-inbox/internal/infrastructure/realtime"
	"go-inbox/internal/logging"
	authUsecase "go-inbox/internal/pkg/auth/application/usecase"
	"go-inbox/internal/pkg/auth/mailer"
	authRepo "go-inbox/internal/pkg/auth/persistence/repository/adapter"
	"go-inbox/internal/pkg/auth/presentation/controller"
	authHttp "go-inbox/internal/pkg/auth/presentation/http"
	"go-inbox/internal/pkg/auth/presentation/middleware"
	"go-inbox/internal/pkg/auth/security"
	"go-inbox/internal/pkg/chat/application/task"
	chatUsecase "go-inbox/internal/pkg/chat/application/usecase"
	chatRepo "go-inbox/internal/pkg/chat/persistence/repository/adapter"
	chatHttp "go-inbox/internal/pkg/chat/presentation/http"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("INBOX_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug(".env file not loaded", "err", envErr)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(startCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	applied, err := database.Migrate(startCtx, pool)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	rdb, err := cacheAdapter.NewRedisClient(startCtx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var feed feedport.Feed
	switch cfg.Feed.Driver {
	case "redis":
		feed = feedAdapter.NewRedisFeed(rdb, cfg.Feed.Channel, logger)
	default:
		feed = feedAdapter.NewPgNotifyFeed(pool, cfg.Feed.Channel, logger)
	}
	defer feed.Close()

	router := realtime.NewRouter()
	defer router.Close()
	go func() {
		if err := feed.Subscribe(ctx, realtime.Fanout(router, logger)); err != nil {
			logger.Error("change feed stopped", "err", err)
		}
	}()

	qClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer qClient.Close()

	qServer, err := queueAdapter.NewAsynqServer(cfg.RedisURL, queueAdapter.ServerOptions{
		Concurrency: cfg.Queue.Concurrency,
		Queues:      cfg.Queue.Queues,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	chats := chatRepo.NewPgChatRepository(pool)
	task.RegisterShareAttachmentTask(qServer, task.ShareAttachmentDeps{
		SendMessage: chatUsecase.NewSendMessageUseCase(chats, feed, logger),
		Feed:        feed,
		Tick:        cfg.Upload.ProgressTick,
		Settle:      cfg.Upload.SettleDelay,
		Logger:      logger,
	})
	go func() {
		if err := qServer.Run(ctx); err != nil {
			logger.Error("task server stopped", "err", err)
		}
	}()

	users := authRepo.NewPgUserRepository(pool)
	sessions := authRepo.NewCacheSessionRepository(cacheAdapter.NewRedisCache(rdb, "inbox:"))
	hasher := security.NewBcryptService()
	tokens := security.NewJWTService(cfg.Auth.JWTSecret, "go-inbox")
	confirm := authUsecase.NewConfirmEmailUseCase(users)
	confirm.TokenTTL = cfg.Auth.ConfirmTTL
	authSvc := &authHttp.Services{
		SignUp:       authUsecase.NewSignUpUseCase(users, hasher, mailer.NewLogMailer(logger), cfg.PublicURL, cfg.Auth.AutoConfirm),
		SignIn:       authUsecase.NewSignInUseCase(users, sessions, hasher, tokens, cfg.Auth.SessionTTL),
		SignOut:      authUsecase.NewSignOutUseCase(sessions),
		GetSession:   authUsecase.NewGetSessionUseCase(sessions, tokens),
		ConfirmEmail: confirm,
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	r.GET("/health", health(pool.Ping, rdb))

	v1.RegisterRoutes(r, v1.Deps{
		Auth: authSvc,
		AuthOptions: authHttp.RouteOptions{
			Cookie:  controller.CookieOptions{TTL: cfg.Auth.SessionTTL, Secure: cfg.Auth.CookieSecure},
			Limiter: middleware.RateLimit(rdb, cfg.Auth.RateLimitQPS, logger),
			Logger:  logger,
		},
		Chat: chatHttp.Deps{
			Repo:            chats,
			Feed:            feed,
			Queue:           qClient,
			Router:          router,
			Logger:          logger,
			ReadTimeout:     cfg.Realtime.ReadTimeout,
			InflightTimeout: cfg.Realtime.InflightTimeout,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", srv.Addr, "feed", cfg.Feed.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

func health(pingDB func(context.Context) error, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := pingDB(ctx); err != nil {
			status, checks["database"] = http.StatusServiceUnavailable, err.Error()
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status, checks["redis"] = http.StatusServiceUnavailable, err.Error()
		}
		label := "OK"
		if status != http.StatusOK {
			label = "DEGRADED"
		}
		c.JSON(status, gin.H{"status": label, "checks": checks})
	}
}
