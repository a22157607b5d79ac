package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"redesocial/internal/cache"
	"redesocial/internal/config"
	"redesocial/internal/database"
	"redesocial/internal/handler"
	"redesocial/internal/queue"
	redisclient "redesocial/internal/redis"
	"redesocial/internal/repository"
	"redesocial/internal/service"
	"redesocial/internal/worker"
)

// Run wires up the full application and serves HTTP until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis is optional. Without it the server runs with synchronous
	// notifications only: no event stream, no unread-count cache.
	var (
		publisher     queue.Publisher
		unreadCache   cache.UnreadCache
		workerManager *worker.Manager
	)
	if cfg.RedisURL != "" {
		rdb, err := redisclient.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		if err := rdb.Ping(context.Background()); err != nil {
			return err
		}

		publisher = queue.NewPublisher(rdb.Client)
		unreadCache = cache.NewUnreadCache(rdb.Client)

		consumer := queue.NewConsumer(rdb.Client)
		workerManager = worker.NewManager(consumer, worker.NewHandler(unreadCache), worker.ManagerConfig{
			WorkerCount: cfg.WorkerCount,
		})
		if err := workerManager.Start(context.Background()); err != nil {
			return err
		}
		defer workerManager.Stop()
	} else {
		log.Println("[Server] REDIS_URL not set, running without notification workers")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, notifRepo, db, publisher)
	feedService := service.NewFeedService(postRepo, userRepo, notifRepo, db, publisher)
	messageService := service.NewMessageService(messageRepo, friendshipRepo, userRepo, notifRepo, db, publisher)
	notificationService := service.NewNotificationService(notifRepo, unreadCache, publisher)

	router := NewRouter(RouterDeps{
		JWTSecret:           cfg.JWTSecret,
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService),
		FriendshipHandler:   handler.NewFriendshipHandler(friendshipService),
		PostHandler:         handler.NewPostHandler(feedService),
		MessageHandler:      handler.NewMessageHandler(messageService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("[Server] received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
