package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/config"
	"github.com/example/forum-platform/internal/platform/db"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/internal/platform/logging"
	"github.com/example/forum-platform/internal/platform/natsconn"
	"github.com/example/forum-platform/internal/platform/run"
	"github.com/example/forum-platform/services/comments/internal/handlers"
	"github.com/example/forum-platform/services/comments/internal/publisher"
	"github.com/example/forum-platform/services/comments/internal/service"
	"github.com/example/forum-platform/services/comments/internal/store"
	"github.com/example/forum-platform/services/comments/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	comments, posts, users, pool := initStores(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	events, err := publisher.New(cfg.NATSURL, log)
	if err != nil {
		log.Error("nats publisher", zap.Error(err))
		run.Exit(1)
	}

	svc := service.New(comments, posts, users, service.Config{
		Events:     events,
		Logger:     log,
		EditWindow: cfg.EditWindow,
	})

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: readyFunc(pool)})

	// Comment routes (public read, auth required for write)
	r.Get("/v1/posts/{post_id}/comments/tree", handlers.GetTree(svc))
	r.Get("/v1/posts/{post_id}/comments/thread", handlers.GetThread(svc))
	r.Post("/v1/comments/{comment_id}/like", handlers.LikeComment(svc))
	r.Post("/v1/comments/{comment_id}/report", handlers.ReportComment(svc))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/posts/{post_id}/comments", handlers.CreateComment(svc))
		r.Put("/v1/comments/{comment_id}", handlers.UpdateComment(svc))
		r.Delete("/v1/comments/{comment_id}", handlers.DeleteComment(svc))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Delete("/v1/admin/comments/{comment_id}", handlers.AdminDeleteComment(svc))
		})
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		// start mentions consumer (non-fatal if NATS unavailable)
		if pool != nil && cfg.NATSURL != "" {
			nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL})
			if err != nil {
				log.Error("nats connect", zap.Error(err))
			} else {
				go worker.StartMentionsConsumer(ctx, nc, pool, log)
				defer nc.Close()
			}
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStores selects the storage backends. In production a working Postgres
// connection is required and the process terminates otherwise; in development
// the service falls back to permissive in-memory stores.
func initStores(cfg config.AppConfig, log *zap.Logger) (store.CommentStore, store.PostStore, store.UserStore, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return memoryStores()
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.Production() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return memoryStores()
	}

	log.Info("comment stores: postgres")
	return store.NewPostgresCommentStore(pool), store.NewPostgresPostStore(pool), store.NewPostgresUserStore(pool), pool
}

func memoryStores() (store.CommentStore, store.PostStore, store.UserStore, *pgxpool.Pool) {
	posts := store.NewInMemoryPostStore()
	posts.Open = true
	users := store.NewInMemoryUserStore()
	users.Open = true
	return store.NewInMemoryCommentStore(), posts, users, nil
}

func readyFunc(pool *pgxpool.Pool) func() error {
	if pool == nil {
		return nil
	}
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
}
