package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/infra/memory"
	pgstore "quiz-attempt-service/internal/infra/postgres"
	"quiz-attempt-service/internal/infra/rabbitmq"
	redisstore "quiz-attempt-service/internal/infra/redis"
	"quiz-attempt-service/internal/infra/sqlite"
	"quiz-attempt-service/internal/metrics"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	store, closeStore, err := openQuizStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	repo := app.NewRepository(store)
	if err := repo.Load(ctx); err != nil {
		return fmt.Errorf("load quizzes: %w", err)
	}
	log.Printf("loaded %d quizzes from %s store", len(repo.All()), cfg.StorageDriver())

	var attemptStore app.AttemptRepository
	if redisClient != nil {
		attemptStore = redisstore.NewAttemptStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	} else {
		attemptStore = memory.NewAttemptStore()
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return err
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder := metrics.NewRecorder(registry)

	quizzes := app.NewQuizService(repo)
	attempts := app.NewAttemptService(quizzes, attemptStore,
		app.WithRetention(config.TTLDuration(cfg.Attempts.Retention, time.Hour)),
		app.WithObservers(recorder, publisher),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(quizzes, attempts, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	// Persist once more so the catalogue on disk matches memory at exit.
	return repo.Save(shutdownCtx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser io.Closer = closerFunc(func() error { return nil })

func openQuizStore(ctx context.Context, cfg config.Config, redisClient *redis.Client) (app.QuizStore, io.Closer, error) {
	switch driver := cfg.StorageDriver(); driver {
	case config.DriverMemory:
		return memory.NewQuizStore(), noopCloser, nil
	case config.DriverRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis storage selected but redis.addr is empty")
		}
		return redisstore.NewQuizStore(redisClient, cfg.Redis.Key), noopCloser, nil
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewQuizStore(pool), closerFunc(func() error { pool.Close(); return nil }), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", driver)
	}
}
