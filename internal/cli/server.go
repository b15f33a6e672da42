package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vaibha-v7/SIH/internal/app"
	"github.com/vaibha-v7/SIH/internal/config"
	"github.com/vaibha-v7/SIH/internal/domain"
	"github.com/vaibha-v7/SIH/internal/infra/memory"
	pgstore "github.com/vaibha-v7/SIH/internal/infra/postgres"
	redisstore "github.com/vaibha-v7/SIH/internal/infra/redis"
	transport "github.com/vaibha-v7/SIH/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz platform server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	lockout := config.TTLDuration(cfg.Login.Lockout, app.DefaultLockoutDuration)

	var throttleStore app.ThrottleStore
	if redisClient != nil {
		throttleStore = redisstore.NewThrottleStore(redisClient, lockout)
	} else {
		throttleStore = memory.NewThrottleStore(lockout)
	}
	throttle := app.NewLoginThrottle(throttleStore, cfg.Login.MaxAttempts, lockout)

	var userStore app.UserStore
	var quizStore app.QuizStore
	var quoteStore app.QuoteStore
	if pool != nil {
		userStore = pgstore.NewUserStore(pool)
		quizStore = pgstore.NewQuizStore(pool)
		quoteStore = pgstore.NewQuoteStore(pool)
	} else {
		userStore = memory.NewUserStore()
		quizStore = memory.NewQuizStore()
		quoteStore = seedQuoteStore()
	}

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var answers app.AnswerKeySource = app.StoreAnswerKeys{Store: quizStore}
	if redisClient != nil {
		answers = redisstore.NewAnswerCache(redisClient, answers, cacheTTL)
	} else {
		answers = memory.NewAnswerCache(answers, cacheTTL)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		log.Println("JWT_SECRET not set, using an insecure development secret")
		secret = "dev-secret"
	}

	feed := app.NewProgressFeed()
	authService := app.NewAuthService(userStore, throttle, secret, config.TTLDuration(cfg.JWT.TTL, 24*time.Hour))
	quizService := app.NewQuizService(quizStore, userStore, answers, feed)
	quoteService := app.NewQuoteService(quoteStore)

	handler := transport.NewHandler(authService, quizService, quoteService, feed)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz platform on :%s", finalPort)
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
	return server.Shutdown(shutdownCtx)
}

// seedQuoteStore gives the in-memory demo mode a quote for today; the
// Postgres store takes over in production.
func seedQuoteStore() *memory.QuoteStore {
	store := memory.NewQuoteStore()
	_ = store.Add(context.Background(), &domain.Quote{
		ID:     "quote-seed",
		Text:   "The beautiful thing about learning is that no one can take it away from you.",
		Author: "B.B. King",
		Date:   time.Now(),
	})
	return store
}
