package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamereview-backend/internal/config"
	"gamereview-backend/internal/consistency"
	"gamereview-backend/internal/handlers"
	"gamereview-backend/internal/middleware"
	"gamereview-backend/internal/notify"
	"gamereview-backend/internal/repository"
	"gamereview-backend/internal/services"
	"gamereview-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	checkOnly := flag.Bool("check", false, "run the consistency checker against the database and exit")
	repair := flag.Bool("repair", false, "with -check, also repair detected discrepancies")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	postRepo := repository.NewPostRepository(db)

	if *checkOnly {
		runCheck(userRepo, gameRepo, postRepo, *repair)
		return
	}

	// Initialize collaborators
	var objectStorage services.ObjectStorage
	if cfg.AWS.S3Bucket != "" {
		s3Storage, err := storage.New(context.Background(), cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create object storage client")
		}
		objectStorage = s3Storage
	}

	var notifier services.PushNotifier
	if cfg.APNS.Enabled {
		apnsNotifier, err := notify.New(cfg.APNS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
		notifier = apnsNotifier
	}

	feedHub := services.NewFeedHub()

	// Initialize services
	userService := services.NewUserService(userRepo, gameRepo, cfg.JWT.Secret)
	followService := services.NewFollowService(userRepo, notifier)
	gameService := services.NewGameService(gameRepo, postRepo)
	postService := services.NewPostService(postRepo, userRepo, gameRepo, objectStorage, feedHub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, followService, postService)
	postHandler := handlers.NewPostHandler(postService)
	gameHandler := handlers.NewGameHandler(gameService, postService)
	wsHandler := handlers.NewWebSocketHandler(feedHub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(userService))

			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Get("/users/{user_id}/posts", userHandler.GetUserPosts)
			r.Post("/users/{user_id}/followers", userHandler.Follow)
			r.Delete("/users/{user_id}/followers", userHandler.Unfollow)
			r.Put("/users/me/fav-games/{game_id}", userHandler.AddFavGame)
			r.Delete("/users/me/fav-games/{game_id}", userHandler.RemoveFavGame)
			r.Put("/users/me/push-token", userHandler.SetPushToken)

			r.Get("/posts", postHandler.ListPosts)
			r.Post("/posts", postHandler.CreatePost)
			r.Delete("/posts/{post_id}", postHandler.DeletePost)
			r.Post("/posts/{post_id}/likes", postHandler.LikePost)
			r.Delete("/posts/{post_id}/likes", postHandler.UnlikePost)

			r.Get("/games", gameHandler.ListGames)
			r.Post("/games", gameHandler.CreateGame)
			r.Get("/games/{game_id}", gameHandler.GetGame)
			r.Get("/games/{game_id}/posts", gameHandler.GetGamePosts)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Periodic consistency sweep
	var runner *consistency.Runner
	if cfg.Checker.Enabled {
		runner = consistency.NewRunner(userRepo, gameRepo, postRepo, cfg.Checker.Interval())
		runner.Start(context.Background())
		log.Info().Dur("interval", cfg.Checker.Interval()).Msg("Consistency sweep started")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if runner != nil {
		runner.Stop()
		<-runner.Done()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runCheck performs a one-shot consistency check (and optional repair)
// against the database.
func runCheck(userRepo repository.UserRepository, gameRepo repository.GameRepository, postRepo repository.PostRepository, repair bool) {
	ctx := context.Background()

	snapshot, err := consistency.Load(ctx, userRepo, gameRepo, postRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}

	discrepancies := consistency.Check(snapshot)
	for _, d := range discrepancies {
		log.Warn().Str("discrepancy", d.String()).Msg("Found")
	}
	log.Info().Int("discrepancies", len(discrepancies)).Msg("Check complete")

	if repair && len(discrepancies) > 0 {
		repairer := consistency.NewRepairer(userRepo, gameRepo, postRepo)
		repaired, err := repairer.Repair(ctx, discrepancies)
		if err != nil {
			log.Fatal().Err(err).Msg("Repair failed")
		}
		log.Info().Int("repaired", repaired).Msg("Repair complete")
	}

	if len(discrepancies) > 0 && !repair {
		os.Exit(1)
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
