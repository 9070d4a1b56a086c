package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"impostor/internal/catalog"
	"impostor/internal/config"
	"impostor/internal/game"
	"impostor/internal/gateway"
	"impostor/internal/handlers"
	localMiddleware "impostor/internal/middleware"
	"impostor/internal/store"
)

func main() {
	// Load .env if present; real deployments set env vars directly
	godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	log.Printf("Loaded configuration: %d-%d players per room, %s comment phase",
		cfg.Game.MinPlayers, cfg.Game.MaxPlayers, cfg.Game.CommentPhase)

	// Pick store backends: Redis when configured, in-memory otherwise
	var roomStore game.Store
	var subjectStore catalog.SubjectStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rs, err := store.NewRedisStore(client)
		if err != nil {
			log.Fatal("Failed to connect room store: ", err)
		}
		ss, err := catalog.NewRedisSubjectStore(client)
		if err != nil {
			log.Fatal("Failed to connect subject store: ", err)
		}
		roomStore, subjectStore = rs, ss
		log.Printf("Using Redis stores at %s", cfg.Redis.Addr)
	} else {
		roomStore = store.NewMemoryStore()
		subjectStore = catalog.NewMemorySubjectStore()
		log.Printf("Using in-memory stores")
	}

	catalogService := catalog.NewService(subjectStore)
	hub := gateway.NewHub()
	engine := game.NewEngine(game.EngineConfig{
		MinPlayers:     cfg.Game.MinPlayers,
		MaxPlayers:     cfg.Game.MaxPlayers,
		RoomCodeLength: cfg.Game.RoomCodeLength,
		CommentPhase:   cfg.Game.CommentPhase,
		VotePhase:      cfg.Game.VotePhase,
		StartDelay:     cfg.Game.StartDelay,
		NextRoundDelay: cfg.Game.NextRoundDelay,
	}, roomStore, hub, catalogService)
	h := handlers.New(catalogService, roomStore, cfg.Server.PublicURL)

	// Set up routes
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(localMiddleware.SecurityHeaders())
	r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))
	r.Use(localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst).Middleware())

	r.Get("/", h.Root)

	// Real-time gateway
	r.Get("/ws", gateway.ServeWS(hub, engine, rate.Limit(cfg.Server.RateLimit), cfg.Server.RateLimitBurst))

	// Subject catalog
	r.Post("/api/subjects/load", h.LoadSubjects)
	r.Get("/api/subjects", h.ListSubjects)
	r.Get("/api/subjects/random", h.RandomSubject)
	r.Get("/api/subjects/{id}", h.GetSubject)

	// Room join QR
	r.Get("/room/{code}/qr", h.RoomQR)

	// Health check endpoints (no auth required)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout, // 0 for long-lived websockets
	}

	// Start server in goroutine
	go func() {
		log.Printf("🟢 Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server gracefully stopped")
}
