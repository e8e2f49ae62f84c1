package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "queueroom/docs"
	"queueroom/internal/auth"
	"queueroom/internal/config"
	"queueroom/internal/handlers"
	"queueroom/internal/limiter"
	"queueroom/internal/rooms"
	"queueroom/internal/storage"
	"queueroom/internal/tasks"
	"queueroom/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @Title						Queue Room API
// @Description				Комнаты очередей с входом по коду для гостей и пользователей
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Logger = cfg.Logger(os.Stderr)
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}

	rdb, err := storage.InitRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	var rl limiter.Limiter
	if rdb != nil {
		defer rdb.Close()
		rl = limiter.NewRedisLimiter(rdb, "qroom:ratelimit:", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		rl = limiter.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	tokens := auth.NewTokens(cfg.JWT)
	resolver := auth.NewResolver(tokens, store)

	hub := ws.NewHub(store)
	go hub.Run(ctx)

	svc := rooms.NewService(store, resolver, tokens, rooms.NewCodes(cfg.QRoom),
		rooms.WithNotifier(hub),
		rooms.WithMaxCodeAttempts(cfg.QRoom.CodeMaxAttempts),
	)

	scheduler, err := tasks.InitScheduler(cfg.Sweeper, tasks.NewSweeper(store, cfg.Sweeper.Grace))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	r := handlers.Router{
		Handler: handlers.New(store, tokens, resolver, svc),
		Limiter: rl,
		Hub:     hub,
		Debug:   cfg.Debug(),
	}.Engine()

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("queue room server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	<-scheduler.Stop().Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
