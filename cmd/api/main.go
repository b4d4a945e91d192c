package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/breaker"
	"server/internal/catalog"
	"server/internal/composer"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/preview"
	"server/internal/thumbcache"
	"server/internal/ticket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load product catalog")
	}
	logger.Info().Int("products", len(cat.Products())).Msg("catalog loaded")

	ctx := context.Background()

	// Thumbnail store: Redis when configured, then filesystem, then memory.
	var thumbs thumbcache.Store
	switch {
	case cfg.RedisAddr != "":
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer client.Close()
		thumbs = thumbcache.NewRedisStore(client)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("thumbnail cache backed by redis")
	case cfg.ThumbnailDir != "":
		fs, err := thumbcache.NewFileStore(cfg.ThumbnailDir)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize thumbnail directory")
		}
		thumbs = fs
		logger.Info().Str("dir", cfg.ThumbnailDir).Msg("thumbnail cache backed by filesystem")
	default:
		thumbs = thumbcache.NewMemoryStore()
		logger.Warn().Msg("thumbnail cache is memory-only and will not survive restarts")
	}

	client := composer.NewClient(composer.Options{
		BaseURL:  cfg.ComposerBaseURL,
		Username: cfg.ComposerUsername,
		Password: cfg.ComposerPassword,
		Timeout:  cfg.ComposerTimeout,
	})
	br := breaker.New(cfg.BreakerFailureThreshold, cfg.BreakerResetTimeout)
	builder := ticket.Builder{RecipientList: cfg.RecipientList}

	svc := preview.NewService(cat, builder, br, client, thumbs, logger)
	app := handlers.NewApp(cat, svc, logger)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
