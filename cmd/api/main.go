package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"matinee/api/internal/app"
	"matinee/api/internal/club"
	"matinee/api/internal/config"
	"matinee/api/internal/export"
	"matinee/api/internal/metrics"
	"matinee/api/internal/notify"
	"matinee/api/internal/posters"
	"matinee/api/internal/search"
	"matinee/api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	clubService := club.New(dataStore)
	service := app.New(cfg, dataStore, clubService)

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)
	searchService.ReindexAllFromPG(ctx)

	httpServer := app.NewHTTPServer(service, clubService, cfg.CORSOrigin).
		WithSearch(searchService).
		WithExporter(export.NewService()).
		WithMetrics(metrics.New())

	if strings.TrimSpace(cfg.RedisURL) != "" {
		publisher, err := notify.New(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: redis unavailable, lifecycle events disabled: %v", err)
		} else {
			defer publisher.Close()
			httpServer.WithNotifier(publisher)
		}
	}

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		posterStore, err := posters.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, cfg.PosterURLTTL)
		if err != nil {
			log.Fatalf("minio client failed: %v", err)
		}
		if err := posterStore.EnsureBucket(ctx); err != nil {
			log.Fatalf("minio bucket failed: %v", err)
		}
		httpServer.WithPosters(posterStore)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Matinee API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
