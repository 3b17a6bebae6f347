package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GCHAHA92/Geumcheon/internal/application"
	appingest "github.com/GCHAHA92/Geumcheon/internal/application/ingest"
	appreports "github.com/GCHAHA92/Geumcheon/internal/application/reports"
	"github.com/GCHAHA92/Geumcheon/internal/config"
	domain "github.com/GCHAHA92/Geumcheon/internal/domain/reports"
	aiclient "github.com/GCHAHA92/Geumcheon/internal/infra/ai/openai"
	mongop "github.com/GCHAHA92/Geumcheon/internal/infra/db/mongo"
	mysqlp "github.com/GCHAHA92/Geumcheon/internal/infra/db/mysql"
	postgresp "github.com/GCHAHA92/Geumcheon/internal/infra/db/postgres"
	"github.com/GCHAHA92/Geumcheon/internal/infra/extract"
	"github.com/GCHAHA92/Geumcheon/internal/infra/httpserver"
	minioStore "github.com/GCHAHA92/Geumcheon/internal/infra/storage"
	"github.com/GCHAHA92/Geumcheon/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// connect store per driver
	var (
		repo     domain.Repository
		checkers = map[string]middleware.HealthChecker{}
	)
	switch cfg.Store.Driver {
	case "mongo":
		cli, err := mongop.Connect(ctx, cfg.Store.URI)
		if err != nil {
			log.Fatalf("mongo connect error: %v", err)
		}
		defer cli.Disconnect(context.Background())
		repo = mongop.NewReportRepository(cli.Database(cfg.Store.Database), cfg.Store.Collection)
		checkers["mongo"] = &middleware.PingHealthChecker{
			Ping: func(ctx context.Context) error { return cli.Ping(ctx, nil) },
		}
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqlp.NewReportRepository(db)
		checkers["mysql"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = postgresp.NewReportRepository(db)
		checkers["postgres"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		log.Fatalf("unknown store driver %q", cfg.Store.Driver)
	}

	// init minio (optional PDF archive)
	var artifacts domain.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	}

	// init model client
	model := aiclient.NewClient(aiclient.Config{
		APIKey:         cfg.OpenAI.APIKey,
		Model:          cfg.OpenAI.Model,
		MaxTokens:      cfg.OpenAI.MaxTokens,
		ChunkThreshold: cfg.OpenAI.ChunkThreshold,
		ChunkChars:     cfg.OpenAI.ChunkChars,
		ChunkOverlap:   cfg.OpenAI.ChunkOverlap,
	})

	// init services
	ingestSvc := appingest.NewService(extract.NewPDFExtractor(), model, application.SystemClock{})
	reportsSvc := &appreports.Service{
		Repo:      repo,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
	}

	// init router + middleware chain
	var handler http.Handler = httpserver.NewRouter(ingestSvc, reportsSvc, middleware.HealthHandler(checkers))
	if len(cfg.Auth.APIKeys) > 0 {
		handler = middleware.APIKeyAuth(cfg.Auth.APIKeys)(handler)
	}
	if cfg.RateLimit.Capacity > 0 && cfg.RateLimit.RefillRate > 0 {
		handler = middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)(handler)
	}
	handler = middleware.MetricsMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
