package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hafizhrmd/cropscan/internal/application"
	appanalysis "github.com/hafizhrmd/cropscan/internal/application/analysis"
	"github.com/hafizhrmd/cropscan/internal/config"
	domain "github.com/hafizhrmd/cropscan/internal/domain/analysis"
	"github.com/hafizhrmd/cropscan/internal/domain/classifyerrors"
	aiopenai "github.com/hafizhrmd/cropscan/internal/infra/ai/openai"
	mysqlp "github.com/hafizhrmd/cropscan/internal/infra/db/mysql"
	postgresp "github.com/hafizhrmd/cropscan/internal/infra/db/postgres"
	"github.com/hafizhrmd/cropscan/internal/infra/httpserver"
	"github.com/hafizhrmd/cropscan/internal/infra/storage"
	"github.com/hafizhrmd/cropscan/internal/middleware"
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

	ctx := context.Background()

	// connect database sesuai driver
	var db *sql.DB
	var repo domain.Repository
	var failures classifyerrors.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewHistoryRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewHistoryRepository(db)
		failures = mysqlp.NewFailureRepository(db)
	}
	defer db.Close()

	// ensure schema
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("history schema init error: %v", err)
	}
	if failures != nil {
		if err := failures.Init(ctx); err != nil {
			log.Fatalf("failure schema init error: %v", err)
		}
	}

	// init image store
	var images domain.ImageStore
	switch cfg.Storage.Driver {
	case "minio":
		images, err = storage.New(ctx,
			cfg.Storage.Minio.Endpoint,
			cfg.Storage.Minio.Region,
			cfg.Storage.Minio.BucketName,
			cfg.Storage.Minio.AccessKey,
			cfg.Storage.Minio.SecretKey,
			cfg.Storage.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	default:
		images, err = storage.NewDiskStore(cfg.Storage.UploadDir)
		if err != nil {
			log.Fatalf("upload dir init error: %v", err)
		}
	}

	// init classifier gateway
	classifier := aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Temperature)

	// init service
	svc := &appanalysis.Service{
		Repo:       repo,
		Classifier: classifier,
		Images:     images,
		Failures:   failures,
		Clock:      application.SystemClock{},
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Get("/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: a slow model call may hold a request for a while
		IdleTimeout: 60 * time.Second,
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
