package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sensor-anomaly-service/internal/adapters/primary/http/handlers"
	"sensor-anomaly-service/internal/adapters/primary/http/middleware"
	"sensor-anomaly-service/internal/adapters/secondary/filestore"
	"sensor-anomaly-service/internal/adapters/secondary/metrics"
	"sensor-anomaly-service/internal/adapters/secondary/objectstore"
	"sensor-anomaly-service/internal/adapters/secondary/plot"
	"sensor-anomaly-service/internal/adapters/secondary/postgres"
	"sensor-anomaly-service/internal/config"
	ports "sensor-anomaly-service/internal/core/ports/output"
	"sensor-anomaly-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	ctx := context.Background()

	// Artifact store
	store, err := newArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init artifact store: %v", err)
	}

	// Run journal (optional)
	var runs ports.RunRepository
	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		pool, err = newPool(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("init run journal: %v", err)
		}
		defer pool.Close()
		runs = postgres.NewAnalysisRunRepository(pool)
		log.Info("run journal enabled")
	} else {
		log.Info("run journal disabled")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	analysisSvc := services.NewAnalysisService(store, plot.NewRenderer(), runs, m, services.AnalysisOptions{
		AnnotatedCSVName: cfg.Storage.AnnotatedCSV,
		PlotName:         cfg.Storage.Plot,
		PreviewRows:      cfg.Analysis.PreviewRows,
		Seed:             cfg.Analysis.Seed,
	})

	h := handlers.New(analysisSvc)

	// Setup router
	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	router.SetHTMLTemplate(handlers.Templates())
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Metrics(m.HTTPRequestsTotal, m.RequestDuration),
		gin.Recovery(),
		middleware.MaxBody(cfg.Server.MaxUploadBytes),
	)

	h.RegisterPages(router)
	h.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newArtifactStore(ctx context.Context, cfg *config.Config) (ports.ArtifactStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageMinIO:
		s, err := objectstore.New(ctx, &cfg.MinIO)
		if err != nil {
			return nil, err
		}
		log.WithField("bucket", cfg.MinIO.Bucket).Info("storing artifacts in minio")
		return s, nil
	default:
		s, err := filestore.New(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		log.WithField("dir", s.Dir()).Info("storing artifacts on local disk")
		return s, nil
	}
}

func newPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
