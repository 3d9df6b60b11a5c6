// Package main initializes and starts the GreenGuardian server, setting up
// configuration, logging, the database, upload storage, the classifier, the
// recommendation generator, services, handlers and the HTTP listener.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/AdityaD28/GreenGuardian/internal/certgen"
	"github.com/AdityaD28/GreenGuardian/internal/classifier"
	"github.com/AdityaD28/GreenGuardian/internal/classifier/tfmodel"
	"github.com/AdityaD28/GreenGuardian/internal/config"
	"github.com/AdityaD28/GreenGuardian/internal/db"
	"github.com/AdityaD28/GreenGuardian/internal/logger"
	"github.com/AdityaD28/GreenGuardian/internal/metrics"
	"github.com/AdityaD28/GreenGuardian/internal/middleware"
	"github.com/AdityaD28/GreenGuardian/internal/recommend"
	"github.com/AdityaD28/GreenGuardian/internal/repository"
	"github.com/AdityaD28/GreenGuardian/internal/server/handler/http"
	"github.com/AdityaD28/GreenGuardian/internal/service"
	"github.com/AdityaD28/GreenGuardian/internal/uploads"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// newLogger builds the process logger. Failures must be reported through the
// standard logger since the zap logger is still a no-op.
func newLogger(level string) (*logger.Logger, error) {
	log := logger.New()
	if err := log.Init(level); err != nil {
		return nil, fmt.Errorf("failed to init logger with level %q: %w", level, err)
	}
	return log, nil
}

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log, err := newLogger(options.LogLevel)
	if err != nil {
		stdlog.Fatal(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the database and apply migrations.
	sqlDB, err := db.Init(options.DatabaseDriver, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer sqlDB.Close()

	store, err := newUploadStore(options)
	if err != nil {
		zapLogger.Fatal("cannot init upload store", zap.Error(err))
	}

	// Metrics registry shared by the pipeline, the recommender and the router.
	m, err := metrics.New(metrics.NewRegistry())
	if err != nil {
		zapLogger.Fatal("cannot init metrics", zap.Error(err))
	}

	// The classifier variant is chosen once and never re-probed.
	clf := classifier.Select(options.ModelPath, func(path string) (classifier.Predictor, error) {
		return tfmodel.Load(path, runtime.NumCPU(), zapLogger)
	}, zapLogger)
	if c, ok := clf.(io.Closer); ok {
		defer c.Close()
	}
	m.SetClassifierMode(clf.Mode())

	recommender := newRecommender(ctx, options, m, zapLogger)
	zapLogger.Info("operating modes",
		zap.String("classifier", string(clf.Mode())),
		zap.String("recommendation", string(recommender.Mode())),
	)

	// Initialize repositories.
	authRepo := repository.NewAuthRepository(sqlDB)
	historyRepo := repository.NewHistoryRepository(sqlDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo)
	historyService := service.NewHistoryService(historyRepo)
	diagnosisService := service.NewDiagnosisService(
		store, clf, recommender, historyRepo, zapLogger,
		service.WithObserver(m),
	)

	// Remove uploads left behind by failed requests.
	db.StartOrphanUploadCleaner(ctx, store, historyRepo,
		time.Duration(options.OrphanInterval),
		time.Duration(options.OrphanRetention),
		zapLogger,
	)

	useTLS := options.TLSCertFile != ""
	sessions := middleware.NewSessions(options.SessionSecret, useTLS)

	handlers := http.Handlers{
		Auth:      &http.AuthHandler{AuthService: authService, Sessions: sessions, Log: zapLogger},
		Diagnosis: &http.DiagnosisHandler{DiagnosisService: diagnosisService, Log: zapLogger},
		History:   &http.HistoryHandler{HistoryService: historyService, Log: zapLogger},
		Uploads:   &http.UploadHandler{Store: store, Log: zapLogger},
		Health: &http.HealthHandler{
			ClassifierMode:     string(clf.Mode()),
			RecommendationMode: string(recommender.Mode()),
		},
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(handlers, http.RouterDeps{
		Authenticate: sessions.SessionAuth,
		Instrument:   m.Middleware,
		Metrics:      m.Handler(),
		Logger:       zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if useTLS {
		created, err := certgen.EnsureServerCertificate(options.TLSCertFile, options.TLSKeyFile, []string{"localhost", "127.0.0.1"})
		if err != nil {
			zapLogger.Fatal("failed to prepare TLS cert/key", zap.Error(err))
		}
		if created {
			zapLogger.Warn("generated self-signed TLS certificate", zap.String("cert", options.TLSCertFile))
		}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTPS server", zap.Error(err))
		}
		return
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

func newUploadStore(o *config.Options) (uploads.Store, error) {
	if o.UploadBackend == "minio" {
		s, err := uploads.NewMinioStore(uploads.MinioConfig{
			Endpoint:  o.Minio.Endpoint,
			Region:    o.Minio.Region,
			AccessKey: o.Minio.AccessKey,
			SecretKey: o.Minio.SecretKey,
			Bucket:    o.Minio.Bucket,
			UseSSL:    o.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := uploads.NewLocalStore(o.UploadDir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newRecommender picks generated mode when a usable API key is configured and
// falls back to the template otherwise.
func newRecommender(ctx context.Context, o *config.Options, m *metrics.Metrics, log *zap.Logger) *recommend.Generator {
	timeout := time.Duration(o.RecommendTimeout)
	observe := recommend.WithObserver(m.ObserveRecommendation)

	if !recommend.HasCredential(o.GeminiAPIKey) {
		log.Warn("no text-generation credential configured, using template recommendations")
		return recommend.New(nil, timeout, observe)
	}
	client, err := recommend.NewGeminiClient(ctx, o.GeminiAPIKey, o.GeminiModel)
	if err != nil {
		log.Warn("could not create text-generation client, using template recommendations", zap.Error(err))
		return recommend.New(nil, timeout, observe)
	}
	log.Info("text-generation client configured", zap.String("model", client.Name()))
	return recommend.New(client, timeout, observe)
}
