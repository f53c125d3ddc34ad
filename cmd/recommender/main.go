// cmd/recommender/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trip-recommender/internal/common/alert"
	"trip-recommender/internal/common/config"
	"trip-recommender/internal/common/database"
	stderrs "trip-recommender/internal/common/errors"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/common/observability"
	"trip-recommender/internal/engine"
	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/results"
	"trip-recommender/internal/engine/scoring"
	"trip-recommender/internal/measure/requestlog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting recommender...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("recommender")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Catalog Store (backend selected by config) ---
	var store catalog.Store
	switch cfg.Catalog.Backend {
	case "elasticsearch":
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		store = catalog.NewElasticStore(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	default:
		store = catalog.NewPostgresStore(pg.DB, log)
	}

	if cfg.Catalog.CacheTTL > 0 {
		store = catalog.NewCachedStore(store, rdb.Client, config.GetDuration(cfg.Catalog.CacheTTL), log)
	}

	// --- Operational Alert Channel ---
	notifierOpts := []alert.Option{}
	if cfg.Alerts.SNS.Enabled {
		snsClient, _, err := alert.NewAWSClients(ctx, cfg.Alerts.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws client init failed", zap.Error(err))
		}
		notifierOpts = append(notifierOpts, alert.WithSNS(snsClient, cfg.Alerts.SNS.TopicARN))
	}
	notifier := alert.NewNotifier(log, notifierOpts...)

	// --- Async Request Logger ---
	var recorder engine.Recorder
	var asyncLogger *requestlog.AsyncLogger
	if cfg.RequestLog.Enabled {
		logStore := requestlog.NewPostgresStore(pg.DB)
		asyncLogger = requestlog.NewAsyncLogger(
			logStore, notifier, cfg.RequestLog.QueueSize,
			config.GetDuration(cfg.RequestLog.Timeout), log,
		)
		asyncLogger.Start()
		defer asyncLogger.Stop()
		recorder = asyncLogger
		zapLog.Info("Request logging enabled", zap.Int("queueSize", cfg.RequestLog.QueueSize))
	}

	// --- Recommendation Engine ---
	eng, err := engine.New(
		engine.Config{
			Thresholds: results.Thresholds{High: cfg.Engine.HighThreshold, Mid: cfg.Engine.MidThreshold},
			MinViable:  cfg.Engine.MinViableResults,
			MaxResults: cfg.Engine.MaxResults,
		},
		scoring.Config{
			Weights: scoring.Weights{
				Type:       cfg.Engine.TypeWeight,
				Theme:      cfg.Engine.ThemeWeight,
				Budget:     cfg.Engine.BudgetWeight,
				Duration:   cfg.Engine.DurationWeight,
				Difficulty: cfg.Engine.DifficultyWeight,
			},
			BudgetTolerance:   cfg.Engine.BudgetTolerance,
			DurationTolerance: cfg.Engine.DurationTolerance,
		},
		store, recorder, log,
	)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}

	// --- API Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/recommendations", recommendationsHandler(eng, obs, cfg, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		zapLog.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server (pprof registers on the default mux) ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort), nil); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Recommender stopped gracefully")
}

func recommendationsHandler(eng *engine.Engine, obs *observability.Observability, cfg *config.Config, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only POST is supported")
			return
		}

		var raw map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, string(stderrs.ErrCodeValidationFailed), "request body must be a JSON object")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), config.GetDuration(cfg.Server.Timeout))
		defer cancel()

		start := time.Now()
		resp, err := eng.Recommend(ctx, raw)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		obs.RecordRequestProcessed(ctx, outcome)
		obs.RecordRequestDuration(ctx, time.Since(start), outcome)

		if err != nil {
			std := stderrs.Normalize(err)
			log.Error("recommendation request failed", map[string]interface{}{
				"code":  string(std.Code),
				"error": std.Error(),
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stderrs.HTTPStatus(std))
			json.NewEncoder(w).Encode(std)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
