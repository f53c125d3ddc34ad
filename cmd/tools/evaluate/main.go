// cmd/tools/evaluate/main.go
//
// Replays the scenario corpus against a fully wired engine and reports
// the pass rate. Exits 1 on regression against the baseline so CI can
// gate on it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"trip-recommender/internal/common/alert"
	"trip-recommender/internal/common/config"
	"trip-recommender/internal/common/database"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/engine"
	"trip-recommender/internal/engine/catalog"
	"trip-recommender/internal/engine/results"
	"trip-recommender/internal/engine/scoring"
	"trip-recommender/internal/measure/scenario"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: standard lookup)")
	scenariosPath := flag.String("scenarios", "", "Scenario corpus path (default: from config)")
	baseline := flag.Float64("baseline", 0, "Baseline pass rate, 0..1 (default: from config)")
	notify := flag.Bool("notify", false, "Send a report email via SES on regression")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	path := cfg.Scenarios.Path
	if *scenariosPath != "" {
		path = *scenariosPath
	}
	baselineRate := cfg.Scenarios.BaselinePassRate
	if *baseline > 0 {
		baselineRate = *baseline
	}

	corpus, err := scenario.Load(path)
	if err != nil {
		zapLog.Fatal("scenario corpus load failed", zap.Error(err))
	}
	zapLog.Info("Scenario corpus loaded",
		zap.String("path", path),
		zap.String("version", corpus.Version),
		zap.Int("scenarios", len(corpus.Scenarios)),
	)

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	var store catalog.Store
	if cfg.Catalog.Backend == "elasticsearch" {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch failed", zap.Error(err))
		}
		store = catalog.NewElasticStore(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	} else {
		store = catalog.NewPostgresStore(pg.DB, log)
	}

	// Evaluation runs bypass the request log so replayed scenarios never
	// pollute production metrics.
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
		store, nil, log,
	)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}

	evaluator := scenario.NewEvaluator(eng, log)
	report, err := evaluator.Run(ctx, corpus, baselineRate)
	if err != nil {
		zapLog.Fatal("evaluation failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))

	if report.Regression {
		zapLog.Warn("Pass rate regressed against baseline",
			zap.Float64("passRate", report.PassRate),
			zap.Float64("baseline", report.BaselineRate),
		)

		if *notify && cfg.Alerts.SES.Enabled {
			sendRegressionEmail(ctx, cfg, log, report)
		}
		os.Exit(1)
	}
}

func sendRegressionEmail(ctx context.Context, cfg *config.Config, log logger.Logger, report *scenario.EvalReport) {
	_, sesClient, err := alert.NewAWSClients(ctx, cfg.Alerts.AWS.Region)
	if err != nil {
		log.Error("aws client init failed, skipping regression email", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	notifier := alert.NewNotifier(log, alert.WithSES(sesClient, cfg.Alerts.SES.FromEmail))
	body := fmt.Sprintf(
		"Scenario evaluation regressed at %s.\n\nCorpus: %s\nPass rate: %.1f%% (baseline %.1f%%)\nPassed: %d/%d\n",
		time.Now().UTC().Format(time.RFC3339),
		report.CorpusVersion,
		report.PassRate*100, report.BaselineRate*100,
		report.Passed, report.Total,
	)
	subject := fmt.Sprintf("[%s] scenario evaluation regression", cfg.App.Name)
	if err := notifier.SendReportEmail(ctx, cfg.Alerts.SES.ToEmail, subject, body); err != nil {
		log.Error("regression email failed", map[string]interface{}{"error": err.Error()})
	}
}
