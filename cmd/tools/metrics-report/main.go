// cmd/tools/metrics-report/main.go
//
// Aggregates the recommendation request log over a trailing window and
// prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trip-recommender/internal/common/config"
	"trip-recommender/internal/common/database"
	"trip-recommender/internal/common/logger"
	"trip-recommender/internal/measure/aggregate"
	"trip-recommender/internal/measure/requestlog"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: standard lookup)")
	days := flag.Int("days", 7, "Trailing window size in days")
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

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres failed", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		zapLog.Fatal("postgres ping failed", zap.Error(err))
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -*days)

	aggregator := aggregate.NewAggregator(requestlog.NewPostgresStore(pg.DB), log)
	report, err := aggregator.Aggregate(ctx, from, to)
	if err != nil {
		zapLog.Fatal("aggregation failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}
