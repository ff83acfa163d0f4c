package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/settlement/producer"
	"github.com/wagerline/bet-companion/internal/settlement/reconciler"
	"github.com/wagerline/bet-companion/internal/settlement/repo"
	"github.com/wagerline/bet-companion/internal/settlement/view"
	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/db"
	sharedkafka "github.com/wagerline/bet-companion/internal/shared/kafka"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/shared/metrics"
	"github.com/wagerline/bet-companion/internal/walletclient"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("settlement-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Métricas do worker de liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_snapshots_consumed_total", Help: "snapshots de evento consumidos"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_bets_settled_total", Help: "apostas liquidadas por status"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	// Visão de eventos alimentada pelo tópico de snapshots. TTL generoso:
	// evento some da visão só quando o poller para de reapresentá-lo.
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventSnapshots, "settlement-worker")
	defer reader.Close()

	eventView := view.New(log, reader, 3*cfg.FullRefreshInterval)
	eventView.OnConsumed = func() { consumed.Inc() }
	eventView.OnError = func(stage string) { errorsBy.WithLabelValues("view_" + stage).Inc() }

	settledWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	rec := reconciler.New(
		log,
		repo.NewPostgres(pg),
		eventView,
		walletclient.New(cfg.WalletURL),
		producer.NewKafkaPublisher(settledWriter, cfg.TopicBetSettled),
		cfg.SweepLookback,
	)
	rec.OnSettled = func(status string) { settled.WithLabelValues(status).Inc() }
	rec.OnError = func(stage string) { errorsBy.WithLabelValues(stage).Inc() }

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := eventView.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("event view stopped with error", zap.Error(err))
		}
	}()

	if err := rec.Start(ctx, cfg.SettleScanInterval, cfg.SweepInterval); err != nil {
		log.Fatal("reconciler start", zap.Error(err))
	}
	log.Info("settlement-worker started",
		zap.Duration("scanInterval", cfg.SettleScanInterval),
		zap.Duration("sweepInterval", cfg.SweepInterval),
		zap.Duration("sweepLookback", cfg.SweepLookback))

	<-ctx.Done()
	rec.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("settlement-worker stopped")
}
