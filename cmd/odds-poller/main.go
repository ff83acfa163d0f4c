package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/odds-poller/aggregator"
	"github.com/wagerline/bet-companion/internal/odds-poller/provider"
	"github.com/wagerline/bet-companion/internal/odds-poller/publisher"
	"github.com/wagerline/bet-companion/internal/odds-poller/pubsub"
	"github.com/wagerline/bet-companion/internal/odds-poller/service"
	"github.com/wagerline/bet-companion/internal/odds-poller/view"
	sharedcache "github.com/wagerline/bet-companion/internal/shared/cache"
	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/shared/metrics"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("odds-poller", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Métricas do pipeline de ingestão
	fetched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poller_partitions_fetched_total", Help: "partições atualizadas com sucesso"}, []string{"partition"})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poller_snapshots_published_total", Help: "snapshots publicados no Kafka"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poller_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(fetched, published, errorsBy)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	pub := publisher.NewKafkaPublisher(brokers, cfg.TopicEventSnapshots, log)
	defer pub.Close()

	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	poller := &service.Poller{
		Log:        log,
		Provider:   provider.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsAPIRate),
		Store:      aggregator.New("the-odds-api", cfg.CacheTTL),
		Pub:        pub,
		View:       view.NewWriter(redisClient, cfg.FullRefreshInterval*2),
		Sports:     cfg.Sports,
		Regions:    cfg.Regions,
		BatchDelay: cfg.BatchDelay,

		OnFetched:   func(partition string) { fetched.WithLabelValues(partition).Inc() },
		OnPublished: func() { published.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Cada snapshot aplicado vira um broadcast pro WS do odds-service
		OnAfterApply: func(ev events.EventSnapshot) {
			b, _ := json.Marshal(pubsub.WSUpdate{EventID: ev.EventID, Payload: ev})

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := poller.Start(ctx, cfg.FullRefreshInterval, cfg.OddsRefreshInterval); err != nil {
		log.Fatal("poller start", zap.Error(err))
	}
	log.Info("odds-poller started",
		zap.Strings("sports", cfg.Sports),
		zap.Strings("regions", cfg.Regions),
		zap.Duration("fullInterval", cfg.FullRefreshInterval),
		zap.Duration("oddsInterval", cfg.OddsRefreshInterval))

	<-ctx.Done()
	poller.Stop()
	_ = metricsSrv.Close()
	log.Info("odds-poller stopped")
}
