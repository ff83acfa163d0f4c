package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/odds-service/httpapi"
	"github.com/wagerline/bet-companion/internal/odds-service/view"
	"github.com/wagerline/bet-companion/internal/odds-service/ws"
	sharedcache "github.com/wagerline/bet-companion/internal/shared/cache"
	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/shared/metrics"
	"github.com/wagerline/bet-companion/internal/valuebet"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("odds-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// WS: hub local alimentado pelo Pub/Sub do poller
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	srv := httpapi.NewServer(log,
		view.NewReader(redisClient),
		valuebet.NewAdvisor(log, cfg.AIAdvisorURL),
		hub,
	)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	go func() {
		log.Info("odds-service listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("odds-service stopped")
}
