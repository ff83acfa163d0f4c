package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/bet-service/httpapi"
	"github.com/wagerline/bet-companion/internal/bet-service/repo"
	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/db"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/shared/metrics"
	"github.com/wagerline/bet-companion/internal/walletclient"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	srv := httpapi.NewServer(log, repo.NewPostgres(pg), walletclient.New(cfg.WalletURL))

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	go func() {
		log.Info("bet-service listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("bet-service stopped")
}
