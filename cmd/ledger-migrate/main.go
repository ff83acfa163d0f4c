package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/db"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/wallet-service/repo"
)

// Migração única do saldo legado (coluna users.balance_cents) para o ledger
// de carteiras. Re-rodar é inofensivo: cada usuário migra com referência
// fixa, então o segundo run não lança nada.
func main() {
	cfg := config.Load()
	log, err := logger.New("ledger-migrate", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	walletRepo := repo.NewPostgres(pg)
	migrated, err := walletRepo.MigrateLegacyBalances(ctx)
	if err != nil {
		log.Fatal("legacy balance migration failed", zap.Error(err))
	}

	log.Info("legacy balance migration finished", zap.Int("migrated", migrated))
}
