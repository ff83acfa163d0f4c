package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	odds := rp(getenv("ODDS_URL", "http://localhost:8080"))
	wallet := rp(getenv("WALLET_URL", "http://localhost:8082"))
	bet := rp(getenv("BET_URL", "http://localhost:8083"))

	mux := http.NewServeMux()

	// /api/odds/* -> odds-service (inclui /v1/events e /v1/valuebets)
	mux.Handle("/api/odds/", http.StripPrefix("/api/odds", odds))

	// /api/wallet/* -> wallet-service
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// /api/bets/* -> bet-service
	mux.Handle("/api/bets/", http.StripPrefix("/api/bets", bet))

	// WS passa direto pro odds-service (o proxy reverso preserva o upgrade)
	mux.Handle("/ws", odds)

	addr := ":" + getenv("GATEWAY_PORT", "8090")
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
