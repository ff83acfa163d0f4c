package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/wallet-service/dto"
	"github.com/wagerline/bet-companion/internal/wallet-service/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error)
	ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (walletID string, newBalance int64, applied bool, err error)
	HasTransaction(ctx context.Context, userID, reference string) (bool, error)
}

// Server expõe a API HTTP do ledger de carteiras
type Server struct {
	log  *zap.Logger
	repo Repo
}

func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o roteador com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/wallet", s.getWallet) // GET ?userId=...
	r.Post("/wallet/deposit", s.deposit)
	r.Post("/wallet/process-transaction", s.processTx)
	r.Get("/wallet/transactions", s.transactionExists) // GET ?userId=&reference=
	return r
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: userID, WalletID: walletID, BalanceCents: bal})
}

// deposit adiciona saldo à carteira; vira uma transação DEPOSIT no ledger
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	ref := req.Reference
	if ref == "" {
		ref = "deposit:" + uuid.NewString()
	}

	walletID, bal, _, err := s.repo.ProcessTransaction(r.Context(), req.UserID, dto.TypeDeposit,
		req.AmountCents, ref, "user deposit")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: req.UserID, WalletID: walletID, BalanceCents: bal})
}

// processTx é a porta única de movimentação de saldo (atômica, idempotente)
func (s *Server) processTx(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Type == "" || req.AmountCents <= 0 || req.Reference == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	walletID, bal, applied, err := s.repo.ProcessTransaction(r.Context(), req.UserID, req.Type,
		req.AmountCents, req.Reference, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInsufficientFunds):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, repo.ErrUnknownType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "wallet not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if !applied {
		s.log.Debug("transaction replayed, reference already processed",
			zap.String("userId", req.UserID), zap.String("reference", req.Reference))
	}
	writeJSON(w, dto.ProcessTransactionResponse{WalletID: walletID, NewBalanceCents: bal, Applied: applied})
}

// transactionExists informa se a referência já tem lançamento no ledger
func (s *Server) transactionExists(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	reference := r.URL.Query().Get("reference")
	if userID == "" || reference == "" {
		http.Error(w, "userId and reference required", http.StatusBadRequest)
		return
	}
	exists, err := s.repo.HasTransaction(r.Context(), userID, reference)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TransactionExistsResponse{Exists: exists})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
