package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/bet-service/dto"
	"github.com/wagerline/bet-companion/internal/bet-service/repo"
	"github.com/wagerline/bet-companion/internal/matchkey"
)

// Tipos de transação emitidos para o wallet-service.
const (
	txBetStake = "BET_STAKE"
	txCashout  = "CASHOUT"
)

// Repo define as operações de persistência usadas pelo handler HTTP
type Repo interface {
	CreatePending(ctx context.Context, b *repo.Bet) (string, error)
	GetByID(ctx context.Context, betID string) (*repo.Bet, error)
	ListByUser(ctx context.Context, userID, status string) ([]repo.Bet, error)
	MarkCancelled(ctx context.Context, betID string) error
	MarkCashedOut(ctx context.Context, betID string) error
}

// Wallet é o subconjunto do client de carteira que o bet-service usa
type Wallet interface {
	ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (int64, error)
}

// Server expõe a API HTTP de apostas
type Server struct {
	log    *zap.Logger
	repo   Repo
	wallet Wallet
}

func NewServer(log *zap.Logger, r Repo, w Wallet) *Server {
	return &Server{log: log, repo: r, wallet: w}
}

// Router retorna o roteador com as rotas da API de apostas
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets", s.listBets) // GET ?userId=&status=
	r.Get("/v1/bets/{betId}", s.getBet)
	r.Post("/v1/bets/{betId}/cashout", s.cashout)
	return r
}

// placeBet cria a aposta PENDING e debita o stake na carteira. A chave de
// match é calculada aqui, na colocação, para a liquidação não depender de
// parsing do nome do evento depois.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := validatePlace(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payout := int64(math.Round(float64(req.StakeCents) * req.OddValue))
	bet := &repo.Bet{
		UserID:               req.UserID,
		EventID:              req.EventID,
		EventName:            req.EventName,
		HomeTeam:             req.HomeTeam,
		AwayTeam:             req.AwayTeam,
		League:               req.League,
		MatchKey:             matchkey.Compute(req.HomeTeam, req.AwayTeam, req.League),
		BetType:              req.BetType,
		Selection:            req.Selection,
		OddValue:             req.OddValue,
		StakeCents:           req.StakeCents,
		PotentialPayoutCents: payout,
	}

	betID, err := s.repo.CreatePending(r.Context(), bet)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Débito depois do insert: se a carteira recusar, a aposta é cancelada.
	// A referência por aposta torna o retry do débito inofensivo.
	newBal, err := s.wallet.ProcessTransaction(r.Context(), req.UserID, txBetStake,
		req.StakeCents, "bet-stake:"+betID, "stake for bet "+betID)
	if err != nil {
		if cErr := s.repo.MarkCancelled(r.Context(), betID); cErr != nil {
			s.log.Error("failed to cancel bet after stake debit failure",
				zap.String("betId", betID), zap.Error(cErr))
		}
		s.log.Warn("stake debit refused, bet cancelled",
			zap.String("betId", betID), zap.String("userId", req.UserID), zap.Error(err))
		http.Error(w, "stake debit refused: "+err.Error(), http.StatusConflict)
		return
	}

	s.log.Info("bet placed",
		zap.String("betId", betID),
		zap.String("userId", req.UserID),
		zap.String("matchKey", bet.MatchKey),
		zap.Int64("stakeCents", req.StakeCents))

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:                betID,
		Status:               "PENDING",
		PotentialPayoutCents: payout,
		NewBalanceCents:      &newBal,
	})
}

func validatePlace(req *dto.PlaceBetRequest) error {
	switch {
	case req.UserID == "":
		return errors.New("userId required")
	case req.HomeTeam == "" || req.AwayTeam == "":
		return errors.New("homeTeam and awayTeam required")
	case req.Selection == "":
		return errors.New("selection required")
	case req.OddValue <= 1.0:
		return errors.New("odd_value must be greater than 1.0")
	case req.StakeCents <= 0:
		return errors.New("stake_cents must be positive")
	}
	switch req.BetType {
	case dto.BetTypeMoneyline, dto.BetTypeSpread, dto.BetTypeTotal:
	default:
		return errors.New("unknown betType")
	}
	if req.EventName == "" {
		req.EventName = req.AwayTeam + " @ " + req.HomeTeam
	}
	return nil
}

// listBets retorna as apostas do usuário, opcionalmente por status
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.ListByUser(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]dto.BetResponse, 0, len(bets))
	for i := range bets {
		out = append(out, toResponse(&bets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getBet retorna uma aposta pelo id
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	bet, err := s.repo.GetByID(r.Context(), chi.URLParam(r, "betId"))
	if err != nil {
		http.Error(w, "bet not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(bet))
}

// cashout encerra a aposta pendente pelo valor ofertado. A aposta sai de
// PENDING antes do crédito: assim a liquidação nunca paga uma aposta que o
// usuário já encerrou. O crédito usa referência fixa por aposta, então um
// retry após falha não duplica o valor.
func (s *Server) cashout(w http.ResponseWriter, r *http.Request) {
	betID := chi.URLParam(r, "betId")

	var req dto.CashoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	bet, err := s.repo.GetByID(r.Context(), betID)
	if err != nil {
		http.Error(w, "bet not found", http.StatusNotFound)
		return
	}
	if bet.UserID != req.UserID {
		http.Error(w, "bet does not belong to user", http.StatusForbidden)
		return
	}
	if req.AmountCents > bet.PotentialPayoutCents {
		http.Error(w, "cashout exceeds potential payout", http.StatusBadRequest)
		return
	}

	if err := s.repo.MarkCashedOut(r.Context(), betID); err != nil {
		if errors.Is(err, repo.ErrNotPending) {
			http.Error(w, "bet already settled", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	newBal, err := s.wallet.ProcessTransaction(r.Context(), req.UserID, txCashout,
		req.AmountCents, "bet-cashout:"+betID, "cashout for bet "+betID)
	if err != nil {
		// Status já é CASHED_OUT; o crédito pendente fica para retry do
		// cliente com a mesma referência.
		s.log.Error("cashout credit failed after status change",
			zap.String("betId", betID), zap.Error(err))
		http.Error(w, "cashout accepted but credit failed, retry", http.StatusBadGateway)
		return
	}

	s.log.Info("bet cashed out",
		zap.String("betId", betID), zap.Int64("amountCents", req.AmountCents))
	writeJSON(w, http.StatusOK, dto.CashoutResponse{
		BetID:           betID,
		Status:          "CASHED_OUT",
		NewBalanceCents: newBal,
	})
}

func toResponse(b *repo.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:                b.ID,
		UserID:               b.UserID,
		EventName:            b.EventName,
		League:               b.League,
		BetType:              b.BetType,
		Selection:            b.Selection,
		OddValue:             b.OddValue,
		StakeCents:           b.StakeCents,
		PotentialPayoutCents: b.PotentialPayoutCents,
		Status:               b.Status,
		PlacedAt:             b.PlacedAt,
		SettledAt:            b.SettledAt,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
