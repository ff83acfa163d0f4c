package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/odds-service/view"
	"github.com/wagerline/bet-companion/internal/odds-service/ws"
	"github.com/wagerline/bet-companion/internal/valuebet"
)

// Server expõe a API HTTP de leitura de eventos/odds e a análise de valor
type Server struct {
	log     *zap.Logger
	view    *view.Reader
	advisor *valuebet.Advisor
	hub     *ws.Hub
}

func NewServer(log *zap.Logger, v *view.Reader, advisor *valuebet.Advisor, hub *ws.Hub) *Server {
	return &Server{log: log, view: v, advisor: advisor, hub: hub}
}

// Router retorna o roteador com as rotas da API de odds
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/v1/events", s.listEvents) // GET ?sport=&region=
	r.Get("/v1/events/{eventId}", s.getEvent)
	r.Get("/v1/partitions", s.listPartitions)
	r.Post("/v1/valuebets/analyze", s.analyze)
	r.Get("/ws", s.hub.HandleWS)
	return r
}

// listEvents devolve os eventos da view; sport+region filtram uma partição
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	partition := ""
	sport := r.URL.Query().Get("sport")
	region := r.URL.Query().Get("region")
	if sport != "" && region != "" {
		partition = sport + "/" + region
	}

	evs, err := s.view.Events(r.Context(), partition)
	if err != nil {
		s.log.Error("failed to read event view", zap.Error(err))
		http.Error(w, "event view unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// getEvent devolve um evento específico da view
func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.view.Event(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		if errors.Is(err, view.ErrNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "event view unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// listPartitions devolve as partições sport/region ativas na view
func (s *Server) listPartitions(w http.ResponseWriter, r *http.Request) {
	parts, err := s.view.Partitions(r.Context())
	if err != nil {
		http.Error(w, "event view unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

type analyzeRequest struct {
	EventName           string  `json:"eventName,omitempty"`
	Selection           string  `json:"selection,omitempty"`
	DecimalOdds         float64 `json:"decimal_odds"`
	EstimatedWinPercent float64 `json:"estimated_win_pct"`
}

// analyze roda a análise de valor; o advisor remoto é opcional e a análise
// local determinística segura a resposta quando ele falha
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	analysis, err := s.advisor.Advise(r.Context(), req.EventName, req.Selection,
		req.DecimalOdds, req.EstimatedWinPercent)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
