package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/odds-poller/provider"
	"github.com/wagerline/bet-companion/internal/shared/config"
	"github.com/wagerline/bet-companion/internal/shared/logger"
	"github.com/wagerline/bet-companion/internal/shared/metrics"
)

// Métricas do simulador
var (
	requestsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulator_requests_total",
		Help: "requisições servidas por endpoint",
	}, []string{"endpoint"})
)

// simMatch é uma partida simulada que progride no tempo: agendada até o
// horário de início, ao vivo por gameLength e encerrada depois disso.
type simMatch struct {
	id       string
	sport    string
	home     string
	away     string
	commence time.Time
}

const gameLength = 20 * time.Minute

// catalog fixo: metade dos jogos já começou quando o simulador sobe, para a
// liquidação ter eventos encerrando sem esperar
func catalog(now time.Time) []simMatch {
	return []simMatch{
		{id: "SIM_NBA_001", sport: "basketball_nba", home: "Los Angeles Lakers", away: "Boston Celtics", commence: now.Add(-15 * time.Minute)},
		{id: "SIM_NBA_002", sport: "basketball_nba", home: "Golden State Warriors", away: "Miami Heat", commence: now.Add(-5 * time.Minute)},
		{id: "SIM_NBA_003", sport: "basketball_nba", home: "Chicago Bulls", away: "Phoenix Suns", commence: now.Add(10 * time.Minute)},
		{id: "SIM_NFL_001", sport: "americanfootball_nfl", home: "Kansas City Chiefs", away: "Buffalo Bills", commence: now.Add(-18 * time.Minute)},
		{id: "SIM_NFL_002", sport: "americanfootball_nfl", home: "Dallas Cowboys", away: "Green Bay Packers", commence: now.Add(30 * time.Minute)},
		{id: "SIM_MLB_001", sport: "baseball_mlb", home: "New York Yankees", away: "Los Angeles Dodgers", commence: now.Add(-10 * time.Minute)},
	}
}

// simulator serve um subconjunto da API do provedor real, o suficiente para
// o poller funcionar sem chave de API: odds h2h e feed de placares.
type simulator struct {
	log     *zap.Logger
	matches []simMatch

	mu     sync.Mutex
	scores map[string][2]int // placar corrente por partida
	rnd    *rand.Rand
}

func newSimulator(log *zap.Logger) *simulator {
	return &simulator{
		log:     log,
		matches: catalog(time.Now().UTC()),
		scores:  make(map[string][2]int),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *simulator) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v4/sports/{sport}/odds/", s.listOdds)
	r.Get("/v4/sports/{sport}/scores/", s.listScores)
	return r
}

// listOdds devolve os fixtures do esporte com cotações h2h em formato americano
func (s *simulator) listOdds(w http.ResponseWriter, r *http.Request) {
	requestsServed.WithLabelValues("odds").Inc()
	sport := chi.URLParam(r, "sport")
	now := time.Now().UTC()

	var out []provider.Fixture
	for _, m := range s.matches {
		if m.sport != sport {
			continue
		}
		out = append(out, provider.Fixture{
			ID:           m.id,
			SportKey:     m.sport,
			SportTitle:   sportTitle(sport),
			HomeTeam:     m.home,
			AwayTeam:     m.away,
			CommenceTime: m.commence,
			Bookmakers: []provider.Bookmaker{{
				Key:        "simbook",
				Title:      "SimBook",
				LastUpdate: now,
				Markets: []provider.Market{{
					Key: "h2h",
					Outcomes: []provider.Outcome{
						{Name: m.home, Price: s.americanOdd()},
						{Name: m.away, Price: s.americanOdd()},
					},
				}},
			}},
		})
	}
	writeJSON(w, out)
}

// listScores devolve o feed de placares: jogos agendados sem placar, jogos ao
// vivo com placar progredindo e jogos encerrados com placar final estável
func (s *simulator) listScores(w http.ResponseWriter, r *http.Request) {
	requestsServed.WithLabelValues("scores").Inc()
	sport := chi.URLParam(r, "sport")
	now := time.Now().UTC()

	var out []provider.Score
	for _, m := range s.matches {
		if m.sport != sport {
			continue
		}

		sc := provider.Score{
			ID:           m.id,
			SportKey:     m.sport,
			HomeTeam:     m.home,
			AwayTeam:     m.away,
			CommenceTime: m.commence,
		}

		switch {
		case now.Before(m.commence):
			// agendado, sem placar
		case now.Before(m.commence.Add(gameLength)):
			home, away := s.advance(m.id)
			sc.Scores = teamScores(m, home, away)
		default:
			home, away := s.final(m.id)
			sc.Completed = true
			sc.Scores = teamScores(m, home, away)
		}
		out = append(out, sc)
	}
	writeJSON(w, out)
}

// advance incrementa o placar do jogo ao vivo a cada consulta
func (s *simulator) advance(id string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.scores[id]
	cur[0] += s.rnd.Intn(4)
	cur[1] += s.rnd.Intn(4)
	s.scores[id] = cur
	return cur[0], cur[1]
}

// final congela o placar e garante que não haja empate no desfecho
func (s *simulator) final(id string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.scores[id]
	if cur[0] == 0 && cur[1] == 0 {
		cur = [2]int{90 + s.rnd.Intn(30), 90 + s.rnd.Intn(30)}
	}
	if cur[0] == cur[1] {
		cur[0]++
	}
	s.scores[id] = cur
	return cur[0], cur[1]
}

// americanOdd sorteia uma cotação americana plausível fora da faixa inválida (-100, 100)
func (s *simulator) americanOdd() float64 {
	v := 100 + s.rnd.Intn(200)
	if s.rnd.Intn(2) == 0 {
		return float64(-v)
	}
	return float64(v)
}

func sportTitle(key string) string {
	switch key {
	case "basketball_nba":
		return "NBA"
	case "americanfootball_nfl":
		return "NFL"
	case "baseball_mlb":
		return "MLB"
	}
	return key
}

func teamScores(m simMatch, home, away int) []provider.TeamScore {
	return []provider.TeamScore{
		{Name: m.home, Score: fmt.Sprintf("%d", home)},
		{Name: m.away, Score: fmt.Sprintf("%d", away)},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	cfg := config.Load()
	log, err := logger.New("provider-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(requestsServed)

	sim := newSimulator(log)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return nil
	})

	addr := ":" + cfg.HTTPPort
	log.Info("provider-simulator listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, sim.router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("simulator server error", zap.Error(err))
	}
}
