package events

import "time"

// Status possíveis de um evento esportivo reportado pelo provedor
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusCompleted = "completed"
)

// Moneyline representa as odds decimais do mercado vencedor (h2h)
// Draw é zero em esportes sem empate
type Moneyline struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
	Draw float64 `json:"draw,omitempty"`
}

// BookmakerQuote representa a cotação de uma casa de apostas para um evento
type BookmakerQuote struct {
	Bookmaker  string    `json:"bookmaker"`
	Moneyline  Moneyline `json:"moneyline"`
	LastUpdate time.Time `json:"last_update"`
}

// EventSnapshot é o evento publicado no tópico "event_snapshots".
// Reconstruído a cada ciclo do odds-poller; nunca persistido.
type EventSnapshot struct {
	EventID      string           `json:"event_id"`
	SportKey     string           `json:"sport_key"`
	Region       string           `json:"region"`
	League       string           `json:"league"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	CommenceTime time.Time        `json:"commence_time"`
	Status       string           `json:"status"` // scheduled | live | completed
	HomeScore    *int             `json:"home_score,omitempty"`
	AwayScore    *int             `json:"away_score,omitempty"`
	Quotes       []BookmakerQuote `json:"quotes,omitempty"`
	Source       string           `json:"source"`  // ex: "odds-poller"
	Version      int              `json:"version"` // incrementado a cada refresh
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Completed indica se o evento terminou e tem placar final dos dois lados
func (e EventSnapshot) Completed() bool {
	return e.Status == StatusCompleted && e.HomeScore != nil && e.AwayScore != nil
}
