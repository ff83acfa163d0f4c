package provider

import "time"

// Estruturas espelham o formato v4 do The Odds API.
// O simulador local responde com o mesmo contrato.

// Fixture é um evento com cotações de bookmakers (endpoint /odds)
type Fixture struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"` // ex: "NBA" — usado como liga
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

type Market struct {
	Key      string    `json:"key"` // "h2h" | "spreads" | "totals"
	Outcomes []Outcome `json:"outcomes"`
}

type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"` // odd americana (oddsFormat=american)
	Point *float64 `json:"point,omitempty"`
}

// Score é o placar de um evento (endpoint /scores)
type Score struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	Completed    bool        `json:"completed"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Scores       []TeamScore `json:"scores"` // null enquanto o jogo não começou
	LastUpdate   *time.Time  `json:"last_update,omitempty"`
}

type TeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}
