package dto

// Tipos de aposta aceitos na colocação.
const (
	BetTypeMoneyline = "moneyline"
	BetTypeSpread    = "spread"
	BetTypeTotal     = "total"
)

type PlaceBetRequest struct {
	UserID     string  `json:"userId"`
	EventID    string  `json:"eventId,omitempty"` // id do provedor, quando o front tem
	EventName  string  `json:"eventName"`         // texto livre, ex: "Lakers vs Warriors"
	HomeTeam   string  `json:"homeTeam"`
	AwayTeam   string  `json:"awayTeam"`
	League     string  `json:"league,omitempty"`
	BetType    string  `json:"betType"`   // "moneyline" | "spread" | "total"
	Selection  string  `json:"selection"` // lado apostado
	OddValue   float64 `json:"odd_value"` // odd decimal vista pelo usuário
	StakeCents int64   `json:"stake_cents"`
}

type CashoutRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"` // valor ofertado de cashout
}
