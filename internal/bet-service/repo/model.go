package repo

import "time"

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID                   string
	UserID               string
	EventID              string // id do provedor na colocação; pode ficar obsoleto
	EventName            string
	HomeTeam             string
	AwayTeam             string
	League               string
	MatchKey             string // par de times ordenado + liga, calculado na colocação
	BetType              string
	Selection            string
	OddValue             float64
	StakeCents           int64
	PotentialPayoutCents int64
	Status               string
	PlacedAt             time.Time
	SettledAt            *time.Time
}
