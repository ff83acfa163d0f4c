package dto

import "time"

// Status de aposta. PENDING é o único estado não-terminal: a partir dele a
// liquidação transiciona para WON/LOST/PUSH, ou o usuário para CASHED_OUT.
const (
	StatusPending   = "PENDING"
	StatusWon       = "WON"
	StatusLost      = "LOST"
	StatusPush      = "PUSH"
	StatusCancelled = "CANCELLED"
	StatusCashedOut = "CASHED_OUT"
)

// Tipos de aposta. Só moneyline tem regra de liquidação automática.
const (
	TypeMoneyline = "moneyline"
	TypeSpread    = "spread"
	TypeTotal     = "total"
)

// Bet é a visão da aposta usada pelo pipeline de reconciliação
type Bet struct {
	ID                   string
	UserID               string
	EventName            string // texto livre, ex: "Lakers vs Warriors"
	League               string // opcional; vazio dispensa a checagem de liga
	MatchKey             string // chave normalizada gravada na colocação
	BetType              string
	Selection            string // texto livre do lado apostado
	OddValue             float64
	StakeCents           int64
	PotentialPayoutCents int64
	Status               string
	PlacedAt             time.Time
	SettledAt            *time.Time
}

// Terminal indica se o status não admite mais transição
func Terminal(status string) bool {
	return status != StatusPending
}
