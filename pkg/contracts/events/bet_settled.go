package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID       string    `json:"betId"`
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId,omitempty"`
	Status      string    `json:"status"` // "WON" | "LOST" | "PUSH"
	PayoutCents int64     `json:"payout_cents"`
	CreditRef   string    `json:"credit_ref,omitempty"` // referência da transação na wallet
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	Ts          time.Time `json:"ts"`
}
