package dto

import "time"

type PlaceBetResponse struct {
	BetID                string `json:"betId"`
	Status               string `json:"status"`
	PotentialPayoutCents int64  `json:"potential_payout_cents"`
	NewBalanceCents      *int64 `json:"new_balance_cents,omitempty"`
}

type BetResponse struct {
	BetID                string     `json:"betId"`
	UserID               string     `json:"userId"`
	EventName            string     `json:"eventName"`
	League               string     `json:"league,omitempty"`
	BetType              string     `json:"betType"`
	Selection            string     `json:"selection"`
	OddValue             float64    `json:"odd_value"`
	StakeCents           int64      `json:"stake_cents"`
	PotentialPayoutCents int64      `json:"potential_payout_cents"`
	Status               string     `json:"status"`
	PlacedAt             time.Time  `json:"placed_at"`
	SettledAt            *time.Time `json:"settled_at,omitempty"`
}

type CashoutResponse struct {
	BetID           string `json:"betId"`
	Status          string `json:"status"` // CASHED_OUT
	NewBalanceCents int64  `json:"new_balance_cents"`
}
