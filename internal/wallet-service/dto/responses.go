package dto

type WalletResponse struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balance_cents"`
}

type ProcessTransactionResponse struct {
	WalletID        string `json:"walletId"`
	NewBalanceCents int64  `json:"new_balance_cents"`
	Applied         bool   `json:"applied"` // false = referência já processada antes
}

type TransactionExistsResponse struct {
	Exists bool `json:"exists"`
}
