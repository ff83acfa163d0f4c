package dto

// Tipos de transação aceitos pelo process-transaction
const (
	TypeDeposit         = "DEPOSIT"
	TypeWithdrawal      = "WITHDRAWAL"
	TypeBetStake        = "BET_STAKE"
	TypeBetPayout       = "BET_PAYOUT"
	TypeCashout         = "CASHOUT"
	TypeReconcileCredit = "RECONCILE_CREDIT"
	TypeLegacyMigration = "LEGACY_MIGRATION"
)

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference,omitempty"` // opcional p/ idempotência
}

// ProcessTransactionRequest é a única porta de mutação de saldo:
// (usuário, tipo, valor, referência) → novo saldo
type ProcessTransactionRequest struct {
	UserID      string `json:"userId"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"` // chave de idempotência por carteira
	Description string `json:"description,omitempty"`
}
