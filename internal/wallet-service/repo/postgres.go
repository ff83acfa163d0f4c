package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/wagerline/bet-companion/internal/wallet-service/dto"
)

// Postgres implementa o ledger de carteiras em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrUnknownType       = errors.New("unknown transaction type")
)

// direction resolve o sinal de cada tipo de transação sobre o saldo
func direction(txType string) (int64, bool) {
	switch txType {
	case dto.TypeDeposit, dto.TypeBetPayout, dto.TypeCashout,
		dto.TypeReconcileCredit, dto.TypeLegacyMigration:
		return 1, true
	case dto.TypeWithdrawal, dto.TypeBetStake:
		return -1, true
	default:
		return 0, false
	}
}

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// ProcessTransaction aplica uma movimentação de saldo de forma atômica e
// idempotente: lock pessimista na carteira, referência única por carteira no
// ledger. Reaplicar a mesma referência devolve o saldo corrente sem mover
// dinheiro (applied=false).
func (p *Postgres) ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (walletID string, newBalance int64, applied bool, err error) {
	sign, ok := direction(txType)
	if !ok {
		return "", 0, false, ErrUnknownType
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, false, err
	}
	defer tx.Rollback()

	var id string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id, &balance)
	if err == sql.ErrNoRows {
		if sign < 0 {
			return "", 0, false, ErrNotFound // débito exige carteira existente
		}
		id = uuid.New().String()
		balance = 0
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, false, err
		}
	} else if err != nil {
		return "", 0, false, err
	}

	// Idempotência: referência já lançada devolve o estado corrente
	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT amount_cents FROM wallet_ledger WHERE wallet_id=$1 AND reference=$2`,
		id, reference).Scan(&existing)
	if err == nil {
		if cerr := tx.Commit(); cerr != nil {
			return "", 0, false, cerr
		}
		return id, balance, false, nil
	} else if err != sql.ErrNoRows {
		return "", 0, false, err
	}

	delta := sign * amountCents
	if balance+delta < 0 {
		return "", 0, false, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		delta, id); err != nil {
		return "", 0, false, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, reference, description)
		 VALUES($1,$2,$3,$4,$5)`,
		id, txType, amountCents, reference, description); err != nil {
		return "", 0, false, err
	}

	if err = tx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, false, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, false, err
	}
	return id, newBalance, true, nil
}

// HasTransaction verifica se a referência já tem lançamento no ledger da carteira
func (p *Postgres) HasTransaction(ctx context.Context, userID, reference string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx, `
		SELECT 1
		FROM wallet_ledger wl
		JOIN wallets w ON w.id = wl.wallet_id
		WHERE w.user_id=$1 AND wl.reference=$2`, userID, reference).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
