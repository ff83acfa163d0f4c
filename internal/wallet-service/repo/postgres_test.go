package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wagerline/bet-companion/internal/wallet-service/dto"
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestDirection(t *testing.T) {
	tests := []struct {
		txType   string
		wantSign int64
		wantOK   bool
	}{
		{dto.TypeDeposit, 1, true},
		{dto.TypeBetPayout, 1, true},
		{dto.TypeCashout, 1, true},
		{dto.TypeReconcileCredit, 1, true},
		{dto.TypeLegacyMigration, 1, true},
		{dto.TypeWithdrawal, -1, true},
		{dto.TypeBetStake, -1, true},
		{"SOMETHING_ELSE", 0, false},
	}
	for _, tt := range tests {
		sign, ok := direction(tt.txType)
		if sign != tt.wantSign || ok != tt.wantOK {
			t.Errorf("direction(%q) = (%d, %v), want (%d, %v)", tt.txType, sign, ok, tt.wantSign, tt.wantOK)
		}
	}
}

func TestProcessTransactionCredit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance_cents FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}).AddRow("w1", int64(1000)))
	mock.ExpectQuery(`SELECT amount_cents FROM wallet_ledger`).
		WithArgs("w1", "bet-settle:b1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE wallets SET balance_cents`).
		WithArgs(int64(2500), "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet_ledger`).
		WithArgs("w1", dto.TypeBetPayout, int64(2500), "bet-settle:b1", "payout").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT balance_cents FROM wallets WHERE id=\$1`).
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(3500)))
	mock.ExpectCommit()

	walletID, bal, applied, err := repo.ProcessTransaction(context.Background(),
		"u1", dto.TypeBetPayout, 2500, "bet-settle:b1", "payout")
	if err != nil {
		t.Fatal(err)
	}
	if walletID != "w1" || bal != 3500 || !applied {
		t.Errorf("got (%q, %d, %v), want (w1, 3500, true)", walletID, bal, applied)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Referência já lançada: devolve o saldo corrente sem mover dinheiro.
func TestProcessTransactionIdempotentReplay(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance_cents FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}).AddRow("w1", int64(3500)))
	mock.ExpectQuery(`SELECT amount_cents FROM wallet_ledger`).
		WithArgs("w1", "bet-settle:b1").
		WillReturnRows(sqlmock.NewRows([]string{"amount_cents"}).AddRow(int64(2500)))
	mock.ExpectCommit()

	walletID, bal, applied, err := repo.ProcessTransaction(context.Background(),
		"u1", dto.TypeBetPayout, 2500, "bet-settle:b1", "payout")
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Error("replayed reference must not apply")
	}
	if walletID != "w1" || bal != 3500 {
		t.Errorf("got (%q, %d), want (w1, 3500)", walletID, bal)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProcessTransactionInsufficientFunds(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance_cents FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}).AddRow("w1", int64(500)))
	mock.ExpectQuery(`SELECT amount_cents FROM wallet_ledger`).
		WithArgs("w1", "bet-stake:b1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, _, err := repo.ProcessTransaction(context.Background(),
		"u1", dto.TypeBetStake, 1000, "bet-stake:b1", "stake")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestProcessTransactionDebitMissingWallet(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance_cents FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, _, err := repo.ProcessTransaction(context.Background(),
		"ghost", dto.TypeWithdrawal, 100, "wd:1", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// Crédito para usuário sem carteira cria a carteira dentro da transação.
func TestProcessTransactionCreditCreatesWallet(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, balance_cents FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("new-user").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO wallets`).
		WithArgs(sqlmock.AnyArg(), "new-user").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT amount_cents FROM wallet_ledger`).
		WithArgs(sqlmock.AnyArg(), "deposit:1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE wallets SET balance_cents`).
		WithArgs(int64(1000), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO wallet_ledger`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT balance_cents FROM wallets WHERE id=\$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(1000)))
	mock.ExpectCommit()

	_, bal, applied, err := repo.ProcessTransaction(context.Background(),
		"new-user", dto.TypeDeposit, 1000, "deposit:1", "")
	if err != nil {
		t.Fatal(err)
	}
	if bal != 1000 || !applied {
		t.Errorf("got (%d, %v), want (1000, true)", bal, applied)
	}
}

func TestProcessTransactionUnknownType(t *testing.T) {
	repo, _ := newMock(t)
	_, _, _, err := repo.ProcessTransaction(context.Background(), "u1", "NOPE", 100, "r", "")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}

func TestHasTransaction(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("u1", "bet-settle:b1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.HasTransaction(context.Background(), "u1", "bet-settle:b1")
	if err != nil || !ok {
		t.Fatalf("got (%v, %v), want (true, nil)", ok, err)
	}

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("u1", "missing").
		WillReturnError(sql.ErrNoRows)

	ok, err = repo.HasTransaction(context.Background(), "u1", "missing")
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
}
