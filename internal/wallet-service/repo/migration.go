package repo

import (
	"context"
	"fmt"

	"github.com/wagerline/bet-companion/internal/wallet-service/dto"
)

// MigrateLegacyBalances converte a coluna legada users.balance_cents em
// créditos de abertura no ledger. Job de uma vez só, não um fallback de
// runtime: a referência "legacy-migration:{userId}" torna a execução
// repetível sem duplicar crédito.
func (p *Postgres) MigrateLegacyBalances(ctx context.Context) (migrated int, err error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, balance_cents FROM users WHERE balance_cents > 0`)
	if err != nil {
		return 0, fmt.Errorf("query legacy balances: %w", err)
	}
	defer rows.Close()

	type legacy struct {
		userID  string
		balance int64
	}
	var all []legacy
	for rows.Next() {
		var l legacy
		if err := rows.Scan(&l.userID, &l.balance); err != nil {
			return 0, err
		}
		all = append(all, l)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, l := range all {
		ref := "legacy-migration:" + l.userID
		_, _, applied, err := p.ProcessTransaction(ctx, l.userID, dto.TypeLegacyMigration,
			l.balance, ref, "opening balance migrated from legacy column")
		if err != nil {
			return migrated, fmt.Errorf("migrate user %s: %w", l.userID, err)
		}
		if applied {
			migrated++
		}
	}
	return migrated, nil
}
