package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/wagerline/bet-companion/internal/settlement/dto"
)

// Postgres implementa a leitura e liquidação de apostas usada pelo reconciler
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, user_id, event_name, league, match_key, bet_type, selection,
	odd_value, stake_cents, potential_payout_cents, status, placed_at, settled_at`

// ListPending retorna as apostas ainda abertas, na ordem de colocação
func (p *Postgres) ListPending(ctx context.Context) ([]dto.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+`
		FROM bets
		WHERE status = 'PENDING'
		ORDER BY placed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// ListSettledWon retorna apostas WON liquidadas desde o instante dado,
// para a varredura de compensação de créditos
func (p *Postgres) ListSettledWon(ctx context.Context, since time.Time) ([]dto.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+`
		FROM bets
		WHERE status = 'WON' AND settled_at >= $1
		ORDER BY settled_at`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// MarkSettled grava o status terminal. O predicado status='PENDING' é a
// guarda contra regressão: aposta já terminal não é tocada de novo.
// Retorna false quando outra execução chegou primeiro.
func (p *Postgres) MarkSettled(ctx context.Context, betID, status string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$1, settled_at=NOW()
		WHERE id=$2 AND status='PENDING'`, status, betID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanBets(rows *sql.Rows) ([]dto.Bet, error) {
	var out []dto.Bet
	for rows.Next() {
		var b dto.Bet
		var settledAt sql.NullTime
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventName, &b.League, &b.MatchKey, &b.BetType,
			&b.Selection, &b.OddValue, &b.StakeCents, &b.PotentialPayoutCents,
			&b.Status, &b.PlacedAt, &settledAt,
		); err != nil {
			return nil, err
		}
		if settledAt.Valid {
			t := settledAt.Time
			b.SettledAt = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
