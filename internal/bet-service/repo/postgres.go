package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrNotPending = errors.New("bet is not pending")

// Postgres implementa operações de persistência de apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreatePending insere uma nova aposta com status PENDING
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, event_id, event_name, home_team, away_team, league,
		                  match_key, bet_type, selection, odd_value, stake_cents,
		                  potential_payout_cents, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'PENDING',NOW())`,
		id, b.UserID, b.EventID, b.EventName, b.HomeTeam, b.AwayTeam, b.League,
		b.MatchKey, b.BetType, b.Selection, b.OddValue, b.StakeCents,
		b.PotentialPayoutCents,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

const betColumns = `id, user_id, event_id, event_name, home_team, away_team, league,
	match_key, bet_type, selection, odd_value, stake_cents, potential_payout_cents,
	status, placed_at, settled_at`

// GetByID retorna uma aposta pelo id
func (p *Postgres) GetByID(ctx context.Context, betID string) (*Bet, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, betID)
	return scanBet(row)
}

// ListByUser retorna as apostas do usuário, opcionalmente filtradas por status
func (p *Postgres) ListByUser(ctx context.Context, userID, status string) ([]Bet, error) {
	q := `SELECT ` + betColumns + ` FROM bets WHERE user_id=$1`
	args := []any{userID}
	if status != "" {
		q += ` AND status=$2`
		args = append(args, status)
	}
	q += ` ORDER BY placed_at DESC`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// MarkCancelled cancela uma aposta ainda pendente (ex: débito do stake falhou)
func (p *Postgres) MarkCancelled(ctx context.Context, betID string) error {
	return p.transition(ctx, betID, "CANCELLED")
}

// MarkCashedOut encerra a aposta por cashout explícito do usuário
func (p *Postgres) MarkCashedOut(ctx context.Context, betID string) error {
	return p.transition(ctx, betID, "CASHED_OUT")
}

// transition só sai de PENDING; status terminal nunca é sobrescrito
func (p *Postgres) transition(ctx context.Context, betID, status string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$1, settled_at=NOW()
		WHERE id=$2 AND status='PENDING'`, status, betID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBet(row rowScanner) (*Bet, error) {
	var b Bet
	var settledAt sql.NullTime
	if err := row.Scan(
		&b.ID, &b.UserID, &b.EventID, &b.EventName, &b.HomeTeam, &b.AwayTeam, &b.League,
		&b.MatchKey, &b.BetType, &b.Selection, &b.OddValue, &b.StakeCents,
		&b.PotentialPayoutCents, &b.Status, &b.PlacedAt, &settledAt,
	); err != nil {
		return nil, err
	}
	if settledAt.Valid {
		t := settledAt.Time
		b.SettledAt = &t
	}
	return &b, nil
}
