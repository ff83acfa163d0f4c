package outcome

import (
	"strings"

	"github.com/wagerline/bet-companion/internal/settlement/dto"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// Result é o desfecho calculado de uma aposta
type Result string

const (
	Won  Result = dto.StatusWon
	Lost Result = dto.StatusLost
	Push Result = dto.StatusPush
)

// Decide aplica a regra de liquidação do tipo da aposta sobre um evento
// encerrado. Só moneyline tem regra automática; spread e total não têm
// fórmula definida e permanecem pendentes (segundo retorno false).
// Evento sem placar final completo também não liquida.
func Decide(bet dto.Bet, ev events.EventSnapshot) (Result, bool) {
	if !ev.Completed() {
		return "", false
	}

	switch strings.ToLower(bet.BetType) {
	case dto.TypeMoneyline, "h2h":
		return moneyline(bet.Selection, ev)
	default:
		return "", false
	}
}

// moneyline: placar estritamente maior vence; empate é push.
// A seleção é texto livre — comparada por igualdade ou contenção com os
// nomes dos times; seleção que não casa com nenhum lado não liquida.
func moneyline(selection string, ev events.EventSnapshot) (Result, bool) {
	home, away := *ev.HomeScore, *ev.AwayScore
	if home == away {
		return Push, true
	}

	winner, loser := ev.HomeTeam, ev.AwayTeam
	if away > home {
		winner, loser = ev.AwayTeam, ev.HomeTeam
	}

	switch {
	case selectionMatches(selection, winner):
		return Won, true
	case selectionMatches(selection, loser):
		return Lost, true
	default:
		return "", false
	}
}

func selectionMatches(selection, team string) bool {
	sel := strings.ToLower(strings.TrimSpace(selection))
	tm := strings.ToLower(strings.TrimSpace(team))
	if sel == "" || tm == "" {
		return false
	}
	return sel == tm || strings.Contains(sel, tm) || strings.Contains(tm, sel)
}
