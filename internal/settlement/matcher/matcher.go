package matcher

import (
	"strings"

	"github.com/wagerline/bet-companion/internal/matchkey"
	"github.com/wagerline/bet-companion/internal/settlement/dto"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// Match procura, na lista agregada de eventos, o evento ao qual a aposta se
// refere. Não há identificador compartilhado entre aposta e provedor, então:
//
//  1. quando a aposta gravou a chave normalizada (par de times + liga),
//     o casamento é por igualdade de chave;
//  2. senão, fallback por conteúdo: o texto livre da aposta precisa conter
//     os nomes dos dois times (case-insensitive) e, se a aposta registrou
//     liga, a liga do evento precisa ser igual.
//
// Empate entre candidatos: vence o primeiro na ordem do provedor.
// Aposta sem casamento fica pendente; matching nunca retorna erro.
func Match(bet dto.Bet, evs []events.EventSnapshot) (events.EventSnapshot, bool) {
	if bet.MatchKey != "" {
		for _, ev := range evs {
			if matchkey.Compute(ev.HomeTeam, ev.AwayTeam, ev.League) == bet.MatchKey {
				return ev, true
			}
		}
	}

	name := strings.ToLower(bet.EventName)
	for _, ev := range evs {
		if ev.HomeTeam == "" || ev.AwayTeam == "" {
			continue
		}
		if !strings.Contains(name, strings.ToLower(ev.HomeTeam)) ||
			!strings.Contains(name, strings.ToLower(ev.AwayTeam)) {
			continue
		}
		if bet.League != "" && !strings.EqualFold(bet.League, ev.League) {
			continue
		}
		return ev, true
	}

	return events.EventSnapshot{}, false
}
