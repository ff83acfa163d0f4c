package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wagerline/bet-companion/internal/odds-poller/provider"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// SynthKey sintetiza uma chave estável quando o provedor não manda id.
// O conteúdo (esporte + confronto + horário) identifica o evento.
func SynthKey(sportKey, homeTeam, awayTeam string, commence time.Time) string {
	return fmt.Sprintf("%s:%s@%s:%d", sportKey, awayTeam, homeTeam, commence.Unix())
}

// Normalize converte um fixture do provedor no snapshot unificado.
// Odds americanas viram decimais; placar e status vêm do endpoint de scores,
// quando disponíveis para o mesmo evento.
func Normalize(f provider.Fixture, region string, scores map[string]provider.Score, now time.Time) events.EventSnapshot {
	ev := events.EventSnapshot{
		EventID:      f.ID,
		SportKey:     f.SportKey,
		Region:       region,
		League:       f.SportTitle,
		HomeTeam:     f.HomeTeam,
		AwayTeam:     f.AwayTeam,
		CommenceTime: f.CommenceTime,
	}
	if ev.EventID == "" {
		ev.EventID = SynthKey(f.SportKey, f.HomeTeam, f.AwayTeam, f.CommenceTime)
	}

	for _, bk := range f.Bookmakers {
		q, ok := quoteFromBookmaker(bk, f.HomeTeam, f.AwayTeam)
		if !ok {
			continue
		}
		ev.Quotes = append(ev.Quotes, q)
	}

	ev.Status, ev.HomeScore, ev.AwayScore = resolveStatus(f, scores, now)
	return ev
}

// quoteFromBookmaker extrai a cotação h2h de uma casa, já em odds decimais
func quoteFromBookmaker(bk provider.Bookmaker, homeTeam, awayTeam string) (events.BookmakerQuote, bool) {
	for _, m := range bk.Markets {
		if m.Key != "h2h" {
			continue
		}
		q := events.BookmakerQuote{Bookmaker: bk.Key, LastUpdate: bk.LastUpdate}
		for _, o := range m.Outcomes {
			dec := provider.AmericanToDecimal(o.Price)
			switch o.Name {
			case homeTeam:
				q.Moneyline.Home = dec
			case awayTeam:
				q.Moneyline.Away = dec
			case "Draw":
				q.Moneyline.Draw = dec
			}
		}
		if q.Moneyline.Home == 0 && q.Moneyline.Away == 0 {
			return events.BookmakerQuote{}, false
		}
		return q, true
	}
	return events.BookmakerQuote{}, false
}

// resolveStatus deriva o status unificado e os placares a partir do scores feed.
// Sem entrada de placar, o status cai para scheduled/live conforme o horário.
func resolveStatus(f provider.Fixture, scores map[string]provider.Score, now time.Time) (string, *int, *int) {
	s, ok := scores[f.ID]
	if !ok || s.Scores == nil {
		if now.After(f.CommenceTime) {
			return events.StatusLive, nil, nil
		}
		return events.StatusScheduled, nil, nil
	}

	var home, away *int
	for _, ts := range s.Scores {
		v, err := strconv.Atoi(ts.Score)
		if err != nil {
			continue
		}
		n := v
		switch ts.Name {
		case s.HomeTeam:
			home = &n
		case s.AwayTeam:
			away = &n
		}
	}

	if s.Completed {
		return events.StatusCompleted, home, away
	}
	return events.StatusLive, home, away
}
