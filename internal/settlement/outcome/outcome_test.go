package outcome

import (
	"testing"

	"github.com/wagerline/bet-companion/internal/settlement/dto"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

func completedEvent(home, away string, homeScore, awayScore int) events.EventSnapshot {
	return events.EventSnapshot{
		EventID:   "e1",
		HomeTeam:  home,
		AwayTeam:  away,
		Status:    events.StatusCompleted,
		HomeScore: &homeScore,
		AwayScore: &awayScore,
	}
}

func TestDecideMoneyline(t *testing.T) {
	ev := completedEvent("Los Angeles Lakers", "Boston Celtics", 101, 98)

	tests := []struct {
		name      string
		selection string
		want      Result
		wantOK    bool
	}{
		{"winner full name", "Los Angeles Lakers", Won, true},
		{"winner short name", "Lakers", Won, true},
		{"loser", "Boston Celtics", Lost, true},
		{"loser short name", "Celtics", Lost, true},
		{"unknown selection has no rule", "Chicago Bulls", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decide(dto.Bet{BetType: dto.TypeMoneyline, Selection: tt.selection}, ev)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Decide = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDecideTieIsPush(t *testing.T) {
	ev := completedEvent("Lakers", "Celtics", 100, 100)

	got, ok := Decide(dto.Bet{BetType: dto.TypeMoneyline, Selection: "Lakers"}, ev)
	if !ok || got != Push {
		t.Fatalf("Decide = (%v, %v), want push", got, ok)
	}
}

func TestDecideH2HAlias(t *testing.T) {
	ev := completedEvent("Lakers", "Celtics", 110, 90)

	got, ok := Decide(dto.Bet{BetType: "h2h", Selection: "Lakers"}, ev)
	if !ok || got != Won {
		t.Fatalf("Decide = (%v, %v), want won", got, ok)
	}
}

func TestDecideRequiresCompletedEvent(t *testing.T) {
	home, away := 50, 48
	live := events.EventSnapshot{
		HomeTeam: "Lakers", AwayTeam: "Celtics",
		Status: events.StatusLive, HomeScore: &home, AwayScore: &away,
	}
	if _, ok := Decide(dto.Bet{BetType: dto.TypeMoneyline, Selection: "Lakers"}, live); ok {
		t.Fatal("live event must not settle")
	}

	noScore := events.EventSnapshot{
		HomeTeam: "Lakers", AwayTeam: "Celtics",
		Status: events.StatusCompleted,
	}
	if _, ok := Decide(dto.Bet{BetType: dto.TypeMoneyline, Selection: "Lakers"}, noScore); ok {
		t.Fatal("completed event without both scores must not settle")
	}
}

// Spread e total não têm regra automática: ficam pendentes.
func TestDecideSpreadAndTotalHaveNoRule(t *testing.T) {
	ev := completedEvent("Lakers", "Celtics", 101, 98)

	for _, bt := range []string{dto.TypeSpread, dto.TypeTotal} {
		if _, ok := Decide(dto.Bet{BetType: bt, Selection: "Lakers"}, ev); ok {
			t.Errorf("bet type %q must not auto-settle", bt)
		}
	}
}
