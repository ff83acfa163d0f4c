package matcher

import (
	"testing"

	"github.com/wagerline/bet-companion/internal/matchkey"
	"github.com/wagerline/bet-companion/internal/settlement/dto"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

func ev(id, home, away, league string) events.EventSnapshot {
	return events.EventSnapshot{EventID: id, HomeTeam: home, AwayTeam: away, League: league}
}

func TestMatchByKey(t *testing.T) {
	evs := []events.EventSnapshot{
		ev("e1", "Golden State Warriors", "Miami Heat", "NBA"),
		ev("e2", "Los Angeles Lakers", "Boston Celtics", "NBA"),
	}
	bet := dto.Bet{
		EventName: "whatever the user typed",
		MatchKey:  matchkey.Compute("Boston Celtics", "Los Angeles Lakers", "NBA"),
	}

	got, ok := Match(bet, evs)
	if !ok || got.EventID != "e2" {
		t.Fatalf("Match = (%v, %v), want event e2", got.EventID, ok)
	}
}

func TestMatchFallbackByContent(t *testing.T) {
	evs := []events.EventSnapshot{
		ev("e1", "Golden State Warriors", "Miami Heat", "NBA"),
		ev("e2", "Los Angeles Lakers", "Boston Celtics", "NBA"),
	}
	bet := dto.Bet{EventName: "Los Angeles Lakers vs Boston Celtics"}

	got, ok := Match(bet, evs)
	if !ok || got.EventID != "e2" {
		t.Fatalf("Match = (%v, %v), want event e2", got.EventID, ok)
	}
}

func TestMatchFallbackIsCaseInsensitive(t *testing.T) {
	evs := []events.EventSnapshot{ev("e1", "Los Angeles Lakers", "Boston Celtics", "NBA")}
	bet := dto.Bet{EventName: "LOS ANGELES LAKERS @ BOSTON CELTICS"}

	if _, ok := Match(bet, evs); !ok {
		t.Fatal("expected case-insensitive content match")
	}
}

// Mesmo par de nomes em ligas diferentes: a liga da aposta decide.
func TestMatchLeagueDisambiguation(t *testing.T) {
	evs := []events.EventSnapshot{
		ev("nba", "Liberty", "Sparks", "NBA"),
		ev("wnba", "Liberty", "Sparks", "WNBA"),
	}
	bet := dto.Bet{EventName: "Liberty vs Sparks", League: "WNBA"}

	got, ok := Match(bet, evs)
	if !ok || got.EventID != "wnba" {
		t.Fatalf("Match = (%v, %v), want event wnba", got.EventID, ok)
	}
}

// Sem liga na aposta, candidatos empatados: vence o primeiro na ordem do provedor.
func TestMatchTieBreakProviderOrder(t *testing.T) {
	evs := []events.EventSnapshot{
		ev("first", "Liberty", "Sparks", "NBA"),
		ev("second", "Liberty", "Sparks", "WNBA"),
	}
	bet := dto.Bet{EventName: "Liberty vs Sparks"}

	got, ok := Match(bet, evs)
	if !ok || got.EventID != "first" {
		t.Fatalf("Match = (%v, %v), want first candidate", got.EventID, ok)
	}
}

func TestMatchRequiresBothTeams(t *testing.T) {
	evs := []events.EventSnapshot{ev("e1", "Los Angeles Lakers", "Boston Celtics", "NBA")}
	bet := dto.Bet{EventName: "Los Angeles Lakers game tonight"}

	if _, ok := Match(bet, evs); ok {
		t.Fatal("event name mentioning only one team must not match")
	}
}

func TestMatchNoCandidate(t *testing.T) {
	evs := []events.EventSnapshot{ev("e1", "Golden State Warriors", "Miami Heat", "NBA")}
	bet := dto.Bet{EventName: "Flamengo vs Palmeiras"}

	if _, ok := Match(bet, evs); ok {
		t.Fatal("expected no match")
	}
}

func TestMatchStaleKeyFallsBackToContent(t *testing.T) {
	evs := []events.EventSnapshot{ev("e1", "Los Angeles Lakers", "Boston Celtics", "NBA")}
	bet := dto.Bet{
		EventName: "Los Angeles Lakers vs Boston Celtics",
		MatchKey:  matchkey.Compute("Old Name", "Other Name", "NBA"),
	}

	got, ok := Match(bet, evs)
	if !ok || got.EventID != "e1" {
		t.Fatalf("Match = (%v, %v), want content fallback to e1", got.EventID, ok)
	}
}
