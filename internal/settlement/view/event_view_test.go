package view

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

func newTestView(ttl time.Duration) (*EventView, *time.Time) {
	v := New(zap.NewNop(), nil, ttl)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return now }
	return v, &now
}

func TestUpsertAndList(t *testing.T) {
	v, _ := newTestView(time.Minute)

	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 1})
	v.Upsert(events.EventSnapshot{EventID: "e2", Version: 1})

	if got := v.Events(); len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
}

// Mensagem atrasada (versão menor) não regride a visão.
func TestUpsertDiscardsOlderVersion(t *testing.T) {
	v, _ := newTestView(time.Minute)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 3, Status: events.StatusCompleted, UpdatedAt: ts})
	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 2, Status: events.StatusLive, UpdatedAt: ts.Add(-time.Second)})

	got := v.Events()
	if len(got) != 1 || got[0].Status != events.StatusCompleted {
		t.Fatalf("stale version overwrote newer one: %+v", got)
	}
}

// Poller reiniciado recomeça o contador de versão; o snapshot novo (pelo
// relógio do poller) não pode ficar preso atrás da entrada antiga até o TTL.
func TestUpsertAcceptsVersionResetAfterRestart(t *testing.T) {
	v, _ := newTestView(time.Minute)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 40, Status: events.StatusLive, UpdatedAt: ts})
	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 1, Status: events.StatusCompleted, UpdatedAt: ts.Add(time.Minute)})

	got := v.Events()
	if len(got) != 1 || got[0].Status != events.StatusCompleted {
		t.Fatalf("version reset discarded fresh snapshot: %+v", got)
	}
}

func TestUpsertIgnoresEmptyID(t *testing.T) {
	v, _ := newTestView(time.Minute)
	v.Upsert(events.EventSnapshot{EventID: ""})
	if got := v.Events(); len(got) != 0 {
		t.Fatalf("empty id stored: %+v", got)
	}
}

// Evento que o poller para de reapresentar expira da visão.
func TestEventsEvictExpiredEntries(t *testing.T) {
	v, now := newTestView(time.Minute)

	v.Upsert(events.EventSnapshot{EventID: "old", Version: 1})
	*now = now.Add(45 * time.Second)
	v.Upsert(events.EventSnapshot{EventID: "fresh", Version: 1})
	*now = now.Add(30 * time.Second)

	got := v.Events()
	if len(got) != 1 || got[0].EventID != "fresh" {
		t.Fatalf("eviction wrong: %+v", got)
	}
}

// Reapresentação renova o TTL do evento.
func TestReupsertRenewsTTL(t *testing.T) {
	v, now := newTestView(time.Minute)

	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 1})
	*now = now.Add(45 * time.Second)
	v.Upsert(events.EventSnapshot{EventID: "e1", Version: 2})
	*now = now.Add(45 * time.Second)

	if got := v.Events(); len(got) != 1 {
		t.Fatalf("re-presented event expired: %+v", got)
	}
}

// Ordem estável: horário do evento, depois id (desempate do matcher).
func TestEventsStableOrder(t *testing.T) {
	v, _ := newTestView(time.Minute)

	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	v.Upsert(events.EventSnapshot{EventID: "b", CommenceTime: late, Version: 1})
	v.Upsert(events.EventSnapshot{EventID: "c", CommenceTime: early, Version: 1})
	v.Upsert(events.EventSnapshot{EventID: "a", CommenceTime: late, Version: 1})

	got := v.Events()
	ids := []string{got[0].EventID, got[1].EventID, got[2].EventID}
	if ids[0] != "c" || ids[1] != "a" || ids[2] != "b" {
		t.Fatalf("order = %v, want [c a b]", ids)
	}
}
