package aggregator

import (
	"sort"
	"sync"
	"time"

	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// Store mantém o snapshot em memória dos eventos agregados, particionado
// por esporte/região. É a única fonte servida aos leitores: o refresh roda
// em background e o leitor nunca espera rede.
type Store struct {
	mu       sync.RWMutex
	source   string
	cacheTTL time.Duration
	parts    map[string]*partition
	now      func() time.Time
}

type partition struct {
	events   map[string]events.EventSnapshot
	order    []string // ordem de chegada do provedor, preservada p/ desempate no matcher
	lastFull time.Time
	lastOdds time.Time
	loading  int
	version  int
}

// Snapshot é a visão mesclada servida aos consumidores.
// IsLoading indica refresh em andamento — distinto de "sem dados ainda".
type Snapshot struct {
	Events          []events.EventSnapshot
	IsLoading       bool
	LastFullRefresh time.Time
}

func New(source string, cacheTTL time.Duration) *Store {
	return &Store{
		source:   source,
		cacheTTL: cacheTTL,
		parts:    make(map[string]*partition),
		now:      time.Now,
	}
}

// PartitionKey identifica a partição lógica de cache por esporte/região
func PartitionKey(sportKey, region string) string { return sportKey + "/" + region }

func (s *Store) part(key string) *partition {
	p, ok := s.parts[key]
	if !ok {
		p = &partition{events: make(map[string]events.EventSnapshot)}
		s.parts[key] = p
	}
	return p
}

// Fresh informa se a partição ainda está dentro da janela de cache.
// Entrada jovem é servida sem nova chamada de rede.
func (s *Store) Fresh(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[key]
	if !ok || p.lastOdds.IsZero() {
		return false
	}
	return s.now().Sub(p.lastOdds) < s.cacheTTL
}

// BeginRefresh e EndRefresh delimitam um refresh em andamento; o snapshot
// anterior continua sendo servido com IsLoading=true nesse meio tempo.
func (s *Store) BeginRefresh(key string) {
	s.mu.Lock()
	s.part(key).loading++
	s.mu.Unlock()
}

func (s *Store) EndRefresh(key string) {
	s.mu.Lock()
	if p := s.part(key); p.loading > 0 {
		p.loading--
	}
	s.mu.Unlock()
}

// ApplyFull substitui o conjunto estrutural da partição (times, horários,
// status). Campos voláteis já acumulados (placares, cotações) são mantidos
// quando o refresh não os traz. Resposta vazia não apaga dados já exibidos.
// Retorna os snapshots resultantes, já versionados, para publicação.
func (s *Store) ApplyFull(key string, incoming []events.EventSnapshot) []events.EventSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.part(key)
	p.lastFull = now
	p.lastOdds = now

	if len(incoming) == 0 {
		// stale-while-revalidate: mantém o que já está na partição
		return nil
	}

	p.version++
	next := make(map[string]events.EventSnapshot, len(incoming))
	order := make([]string, 0, len(incoming))
	out := make([]events.EventSnapshot, 0, len(incoming))

	for _, ev := range incoming {
		if ev.EventID == "" {
			continue
		}
		if _, dup := next[ev.EventID]; dup {
			continue
		}
		if prev, ok := p.events[ev.EventID]; ok {
			ev = patchVolatile(prev, ev)
		}
		ev.Source = s.source
		ev.Version = p.version
		ev.UpdatedAt = now

		next[ev.EventID] = ev
		order = append(order, ev.EventID)
		out = append(out, ev)
	}

	p.events = next
	p.order = order
	return out
}

// ApplyOddsOnly atualiza somente campos voláteis (odds, placares, status)
// de entradas já conhecidas. Nunca cria nem remove eventos: entrada nova
// espera o próximo refresh estrutural.
func (s *Store) ApplyOddsOnly(key string, incoming []events.EventSnapshot) []events.EventSnapshot {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.part(key)
	p.lastOdds = now

	if len(incoming) == 0 {
		return nil
	}

	p.version++
	var out []events.EventSnapshot
	for _, ev := range incoming {
		prev, ok := p.events[ev.EventID]
		if !ok {
			continue
		}
		merged := mergeVolatile(prev, ev)
		merged.Source = s.source
		merged.Version = p.version
		merged.UpdatedAt = now

		p.events[ev.EventID] = merged
		out = append(out, merged)
	}
	return out
}

// mergeVolatile devolve a entrada armazenada "base" com os campos voláteis
// sobrescritos pelos que "ev" traz. Campo que o refresh rápido não trouxe
// preserva o valor acumulado; campo trazido sempre vence.
func mergeVolatile(base, ev events.EventSnapshot) events.EventSnapshot {
	if len(ev.Quotes) > 0 {
		base.Quotes = ev.Quotes
	}
	if ev.HomeScore != nil {
		base.HomeScore = ev.HomeScore
	}
	if ev.AwayScore != nil {
		base.AwayScore = ev.AwayScore
	}
	if ev.Status != "" {
		base.Status = ev.Status
	}
	return base
}

// patchVolatile devolve o evento "next" completado com os campos voláteis
// de "prev" quando o próprio next não os traz
func patchVolatile(prev, next events.EventSnapshot) events.EventSnapshot {
	if len(next.Quotes) == 0 {
		next.Quotes = prev.Quotes
	}
	if next.HomeScore == nil {
		next.HomeScore = prev.HomeScore
	}
	if next.AwayScore == nil {
		next.AwayScore = prev.AwayScore
	}
	if next.Status == "" {
		next.Status = prev.Status
	}
	return next
}

// Snapshot retorna a visão mesclada e deduplicada de todas as partições,
// imediatamente, sem esperar refreshes em andamento
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.parts))
	for k := range s.parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := Snapshot{}
	seen := make(map[string]struct{})
	for _, k := range keys {
		p := s.parts[k]
		if p.loading > 0 {
			snap.IsLoading = true
		}
		if p.lastFull.After(snap.LastFullRefresh) {
			snap.LastFullRefresh = p.lastFull
		}
		for _, id := range p.order {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			snap.Events = append(snap.Events, p.events[id])
		}
	}
	return snap
}
