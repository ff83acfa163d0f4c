package view

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/wagerline/bet-companion/internal/shared/kafka"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// EventView consome o tópico de snapshots e mantém a visão local de eventos
// usada pelo matcher. A visão é efêmera: entrada que não é reapresentada pelo
// poller dentro do TTL expira — o evento deixou de existir no provedor.
type EventView struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	TTL    time.Duration

	OnConsumed func()       // métricas (counter++)
	OnError    func(string) // métricas por fase

	mu   sync.RWMutex
	byID map[string]entry
	now  func() time.Time
}

type entry struct {
	ev     events.EventSnapshot
	seenAt time.Time
}

func New(log *zap.Logger, reader *kafka.Reader, ttl time.Duration) *EventView {
	return &EventView{
		Log:    log,
		Reader: reader,
		TTL:    ttl,
		byID:   make(map[string]entry),
		now:    time.Now,
	}
}

// Run inicia o loop de consumo do Kafka até o contexto ser cancelado
func (v *EventView) Run(ctx context.Context) error {
	for {
		_, value, err := sharedkafka.ReadNext(ctx, v.Reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			v.Log.Warn("kafka read failed", zap.Error(err))
			if v.OnError != nil {
				v.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		var ev events.EventSnapshot
		if err := json.Unmarshal(value, &ev); err != nil {
			v.Log.Warn("invalid message", zap.Error(err))
			if v.OnError != nil {
				v.OnError("decode")
			}
			continue
		}

		v.Upsert(ev)
		if v.OnConsumed != nil {
			v.OnConsumed()
		}
	}
}

// Upsert aplica um snapshot à visão. Versão mais velha que a corrente do
// mesmo evento é descartada (mensagens podem chegar fora de ordem), mas o
// contador de versão é por partição e reinicia quando o poller reinicia:
// versão menor com UpdatedAt mais novo é um reset, não uma mensagem atrasada.
func (v *EventView) Upsert(ev events.EventSnapshot) {
	if ev.EventID == "" {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if cur, ok := v.byID[ev.EventID]; ok && cur.ev.Version > ev.Version && !ev.UpdatedAt.After(cur.ev.UpdatedAt) {
		return
	}
	v.byID[ev.EventID] = entry{ev: ev, seenAt: v.now()}
}

// Events retorna a visão corrente, já sem entradas expiradas, em ordem
// estável (horário do evento, depois id) para o desempate do matcher
func (v *EventView) Events() []events.EventSnapshot {
	cutoff := v.now().Add(-v.TTL)

	v.mu.Lock()
	for id, e := range v.byID {
		if e.seenAt.Before(cutoff) {
			delete(v.byID, id)
		}
	}
	out := make([]events.EventSnapshot, 0, len(v.byID))
	for _, e := range v.byID {
		out = append(out, e.ev)
	}
	v.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CommenceTime.Equal(out[j].CommenceTime) {
			return out[i].CommenceTime.Before(out[j].CommenceTime)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}
