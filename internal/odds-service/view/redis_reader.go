package view

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	pollerview "github.com/wagerline/bet-companion/internal/odds-poller/view"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

var ErrNotFound = errors.New("event not found in view")

// Reader lê o snapshot de eventos materializado no Redis pelo odds-poller.
// O serviço de leitura não fala com o provedor: se a view expirou, devolve
// lista vazia e o cliente tenta de novo.
type Reader struct {
	Client *redis.Client
}

func NewReader(c *redis.Client) *Reader { return &Reader{Client: c} }

// Partitions retorna as partições (sport/region) presentes na view
func (r *Reader) Partitions(ctx context.Context) ([]string, error) {
	parts, err := r.Client.SMembers(ctx, pollerview.KeyPartitions).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(parts)
	return parts, nil
}

// Events retorna os eventos da view. Com partition vazia, mescla todas as
// partições ativas, dedup por eventID mantendo a versão mais alta.
func (r *Reader) Events(ctx context.Context, partition string) ([]events.EventSnapshot, error) {
	parts := []string{partition}
	if partition == "" {
		var err error
		parts, err = r.Partitions(ctx)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]events.EventSnapshot)
	for _, p := range parts {
		evs, err := r.partition(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, ev := range evs {
			if prev, ok := seen[ev.EventID]; ok && prev.Version >= ev.Version {
				continue
			}
			seen[ev.EventID] = ev
		}
	}

	out := make([]events.EventSnapshot, 0, len(seen))
	for _, ev := range seen {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CommenceTime.Equal(out[j].CommenceTime) {
			return out[i].CommenceTime.Before(out[j].CommenceTime)
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}

// Event retorna um evento específico da view
func (r *Reader) Event(ctx context.Context, eventID string) (*events.EventSnapshot, error) {
	evs, err := r.Events(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range evs {
		if evs[i].EventID == eventID {
			return &evs[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *Reader) partition(ctx context.Context, p string) ([]events.EventSnapshot, error) {
	raw, err := r.Client.Get(ctx, pollerview.Key(p)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // view expirada, não é erro
	}
	if err != nil {
		return nil, err
	}
	var evs []events.EventSnapshot
	if err := json.Unmarshal(raw, &evs); err != nil {
		return nil, err
	}
	return evs, nil
}
