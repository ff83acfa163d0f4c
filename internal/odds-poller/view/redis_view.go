package view

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

const (
	// KeyPartitions guarda o conjunto de partições ativas (sport/region)
	KeyPartitions = "events:partitions"
	keyPrefix     = "events:view:"
)

// Writer materializa o snapshot de cada partição no Redis para os leitores
// (odds-service). O TTL cobre a partição inteira: leitor nunca vê lista
// parcialmente expirada.
type Writer struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewWriter(c *redis.Client, ttl time.Duration) *Writer {
	return &Writer{Client: c, TTL: ttl}
}

func Key(partition string) string { return keyPrefix + partition }

// SetPartition grava a lista de eventos da partição e registra a partição no índice
func (w *Writer) SetPartition(ctx context.Context, partition string, evs []events.EventSnapshot) error {
	b, err := json.Marshal(evs)
	if err != nil {
		return err
	}

	pipe := w.Client.TxPipeline()
	pipe.Set(ctx, Key(partition), b, w.TTL)
	pipe.SAdd(ctx, KeyPartitions, partition)
	pipe.Expire(ctx, KeyPartitions, w.TTL)
	_, err = pipe.Exec(ctx)
	return err
}
