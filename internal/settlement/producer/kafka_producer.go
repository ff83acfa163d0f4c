package producer

import (
	"context"
	"encoding/json"
	"time"

	sharedkafka "github.com/wagerline/bet-companion/internal/shared/kafka"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *sharedkafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *sharedkafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// PublishBetSettled publica o resultado da liquidação chaveado pelo betID.
func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now()
	}
	b, _ := json.Marshal(e)
	return sharedkafka.WriteJSON(ctx, p.Writer, e.BetID, b)
}
