package config

import (
	"os"
	"testing"

	ctopics "github.com/wagerline/bet-companion/pkg/contracts/topics"
)

// Poller e odds-service leem o canal/tópicos da mesma config; os defaults
// precisam apontar para as constantes compartilhadas, senão os dois lados
// do Pub/Sub divergem em silêncio.
func TestLoadDefaultsMatchContracts(t *testing.T) {
	for _, key := range []string{
		"REDIS_PUBSUB_CHANNEL", "KAFKA_TOPIC_EVENTS", "KAFKA_TOPIC_BET_SETTLED",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.RedisPubSubChannel != ctopics.ChannelEventUpdates {
		t.Errorf("RedisPubSubChannel = %q, want %q", cfg.RedisPubSubChannel, ctopics.ChannelEventUpdates)
	}
	if cfg.TopicEventSnapshots != ctopics.EventSnapshots {
		t.Errorf("TopicEventSnapshots = %q, want %q", cfg.TopicEventSnapshots, ctopics.EventSnapshots)
	}
	if cfg.TopicBetSettled != ctopics.BetSettled {
		t.Errorf("TopicBetSettled = %q, want %q", cfg.TopicBetSettled, ctopics.BetSettled)
	}
}

func TestLoadChannelOverride(t *testing.T) {
	t.Setenv("REDIS_PUBSUB_CHANNEL", "event_updates_staging")

	cfg := Load()
	if cfg.RedisPubSubChannel != "event_updates_staging" {
		t.Errorf("RedisPubSubChannel = %q, want override", cfg.RedisPubSubChannel)
	}
}
