package topics

const (
	// Odds
	EventSnapshots = "event_snapshots"

	// Bets
	BetSettled = "bet_settled"

	// DLQs
	BetSettledDLQ = "bet_settled_dlq"

	// Canal Redis Pub/Sub entre o odds-poller e o WS do odds-service
	ChannelEventUpdates = "event_updates_broadcast"
)
