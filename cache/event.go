package cache

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventCategoryTrade    = "TRADE"
	EventCategoryTax      = "TAX"
	EventCategoryPosition = "POSITION"

	eventsChannel     = "POOL-EVENTS"
	pendingEventsSize = 256
)

// Event is one engine mutation broadcast to feed subscribers. The engine
// itself only returns receipts; the exchange loop turns them into events.
type Event struct {
	PoolId    string                 `json:"pool_id"`
	Category  string                 `json:"category"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

// PublishEvent fans the event out to live subscribers and appends it to the
// pool's replay window for newly subscribed clients.
func PublishEvent(ctx context.Context, e *Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := e.PoolId + "-" + eventsChannel
	pipe := Redis(ctx).TxPipeline()
	pipe.RPush(key, data)
	pipe.LTrim(key, -pendingEventsSize, -1)
	pipe.Publish(eventsChannel, data)
	_, err = pipe.Exec()
	return err
}

func ListPendingEvents(ctx context.Context, channel string) ([]*Event, error) {
	payloads, err := Redis(ctx).LRange(channel, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]*Event, 0, len(payloads))
	for _, p := range payloads {
		var e Event
		err = json.Unmarshal([]byte(p), &e)
		if err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, nil
}
