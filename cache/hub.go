package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

const registerWait = 10 * time.Second

type Subscription struct {
	channel string
	cid     string
}

type Member struct {
	client   *Client
	channels map[string]time.Time
}

type EventResponse struct {
	Channel string
	Source  string
	Event   *Event
}

type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan *Subscription
	unsubscribe chan *Subscription
	response    chan *EventResponse
}

func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *Subscription, 64),
		unsubscribe: make(chan *Subscription, 64),
		response:    make(chan *EventResponse, 8192),
	}
}

func (hub *Hub) Run(ctx context.Context) error {
	go hub.loopPoolEvents(ctx)
	members := make(map[string]*Member)
	channels := make(map[string]map[string]time.Time)

	for {
		select {
		case client := <-hub.register:
			if _, found := members[client.cid]; !found {
				members[client.cid] = &Member{client, make(map[string]time.Time)}
			}
		case client := <-hub.unregister:
			if member, found := members[client.cid]; found {
				delete(members, client.cid)
				for channel := range member.channels {
					delete(channels[channel], client.cid)
				}
				client.cancel()
			}
		case sub := <-hub.subscribe:
			if _, found := channels[sub.channel]; !found {
				channels[sub.channel] = make(map[string]time.Time)
			}
			if member, found := members[sub.cid]; found {
				if _, found := member.channels[sub.channel]; found {
					continue
				}
				channels[sub.channel][sub.cid] = time.Now()
				member.channels[sub.channel] = time.Now()
				err := member.client.pipeHubChannel(ctx, &EventResponse{
					Channel: sub.channel,
					Source:  "LIST_PENDING_EVENTS",
				})
				if err != nil {
					log.Println("hub subscribe", err)
					member.client.cancel()
				}
			}
		case sub := <-hub.unsubscribe:
			if member, found := members[sub.cid]; found {
				delete(member.channels, sub.channel)
			}
			if channel, found := channels[sub.channel]; found {
				delete(channel, sub.cid)
			}
		case resp := <-hub.response:
			clients, found := channels[resp.Channel]
			if !found {
				continue
			}
			for cid := range clients {
				member, found := members[cid]
				if !found {
					continue
				}
				err := member.client.pipeHubChannel(ctx, resp)
				if err != nil {
					log.Println("hub response", err)
					member.client.cancel()
				}
			}
		}
	}
}

func (hub *Hub) Register(ctx context.Context, client *Client) error {
	select {
	case hub.register <- client:
	case <-time.After(registerWait):
		return fmt.Errorf("timeout to register client %s", client.cid)
	}
	return nil
}

func (hub *Hub) Unregister(client *Client) error {
	select {
	case hub.unregister <- client:
	case <-time.After(registerWait):
		return fmt.Errorf("timeout to unregister client %s", client.cid)
	}
	return nil
}

func (hub *Hub) SubscribePoolEvents(ctx context.Context, poolId, cid string) error {
	select {
	case hub.subscribe <- &Subscription{poolId + "-" + eventsChannel, cid}:
	case <-time.After(registerWait):
		return fmt.Errorf("timeout to subscribe pool events %s %s", poolId, cid)
	}
	return nil
}

func (hub *Hub) UnsubscribePoolEvents(ctx context.Context, poolId, cid string) error {
	select {
	case hub.unsubscribe <- &Subscription{poolId + "-" + eventsChannel, cid}:
	case <-time.After(registerWait):
		return fmt.Errorf("timeout to unsubscribe pool events %s %s", poolId, cid)
	}
	return nil
}

func (hub *Hub) loopPoolEvents(ctx context.Context) {
	pubsub := Redis(ctx).Subscribe(eventsChannel)

	for {
		msg, err := pubsub.ReceiveMessage()
		if err != nil {
			log.Println("loopPoolEvents", err)
			time.Sleep(300 * time.Millisecond)
			continue
		}
		var event Event
		err = json.Unmarshal([]byte(msg.Payload), &event)
		if err != nil {
			log.Panicln(err)
		}
		hub.response <- &EventResponse{event.PoolId + "-" + eventsChannel, "EMIT_EVENT", &event}
	}
}
