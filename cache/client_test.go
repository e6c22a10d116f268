package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientSubscribeMessage(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	client, err := NewClient(ctx, hub, nil, "58e1e0a5-a9be-41a6-a79a-e3b3b8a1f9d2", cancel)
	assert.Nil(err)

	poolId := "f9d64dbd-3bf5-45ba-b8a9-0b9ccdf1698d"
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	frame, err := json.Marshal(FeedMessage{
		Id:     "1f2fa3b4-6f61-4f6c-9a27-8e19cd4bafcd",
		Action: "SUBSCRIBE_POOL",
		Params: map[string]interface{}{"pool": poolId},
	})
	assert.Nil(err)
	_, err = gzWriter.Write(frame)
	assert.Nil(err)
	assert.Nil(gzWriter.Close())

	err = client.parseMessage(ctx, &buf)
	assert.Nil(err)

	msg := <-client.receive
	assert.Equal("SUBSCRIBE_POOL", msg.Action)
	err = client.handleMessage(ctx, msg)
	assert.Nil(err)

	sub := <-hub.subscribe
	assert.Equal(poolId+"-POOL-EVENTS", sub.channel)
	assert.Equal(client.cid, sub.cid)

	var ack FeedMessage
	err = json.Unmarshal(<-client.responses, &ack)
	assert.Nil(err)
	assert.Equal("SUBSCRIBE_POOL", ack.Action)
	assert.Equal("1f2fa3b4-6f61-4f6c-9a27-8e19cd4bafcd", ack.Id)
	assert.Equal(map[string]interface{}{"status": "received"}, ack.Data)

	err = client.handleMessage(ctx, &FeedMessage{
		Id:     "7d5aa0a2-0b51-4a43-93bd-beb8e1ddbd5c",
		Action: "UNSUBSCRIBE_POOL",
		Params: map[string]interface{}{"pool": poolId},
	})
	assert.Nil(err)
	unsub := <-hub.unsubscribe
	assert.Equal(poolId+"-POOL-EVENTS", unsub.channel)
}
