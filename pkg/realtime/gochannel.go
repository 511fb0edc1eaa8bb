package realtime

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const topicPrefix = "session."

// GoChannel is the in-process Channel implementation backed by watermill's
// gochannel pub/sub. It is the default transport for a single instance; the
// websocket hub bridges updates across instances through redis.
type GoChannel struct {
	pubSub *gochannel.GoChannel
}

func NewGoChannel() *GoChannel {
	return &GoChannel{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NopLogger{},
		),
	}
}

func (c *GoChannel) Publish(ctx context.Context, sessionID string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return c.pubSub.Publish(topicPrefix+sessionID, msg)
}

func (c *GoChannel) Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error) {
	messages, err := c.pubSub.Subscribe(ctx, topicPrefix+sessionID)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range messages {
			select {
			case out <- msg.Payload:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (c *GoChannel) Close() error {
	return c.pubSub.Close()
}
