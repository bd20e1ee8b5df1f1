package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelPublisher delivers events in-process; every subscriber of
// TopicAlarmFired (the SSE stream) receives its own copy.
type ChannelPublisher struct {
	channel *gochannel.GoChannel
}

func NewChannelPublisher() *ChannelPublisher {
	return &ChannelPublisher{
		channel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(slog.Default()),
		),
	}
}

func (p *ChannelPublisher) PublishAlarmFired(ctx context.Context, event *AlarmFiredEvent) error {
	return publishAlarmFired(ctx, p.channel, event)
}

func (p *ChannelPublisher) Subscriber() message.Subscriber {
	return p.channel
}

func (p *ChannelPublisher) Close() error {
	return p.channel.Close()
}
