package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/flowbridge/flowbridge/pkg/channels/gochannel"
	"github.com/flowbridge/flowbridge/pkg/channels/kafka"
)

// NewChannel creates the message channel for the host bridge based on the
// configured provider.
func NewChannel(provider string, logger *slog.Logger) (message.Publisher, message.Subscriber, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		return kafka.CreateChannel(wmLogger, "flowbridge")
	case "", "gochannel":
		return gochannel.CreateChannel(wmLogger)
	default:
		return nil, nil, fmt.Errorf("unsupported bridge channel provider: %s", provider)
	}
}
