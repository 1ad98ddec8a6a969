package servicebus

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"vendor-portal/infrastructure/logger"
)

// NewServiceBus creates the Azure Service Bus client from a connection
// string. The portal only wires it when one is configured.
func NewServiceBus(_ context.Context, connectionString string) (*azservicebus.Client, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("service bus connection string not configured")
	}
	return azservicebus.NewClientFromConnectionString(connectionString, nil)
}

type IPublishEvents interface {
	SendMessage(ctx context.Context, message []byte) error
}

// PublishEvents mirrors publish outcomes onto an Azure Service Bus queue for
// downstream consumers. Nil client degrades to a no-op.
type PublishEvents struct {
	client *azservicebus.Client
	queue  string
}

func NewPublishEvents(client *azservicebus.Client, queue string) IPublishEvents {
	return &PublishEvents{client: client, queue: queue}
}

func (p *PublishEvents) SendMessage(ctx context.Context, message []byte) error {
	if p.client == nil {
		return nil
	}
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, ctx)

	sbMessage := &azservicebus.Message{Body: message}
	if err := sender.SendMessage(ctx, sbMessage, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
