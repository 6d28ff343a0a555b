// Package notify is the push notification collaborator. Deliveries are
// best-effort: callers log failures and move on.
package notify

import (
	"context"
	"fmt"

	"gamereview-backend/internal/config"
	"gamereview-backend/internal/models"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// APNSNotifier sends pushes through Apple's push service.
type APNSNotifier struct {
	client *apns2.Client
	topic  string
}

// New creates a notifier from a .p12 certificate.
func New(cfg config.APNSConfig) (*APNSNotifier, error) {
	cert, err := certificate.FromP12File(cfg.CertFile, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSNotifier{client: client, topic: cfg.Topic}, nil
}

// NewFollower pushes a new-follower notification to a device token.
func (n *APNSNotifier) NewFollower(ctx context.Context, deviceToken string, follower models.UserSummary) error {
	name := follower.Username
	if name == "" {
		name = follower.Name
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload: payload.NewPayload().
			AlertTitle("New follower").
			AlertBody(fmt.Sprintf("%s started following you", name)).
			Sound("default"),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}
	return nil
}
