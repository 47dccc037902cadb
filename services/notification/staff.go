// Package notification pushes call events to the staff device over FCM.
package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// StaffNotifier sends FCM pushes to the configured staff device about
// escalations and committed bookings. A nil notifier, or one without a
// client or device token, silently drops messages — pushes are a
// best-effort side channel and must never affect a call.
type StaffNotifier struct {
	client *messaging.Client
	token  string
	logger *zap.Logger
}

func NewStaffNotifier(client *messaging.Client, deviceToken string, logger *zap.Logger) *StaffNotifier {
	return &StaffNotifier{client: client, token: deviceToken, logger: logger}
}

func (n *StaffNotifier) Notify(ctx context.Context, title, body string, data map[string]string) error {
	if n == nil || n.client == nil || n.token == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: n.token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := n.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify staff: failed to send FCM message: %w", err)
	}
	if n.logger != nil {
		n.logger.Info("staff notified", zap.String("title", title))
	}
	return nil
}
