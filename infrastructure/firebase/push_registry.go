package firebase

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
)

// PushRegistry returns the FCM registration token of this device once
// Cloud Messaging accepts it in a dry run.
type PushRegistry struct {
	client *messaging.Client
	token  string
	log    *slog.Logger
}

func NewPushRegistry(client *messaging.Client, token string, log *slog.Logger) *PushRegistry {
	return &PushRegistry{client: client, token: token, log: log}
}

func (r *PushRegistry) GetToken(ctx context.Context) (string, error) {
	if r.token == "" || r.client == nil {
		return "", nil
	}
	_, err := r.client.SendDryRun(ctx, &messaging.Message{
		Token: r.token,
		Data:  map[string]string{"type": "registration-check"},
	})
	if messaging.IsUnregistered(err) {
		r.log.Warn("Registration token is no longer valid")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return r.token, nil
}
