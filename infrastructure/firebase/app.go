// Package firebase implements the platform services on Firebase:
// Authentication, Cloud Firestore, Cloud Storage and Cloud Messaging.
package firebase

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Config struct {
	ProjectID       string
	CredentialsFile string
	StorageBucket   string
	// Emulated skips credentials, the SDKs reading the emulator hosts from the environment.
	Emulated bool
}

// App bundles the Firebase clients used by the chat.
type App struct {
	Firestore *firestore.Client
	Bucket    *storage.BucketHandle
	Auth      *auth.Client
	Messaging *messaging.Client

	bucketName string
}

func NewApp(ctx context.Context, log *slog.Logger, config Config) (*App, error) {
	var opts []option.ClientOption
	switch {
	case config.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	case config.Emulated:
		opts = append(opts, option.WithoutAuthentication())
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     config.ProjectID,
		StorageBucket: config.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("error initializing auth: %w", err)
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("error opening bucket %q: %w", config.StorageBucket, err)
	}

	var messagingClient *messaging.Client
	if !config.Emulated {
		// There is no messaging emulator.
		if messagingClient, err = app.Messaging(ctx); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("error initializing messaging: %w", err)
		}
	}

	log.Info("Firebase app ready", "project", config.ProjectID, "bucket", config.StorageBucket, "emulated", config.Emulated)
	return &App{
		Firestore:  fs,
		Bucket:     bucket,
		Auth:       authClient,
		Messaging:  messagingClient,
		bucketName: config.StorageBucket,
	}, nil
}

func (a *App) BucketName() string {
	return a.bucketName
}

func (a *App) Close() error {
	return a.Firestore.Close()
}
