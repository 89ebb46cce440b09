package main

import (
	"context"
	"fmt"
	"log/slog"

	"friendly-chat/auth"
	"friendly-chat/contract"
	"friendly-chat/infrastructure/firebase"
	"friendly-chat/infrastructure/local"
	"friendly-chat/infrastructure/storage"
	"friendly-chat/internal"
	"friendly-chat/repositories"
	"friendly-chat/services"

	"github.com/dgraph-io/badger/v4"
)

// platform is the backend the chat runs on. accounts is only set on the local backend.
type platform struct {
	sessions contract.SessionProvider
	store    contract.DocumentStore
	blobs    contract.BlobStore
	push     contract.PushRegistry
	accounts services.IAuthService
	close    func()
}

func openPlatform(ctx context.Context, log *slog.Logger, config internal.Config, prompter contract.CredentialPrompter) (platform, error) {
	if config.Backend == internal.BackendFirebase {
		return openFirebase(ctx, log, config, prompter)
	}
	return openLocal(log, config, prompter)
}

func openLocal(log *slog.Logger, config internal.Config, prompter contract.CredentialPrompter) (platform, error) {
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return platform{}, fmt.Errorf("database opening failed: %w", err)
	}
	closeDB := func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}

	blobs, err := storage.NewBlobStore(config.BlobDir, config.BlobBaseURL, log)
	if err != nil {
		closeDB()
		return platform{}, fmt.Errorf("blob store: %w", err)
	}

	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	accounts := services.NewAuthService(repositories.NewUserRepository(db), tokens)
	return platform{
		sessions: local.NewSessionProvider(log, accounts, tokens, prompter, config.SessionFilepath),
		store:    storage.NewDocumentStore(db, log),
		blobs:    blobs,
		push:     local.NewPushRegistry(db, log),
		accounts: accounts,
		close: func() {
			if err := blobs.Close(); err != nil {
				log.Warn("Closing blob store failed", "error", err)
			}
			closeDB()
		},
	}, nil
}

func openFirebase(ctx context.Context, log *slog.Logger, config internal.Config, prompter contract.CredentialPrompter) (platform, error) {
	app, err := firebase.NewApp(ctx, log, firebase.Config{
		ProjectID:       config.FirebaseProjectID,
		CredentialsFile: config.FirebaseCredentialsFile,
		StorageBucket:   config.FirebaseStorageBucket,
		Emulated:        config.Emulated(),
	})
	if err != nil {
		return platform{}, err
	}
	return platform{
		sessions: firebase.NewSessionProvider(log, app.Auth, prompter, config.FirebaseIDToken),
		store:    firebase.NewDocumentStore(app.Firestore, log),
		blobs:    firebase.NewBlobStore(app.Bucket, app.BucketName(), log),
		push:     firebase.NewPushRegistry(app.Messaging, config.FCMDeviceToken, log),
		close: func() {
			if err := app.Close(); err != nil {
				log.Warn("Closing firebase app failed", "error", err)
			}
		},
	}, nil
}
