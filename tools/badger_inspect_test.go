package main

import (
	"context"
	"log/slog"
	"testing"

	"friendly-chat/contract"
	"friendly-chat/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.DocumentStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewDocumentStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func TestInspect_FallsBackToIDWhenNoDocumentHasTheField(t *testing.T) {
	req := require.New(t)
	store := newStore(t)
	ctx := context.Background()

	for _, uid := range []string{"u1", "u2", "u3"} {
		req.NoError(store.Set(ctx, contract.DocumentRef{Collection: "fcmTokens", ID: uid}, contract.Record{"token": "t-" + uid}))
	}

	result, err := inspect(store, "fcmTokens", "timestamp", 0)
	req.NoError(err)
	req.Len(result.documents, 3)
	req.Equal("u3", result.documents[0].Ref.ID)
	req.Equal("document id", result.orderedBy())
	req.Zero(result.excluded)

	limited, err := inspect(store, "fcmTokens", "timestamp", 2)
	req.NoError(err)
	req.Len(limited.documents, 2)
}

func TestInspect_CountsDocumentsWithoutTheField(t *testing.T) {
	req := require.New(t)
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "messages", contract.Record{"text": "first", "timestamp": contract.ServerTimestamp})
	req.NoError(err)
	_, err = store.Create(ctx, "messages", contract.Record{"text": "second", "timestamp": contract.ServerTimestamp})
	req.NoError(err)
	req.NoError(store.Set(ctx, contract.DocumentRef{Collection: "messages", ID: "draft"}, contract.Record{"text": "no time"}))

	result, err := inspect(store, "messages", "timestamp", 0)
	req.NoError(err)
	req.Len(result.documents, 2)
	req.Equal("second", result.documents[0].Data["text"])
	req.Equal("timestamp", result.orderedBy())
	req.Equal(1, result.excluded)
}

func TestInspect_EmptyCollection(t *testing.T) {
	req := require.New(t)

	result, err := inspect(newStore(t), "messages", "timestamp", 0)
	req.NoError(err)
	req.Empty(result.documents)
	req.Zero(result.excluded)
}
