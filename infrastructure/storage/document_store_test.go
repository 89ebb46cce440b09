package storage

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"friendly-chat/contract"
	"friendly-chat/errors"
	"friendly-chat/feed"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*DocumentStore, *badger.DB) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDocumentStore(db, logs.GetLoggerFromLevel(slog.LevelDebug)), db
}

func next(t *testing.T, f *feed.Feed[contract.Snapshot]) contract.Snapshot {
	t.Helper()
	select {
	case snapshot, ok := <-f.Updates():
		require.True(t, ok, "feed finished unexpectedly: %v", f.Err())
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received in time")
		return contract.Snapshot{}
	}
}

func texts(snapshot contract.Snapshot) []string {
	out := make([]string, 0, len(snapshot.Documents))
	for _, d := range snapshot.Documents {
		out = append(out, d.Data.String("text"))
	}
	return out
}

func TestDocumentStore_CreateResolvesServerTimestamp(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()
	before := time.Now().UTC()

	ref, err := store.Create(ctx, "messages", contract.Record{
		"text":      "hello",
		"timestamp": contract.ServerTimestamp,
	})
	req.NoError(err)
	req.Equal("messages", ref.Collection)
	req.NotEmpty(ref.ID)

	snapshot, err := store.Get(contract.Query{Collection: "messages"})
	req.NoError(err)
	req.Len(snapshot.Documents, 1)
	doc := snapshot.Documents[0]
	req.Equal(ref, doc.Ref)
	req.Equal("hello", doc.Data.String("text"))
	req.False(doc.Data.Time("timestamp").Before(before))
}

func TestDocumentStore_ServerTimestampsAreStrictlyIncreasing(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return frozen }

	first := store.serverTime()
	second := store.serverTime()

	req.Equal(frozen, first)
	req.True(second.After(first))
}

func TestDocumentStore_QueryOrdersAndLimits(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := store.Create(ctx, "messages", contract.Record{
			"text":      fmt.Sprintf("message %d", i),
			"timestamp": contract.ServerTimestamp,
		})
		req.NoError(err)
	}
	// Documents without the order field are not part of the result.
	_, err := store.Create(ctx, "messages", contract.Record{"text": "no timestamp"})
	req.NoError(err)

	snapshot, err := store.Get(contract.Query{
		Collection: "messages",
		OrderBy:    "timestamp",
		Direction:  contract.Desc,
		Limit:      3,
	})
	req.NoError(err)
	req.Equal([]string{"message 5", "message 4", "message 3"}, texts(snapshot))
}

func TestDocumentStore_SetOverwrites(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()
	ref := contract.DocumentRef{Collection: "fcmTokens", ID: "u1"}

	req.NoError(store.Set(ctx, ref, contract.Record{"token": "first"}))
	req.NoError(store.Set(ctx, ref, contract.Record{"token": "second"}))

	snapshot, err := store.Get(contract.Query{Collection: "fcmTokens"})
	req.NoError(err)
	req.Len(snapshot.Documents, 1)
	req.Equal("second", snapshot.Documents[0].Data.String("token"))
}

func TestDocumentStore_CollectionsAreIsolated(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "messages", contract.Record{"text": "a"})
	req.NoError(err)
	_, err = store.Create(ctx, "messages-archive", contract.Record{"text": "b"})
	req.NoError(err)

	snapshot, err := store.Get(contract.Query{Collection: "messages"})
	req.NoError(err)
	req.Equal([]string{"a"}, texts(snapshot))
}

func TestDocumentStore_InvalidPaths(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "", contract.Record{})
	req.ErrorIs(err, errors.ErrInvalidPath)

	err = store.Set(ctx, contract.DocumentRef{Collection: "fcmTokens", ID: "a/b"}, contract.Record{})
	req.ErrorIs(err, errors.ErrInvalidPath)

	_, err = store.Query(ctx, contract.Query{Collection: "messages", Limit: -1})
	req.ErrorIs(err, errors.ErrInvalidQuery)
}

func TestDocumentStore_LiveQuery(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "messages", contract.Record{"text": "first", "timestamp": contract.ServerTimestamp})
	req.NoError(err)

	live, err := store.Query(ctx, contract.Query{
		Collection: "messages",
		OrderBy:    "timestamp",
		Direction:  contract.Desc,
		Limit:      2,
	})
	req.NoError(err)
	defer live.Close()

	// Given the initial result set
	req.Equal([]string{"first"}, texts(next(t, live)))

	// When new messages are written
	_, err = store.Create(ctx, "messages", contract.Record{"text": "second", "timestamp": contract.ServerTimestamp})
	req.NoError(err)
	req.Eventually(func() bool {
		select {
		case snapshot := <-live.Updates():
			return len(snapshot.Documents) == 2 && snapshot.Documents[0].Data.String("text") == "second"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	_, err = store.Create(ctx, "messages", contract.Record{"text": "third", "timestamp": contract.ServerTimestamp})
	req.NoError(err)

	// Then the window slides and stays newest first
	req.Eventually(func() bool {
		select {
		case snapshot := <-live.Updates():
			got := texts(snapshot)
			return len(got) == 2 && got[0] == "third" && got[1] == "second"
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDocumentStore_LiveQueryClose(t *testing.T) {
	req := require.New(t)
	store, _ := openStore(t)

	live, err := store.Query(context.Background(), contract.Query{Collection: "messages"})
	req.NoError(err)
	next(t, live)

	live.Close()

	req.Eventually(func() bool {
		return store.watchers.Subscribers("messages") == 0
	}, 2*time.Second, 10*time.Millisecond)
	req.NoError(live.Err())
}

func TestDocumentStore_ClosedDatabase(t *testing.T) {
	req := require.New(t)
	store, db := openStore(t)
	req.NoError(db.Close())

	_, err := store.Query(context.Background(), contract.Query{Collection: "messages"})
	req.Error(err)
}
