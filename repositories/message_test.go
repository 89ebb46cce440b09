package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/feed"
	"friendly-chat/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func logger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

func nextMessages(t *testing.T, f *feed.Feed[[]domain.StoredMessage]) []domain.StoredMessage {
	t.Helper()
	select {
	case messages, ok := <-f.Updates():
		require.True(t, ok, "feed finished unexpectedly: %v", f.Err())
		return messages
	case <-time.After(2 * time.Second):
		t.Fatal("no messages received in time")
		return nil
	}
}

func alice() domain.Session {
	return domain.Session{UID: "u1", DisplayName: "Alice", PhotoURL: "https://example.com/a.png"}
}

func Test_Store_Message_Writes_Author_And_Server_Timestamp(t *testing.T) {
	req := require.New(t)
	store := storage.NewDocumentStore(openDB(t), logger())
	repository := NewMessageRepository(store, logger())
	ctx := context.Background()

	message, err := domain.NewChatMessage(alice(), "hi", "")
	req.NoError(err)
	ref, err := repository.StoreMessage(ctx, message)
	req.NoError(err)
	req.Equal(MessagesCollection, ref.Collection)

	snapshot, err := store.Get(contract.Query{Collection: MessagesCollection})
	req.NoError(err)
	req.Len(snapshot.Documents, 1)
	data := snapshot.Documents[0].Data
	req.Equal("Alice", data.String(fieldName))
	req.Equal("https://example.com/a.png", data.String(fieldProfilePicURL))
	req.Equal("u1", data.String(fieldUID))
	req.Equal("hi", data.String(fieldText))
	req.NotContains(data, fieldImageURL)
	req.False(data.Time(fieldTimestamp).IsZero())
}

func Test_Store_Image_Message_Has_No_Text_Field(t *testing.T) {
	req := require.New(t)
	store := storage.NewDocumentStore(openDB(t), logger())
	repository := NewMessageRepository(store, logger())

	message, err := domain.NewChatMessage(alice(), "", "https://cdn/x.png")
	req.NoError(err)
	_, err = repository.StoreMessage(context.Background(), message)
	req.NoError(err)

	snapshot, err := store.Get(contract.Query{Collection: MessagesCollection})
	req.NoError(err)
	req.Len(snapshot.Documents, 1)
	req.NotContains(snapshot.Documents[0].Data, fieldText)
	req.Equal("https://cdn/x.png", snapshot.Documents[0].Data.String(fieldImageURL))
}

func Test_Watch_Recent_Returns_Newest_First_And_Limit(t *testing.T) {
	req := require.New(t)
	store := storage.NewDocumentStore(openDB(t), logger())
	repository := NewMessageRepository(store, logger())
	ctx := context.Background()

	for _, text := range []string{"m1", "m2", "m3", "m4"} {
		message, err := domain.NewChatMessage(alice(), text, "")
		req.NoError(err)
		_, err = repository.StoreMessage(ctx, message)
		req.NoError(err)
	}

	recent, err := repository.WatchRecent(ctx, 3)
	req.NoError(err)
	defer recent.Close()

	messages := nextMessages(t, recent)
	req.Len(messages, 3)
	req.Equal("m4", messages[0].Text)
	req.Equal("m3", messages[1].Text)
	req.Equal("m2", messages[2].Text)
	req.NotEmpty(messages[0].ID)

	message, err := domain.NewChatMessage(alice(), "m5", "")
	req.NoError(err)
	_, err = repository.StoreMessage(ctx, message)
	req.NoError(err)

	messages = nextMessages(t, recent)
	req.Len(messages, 3)
	req.Equal("m5", messages[0].Text)
	req.Equal("m3", messages[2].Text)
}

func Test_Watch_Recent_Skips_Unreadable_Documents(t *testing.T) {
	req := require.New(t)
	store := storage.NewDocumentStore(openDB(t), logger())
	repository := NewMessageRepository(store, logger())
	ctx := context.Background()

	_, err := store.Create(ctx, MessagesCollection, contract.Record{
		fieldTimestamp: contract.ServerTimestamp,
		fieldName:      "Ghost",
	})
	req.NoError(err)
	message, err := domain.NewChatMessage(alice(), "readable", "")
	req.NoError(err)
	_, err = repository.StoreMessage(ctx, message)
	req.NoError(err)

	recent, err := repository.WatchRecent(ctx, 12)
	req.NoError(err)
	defer recent.Close()

	messages := nextMessages(t, recent)
	req.Len(messages, 1)
	req.Equal("readable", messages[0].Text)
}

func Test_Watch_Recent_On_Empty_Collection(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(storage.NewDocumentStore(openDB(t), logger()), logger())

	recent, err := repository.WatchRecent(context.Background(), 12)
	req.NoError(err)
	defer recent.Close()
	req.Empty(nextMessages(t, recent))
}
