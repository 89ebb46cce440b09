//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"

	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/feed"

	"github.com/samber/lo"
)

const MessagesCollection = "messages"

// Field names of a message document.
const (
	fieldName          = "name"
	fieldProfilePicURL = "profilePicUrl"
	fieldTimestamp     = "timestamp"
	fieldUID           = "uid"
	fieldText          = "text"
	fieldImageURL      = "imageUrl"
)

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.ChatMessage) (contract.DocumentRef, error)
	WatchRecent(ctx context.Context, limit int) (*feed.Feed[[]domain.StoredMessage], error)
}

type MessageRepository struct {
	store contract.DocumentStore
	log   *slog.Logger
}

func NewMessageRepository(store contract.DocumentStore, log *slog.Logger) MessageRepository {
	return MessageRepository{store: store, log: log}
}

// StoreMessage persists a message. Its timestamp is left to the document store.
func (m MessageRepository) StoreMessage(ctx context.Context, message domain.ChatMessage) (contract.DocumentRef, error) {
	return m.store.Create(ctx, MessagesCollection, fromChatMessage(message))
}

// WatchRecent follows the newest messages, newest first.
// Documents that cannot be read as a message are skipped.
func (m MessageRepository) WatchRecent(ctx context.Context, limit int) (*feed.Feed[[]domain.StoredMessage], error) {
	snapshots, err := m.store.Query(ctx, contract.Query{
		Collection: MessagesCollection,
		OrderBy:    fieldTimestamp,
		Direction:  contract.Desc,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return feed.Map(snapshots, func(snapshot contract.Snapshot) ([]domain.StoredMessage, bool) {
		documents := lo.Filter(snapshot.Documents, func(d contract.Document, _ int) bool {
			if err := toChatMessage(d.Data).Validate(); err != nil {
				m.log.Warn("Skipping unreadable message", "id", d.Ref.ID, "error", err)
				return false
			}
			return true
		})
		return lo.Map(documents, func(d contract.Document, _ int) domain.StoredMessage {
			return domain.StoredMessage{ID: d.Ref.ID, ChatMessage: toChatMessage(d.Data)}
		}), true
	}), nil
}

func fromChatMessage(message domain.ChatMessage) contract.Record {
	record := contract.Record{
		fieldName:          message.Name,
		fieldProfilePicURL: message.ProfilePicURL,
		fieldTimestamp:     contract.ServerTimestamp,
		fieldUID:           message.UID,
	}
	if message.IsImage() {
		record[fieldImageURL] = message.ImageURL
	} else {
		record[fieldText] = message.Text
	}
	return record
}

func toChatMessage(record contract.Record) domain.ChatMessage {
	return domain.ChatMessage{
		Name:          record.String(fieldName),
		ProfilePicURL: record.String(fieldProfilePicURL),
		UID:           record.String(fieldUID),
		Text:          record.String(fieldText),
		ImageURL:      record.String(fieldImageURL),
		Timestamp:     record.Time(fieldTimestamp),
	}
}
