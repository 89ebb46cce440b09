//go:generate go run go.uber.org/mock/mockgen -source=device_token.go -destination=../mocks/mock_device_token_repository.go -package=mocks
package repositories

import (
	"context"

	"friendly-chat/contract"
	"friendly-chat/domain"
)

const DeviceTokensCollection = "fcmTokens"

type IDeviceTokenRepository interface {
	SaveToken(ctx context.Context, token domain.DeviceToken) error
}

type DeviceTokenRepository struct {
	store contract.DocumentStore
}

func NewDeviceTokenRepository(store contract.DocumentStore) DeviceTokenRepository {
	return DeviceTokenRepository{store: store}
}

// SaveToken keys the token by user id so a user keeps only its latest token.
func (d DeviceTokenRepository) SaveToken(ctx context.Context, token domain.DeviceToken) error {
	ref := contract.DocumentRef{Collection: DeviceTokensCollection, ID: token.UID}
	return d.store.Set(ctx, ref, contract.Record{"token": token.Token})
}
