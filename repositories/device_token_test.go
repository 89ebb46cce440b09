package repositories

import (
	"context"
	"testing"

	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/infrastructure/storage"

	"github.com/stretchr/testify/require"
)

func Test_Save_Token_Twice_Keeps_One_Record(t *testing.T) {
	req := require.New(t)
	store := storage.NewDocumentStore(openDB(t), logger())
	repository := NewDeviceTokenRepository(store)
	ctx := context.Background()

	req.NoError(repository.SaveToken(ctx, domain.DeviceToken{UID: "u1", Token: "first"}))
	req.NoError(repository.SaveToken(ctx, domain.DeviceToken{UID: "u1", Token: "second"}))
	req.NoError(repository.SaveToken(ctx, domain.DeviceToken{UID: "u2", Token: "other"}))

	snapshot, err := store.Get(contract.Query{Collection: DeviceTokensCollection})
	req.NoError(err)
	req.Len(snapshot.Documents, 2)
	req.Equal("u1", snapshot.Documents[0].Ref.ID)
	req.Equal("second", snapshot.Documents[0].Data.String("token"))
	req.Equal("u2", snapshot.Documents[1].Ref.ID)
}

func Test_Save_Token_Requires_Uid(t *testing.T) {
	req := require.New(t)
	repository := NewDeviceTokenRepository(storage.NewDocumentStore(openDB(t), logger()))

	err := repository.SaveToken(context.Background(), domain.DeviceToken{Token: "t"})
	req.Error(err)
}
