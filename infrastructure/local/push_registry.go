package local

import (
	"context"
	goerrors "errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var deviceTokenKey = []byte("device:token")

// PushRegistry hands out a token identifying this installation.
// It is created on first use and kept in badger.
type PushRegistry struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPushRegistry(db *badger.DB, log *slog.Logger) *PushRegistry {
	return &PushRegistry{db: db, log: log}
}

func (r *PushRegistry) GetToken(_ context.Context) (string, error) {
	var token string
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(deviceTokenKey)
		if err == nil {
			return item.Value(func(val []byte) error {
				token = string(val)
				return nil
			})
		}
		if !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		token = "local-" + uuid.NewString()
		r.log.Debug("Device token created", "token", token)
		return txn.Set(deviceTokenKey, []byte(token))
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
