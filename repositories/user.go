//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"friendly-chat/contract"
	"friendly-chat/errors"
	"friendly-chat/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(account NewUser) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// NewUser is what registration hands to the repository, password already hashed.
type NewUser struct {
	Email          string
	HashedPassword string
	DisplayName    string
	PhotoURL       string
}

// User is a local account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoURL     string
	Roles        []string
	CreatedAt    time.Time
}

func emailKey(email string) []byte {
	return []byte("user:" + strings.ToLower(email))
}

func idKey(id string) []byte {
	return []byte("uid:" + id)
}

// CreateUser persists the account and an id index in the same transaction.
// It returns the newly generated user id.
func (u UserRepository) CreateUser(account NewUser) (string, error) {
	user := User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(account.Email),
		PasswordHash: account.HashedPassword,
		DisplayName:  account.DisplayName,
		PhotoURL:     account.PhotoURL,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}
	data, err := storage.EncodeRecord(fromUser(user))
	if err != nil {
		return "", fmt.Errorf("encode failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := emailKey(user.Email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(idKey(user.ID), []byte(user.Email))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getByEmail(txn, email)
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		email, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getByEmail(txn, string(email))
		return err
	})
	return user, err
}

func getByEmail(txn *badger.Txn, email string) (User, error) {
	item, err := txn.Get(emailKey(email))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	var user User
	err = item.Value(func(val []byte) error {
		record, err := storage.DecodeRecord(val)
		if err != nil {
			return err
		}
		user = toUser(record)
		return nil
	})
	return user, err
}

func fromUser(user User) contract.Record {
	roles := make([]any, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = r
	}
	return contract.Record{
		"id":           user.ID,
		"email":        user.Email,
		"passwordHash": user.PasswordHash,
		"displayName":  user.DisplayName,
		"photoUrl":     user.PhotoURL,
		"roles":        roles,
		"createdAt":    user.CreatedAt,
	}
}

func toUser(record contract.Record) User {
	var roles []string
	if raw, ok := record["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return User{
		ID:           record.String("id"),
		Email:        record.String("email"),
		PasswordHash: record.String("passwordHash"),
		DisplayName:  record.String("displayName"),
		PhotoURL:     record.String("photoUrl"),
		Roles:        roles,
		CreatedAt:    record.Time("createdAt"),
	}
}
