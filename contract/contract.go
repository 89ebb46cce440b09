//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"friendly-chat/domain"
	"friendly-chat/feed"
)

// SessionProvider manages the identity of the current user.
type SessionProvider interface {
	SignIn(ctx context.Context) (*domain.Session, error)
	SignOut(ctx context.Context) error
	// CurrentSession is a point-in-time read, nil when signed out.
	CurrentSession() *domain.Session
	// SessionChanges emits the current session first, then every change.
	SessionChanges(ctx context.Context) *feed.Feed[*domain.Session]
}

// DocumentStore holds records grouped in collections.
type DocumentStore interface {
	Create(ctx context.Context, collection string, record Record) (DocumentRef, error)
	// Set creates or overwrites the document at ref.
	Set(ctx context.Context, ref DocumentRef, record Record) error
	// Query opens a live query. Each update is the full ordered result set.
	Query(ctx context.Context, query Query) (*feed.Feed[Snapshot], error)
}

// BlobStore holds uploaded bytes.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (BlobHandle, error)
	PublicURL(ctx context.Context, handle BlobHandle) (string, error)
}

// PushRegistry issues the token notifications are delivered to.
type PushRegistry interface {
	GetToken(ctx context.Context) (string, error)
}

type PermissionRequester interface {
	RequestPermission(ctx context.Context) (domain.Permission, error)
}

type Navigator interface {
	Navigate(view domain.View)
}

// CredentialPrompter collects credentials during an interactive sign-in.
type CredentialPrompter interface {
	PromptPassword(ctx context.Context) (email, password string, err error)
	PromptIDToken(ctx context.Context) (string, error)
}

// RecentMessagesLoader opens the live feed of the most recent messages.
type RecentMessagesLoader interface {
	LoadRecentMessages(ctx context.Context) (*feed.Feed[[]domain.StoredMessage], error)
}

// MessageRenderer displays a snapshot of recent messages, given newest first.
type MessageRenderer interface {
	RenderMessages(messages []domain.StoredMessage)
}

// Worker doesn't protect itself, the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// It is used for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
