package runtime

import (
	"context"
	"sync"

	"friendly-chat/domain"
	"friendly-chat/feed"

	"github.com/google/uuid"
)

const sessionTopic = "session"

// SessionState holds the current session of a provider and notifies its watchers.
type SessionState struct {
	mu      sync.RWMutex
	session *domain.Session
	changes *Registry[*domain.Session]
}

func NewSessionState(initial *domain.Session) *SessionState {
	return &SessionState{session: initial.Clone(), changes: NewRegistry[*domain.Session]()}
}

func (s *SessionState) Get() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

func (s *SessionState) Set(session *domain.Session) {
	s.mu.Lock()
	s.session = session.Clone()
	s.mu.Unlock()
	s.changes.Publish(sessionTopic, session)
}

// Watch emits the current session, then the session after each change,
// until ctx is done or the feed is closed.
func (s *SessionState) Watch(ctx context.Context) *feed.Feed[*domain.Session] {
	sessions := feed.New[*domain.Session](ctx, 1)
	wakeUp := make(chan *domain.Session, 1)
	subscriberID := uuid.NewString()
	s.changes.Subscribe(subscriberID, sessionTopic, wakeUp)

	go func() {
		defer s.changes.Unsubscribe(subscriberID, sessionTopic)
		defer sessions.Finish(nil)
		for {
			if !sessions.Send(s.Get()) {
				return
			}
			select {
			case <-sessions.Context().Done():
				return
			case <-wakeUp:
			}
		}
	}()
	return sessions
}

func (s *SessionState) Watchers() int {
	return s.changes.Subscribers(sessionTopic)
}
