package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/domain/mimetypes"
	"friendly-chat/errors"
	"friendly-chat/feed"
	"friendly-chat/moderation"
	"friendly-chat/repositories"
)

// RecentMessagesLimit is the size of the live message window.
const RecentMessagesLimit = 12

type IChatService interface {
	Login(ctx context.Context)
	Logout(ctx context.Context)
	SendMessage(ctx context.Context, text, imageURL string) (contract.DocumentRef, error)
	SendTextMessage(ctx context.Context, text string) (contract.DocumentRef, error)
	SendImageMessage(ctx context.Context, file domain.ImageFile) (contract.DocumentRef, error)
	LoadRecentMessages(ctx context.Context) (*feed.Feed[[]domain.StoredMessage], error)
	RequestNotificationPermission(ctx context.Context)
	RegisterPushToken(ctx context.Context)
	CurrentSession() *domain.Session
	Close()
}

// Collaborators are the platform services the chat service composes.
// Moderator is optional.
type Collaborators struct {
	Sessions     contract.SessionProvider
	Messages     repositories.IMessageRepository
	DeviceTokens repositories.IDeviceTokenRepository
	Blobs        contract.BlobStore
	Push         contract.PushRegistry
	Permissions  contract.PermissionRequester
	Navigator    contract.Navigator
	Moderator    *moderation.Moderator
}

// ChatService mediates between the UI and the platform.
// It caches the current session, kept in sync by a subscription it owns until Close.
type ChatService struct {
	log *slog.Logger
	Collaborators

	mu      sync.RWMutex
	session *domain.Session

	subscription *feed.Feed[*domain.Session]
	watcherDone  chan struct{}
	closeOnce    sync.Once
}

func NewChatService(log *slog.Logger, collaborators Collaborators) *ChatService {
	s := &ChatService{
		log:           log,
		Collaborators: collaborators,
		session:       collaborators.Sessions.CurrentSession().Clone(),
		watcherDone:   make(chan struct{}),
	}
	s.subscription = collaborators.Sessions.SessionChanges(context.Background())
	go s.watchSession()
	return s
}

// watchSession treats each update as a wakeup and re-reads the provider,
// so a change queued before a sign-in never overwrites it.
func (s *ChatService) watchSession() {
	defer close(s.watcherDone)
	for {
		select {
		case _, ok := <-s.subscription.Updates():
			if !ok {
				if err := s.subscription.Err(); err != nil {
					s.log.Error("Session subscription ended", "error", err)
				}
				return
			}
			s.setSession(s.Sessions.CurrentSession())
		case <-s.subscription.Context().Done():
			return
		}
	}
}

func (s *ChatService) setSession(session *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session.Clone()
}

// CurrentSession returns a copy of the cached session, nil when signed out.
func (s *ChatService) CurrentSession() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

// Close releases the session subscription and waits for its watcher to stop.
func (s *ChatService) Close() {
	s.closeOnce.Do(func() {
		s.subscription.Close()
		<-s.watcherDone
	})
}

// Login runs the interactive sign-in and shows the chat on success.
// A failure is logged and leaves the UI where it was.
func (s *ChatService) Login(ctx context.Context) {
	session, err := s.Sessions.SignIn(ctx)
	if err != nil {
		s.log.Error("Sign-in failed", "error", err)
		return
	}
	if session == nil {
		s.log.Error("Sign-in returned no session")
		return
	}
	s.setSession(session)
	s.log.Info("Signed in", "uid", session.UID, "name", session.DisplayName)
	s.Navigator.Navigate(domain.ViewChat)
}

// Logout ends the session and shows the login view. A failure is logged only.
func (s *ChatService) Logout(ctx context.Context) {
	if err := s.Sessions.SignOut(ctx); err != nil {
		s.log.Error("Sign-out failed", "error", err)
		return
	}
	s.setSession(nil)
	s.log.Info("Signed out")
	s.Navigator.Navigate(domain.ViewLogin)
}

// SendMessage persists a message authored by the current session.
// Exactly one of text and imageURL must be set. Session and shape are checked
// before any call to the document store.
func (s *ChatService) SendMessage(ctx context.Context, text, imageURL string) (contract.DocumentRef, error) {
	session := s.CurrentSession()
	if !session.Authenticated() {
		return contract.DocumentRef{}, errors.ErrUnauthenticated
	}
	message, err := domain.NewChatMessage(*session, text, imageURL)
	if err != nil {
		return contract.DocumentRef{}, err
	}
	if s.Moderator != nil && !message.IsImage() {
		var words []string
		if message.Text, words = s.Moderator.Censor(message.Text); len(words) > 0 {
			s.log.Info("Message censored", "uid", session.UID, "count", len(words))
		}
	}

	ref, err := s.Messages.StoreMessage(ctx, message)
	if err != nil {
		s.log.Error("Error writing new message to the database", "uid", session.UID, "error", err)
		return contract.DocumentRef{}, fmt.Errorf("%w: %w", errors.ErrUpstream, err)
	}
	s.log.Debug("Message stored", "id", ref.ID, "image", message.IsImage())
	return ref, nil
}

func (s *ChatService) SendTextMessage(ctx context.Context, text string) (contract.DocumentRef, error) {
	return s.SendMessage(ctx, text, "")
}

// LoadRecentMessages follows the newest messages, newest first, until the feed is closed.
func (s *ChatService) LoadRecentMessages(ctx context.Context) (*feed.Feed[[]domain.StoredMessage], error) {
	recent, err := s.Messages.WatchRecent(ctx, RecentMessagesLimit)
	if err != nil {
		s.log.Error("Error loading messages", "error", err)
		return nil, fmt.Errorf("%w: %w", errors.ErrUpstream, err)
	}
	return recent, nil
}

// SendImageMessage uploads the file under the user's folder, then posts its URL.
// Upload and URL failures are logged and end the operation with a zero reference
// and no message. A blob whose message fails to be written stays in place.
func (s *ChatService) SendImageMessage(ctx context.Context, file domain.ImageFile) (contract.DocumentRef, error) {
	session := s.CurrentSession()
	if !session.Authenticated() {
		return contract.DocumentRef{}, errors.ErrUnauthenticated
	}
	path, err := file.BlobPath(session.UID)
	if err != nil {
		return contract.DocumentRef{}, fmt.Errorf("%w: file %q", err, file.Name)
	}

	contentType := mimetypes.Detect(file.Data)
	handle, err := s.Blobs.Upload(ctx, path, file.Data, contentType.String())
	if err != nil {
		s.log.Error("There was an error uploading a file to storage", "path", path, "error", err)
		return contract.DocumentRef{}, nil
	}
	url, err := s.Blobs.PublicURL(ctx, handle)
	if err != nil {
		s.log.Error("Unable to resolve uploaded file URL", "path", path, "error", err)
		return contract.DocumentRef{}, nil
	}
	s.log.Debug("File uploaded", "path", path, "size", handle.Size, "contentType", contentType)

	return s.SendMessage(ctx, "", url)
}

// RequestNotificationPermission registers a push token once permission is granted.
func (s *ChatService) RequestNotificationPermission(ctx context.Context) {
	permission, err := s.Permissions.RequestPermission(ctx)
	if err != nil {
		s.log.Error("Unable to get permission to notify", "error", err)
		return
	}
	if permission != domain.PermissionGranted {
		s.log.Info("Notification permission not granted", "permission", permission)
		return
	}
	s.log.Info("Notification permission granted")
	s.RegisterPushToken(ctx)
}

// RegisterPushToken saves the device token of the signed-in user.
// It does nothing when signed out, failures are logged only.
func (s *ChatService) RegisterPushToken(ctx context.Context) {
	session := s.CurrentSession()
	if !session.Authenticated() {
		s.log.Debug("No session, push token not registered")
		return
	}
	token, err := s.Push.GetToken(ctx)
	if err != nil {
		s.log.Error("Unable to get messaging token", "error", err)
		return
	}
	if token == "" {
		s.log.Info("No registration token available")
		return
	}
	if err := s.DeviceTokens.SaveToken(ctx, domain.DeviceToken{UID: session.UID, Token: token}); err != nil {
		s.log.Error("Unable to save messaging token", "uid", session.UID, "error", err)
		return
	}
	s.log.Info("Notification token saved", "uid", session.UID)
}
