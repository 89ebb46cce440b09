package firebase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/errors"
	"friendly-chat/feed"
	"friendly-chat/runtime"

	"firebase.google.com/go/v4/auth"
)

// SessionProvider signs in with a Firebase ID token obtained from an identity provider.
type SessionProvider struct {
	log      *slog.Logger
	auth     *auth.Client
	prompter contract.CredentialPrompter
	idToken  string
	state    *runtime.SessionState
}

// NewSessionProvider uses idToken for the first sign-in when set, then prompts.
func NewSessionProvider(log *slog.Logger, client *auth.Client, prompter contract.CredentialPrompter, idToken string) *SessionProvider {
	return &SessionProvider{
		log:      log,
		auth:     client,
		prompter: prompter,
		idToken:  idToken,
		state:    runtime.NewSessionState(nil),
	}
}

func (p *SessionProvider) SignIn(ctx context.Context) (*domain.Session, error) {
	idToken := p.idToken
	p.idToken = ""
	if idToken == "" {
		var err error
		if idToken, err = p.prompter.PromptIDToken(ctx); err != nil {
			return nil, err
		}
	}

	token, err := p.auth.VerifyIDToken(ctx, strings.TrimSpace(idToken))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	user, err := p.auth.GetUser(ctx, token.UID)
	if err != nil {
		return nil, err
	}
	p.log.Debug("ID token verified", "uid", token.UID, "provider", token.Firebase.SignInProvider)

	session := &domain.Session{UID: user.UID, DisplayName: user.DisplayName, PhotoURL: user.PhotoURL}
	p.state.Set(session)
	return session, nil
}

// SignOut forgets the verified identity. Tokens stay valid until they expire.
func (p *SessionProvider) SignOut(_ context.Context) error {
	p.state.Set(nil)
	return nil
}

func (p *SessionProvider) CurrentSession() *domain.Session {
	return p.state.Get()
}

func (p *SessionProvider) SessionChanges(ctx context.Context) *feed.Feed[*domain.Session] {
	return p.state.Watch(ctx)
}
