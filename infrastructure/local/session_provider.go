// Package local implements the platform services on the local machine:
// accounts and sessions on badger, a session file, a per-install push token.
package local

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"friendly-chat/auth"
	"friendly-chat/contract"
	"friendly-chat/domain"
	"friendly-chat/errors"
	"friendly-chat/feed"
	"friendly-chat/runtime"
	"friendly-chat/services"
)

// SessionProvider signs users in with a local account.
// The session token is kept in a file so a session outlives the process.
type SessionProvider struct {
	log      *slog.Logger
	accounts services.IAuthService
	tokens   *auth.TokenManager
	prompter contract.CredentialPrompter
	path     string
	state    *runtime.SessionState
}

// NewSessionProvider restores the session saved at path when its token is still valid.
func NewSessionProvider(log *slog.Logger, accounts services.IAuthService, tokens *auth.TokenManager,
	prompter contract.CredentialPrompter, path string) *SessionProvider {
	p := &SessionProvider{
		log:      log,
		accounts: accounts,
		tokens:   tokens,
		prompter: prompter,
		path:     path,
	}
	p.state = runtime.NewSessionState(p.restore())
	return p
}

func (p *SessionProvider) restore() *domain.Session {
	raw, err := os.ReadFile(p.path)
	if goerrors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		p.log.Warn("Unable to read session file", "path", p.path, "error", err)
		return nil
	}
	claims, err := p.tokens.ValidateToken(strings.TrimSpace(string(raw)))
	if err != nil {
		p.log.Info("Saved session is no longer valid", "error", err)
		if err := os.Remove(p.path); err != nil {
			p.log.Warn("Unable to remove session file", "path", p.path, "error", err)
		}
		return nil
	}
	p.log.Debug("Session restored", "uid", claims.UserID)
	return sessionFromClaims(claims)
}

func (p *SessionProvider) SignIn(ctx context.Context) (*domain.Session, error) {
	email, password, err := p.prompter.PromptPassword(ctx)
	if err != nil {
		return nil, err
	}
	token, err := p.accounts.Login(email, password)
	if err != nil {
		return nil, err
	}
	claims, err := p.tokens.ValidateToken(token.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidCredentials, err)
	}
	if err := p.save(token.String()); err != nil {
		return nil, err
	}

	session := sessionFromClaims(claims)
	p.state.Set(session)
	return session, nil
}

func (p *SessionProvider) SignOut(_ context.Context) error {
	if err := os.Remove(p.path); err != nil && !goerrors.Is(err, os.ErrNotExist) {
		return err
	}
	p.state.Set(nil)
	return nil
}

func (p *SessionProvider) CurrentSession() *domain.Session {
	return p.state.Get()
}

func (p *SessionProvider) SessionChanges(ctx context.Context) *feed.Feed[*domain.Session] {
	return p.state.Watch(ctx)
}

func (p *SessionProvider) save(token string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(token), 0o600)
}

func sessionFromClaims(claims *auth.CustomClaims) *domain.Session {
	return &domain.Session{
		UID:         claims.UserID,
		DisplayName: claims.DisplayName,
		PhotoURL:    claims.PhotoURL,
	}
}
