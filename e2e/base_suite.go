package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"friendly-chat/infrastructure/firebase"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

// BaseEmulatorSuite runs against the Firebase emulators and skips without them.
type BaseEmulatorSuite struct {
	suite.Suite
	Config Config
	Log    *slog.Logger
	App    *firebase.App
}

func (s *BaseEmulatorSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if !s.Config.Emulated() {
		s.T().Skip("Firebase emulators are not configured")
	}

	s.Log = logs.GetLoggerFromLevel(slog.LevelDebug)
	s.App, err = firebase.NewApp(context.Background(), s.Log, firebase.Config{
		ProjectID:     s.Config.ProjectID,
		StorageBucket: s.Config.StorageBucket,
		Emulated:      true,
	})
	s.Require().NoError(err)
}

func (s *BaseEmulatorSuite) TearDownSuite() {
	if s.App != nil {
		s.NoError(s.App.Close())
	}
}

// Step runs fn under a printed header with a bounded context.
func (s *BaseEmulatorSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	fn(ctx)
}

// SignInWithPassword exchanges credentials for an ID token on the auth emulator.
func (s *BaseEmulatorSuite) SignInWithPassword(ctx context.Context, email, password string) string {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	s.Require().NoError(err)

	url := fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:signInWithPassword?key=fake-api-key", s.Config.AuthEmulatorHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var payload struct {
		IDToken string `json:"idToken"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))
	s.Require().NotEmpty(payload.IDToken)
	return payload.IDToken
}
