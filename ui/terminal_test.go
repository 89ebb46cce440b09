package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"friendly-chat/domain"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.Disable()
	m.Run()
}

// syncBuffer is written by the terminal and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestTerminal_PromptPassword(t *testing.T) {
	req := require.New(t)
	out := &syncBuffer{}
	term := NewTerminal(strings.NewReader("ann@example.com\n  Secret123!  \n"), out)

	email, password, err := term.PromptPassword(context.Background())
	req.NoError(err)
	req.Equal("ann@example.com", email)
	req.Equal("Secret123!", password)
	req.Contains(out.String(), "E-mail:")
	req.Contains(out.String(), "Password:")

	_, err = term.ReadLine(context.Background())
	req.ErrorIs(err, io.EOF)
}

func TestTerminal_ReadLineHonoursContext(t *testing.T) {
	req := require.New(t)
	reader, writer := io.Pipe()
	defer writer.Close()
	term := NewTerminal(reader, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := term.ReadLine(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestTerminal_RequestPermission(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.Permission
	}{
		{"y\n", domain.PermissionGranted},
		{"YES\n", domain.PermissionGranted},
		{"n\n", domain.PermissionDenied},
		{"maybe\n", domain.PermissionDefault},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			term := NewTerminal(strings.NewReader(tt.input), io.Discard)
			permission, err := term.RequestPermission(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.expected, permission)
		})
	}
}

func TestTerminal_NavigateNotifiesListeners(t *testing.T) {
	req := require.New(t)
	term := NewTerminal(strings.NewReader(""), io.Discard)
	var views []domain.View
	term.OnNavigate(func(view domain.View) { views = append(views, view) })

	req.Equal(domain.ViewLogin, term.View())
	term.Navigate(domain.ViewChat)
	req.Equal(domain.ViewChat, term.View())
	term.Navigate(domain.ViewLogin)
	req.Equal([]domain.View{domain.ViewChat, domain.ViewLogin}, views)
}

func TestTerminal_RenderMessagesOldestFirst(t *testing.T) {
	req := require.New(t)
	out := &syncBuffer{}
	term := NewTerminal(strings.NewReader(""), out)
	at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local)

	term.RenderMessages([]domain.StoredMessage{
		{ID: "m2", ChatMessage: domain.ChatMessage{Name: "Bob", UID: "u2", ImageURL: "https://cdn/cat.png", Timestamp: at.Add(time.Minute)}},
		{ID: "m1", ChatMessage: domain.ChatMessage{Name: "Ann", UID: "u1", Text: "hello", Timestamp: at}},
	})

	rendered := out.String()
	req.Contains(rendered, "10:00:00 Ann: hello")
	req.Contains(rendered, "10:01:00 Bob: [image] https://cdn/cat.png")
	req.Less(strings.Index(rendered, "Ann:"), strings.Index(rendered, "Bob:"))
}
