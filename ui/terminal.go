// Package ui is the terminal front end of the chat.
// Output is serialized, input lines are read by a single goroutine.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"friendly-chat/domain"

	"github.com/gookit/color"
)

const timeLayout = "15:04:05"

type Terminal struct {
	out   io.Writer
	lines chan string

	mu        sync.Mutex
	view      domain.View
	listeners []func(domain.View)
}

// NewTerminal starts reading lines from in. Updates is closed at end of input.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{out: out, lines: make(chan string), view: domain.ViewLogin}
	go t.read(in)
	return t
}

func (t *Terminal) read(in io.Reader) {
	defer close(t.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		t.lines <- scanner.Text()
	}
}

// ReadLine returns the next input line. io.EOF means the input is closed.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// Ask prints question and returns the answer line.
func (t *Terminal) Ask(ctx context.Context, question string) (string, error) {
	t.print(color.Bold.Sprint(question) + " ")
	return t.ReadLine(ctx)
}

// PromptPassword asks for local account credentials.
// The password is echoed, the terminal is not put in raw mode.
func (t *Terminal) PromptPassword(ctx context.Context) (string, string, error) {
	email, err := t.Ask(ctx, "E-mail:")
	if err != nil {
		return "", "", err
	}
	password, err := t.Ask(ctx, "Password:")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// PromptIDToken asks for an ID token issued by a Firebase identity provider.
func (t *Terminal) PromptIDToken(ctx context.Context) (string, error) {
	return t.Ask(ctx, "Firebase ID token:")
}

func (t *Terminal) RequestPermission(ctx context.Context) (domain.Permission, error) {
	answer, err := t.Ask(ctx, "Allow notifications? [y/n]")
	if err != nil {
		return domain.PermissionDefault, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return domain.PermissionGranted, nil
	case "n", "no":
		return domain.PermissionDenied, nil
	default:
		return domain.PermissionDefault, nil
	}
}

// OnNavigate registers fn, called after each navigation with the new view.
func (t *Terminal) OnNavigate(fn func(domain.View)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Terminal) Navigate(view domain.View) {
	t.mu.Lock()
	t.view = view
	listeners := append([]func(domain.View){}, t.listeners...)
	t.mu.Unlock()

	switch view {
	case domain.ViewChat:
		t.print(color.Green.Sprint("Welcome to the chat. Type a message, /image <path>, /notify, /logout or /quit.") + "\n")
	case domain.ViewLogin:
		t.print(color.Yellow.Sprint("Signed out. Type login or quit.") + "\n")
	}
	for _, fn := range listeners {
		fn(view)
	}
}

func (t *Terminal) View() domain.View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// RenderMessages prints the snapshot oldest first, the newest message last.
func (t *Terminal) RenderMessages(messages []domain.StoredMessage) {
	var b strings.Builder
	b.WriteString(color.Gray.Sprint("──── recent messages ────") + "\n")
	for i := len(messages) - 1; i >= 0; i-- {
		b.WriteString(formatMessage(messages[i]))
		b.WriteByte('\n')
	}
	t.print(b.String())
}

func formatMessage(message domain.StoredMessage) string {
	at := "--:--:--"
	if !message.Timestamp.IsZero() {
		at = message.Timestamp.Local().Format(timeLayout)
	}
	name := message.Name
	if name == "" {
		name = "anonymous"
	}
	content := message.Text
	if message.IsImage() {
		content = color.Magenta.Sprint("[image] ") + message.ImageURL
	}
	return fmt.Sprintf("%s %s %s", color.Gray.Sprint(at), color.Cyan.Sprint(name+":"), content)
}

func (t *Terminal) Info(format string, args ...any) {
	t.print(fmt.Sprintf(format, args...) + "\n")
}

func (t *Terminal) Error(format string, args ...any) {
	t.print(color.Red.Sprintf(format, args...) + "\n")
}

func (t *Terminal) print(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, s)
}
