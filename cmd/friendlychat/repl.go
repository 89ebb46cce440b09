package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"friendly-chat/auth"
	"friendly-chat/domain"
	"friendly-chat/errors"
	"friendly-chat/runtime/workers"
	"friendly-chat/services"
	"friendly-chat/ui"
)

// repl dispatches input lines according to the current view.
func repl(ctx context.Context, chat services.IChatService, term *ui.Terminal) error {
	for {
		line, err := term.ReadLine(ctx)
		if goerrors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		if term.View() == domain.ViewLogin {
			switch line {
			case "":
			case "login":
				chat.Login(ctx)
				if chat.CurrentSession() == nil {
					term.Error("Sign-in failed.")
				}
			case "quit", "/quit":
				return nil
			default:
				term.Info("Type login or quit.")
			}
			continue
		}

		command, argument, _ := strings.Cut(line, " ")
		switch command {
		case "":
		case "/quit":
			return nil
		case "/logout":
			chat.Logout(ctx)
		case "/notify":
			chat.RequestNotificationPermission(ctx)
		case "/image":
			sendImage(ctx, chat, term, strings.TrimSpace(argument))
		default:
			if _, err := chat.SendTextMessage(ctx, line); err != nil {
				term.Error("Message not sent: %v", err)
			}
		}
	}
}

func sendImage(ctx context.Context, chat services.IChatService, term *ui.Terminal, path string) {
	if path == "" {
		term.Error("Usage: /image <path>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		term.Error("Cannot read %s: %v", path, err)
		return
	}
	ref, err := chat.SendImageMessage(ctx, domain.ImageFile{Name: path, Data: data})
	switch {
	case err != nil:
		term.Error("Image not sent: %v", err)
	case ref.ID == "":
		term.Error("Image upload failed.")
	}
}

// register creates a local account.
func register(ctx context.Context, p platform, term *ui.Terminal) error {
	if p.accounts == nil {
		return fmt.Errorf("accounts are managed by the identity provider on this backend")
	}
	answers := make([]string, 0, 4)
	for _, question := range []string{"E-mail:", "Password:", "Display name:", "Photo URL (optional):"} {
		answer, err := term.Ask(ctx, question)
		if err != nil {
			return err
		}
		answers = append(answers, answer)
	}

	_, err := p.accounts.Register(auth.RegisterRequest{
		Email:       answers[0],
		Password:    answers[1],
		DisplayName: answers[2],
		PhotoURL:    answers[3],
	})
	if goerrors.Is(err, errors.ErrUserAlreadyExists) {
		term.Error("An account already exists for %s.", answers[0])
		return nil
	}
	if err != nil {
		return err
	}
	term.Info("Account created for %s, run friendlychat and type login.", answers[0])
	return nil
}

// feedController runs the message feed renderer while the chat view is shown.
type feedController struct {
	ctx             context.Context
	log             *slog.Logger
	restartInterval time.Duration
	chat            services.IChatService
	term            *ui.Terminal

	mu         sync.Mutex
	supervisor *workers.Supervisor
	done       chan struct{}
}

func newFeedController(ctx context.Context, log *slog.Logger, restartInterval time.Duration,
	chat services.IChatService, term *ui.Terminal) *feedController {
	return &feedController{ctx: ctx, log: log, restartInterval: restartInterval, chat: chat, term: term}
}

func (c *feedController) start() {
	c.stop()
	c.mu.Lock()
	defer c.mu.Unlock()

	supervisor := workers.NewSupervisor(c.log, c.restartInterval)
	supervisor.Add(workers.NewFeedRenderer(c.log, c.chat, c.term))
	done := make(chan struct{})
	go func() {
		defer close(done)
		supervisor.Run(c.ctx)
	}()
	c.supervisor, c.done = supervisor, done
}

func (c *feedController) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.supervisor == nil {
		return
	}
	c.supervisor.Stop()
	<-c.done
	c.supervisor, c.done = nil, nil
}
