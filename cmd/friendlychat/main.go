package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"friendly-chat/domain"
	"friendly-chat/internal"
	"friendly-chat/moderation"
	"friendly-chat/repositories"
	"friendly-chat/services"
	"friendly-chat/ui"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the chat and drives the terminal until quit, end of input or a signal.
// Returning instead of exiting lets every deferred Close run.
func run(args []string) error {
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := ui.NewTerminal(os.Stdin, os.Stdout)

	p, err := openPlatform(ctx, log, config, term)
	if err != nil {
		return err
	}
	defer p.close()

	if len(args) > 0 && args[0] == "register" {
		return register(ctx, p, term)
	}

	var moderator *moderation.Moderator
	if words := config.ModerationWords(); len(words) > 0 {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		if moderator, err = moderation.NewModerator(words, replacement, log); err != nil {
			return fmt.Errorf("moderator: %w", err)
		}
	}

	chat := services.NewChatService(log, services.Collaborators{
		Sessions:     p.sessions,
		Messages:     repositories.NewMessageRepository(p.store, log),
		DeviceTokens: repositories.NewDeviceTokenRepository(p.store),
		Blobs:        p.blobs,
		Push:         p.push,
		Permissions:  term,
		Navigator:    term,
		Moderator:    moderator,
	})
	defer chat.Close()

	renderer := newFeedController(ctx, log, config.RestartInterval, chat, term)
	defer renderer.stop()
	term.OnNavigate(func(view domain.View) {
		if view == domain.ViewChat {
			renderer.start()
			return
		}
		renderer.stop()
	})

	log.Info("Friendly chat started", "backend", config.Backend)
	if session := chat.CurrentSession(); session != nil {
		term.Info("Signed in as %s.", session.DisplayName)
		term.Navigate(domain.ViewChat)
	} else {
		term.Info("Type login or quit.")
	}

	return repl(ctx, chat, term)
}
