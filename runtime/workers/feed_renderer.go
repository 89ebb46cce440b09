package workers

import (
	"context"
	"fmt"
	"log/slog"

	"friendly-chat/contract"
	"friendly-chat/errors"
)

// FeedRenderer renders each snapshot of the recent messages feed.
// It fails when the feed ends on its own so that its supervisor resubscribes.
type FeedRenderer struct {
	log      *slog.Logger
	loader   contract.RecentMessagesLoader
	renderer contract.MessageRenderer
}

func NewFeedRenderer(log *slog.Logger, loader contract.RecentMessagesLoader, renderer contract.MessageRenderer) *FeedRenderer {
	return &FeedRenderer{log: log, loader: loader, renderer: renderer}
}

func (w *FeedRenderer) Run(ctx context.Context) error {
	recent, err := w.loader.LoadRecentMessages(ctx)
	if err != nil {
		return err
	}
	defer recent.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case messages, ok := <-recent.Updates():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				if err := recent.Err(); err != nil {
					return fmt.Errorf("%w: %w", errors.ErrUpstream, err)
				}
				return fmt.Errorf("%w: message feed ended", errors.ErrUpstream)
			}
			w.log.Debug("Rendering messages", "count", len(messages))
			w.renderer.RenderMessages(messages)
		}
	}
}
