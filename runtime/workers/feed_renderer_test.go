package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"friendly-chat/domain"
	"friendly-chat/errors"
	"friendly-chat/feed"
	"friendly-chat/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func snapshot(texts ...string) []domain.StoredMessage {
	messages := make([]domain.StoredMessage, 0, len(texts))
	for i, text := range texts {
		messages = append(messages, domain.StoredMessage{
			ID:          fmt.Sprintf("m%d", i),
			ChatMessage: domain.ChatMessage{UID: "u1", Text: text},
		})
	}
	return messages
}

func TestFeedRenderer_RendersEverySnapshot(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockRecentMessagesLoader(ctrl)
	renderer := mocks.NewMockMessageRenderer(ctrl)
	recent := feed.New[[]domain.StoredMessage](context.Background(), 2)
	rendered := make(chan struct{}, 2)

	loader.EXPECT().LoadRecentMessages(gomock.Any()).Return(recent, nil).Times(1)
	gomock.InOrder(
		renderer.EXPECT().RenderMessages(snapshot("hello")).Do(func([]domain.StoredMessage) { rendered <- struct{}{} }),
		renderer.EXPECT().RenderMessages(snapshot("hi", "hello")).Do(func([]domain.StoredMessage) { rendered <- struct{}{} }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- NewFeedRenderer(logs.GetLoggerFromLevel(slog.LevelDebug), loader, renderer).Run(ctx) }()

	req.True(recent.Send(snapshot("hello")))
	req.True(recent.Send(snapshot("hi", "hello")))
	for i := 0; i < 2; i++ {
		select {
		case <-rendered:
		case <-time.After(time.Second):
			req.Fail("snapshot not rendered")
		}
	}

	cancel()
	req.NoError(<-result)
	req.Error(recent.Context().Err())
}

func TestFeedRenderer_FailsWhenFeedFails(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockRecentMessagesLoader(ctrl)
	renderer := mocks.NewMockMessageRenderer(ctrl)
	recent := feed.New[[]domain.StoredMessage](context.Background(), 1)
	boom := fmt.Errorf("listen failed")

	loader.EXPECT().LoadRecentMessages(gomock.Any()).Return(recent, nil).Times(1)
	renderer.EXPECT().RenderMessages(gomock.Any()).Times(0)

	recent.Finish(boom)
	err := NewFeedRenderer(logs.GetLoggerFromLevel(slog.LevelDebug), loader, renderer).Run(context.Background())
	req.ErrorIs(err, errors.ErrUpstream)
	req.ErrorIs(err, boom)
}

func TestFeedRenderer_FailsWhenLoadFails(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockRecentMessagesLoader(ctrl)
	renderer := mocks.NewMockMessageRenderer(ctrl)

	loader.EXPECT().LoadRecentMessages(gomock.Any()).Return(nil, errors.ErrUpstream).Times(1)

	err := NewFeedRenderer(logs.GetLoggerFromLevel(slog.LevelDebug), loader, renderer).Run(context.Background())
	req.ErrorIs(err, errors.ErrUpstream)
}
