package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_PublishReachesTopicMembersOnly(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry[string]()
	messages := make(chan string, 1)
	tokens := make(chan string, 1)

	registry.Subscribe("alice", "messages", messages)
	registry.Subscribe("bob", "fcmTokens", tokens)

	registry.Publish("messages", "doc-1")

	req.Equal("doc-1", <-messages)
	req.Empty(tokens)
}

func TestRegistry_KeepsLatestValue(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry[int]()
	sink := make(chan int, 1)
	registry.Subscribe("alice", "session", sink)

	registry.Publish("session", 1)
	registry.Publish("session", 2)
	registry.Publish("session", 3)

	req.Len(sink, 1)
	req.Equal(3, <-sink)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry[int]()
	sink := make(chan int, 1)
	registry.Subscribe("alice", "messages", sink)
	registry.Subscribe("bob", "messages", make(chan int, 1))
	req.Equal(2, registry.Subscribers("messages"))

	registry.Unsubscribe("alice", "messages")
	registry.Publish("messages", 42)

	req.Empty(sink)
	req.Equal(1, registry.Subscribers("messages"))

	registry.Unsubscribe("bob", "messages")
	req.Equal(0, registry.Subscribers("messages"))
}
