// Package domain contains core concepts of the chat client.
// This file defines chat messages and their invariant.
// Messages are immutable once persisted.
package domain

import (
	"fmt"
	"time"

	"friendly-chat/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ChatMessage carries either a text or an image reference, never both.
// Timestamp stays zero until the document store assigns it.
type ChatMessage struct {
	Name          string
	ProfilePicURL string
	UID           string `validate:"required"`
	Text          string `validate:"required_without=ImageURL,excluded_with=ImageURL"`
	ImageURL      string `validate:"required_without=Text,excluded_with=Text"`
	Timestamp     time.Time
}

// StoredMessage is a ChatMessage read back with its document identifier.
type StoredMessage struct {
	ID string
	ChatMessage
}

// NewChatMessage builds a message authored by the given session.
func NewChatMessage(session Session, text, imageURL string) (ChatMessage, error) {
	message := ChatMessage{
		Name:          session.DisplayName,
		ProfilePicURL: session.PhotoURL,
		UID:           session.UID,
		Text:          text,
		ImageURL:      imageURL,
	}
	if err := message.Validate(); err != nil {
		return ChatMessage{}, err
	}
	return message, nil
}

func (m ChatMessage) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedMessage, err)
	}
	return nil
}

func (m ChatMessage) IsImage() bool {
	return m.ImageURL != ""
}
