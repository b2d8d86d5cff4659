package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// InlineImage is a base64-encoded image attached to a message.
type InlineImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
	Name     string `json:"name,omitempty"`
}

// ChatMessage is a single entry in a conversation transcript. Messages are
// immutable once rendered, except the Content of the in-flight assistant
// message, which is overwritten in place while its response streams.
type ChatMessage struct {
	ID      string       `json:"id"`
	Role    Role         `json:"role"`
	Content string       `json:"content"`
	Image   *InlineImage `json:"image,omitempty"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string, image *InlineImage) *ChatMessage {
	return &ChatMessage{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: content,
		Image:   image,
	}
}

// NewAssistantPlaceholder creates the empty assistant message that streamed
// content accumulates into.
func NewAssistantPlaceholder() *ChatMessage {
	return &ChatMessage{
		ID:   uuid.NewString(),
		Role: RoleAssistant,
	}
}

// IsEmpty reports whether the message carries neither text nor an image.
// Empty messages are dropped before transcript translation.
func (m *ChatMessage) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && m.Image == nil
}

// DefaultSessionTitle is the title of a session before its first user message.
const DefaultSessionTitle = "New Chat"

// TitleMaxRunes bounds derived session titles.
const TitleMaxRunes = 50

// ChatSession is one independent conversation thread. Sessions live for the
// process lifetime only; there is no persistence.
type ChatSession struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Messages  []*ChatMessage `json:"messages"`
}

// NewChatSession creates an empty session with a generated ID.
func NewChatSession() *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        uuid.NewString(),
		Title:     DefaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RefreshTitle recomputes the session title from the first user message.
// Called whenever the message list changes.
func (s *ChatSession) RefreshTitle() {
	for _, m := range s.Messages {
		if m.Role != RoleUser {
			continue
		}
		if t := DeriveTitle(m.Content); t != "" {
			s.Title = t
			return
		}
		break
	}
	s.Title = DefaultSessionTitle
}

// DeriveTitle trims the text and truncates it to TitleMaxRunes characters.
// Rune-aware so a multi-byte character is never split.
func DeriveTitle(text string) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) > TitleMaxRunes {
		return string(runes[:TitleMaxRunes])
	}
	return trimmed
}

// Append adds messages to the session and recomputes the derived title.
// Message order is append-only; nothing is ever reordered or inserted.
func (s *ChatSession) Append(msgs ...*ChatMessage) {
	s.Messages = append(s.Messages, msgs...)
	s.UpdatedAt = time.Now()
	s.RefreshTitle()
}

// FindMessage returns the message with the given ID, or nil. Streaming
// updates locate their placeholder by identity, never by position.
func (s *ChatSession) FindMessage(id string) *ChatMessage {
	for _, m := range s.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}
