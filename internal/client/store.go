package client

import (
	"strings"

	"codechat/internal/domain/models"
)

// Fixed failure strings. Every client-side failure path converges on one of
// these: it becomes the placeholder's content and the banner text.
const (
	FailureTextRequest = "Failed to reach the server. Please try again."
	FailureTextStream  = "Something went wrong while streaming the response."
)

// Store is the transcript reducer: every session, the active-session
// reference, the input draft and the streaming gate live here, mutated
// synchronously by one owner goroutine (the UI event loop). The only
// suspension boundary is "await next chunk", which arrives as an Event.
type Store struct {
	sessions []*models.ChatSession
	activeID string

	draft      string
	draftImage *models.InlineImage

	isStreaming bool
	banner      string

	// In-flight accumulation. Chunk application overwrites the placeholder
	// with the whole buffer each time, so a duplicated application cannot
	// double-apply text.
	buf             strings.Builder
	streamSessionID string
	streamMessageID string
}

// NewStore creates a store with one fresh session, matching app start.
func NewStore() *Store {
	s := &Store{}
	first := models.NewChatSession()
	s.sessions = append(s.sessions, first)
	s.activeID = first.ID
	return s
}

// Sessions returns the ordered session list.
func (s *Store) Sessions() []*models.ChatSession {
	return s.sessions
}

// Active returns the active session. The active reference is non-owning:
// if it points at a removed session, the first session substitutes.
func (s *Store) Active() *models.ChatSession {
	for _, sess := range s.sessions {
		if sess.ID == s.activeID {
			return sess
		}
	}
	if len(s.sessions) > 0 {
		return s.sessions[0]
	}
	return nil
}

func (s *Store) IsStreaming() bool { return s.isStreaming }
func (s *Store) Draft() string     { return s.draft }

func (s *Store) DraftImage() *models.InlineImage { return s.draftImage }

// Banner returns the dismissible error banner text, empty when none.
func (s *Store) Banner() string { return s.banner }

func (s *Store) SetDraft(text string) { s.draft = text }

func (s *Store) AttachImage(img *models.InlineImage) { s.draftImage = img }

func (s *Store) DismissBanner() { s.banner = "" }

// NewSession creates a session and makes it active. Starting a new session
// does not cancel an outstanding stream; its chunks keep landing in the old
// session by identity.
func (s *Store) NewSession() *models.ChatSession {
	sess := models.NewChatSession()
	s.sessions = append(s.sessions, sess)
	s.activeID = sess.ID
	return sess
}

// SelectSession makes the session with the given ID active.
func (s *Store) SelectSession(id string) bool {
	for _, sess := range s.sessions {
		if sess.ID == id {
			s.activeID = id
			return true
		}
	}
	return false
}

// CycleSession advances the active reference to the next session in order.
func (s *Store) CycleSession() {
	if len(s.sessions) < 2 {
		return
	}
	active := s.Active()
	for i, sess := range s.sessions {
		if sess.ID == active.ID {
			s.activeID = s.sessions[(i+1)%len(s.sessions)].ID
			return
		}
	}
}

// ClearSessions removes every session and starts over with a fresh one.
func (s *Store) ClearSessions() {
	fresh := models.NewChatSession()
	s.sessions = []*models.ChatSession{fresh}
	s.activeID = fresh.ID
}

// Dispatch describes one accepted submission: where the streamed response
// belongs and the full transcript to send.
type Dispatch struct {
	SessionID  string
	MessageID  string
	Transcript []models.ChatMessage
}

// Submit is the single admission-control point. It refuses while a stream
// is in flight, without an active session, or with nothing to send, so no
// concurrent submissions against one session are possible by construction.
// On acceptance it clears the draft, raises the gate, appends the user
// message and the empty assistant placeholder, and returns the dispatch.
func (s *Store) Submit() (*Dispatch, bool) {
	if s.isStreaming {
		return nil, false
	}
	active := s.Active()
	if active == nil {
		return nil, false
	}

	text := strings.TrimSpace(s.draft)
	image := s.draftImage
	if text == "" && image == nil {
		return nil, false
	}

	s.draft = ""
	s.draftImage = nil
	s.banner = ""
	s.isStreaming = true

	user := models.NewUserMessage(text, image)
	placeholder := models.NewAssistantPlaceholder()
	active.Append(user, placeholder)

	s.buf.Reset()
	s.streamSessionID = active.ID
	s.streamMessageID = placeholder.ID

	// Snapshot the transcript, placeholder included (its content is empty
	// at this point and stays out of the upstream prompt).
	transcript := make([]models.ChatMessage, len(active.Messages))
	for i, m := range active.Messages {
		transcript[i] = *m
	}

	return &Dispatch{
		SessionID:  active.ID,
		MessageID:  placeholder.ID,
		Transcript: transcript,
	}, true
}

// ApplyChunk folds one decoded chunk into the in-flight placeholder. The
// target is located by session and message identity, never by "currently
// active session", so chunks land correctly after the user switches away.
func (s *Store) ApplyChunk(sessionID, messageID, text string) {
	if sessionID != s.streamSessionID || messageID != s.streamMessageID {
		return
	}
	msg := s.findMessage(sessionID, messageID)
	if msg == nil {
		return
	}
	s.buf.WriteString(text)
	msg.Content = s.buf.String()
}

// ApplyFailure ends the stream with the fixed failure text in both the
// placeholder and the banner. The gate is released on this path.
func (s *Store) ApplyFailure(sessionID, messageID, text string) {
	if msg := s.findMessage(sessionID, messageID); msg != nil {
		msg.Content = text
	}
	s.banner = text
	s.isStreaming = false
}

// ApplyComplete ends the stream, leaving the accumulated content in place.
// The gate is released on this path.
func (s *Store) ApplyComplete(sessionID, messageID string) {
	s.isStreaming = false
}

func (s *Store) findMessage(sessionID, messageID string) *models.ChatMessage {
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			return sess.FindMessage(messageID)
		}
	}
	return nil
}
