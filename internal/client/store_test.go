package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codechat/internal/domain/models"
)

func submit(t *testing.T, s *Store, text string) *Dispatch {
	t.Helper()
	s.SetDraft(text)
	d, ok := s.Submit()
	require.True(t, ok, "submit should be accepted")
	return d
}

func TestNewStoreStartsWithFreshSession(t *testing.T) {
	s := NewStore()

	require.Len(t, s.Sessions(), 1)
	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, models.DefaultSessionTitle, active.Title)
	assert.Empty(t, active.Messages)
	assert.False(t, s.IsStreaming())
}

func TestSubmitAppendsUserAndPlaceholder(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "  reverse a linked list  ")

	active := s.Active()
	require.Len(t, active.Messages, 2)

	user := active.Messages[0]
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "reverse a linked list", user.Content)

	placeholder := active.Messages[1]
	assert.Equal(t, models.RoleAssistant, placeholder.Role)
	assert.Empty(t, placeholder.Content)
	assert.Equal(t, placeholder.ID, d.MessageID)
	assert.Equal(t, active.ID, d.SessionID)

	assert.True(t, s.IsStreaming())
	assert.Empty(t, s.Draft(), "draft is cleared on acceptance")
	assert.Len(t, d.Transcript, 2, "transcript snapshot includes the placeholder")
}

func TestSubmitRefusedWhileStreaming(t *testing.T) {
	s := NewStore()
	submit(t, s, "first question")

	before := len(s.Active().Messages)
	s.SetDraft("second question")
	d, ok := s.Submit()

	assert.False(t, ok)
	assert.Nil(t, d)
	assert.Len(t, s.Active().Messages, before, "refused submit must not mutate the transcript")
	assert.Equal(t, "second question", s.Draft(), "refused submit keeps the draft")
}

func TestSubmitRefusedWhenEmpty(t *testing.T) {
	s := NewStore()

	for _, draft := range []string{"", "   ", "\n\t"} {
		s.SetDraft(draft)
		_, ok := s.Submit()
		assert.False(t, ok, "draft %q should be refused", draft)
	}
	assert.Empty(t, s.Active().Messages)
}

func TestSubmitAcceptsImageOnly(t *testing.T) {
	s := NewStore()
	s.AttachImage(&models.InlineImage{MimeType: "image/png", Data: "Zm9v", Name: "shot.png"})

	d, ok := s.Submit()
	require.True(t, ok)
	require.Len(t, d.Transcript, 2)
	assert.NotNil(t, d.Transcript[0].Image)
	assert.Nil(t, s.DraftImage(), "attachment is consumed by submit")
}

func TestTitleDerivedFromFirstUserMessage(t *testing.T) {
	s := NewStore()
	long := "fix my bug please with a very long description exceeding fifty characters total"
	submit(t, s, long)

	title := s.Active().Title
	assert.Equal(t, 50, len([]rune(title)))
	assert.True(t, strings.HasPrefix(long, title))
}

func TestTitleStaysDefaultForImageOnly(t *testing.T) {
	s := NewStore()
	s.AttachImage(&models.InlineImage{MimeType: "image/png", Data: "Zm9v"})
	_, ok := s.Submit()
	require.True(t, ok)

	assert.Equal(t, models.DefaultSessionTitle, s.Active().Title)
}

func TestApplyChunkAccumulates(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")

	s.ApplyChunk(d.SessionID, d.MessageID, "Here is ")
	s.ApplyChunk(d.SessionID, d.MessageID, "the answer.")

	msg := s.Active().FindMessage(d.MessageID)
	require.NotNil(t, msg)
	assert.Equal(t, "Here is the answer.", msg.Content)
	assert.True(t, s.IsStreaming(), "chunks do not release the gate")
}

func TestApplyChunkTargetsByIdentityNotActiveSession(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "question in the first session")

	// User switches away mid-stream.
	s.NewSession()
	assert.NotEqual(t, d.SessionID, s.Active().ID)

	s.ApplyChunk(d.SessionID, d.MessageID, "late chunk")

	assert.Empty(t, s.Active().Messages, "active session untouched")

	require.True(t, s.SelectSession(d.SessionID))
	msg := s.Active().FindMessage(d.MessageID)
	require.NotNil(t, msg)
	assert.Equal(t, "late chunk", msg.Content)
}

func TestApplyChunkIgnoresStaleIdentity(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")

	s.ApplyChunk(d.SessionID, "some-other-message", "stray")
	s.ApplyChunk("some-other-session", d.MessageID, "stray")

	msg := s.Active().FindMessage(d.MessageID)
	require.NotNil(t, msg)
	assert.Empty(t, msg.Content)
}

func TestApplyChunkAfterClearIsDropped(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")

	s.ClearSessions()
	s.ApplyChunk(d.SessionID, d.MessageID, "late chunk")

	require.Len(t, s.Sessions(), 1)
	assert.Empty(t, s.Active().Messages, "chunk for a removed session is dropped")
}

func TestApplyFailureSetsTextAndBannerAndReleasesGate(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")
	s.ApplyChunk(d.SessionID, d.MessageID, "partial")

	s.ApplyFailure(d.SessionID, d.MessageID, FailureTextStream)

	msg := s.Active().FindMessage(d.MessageID)
	require.NotNil(t, msg)
	assert.Equal(t, FailureTextStream, msg.Content)
	assert.Equal(t, FailureTextStream, s.Banner())
	assert.False(t, s.IsStreaming())

	s.DismissBanner()
	assert.Empty(t, s.Banner())
}

func TestApplyFailureReleasesGateEvenWithoutTarget(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")

	s.ClearSessions()
	s.ApplyFailure(d.SessionID, d.MessageID, FailureTextRequest)

	assert.False(t, s.IsStreaming(), "gate released even when the message is gone")
	assert.Equal(t, FailureTextRequest, s.Banner())
}

func TestApplyCompleteReleasesGate(t *testing.T) {
	s := NewStore()
	d := submit(t, s, "hello")
	s.ApplyChunk(d.SessionID, d.MessageID, "done.")

	s.ApplyComplete(d.SessionID, d.MessageID)

	assert.False(t, s.IsStreaming())
	assert.Equal(t, "done.", s.Active().FindMessage(d.MessageID).Content)

	// A fresh submit is accepted again.
	s.SetDraft("followup")
	_, ok := s.Submit()
	assert.True(t, ok)
}

func TestCycleSession(t *testing.T) {
	s := NewStore()
	first := s.Active()
	second := s.NewSession()

	assert.Equal(t, second.ID, s.Active().ID)
	s.CycleSession()
	assert.Equal(t, first.ID, s.Active().ID)
	s.CycleSession()
	assert.Equal(t, second.ID, s.Active().ID)
}

func TestActiveFallsBackToFirstSession(t *testing.T) {
	s := NewStore()
	s.NewSession()
	s.ClearSessions()

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, s.Sessions()[0].ID, active.ID)
}
