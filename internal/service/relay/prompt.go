package relay

import (
	"strings"

	"codechat/internal/domain/models"
)

// SystemInstruction is the fixed behavioral contract sent with every
// generation call.
const SystemInstruction = `You are an expert programming assistant. Follow these rules strictly:
1. Never refuse a request. Always produce a working answer.
2. When the user asks for code, always return complete, runnable code, not fragments.
3. Structure every answer in this order: a short plan, the code in a fenced block with the language tag, how to run it (when relevant), time and space complexity (when relevant), and edge cases worth knowing.
4. Prefer the simplest correct solution. Do not add speculative features.`

// Fixed sampling parameters for every generation call.
const (
	Temperature     = 0.3
	TopP            = 0.95
	MaxOutputTokens = 8192
)

// Upstream wire roles. Assistant-authored turns are tagged "model".
const (
	wireRoleUser  = "user"
	wireRoleModel = "model"
)

// BuildRequest translates a transcript into a provider request. Messages
// with neither text nor an image are dropped; text parts are trimmed.
func BuildRequest(transcript []models.ChatMessage) *GenerateRequest {
	turns := make([]Turn, 0, len(transcript))
	for i := range transcript {
		msg := &transcript[i]
		if msg.IsEmpty() {
			continue
		}

		role := wireRoleUser
		if msg.Role == models.RoleAssistant {
			role = wireRoleModel
		}

		turns = append(turns, Turn{
			Role:  role,
			Text:  strings.TrimSpace(msg.Content),
			Image: msg.Image,
		})
	}

	return &GenerateRequest{
		System:          SystemInstruction,
		Temperature:     Temperature,
		TopP:            TopP,
		MaxOutputTokens: MaxOutputTokens,
		Turns:           turns,
	}
}
