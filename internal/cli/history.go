package cli

import (
	"strings"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultHistoryMaxMessages = 30
	defaultHistoryMaxTokens   = 6000

	roleTool = "tool"
)

// SessionHistory is the chat transcript of the REPL assistant. It keeps the
// system prompt and drops the oldest turns once the message or token limit
// is exceeded. A tool result never outlives the assistant message that
// requested it.
type SessionHistory struct {
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxTokens   int
	logger      *zap.Logger
}

func NewSessionHistory(maxMessages, maxTokens int, logger *zap.Logger) *SessionHistory {
	if maxMessages <= 0 {
		maxMessages = defaultHistoryMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultHistoryMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHistory{
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

func (h *SessionHistory) Append(messages ...openrouter.ChatCompletionMessage) {
	h.messages = append(h.messages, messages...)
	h.enforceLimits()
}

func (h *SessionHistory) GetMessages() []openrouter.ChatCompletionMessage {
	if len(h.messages) == 0 {
		return nil
	}
	out := make([]openrouter.ChatCompletionMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Reset empties the transcript and starts over with a new system prompt.
func (h *SessionHistory) Reset(systemPrompt string) {
	h.messages = nil
	if systemPrompt != "" {
		h.messages = append(h.messages, openrouter.SystemMessage(systemPrompt))
	}
}

// SetSystemPrompt replaces the leading system message, e.g. after the
// selected period changed.
func (h *SessionHistory) SetSystemPrompt(prompt string) {
	if len(h.messages) > 0 && h.messages[0].Role == openrouter.ChatMessageRoleSystem {
		h.messages[0] = openrouter.SystemMessage(prompt)
		return
	}
	h.messages = append([]openrouter.ChatCompletionMessage{openrouter.SystemMessage(prompt)}, h.messages...)
	h.enforceLimits()
}

func (h *SessionHistory) TokenCount() int {
	return estimateTokens(h.messages)
}

func (h *SessionHistory) enforceLimits() {
	trimmed := false
	if h.maxMessages > 0 && len(h.messages) > h.maxMessages {
		h.messages = trimByCount(h.messages, h.maxMessages)
		trimmed = true
	}

	if h.maxTokens > 0 {
		for len(h.messages) > 1 && estimateTokens(h.messages) > h.maxTokens {
			before := len(h.messages)
			h.messages = trimOldestNonSystem(h.messages)
			trimmed = true
			if len(h.messages) == before {
				break
			}
		}
	}

	if trimmed {
		h.logger.Info("session history trimmed",
			zap.Int("messages", len(h.messages)),
			zap.Int("tokens", estimateTokens(h.messages)),
		)
	}
}

func hasSystem(messages []openrouter.ChatCompletionMessage) bool {
	return len(messages) > 0 && messages[0].Role == openrouter.ChatMessageRoleSystem
}

func trimByCount(messages []openrouter.ChatCompletionMessage, max int) []openrouter.ChatCompletionMessage {
	if len(messages) <= max {
		return messages
	}
	if len(messages) == 0 || max <= 0 {
		return nil
	}
	if hasSystem(messages) {
		keep := max - 1
		if keep <= 0 {
			return messages[:1]
		}
		trimmed := make([]openrouter.ChatCompletionMessage, 0, max)
		trimmed = append(trimmed, messages[0])
		trimmed = append(trimmed, messages[len(messages)-keep:]...)
		return dropOrphanTools(trimmed)
	}
	return dropOrphanTools(messages[len(messages)-max:])
}

// trimOldestNonSystem drops the oldest turn: one message plus the tool
// results that answered it.
func trimOldestNonSystem(messages []openrouter.ChatCompletionMessage) []openrouter.ChatCompletionMessage {
	if len(messages) == 0 {
		return nil
	}
	if hasSystem(messages) {
		if len(messages) <= 1 {
			return messages
		}
		rest := dropOrphanTools(messages[2:])
		out := make([]openrouter.ChatCompletionMessage, 0, 1+len(rest))
		out = append(out, messages[0])
		return append(out, rest...)
	}
	return dropOrphanTools(messages[1:])
}

// dropOrphanTools removes tool results left at the head of the transcript
// (after the system prompt) once their assistant message is gone.
func dropOrphanTools(messages []openrouter.ChatCompletionMessage) []openrouter.ChatCompletionMessage {
	start := 0
	if hasSystem(messages) {
		start = 1
	}
	end := start
	for end < len(messages) && messages[end].Role == roleTool {
		end++
	}
	if end == start {
		return messages
	}
	out := make([]openrouter.ChatCompletionMessage, 0, len(messages)-(end-start))
	out = append(out, messages[:start]...)
	return append(out, messages[end:]...)
}

func estimateTokens(messages []openrouter.ChatCompletionMessage) int {
	total := 0
	for _, msg := range messages {
		total += estimateTokensForMessage(msg)
	}
	return total
}

// estimateTokensForMessage counts words of text content and roughly four
// characters per token of tool-call arguments.
func estimateTokensForMessage(message openrouter.ChatCompletionMessage) int {
	total := 0
	if message.Content.Text != "" {
		total += len(strings.Fields(message.Content.Text))
	}
	if message.Content.Text == "" && len(message.Content.Multi) > 0 {
		for _, part := range message.Content.Multi {
			if part.Text != "" {
				total += len(strings.Fields(part.Text))
			}
		}
	}
	for _, call := range message.ToolCalls {
		total += (len(call.Function.Arguments) + 3) / 4
	}
	return total
}
