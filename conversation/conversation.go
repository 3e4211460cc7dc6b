// Package conversation holds the ordered message log that drives one agent
// loop execution.
package conversation

import (
	"slices"

	"github.com/google/uuid"

	"github.com/DrewRidley/aiform/core/protocol"
)

// Conversation is an append-only sequence of messages with a unique UUIDv7
// identifier. It performs no I/O and holds no lock: a conversation is owned
// by exactly one in-flight loop execution at a time, and callers sharing one
// across goroutines must serialize access themselves.
type Conversation struct {
	id       string
	messages []protocol.Message
}

// New creates an empty conversation.
func New() *Conversation {
	return &Conversation{id: uuid.Must(uuid.NewV7()).String()}
}

// WithSystem creates a conversation seeded with a single system message.
func WithSystem(prompt string) *Conversation {
	c := New()
	c.messages = append(c.messages, protocol.NewMessage(protocol.RoleSystem, prompt))
	return c
}

// ID returns the unique conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// AddUser appends a user message.
func (c *Conversation) AddUser(content string) {
	c.messages = append(c.messages, protocol.NewMessage(protocol.RoleUser, content))
}

// AddAssistant appends an assistant message carrying only text.
func (c *Conversation) AddAssistant(content string) {
	c.messages = append(c.messages, protocol.NewMessage(protocol.RoleAssistant, content))
}

// AddAssistantToolCalls appends an assistant message recording the model's
// tool-call requests. Content may be empty.
func (c *Conversation) AddAssistantToolCalls(content string, calls []protocol.ToolCall) {
	c.messages = append(c.messages, protocol.Message{
		Role:      protocol.RoleAssistant,
		Content:   content,
		ToolCalls: slices.Clone(calls),
	})
}

// AddToolResult appends a tool result message correlated to the originating
// tool-call id.
func (c *Conversation) AddToolResult(callID, content string) {
	c.messages = append(c.messages, protocol.Message{
		Role:       protocol.RoleTool,
		Content:    content,
		ToolCallID: callID,
	})
}

// Messages returns a copy of the conversation history. Mutating the
// returned slice or its tool calls does not affect the conversation.
func (c *Conversation) Messages() []protocol.Message {
	copied := make([]protocol.Message, len(c.messages))
	for i, msg := range c.messages {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	return copied
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Clear removes all messages, keeping the conversation id. It is the only
// truncation operation; messages are never removed or reordered otherwise.
func (c *Conversation) Clear() {
	c.messages = nil
}
