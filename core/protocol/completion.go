package protocol

// ChatRequest is one request/response exchange with a chat-completion
// endpoint: the model identifier, the ordered conversation so far, and the
// tool definitions the model may invoke. Tools may be nil when the caller
// has none registered.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// ChatResponse is the model's reply to a ChatRequest. Exactly one of Content
// and ToolCalls is expected to be populated; a response with neither is a
// protocol violation the caller must treat as an error.
type ChatResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}
