package agent

import "github.com/DrewRidley/aiform/observability"

// Event types emitted during the agent loop.
const (
	EventRunStart       observability.EventType = "agent.run.start"
	EventIterationStart observability.EventType = "agent.iteration.start"
	EventToolCall       observability.EventType = "agent.tool.call"
	EventToolComplete   observability.EventType = "agent.tool.complete"
	EventResponse       observability.EventType = "agent.response"
	EventError          observability.EventType = "agent.error"
)
