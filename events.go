package deckchat

import "encoding/json"

// EventType discriminates the agent protocol events carried in the SSE data
// payloads (AG-UI style).
type EventType string

const (
	EventRunStarted         EventType = "RUN_STARTED"
	EventRunFinished        EventType = "RUN_FINISHED"
	EventRunError           EventType = "RUN_ERROR"
	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"
	EventToolCallStart      EventType = "TOOL_CALL_START"
	EventToolCallArgs       EventType = "TOOL_CALL_ARGS"
	EventToolCallEnd        EventType = "TOOL_CALL_END"
	EventToolCallResult     EventType = "TOOL_CALL_RESULT"
	EventStateSnapshot      EventType = "STATE_SNAPSHOT"
	EventCustom             EventType = "CUSTOM"
)

// Custom event names the client reacts to.
const (
	CustomEventThinking   = "thinking"
	CustomEventDeckAction = "deck_action"
)

// AgentEvent is the decoded envelope of one protocol event. Only the fields
// relevant to the event's type are populated; the rest stay zero.
type AgentEvent struct {
	Type EventType `json:"type"`

	// Run lifecycle
	ThreadID string `json:"threadId,omitempty"`
	RunID    string `json:"runId,omitempty"`
	Message  string `json:"message,omitempty"`

	// Text message events
	MessageID string `json:"messageId,omitempty"`
	Delta     string `json:"delta,omitempty"`
	Role      string `json:"role,omitempty"`

	// Tool call events
	ToolCallID      string `json:"toolCallId,omitempty"`
	ToolCallName    string `json:"toolCallName,omitempty"`
	ParentMessageID string `json:"parentMessageId,omitempty"`
	Content         string `json:"content,omitempty"`

	// Custom and snapshot events
	Name     string          `json:"name,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}

// ParseAgentEvent decodes a single SSE data payload into an AgentEvent.
func ParseAgentEvent(data string) (*AgentEvent, error) {
	var event AgentEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, NewProtocolError("malformed event payload: " + err.Error())
	}
	return &event, nil
}

// ThinkingPayload is the value of a CUSTOM "thinking" event.
type ThinkingPayload struct {
	Thoughts []string `json:"thoughts"`
}
