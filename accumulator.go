package deckchat

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// TurnAccumulator reconstructs the visible state of one in-flight turn from
// the incremental event stream: the streaming assistant text, the current
// thinking thoughts, the current tool call with its partially received JSON
// arguments, and the activity log. None of it is persisted; the session folds
// it into a finalized message when the turn ends.
type TurnAccumulator struct {
	mu       sync.Mutex
	text     string
	thinking []string
	toolUse  *ToolUse
	rawArgs  string
	activity []ActivityEntry
}

// NewTurnAccumulator creates an empty accumulator.
func NewTurnAccumulator() *TurnAccumulator {
	return &TurnAccumulator{}
}

// Reset clears all scratch state, including the activity log, at the start
// of a new turn.
func (a *TurnAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = ""
	a.thinking = nil
	a.toolUse = nil
	a.rawArgs = ""
	a.activity = nil
}

// FinishTurn clears the streaming indicators when a turn ends. The activity
// log stays visible until the next send resets it.
func (a *TurnAccumulator) FinishTurn() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text = ""
	a.thinking = nil
	a.toolUse = nil
	a.rawArgs = ""
	a.finishActiveEntries()
}

// AddTextDelta appends a text delta to the running assistant text.
func (a *TurnAccumulator) AddTextDelta(delta string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.text += delta
}

// StreamingText returns the assistant text accumulated so far.
func (a *TurnAccumulator) StreamingText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.text
}

// SetThinking replaces the current thought list.
func (a *TurnAccumulator) SetThinking(thoughts []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thinking = thoughts
}

// Thinking returns the current thought list.
func (a *TurnAccumulator) Thinking() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.thinking...)
}

// StartToolCall opens a new tool use. Any previously active activity entry is
// marked done, and assistant text accumulated so far is discarded: a tool
// invocation supersedes the preamble the model streamed before deciding to
// call it, which is not shown to the user.
func (a *TurnAccumulator) StartToolCall(toolCallID, toolName, label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finishActiveEntries()
	a.text = ""
	a.toolUse = &ToolUse{Tool: toolName}
	a.rawArgs = ""
	if toolCallID == "" {
		toolCallID = uuid.NewString()
	}
	a.activity = append(a.activity, ActivityEntry{
		ID:     toolCallID,
		Label:  label,
		Status: ActivityActive,
	})
}

// AddToolArgsDelta appends an argument-text delta and re-parses the buffer.
// A buffer that is not yet valid JSON is expected mid-stream; the last
// successfully parsed arguments are kept until the buffer parses again.
func (a *TurnAccumulator) AddToolArgsDelta(delta string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rawArgs += delta
	if a.toolUse == nil {
		return
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(a.rawArgs), &args); err == nil {
		a.toolUse.Args = args
	}
}

// FinishToolCall clears the active tool use and marks its activity entry done.
func (a *TurnAccumulator) FinishToolCall() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.toolUse = nil
	a.finishActiveEntries()
}

// CurrentToolUse returns a copy of the in-flight tool call, or nil.
func (a *TurnAccumulator) CurrentToolUse() *ToolUse {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.toolUse == nil {
		return nil
	}
	toolUse := *a.toolUse
	return &toolUse
}

// ActivityLog returns a copy of the activity entries for this turn.
func (a *TurnAccumulator) ActivityLog() []ActivityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ActivityEntry(nil), a.activity...)
}

// finishActiveEntries keeps the invariant that at most one entry is active.
func (a *TurnAccumulator) finishActiveEntries() {
	for i := range a.activity {
		if a.activity[i].Status == ActivityActive {
			a.activity[i].Status = ActivityDone
		}
	}
}
