package deckchat

import (
	"context"
	"encoding/json"
	"log/slog"
)

// toolLabels maps tool ids to the human-readable labels shown in the
// activity log. Unmapped ids fall back to the raw id.
var toolLabels = map[string]string{
	"query_data":       "Looking things up",
	"search_cards":     "Searching cards",
	"get_deck_info":    "Loading deck",
	"validate_deck":    "Validating deck",
	"search_knowledge": "Searching rules",
	"calculate_stats":  "Calculating stats",
	"modify_deck":      "Updating deck",
	"response":         "Composing response",
}

// ToolLabel returns the display label for a tool id.
func ToolLabel(tool string) string {
	if label, ok := toolLabels[tool]; ok {
		return label
	}
	return tool
}

// DeckApplier is the capability the dispatcher needs to relay agent-issued
// deck actions. *DeckBuilder satisfies it; tests can substitute their own.
type DeckApplier interface {
	Loaded() bool
	Load(deck Deck)
	Apply(action DeckAction)
}

// DeckFetcher fetches a persisted deck so an agent action can start from the
// saved state when nothing is loaded locally.
type DeckFetcher interface {
	GetDeck(ctx context.Context, id string) (*Deck, error)
}

// EventDispatcher routes decoded agent events into the turn accumulator and
// the deck builder. One dispatcher serves one turn.
type EventDispatcher struct {
	acc    *TurnAccumulator
	deck   DeckApplier
	decks  DeckFetcher
	deckID string
	logger *slog.Logger
}

// NewEventDispatcher creates a dispatcher for a turn. deck, decks, and deckID
// may be zero when the turn is not bound to a deck context.
func NewEventDispatcher(acc *TurnAccumulator, deck DeckApplier, decks DeckFetcher, deckID string, logger *slog.Logger) *EventDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventDispatcher{
		acc:    acc,
		deck:   deck,
		decks:  decks,
		deckID: deckID,
		logger: logger,
	}
}

// DispatchLine decodes one SSE data payload and dispatches it. Malformed
// payloads are skipped; a line never aborts the stream.
func (d *EventDispatcher) DispatchLine(ctx context.Context, data string) {
	event, err := ParseAgentEvent(data)
	if err != nil {
		d.logger.Debug("skipping malformed event line", "error", err)
		return
	}
	d.Dispatch(ctx, event)
}

// Dispatch applies a single agent event to the turn state. Unrecognized event
// types and lifecycle markers with no client-side effect are accepted
// silently.
func (d *EventDispatcher) Dispatch(ctx context.Context, event *AgentEvent) {
	switch event.Type {
	case EventTextMessageContent:
		d.acc.AddTextDelta(event.Delta)
	case EventToolCallStart:
		d.acc.StartToolCall(event.ToolCallID, event.ToolCallName, ToolLabel(event.ToolCallName))
	case EventToolCallArgs:
		d.acc.AddToolArgsDelta(event.Delta)
	case EventToolCallResult:
		d.acc.FinishToolCall()
	case EventCustom:
		d.dispatchCustom(ctx, event)
	case EventRunError:
		d.logger.Error("agent reported run error", "message", event.Message)
	case EventToolCallEnd,
		EventTextMessageStart, EventTextMessageEnd,
		EventRunStarted, EventRunFinished,
		EventStateSnapshot:
		// Lifecycle markers; no client-side state change.
	default:
		d.logger.Debug("ignoring unrecognized event type", "type", string(event.Type))
	}
}

func (d *EventDispatcher) dispatchCustom(ctx context.Context, event *AgentEvent) {
	switch event.Name {
	case CustomEventThinking:
		var payload ThinkingPayload
		if err := json.Unmarshal(event.Value, &payload); err != nil {
			d.logger.Debug("skipping malformed thinking payload", "error", err)
			return
		}
		d.acc.SetThinking(payload.Thoughts)
	case CustomEventDeckAction:
		d.dispatchDeckAction(ctx, event.Value)
	}
}

func (d *EventDispatcher) dispatchDeckAction(ctx context.Context, value json.RawMessage) {
	if d.deck == nil {
		return
	}
	var action DeckAction
	if err := json.Unmarshal(value, &action); err != nil {
		d.logger.Debug("skipping malformed deck action", "error", err)
		return
	}

	// Start from the saved deck when nothing is loaded locally, so the agent
	// edits the deck the conversation is bound to rather than an empty one.
	if !d.deck.Loaded() && d.deckID != "" && d.decks != nil {
		deck, err := d.decks.GetDeck(ctx, d.deckID)
		if err != nil {
			d.logger.Warn("failed to load deck for agent action", "deck_id", d.deckID, "error", err)
		} else {
			d.deck.Load(*deck)
		}
	}

	d.deck.Apply(action)
}
