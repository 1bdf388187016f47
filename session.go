package deckchat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PageDeckBuilder is the page label under which the deck-builder snapshot is
// attached to outbound turns.
const PageDeckBuilder = "deck-builder"

// SettingsSource yields the current persisted settings. The chat core reads
// it once per send and never writes it back.
type SettingsSource func() Settings

// ChatSession owns conversation identity, message history, and the per-turn
// streaming state for one chat pane. It orchestrates the streaming call and
// relays agent-issued deck actions into the injected deck builder.
//
// At most one send is in flight per session; concurrent SendMessage calls are
// dropped, not queued. A caller clearing state mid-stream is tolerated: the
// finishing stream only flips the streaming flag back off.
type ChatSession struct {
	api      *APIClient
	deck     *DeckBuilder
	settings SettingsSource
	logger   *slog.Logger

	mu             sync.Mutex
	conversationID string
	messages       []Message
	isStreaming    bool
	currentDeckID  string
	currentPage    string

	acc *TurnAccumulator
}

// SessionOption configures a ChatSession.
type SessionOption func(*ChatSession)

// WithLogger sets the logger used for absorbed failures.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *ChatSession) {
		s.logger = logger
	}
}

// NewChatSession creates a session bound to the given API client, deck
// builder, and settings source.
func NewChatSession(api *APIClient, deck *DeckBuilder, settings SettingsSource, options ...SessionOption) *ChatSession {
	session := &ChatSession{
		api:      api,
		deck:     deck,
		settings: settings,
		logger:   slog.Default(),
		acc:      NewTurnAccumulator(),
	}
	for _, option := range options {
		option(session)
	}
	return session
}

// ConversationID returns the server-assigned conversation id, or "" before
// the first completed send.
func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Messages returns a copy of the message history.
func (s *ChatSession) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// IsStreaming reports whether a send is in flight.
func (s *ChatSession) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isStreaming
}

// StreamingText returns the assistant text of the in-flight turn.
func (s *ChatSession) StreamingText() string {
	return s.acc.StreamingText()
}

// Thinking returns the thought list of the in-flight turn.
func (s *ChatSession) Thinking() []string {
	return s.acc.Thinking()
}

// CurrentToolUse returns the in-flight tool call, or nil.
func (s *ChatSession) CurrentToolUse() *ToolUse {
	return s.acc.CurrentToolUse()
}

// ActivityLog returns the activity entries of the in-flight turn.
func (s *ChatSession) ActivityLog() []ActivityEntry {
	return s.acc.ActivityLog()
}

// Context returns the bound (deck id, page) pair.
func (s *ChatSession) Context() ConversationContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ConversationContext{DeckID: s.currentDeckID, Page: s.currentPage}
}

// SetContext binds the session to a (deck id, page) pair. If the deck id is
// unchanged only the page label updates. A deck change atomically clears the
// conversation id, history, and all scratch state so one deck's conversation
// never leaks into another's pane, then makes a best-effort attempt to
// restore the most recent prior conversation for the new deck; a failed
// restore leaves a fresh empty context.
func (s *ChatSession) SetContext(ctx context.Context, deckID, page string) {
	s.mu.Lock()
	if deckID == s.currentDeckID {
		s.currentPage = page
		s.mu.Unlock()
		return
	}
	s.conversationID = ""
	s.messages = nil
	s.currentDeckID = deckID
	s.currentPage = page
	s.mu.Unlock()
	s.acc.Reset()

	if deckID == "" {
		return
	}
	conversations, err := s.api.ListConversationsByDeck(ctx, deckID)
	if err != nil {
		s.logger.Warn("failed to look up conversations for deck", "deck_id", deckID, "error", err)
		return
	}
	if len(conversations) == 0 {
		return
	}
	conversation, err := s.api.GetConversation(ctx, conversations[0].ID)
	if err != nil {
		s.logger.Warn("failed to restore conversation", "conversation_id", conversations[0].ID, "error", err)
		return
	}
	s.mu.Lock()
	// Context may have moved on while we were fetching.
	if s.currentDeckID == deckID {
		s.conversationID = conversation.ID
		s.messages = append([]Message(nil), conversation.Messages...)
	}
	s.mu.Unlock()
}

// ClearChat resets conversation id, history, and scratch state, independent
// of the bound context.
func (s *ChatSession) ClearChat() {
	s.mu.Lock()
	s.conversationID = ""
	s.messages = nil
	s.mu.Unlock()
	s.acc.Reset()
}

// LoadConversation replaces the current id and history with a stored
// conversation. A fetch failure is logged and leaves prior state untouched.
func (s *ChatSession) LoadConversation(ctx context.Context, conversationID string) {
	conversation, err := s.api.GetConversation(ctx, conversationID)
	if err != nil {
		s.logger.Warn("failed to load conversation", "conversation_id", conversationID, "error", err)
		return
	}
	s.mu.Lock()
	s.conversationID = conversationID
	s.messages = append([]Message(nil), conversation.Messages...)
	s.mu.Unlock()
}

// SendMessage runs one conversation turn. It appends the user message
// optimistically, streams the agent's response, and finalizes the assistant
// message when the stream ends. Every failure is absorbed into a synthetic
// assistant-role error message; nothing is returned to the caller. A call
// made while another send is in flight is silently dropped.
func (s *ChatSession) SendMessage(ctx context.Context, content string) {
	s.mu.Lock()
	if s.isStreaming {
		s.mu.Unlock()
		return
	}
	s.isStreaming = true
	s.acc.Reset()

	runID := uuid.NewString()
	conversationID := s.conversationID
	deckID := s.currentDeckID
	page := s.currentPage

	userMessage := Message{
		ID:             fmt.Sprintf("temp-%s", uuid.NewString()),
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	s.messages = append(s.messages, userMessage)

	// Prior history plus the new turn, projected to role+content so the
	// temporary local ids never reach the server.
	runMessages := make([]RunMessage, 0, len(s.messages))
	for _, message := range s.messages {
		runMessages = append(runMessages, RunMessage{Role: message.Role, Content: message.Content})
	}
	s.mu.Unlock()

	resolved := s.settings().Resolve()
	state := RunState{
		Provider: resolved.Provider,
		Model:    resolved.Model,
		APIKeys:  resolved.APIKeys,
		LocalURL: resolved.LocalURL,
		DeckID:   deckID,
	}
	if page == PageDeckBuilder && s.deck != nil {
		snapshot := s.deck.Snapshot()
		state.DeckBuilderState = &snapshot
	}

	input := RunAgentInput{
		ThreadID: conversationID,
		RunID:    runID,
		Messages: runMessages,
		State:    state,
	}
	if page != "" {
		input.Context = []RunContextEntry{{Type: "page", Value: page}}
	}

	span, ctx := startTurnSpan(ctx, conversationID, runID)

	stream, err := s.api.RunAgent(ctx, input)
	if err != nil {
		s.absorbFailure(span, err)
		return
	}
	defer stream.Close()

	// The only point where conversation identity is created: adopt the
	// server-assigned id from the response header on a first send.
	if conversationID == "" {
		if threadID := stream.Response.Header.Get(ThreadIDHeader); threadID != "" {
			s.mu.Lock()
			s.conversationID = threadID
			s.mu.Unlock()
			conversationID = threadID
		}
	}

	// A nil *DeckBuilder must become a nil interface, not a typed nil, so
	// the dispatcher's guard holds.
	var applier DeckApplier
	if s.deck != nil {
		applier = s.deck
	}
	dispatcher := NewEventDispatcher(s.acc, applier, s.api, deckID, s.logger)
	eventCount := 0
	for {
		data, ok := stream.Decoder.Next()
		if !ok {
			break
		}
		dispatcher.DispatchLine(ctx, data)
		eventCount++
	}
	if err := stream.Decoder.Err(); err != nil {
		s.absorbFailure(span, NewTransportError(err))
		return
	}

	finalized := s.finalizeTurn(conversationID)
	s.mu.Lock()
	s.isStreaming = false
	s.mu.Unlock()
	span.OnEnd(eventCount, finalized)
}

// finalizeTurn folds accumulated assistant text, if any, into the permanent
// history and clears the scratch state.
func (s *ChatSession) finalizeTurn(conversationID string) bool {
	text := s.acc.StreamingText()
	s.acc.FinishTurn()
	if text == "" {
		return false
	}
	assistantMessage := Message{
		ID:             fmt.Sprintf("temp-%s-assistant", uuid.NewString()),
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Content:        text,
		CreatedAt:      time.Now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, assistantMessage)
	s.mu.Unlock()
	return true
}

// absorbFailure converts a transport or stream failure into a synthetic
// assistant message. The failure never reaches the caller.
func (s *ChatSession) absorbFailure(span *turnSpan, err error) {
	s.logger.Error("chat turn failed", "error", err)
	s.acc.FinishTurn()
	s.mu.Lock()
	s.messages = append(s.messages, Message{
		ID:             fmt.Sprintf("temp-error-%s", uuid.NewString()),
		ConversationID: s.conversationID,
		Role:           RoleAssistant,
		Content:        fmt.Sprintf("Sorry, an error occurred: %v", err),
		CreatedAt:      time.Now(),
	})
	s.isStreaming = false
	s.mu.Unlock()
	span.OnError(err)
}
