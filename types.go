package deckchat

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn. Once appended to a conversation's history it
// is never edited in place; user messages are created optimistically with a
// temporary id and assistant messages are finalized after streaming completes.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationContext is the (deck, page) pair a conversation is scoped to.
type ConversationContext struct {
	DeckID string `json:"deck_id,omitempty"`
	Page   string `json:"page,omitempty"`
}

// Conversation is a stored chat thread with its bound context.
type Conversation struct {
	ID        string              `json:"id"`
	Context   ConversationContext `json:"context"`
	Messages  []Message           `json:"messages,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ActivityStatus is the lifecycle state of an activity-log entry.
type ActivityStatus string

const (
	ActivityActive ActivityStatus = "active"
	ActivityDone   ActivityStatus = "done"
)

// ActivityEntry is one row in the user-visible progress trail of tool
// invocations for the current turn.
type ActivityEntry struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Status ActivityStatus `json:"status"`
}

// ToolUse is the currently running tool call, with the best-effort parsed
// arguments reconstructed from the incremental delta stream.
type ToolUse struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Card is a playable (non-leader) card.
type Card struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Color     string `json:"color,omitempty"`
	Cost      *int   `json:"cost,omitempty"`
	Power     *int   `json:"power,omitempty"`
	Counter   *int   `json:"counter,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Text      string `json:"text,omitempty"`
	Trigger   string `json:"trigger,omitempty"`
	Rarity    string `json:"rarity,omitempty"`
	Category  string `json:"category,omitempty"`
	SetCode   string `json:"set_code,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Leader is a deck's leader card.
type Leader struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Life              int      `json:"life"`
	Power             *int     `json:"power,omitempty"`
	Colors            []string `json:"colors,omitempty"`
	Attribute         string   `json:"attribute,omitempty"`
	Text              string   `json:"text,omitempty"`
	FeaturedCharacter string   `json:"featured_character,omitempty"`
	Category          string   `json:"category,omitempty"`
	SetCode           string   `json:"set_code,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
}

// DeckCard pairs a card with how many copies the deck runs.
type DeckCard struct {
	ID       string `json:"id"`
	Card     Card   `json:"card"`
	Quantity int    `json:"quantity"`
}

// Deck is the persisted deck entity returned by the backend.
type Deck struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id,omitempty"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	LeaderID          string         `json:"leader_id"`
	Leader            *Leader        `json:"leader,omitempty"`
	IsPublic          bool           `json:"is_public"`
	TotalCards        int            `json:"total_cards"`
	AvgCost           *float64       `json:"avg_cost,omitempty"`
	ColorDistribution map[string]int `json:"color_distribution,omitempty"`
	DeckCards         []DeckCard     `json:"deck_cards"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// DeckSnapshot is the in-memory deck-builder state forwarded to the agent so
// it can reason about the deck being edited.
type DeckSnapshot struct {
	DeckID      string     `json:"deck_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Leader      *Leader    `json:"leader,omitempty"`
	Cards       []DeckCard `json:"cards"`
	TotalCards  int        `json:"total_cards"`
}

// RunMessage is the role+content projection of a Message sent to the agent.
type RunMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// RunState is the structured state payload of a conversation turn.
type RunState struct {
	Provider         string            `json:"provider,omitempty"`
	Model            string            `json:"model,omitempty"`
	APIKeys          map[string]string `json:"api_keys,omitempty"`
	LocalURL         string            `json:"local_url,omitempty"`
	DeckID           string            `json:"deck_id,omitempty"`
	DeckBuilderState *DeckSnapshot     `json:"deck_builder_state,omitempty"`
}

// RunContextEntry is one entry of the context array of a run input.
type RunContextEntry struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RunAgentInput is the outbound body of a conversation turn. ThreadID is
// omitted for a new conversation; the server assigns one and returns it in
// the X-Thread-Id response header.
type RunAgentInput struct {
	ThreadID string            `json:"thread_id,omitempty"`
	RunID    string            `json:"run_id"`
	Messages []RunMessage      `json:"messages"`
	State    RunState          `json:"state"`
	Context  []RunContextEntry `json:"context,omitempty"`
}

// ThreadIDHeader carries the server-assigned conversation id on first turn.
const ThreadIDHeader = "X-Thread-Id"
