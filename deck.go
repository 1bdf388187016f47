package deckchat

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// MaxCopiesPerCard is the per-card copy limit enforced on every mutation.
const MaxCopiesPerCard = 4

const defaultDeckName = "New Deck"

// DeckBuilder holds the in-memory deck being edited. It is mutated both by
// direct user actions and by agent-issued deck actions relayed from the chat
// session; every card entry keeps a quantity in [1, MaxCopiesPerCard] and a
// quantity that would drop to zero removes the entry instead.
type DeckBuilder struct {
	mu          sync.Mutex
	deckID      string
	leader      *Leader
	cards       []DeckCard
	name        string
	description string
}

// NewDeckBuilder creates an empty deck builder. An empty deck with no leader
// is valid transient state.
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{name: defaultDeckName}
}

// DeckID returns the id of the loaded deck, or "" for an unsaved deck.
func (d *DeckBuilder) DeckID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deckID
}

// SetDeckID binds the builder to a persisted deck id.
func (d *DeckBuilder) SetDeckID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deckID = id
}

// Loaded reports whether any deck content is present.
func (d *DeckBuilder) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deckID != "" || d.leader != nil || len(d.cards) > 0
}

// Leader returns a copy of the current leader, or nil. Mutating the result
// does not affect the builder.
func (d *DeckBuilder) Leader() *Leader {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneLeader(d.leader)
}

// SetLeader replaces the leader. The leader is independent of the card list.
func (d *DeckBuilder) SetLeader(leader *Leader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leader = cloneLeader(leader)
}

// AddCard increments the quantity of an existing entry or inserts a new one,
// clamped to MaxCopiesPerCard. Quantities below one are treated as one.
func (d *DeckBuilder) AddCard(card Card, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.cards {
		if d.cards[i].Card.ID == card.ID {
			d.cards[i].Quantity = min(d.cards[i].Quantity+quantity, MaxCopiesPerCard)
			return
		}
	}
	d.cards = append(d.cards, DeckCard{
		ID:       fmt.Sprintf("temp-%d", time.Now().UnixNano()),
		Card:     card,
		Quantity: min(quantity, MaxCopiesPerCard),
	})
}

// RemoveCard deletes the entry for a card id. Unknown ids are a no-op.
func (d *DeckBuilder) RemoveCard(cardID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = deleteCard(d.cards, cardID)
}

// UpdateQuantity sets the exact quantity for a card. Values above the copy
// limit clamp to it; zero or negative values remove the entry.
func (d *DeckBuilder) UpdateQuantity(cardID string, quantity int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if quantity <= 0 {
		d.cards = deleteCard(d.cards, cardID)
		return
	}
	for i := range d.cards {
		if d.cards[i].Card.ID == cardID {
			d.cards[i].Quantity = min(quantity, MaxCopiesPerCard)
			return
		}
	}
}

// Name returns the deck name.
func (d *DeckBuilder) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetName renames the deck.
func (d *DeckBuilder) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

// SetDescription updates the deck description.
func (d *DeckBuilder) SetDescription(description string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.description = description
}

// Clear resets the builder to an empty default deck.
func (d *DeckBuilder) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deckID = ""
	d.leader = nil
	d.cards = nil
	d.name = defaultDeckName
	d.description = ""
}

// Load hydrates the builder from a persisted deck.
func (d *DeckBuilder) Load(deck Deck) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deckID = deck.ID
	d.leader = cloneLeader(deck.Leader)
	d.cards = append([]DeckCard(nil), deck.DeckCards...)
	d.name = deck.Name
	d.description = deck.Description
}

// Cards returns a copy of the current card entries.
func (d *DeckBuilder) Cards() []DeckCard {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DeckCard(nil), d.cards...)
}

// TotalCards sums the quantities of every entry.
func (d *DeckBuilder) TotalCards() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return totalCards(d.cards)
}

// CostCurve returns the histogram of cost to total copies at that cost.
// Cards with no cost count as cost zero.
func (d *DeckBuilder) CostCurve() map[int]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	curve := make(map[int]int)
	for _, entry := range d.cards {
		cost := 0
		if entry.Card.Cost != nil {
			cost = *entry.Card.Cost
		}
		curve[cost] += entry.Quantity
	}
	return curve
}

// ColorDistribution returns copies per color. A multi-color card contributes
// its full quantity to every color in its comma-separated color string.
func (d *DeckBuilder) ColorDistribution() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	distribution := make(map[string]int)
	for _, entry := range d.cards {
		if entry.Card.Color == "" {
			continue
		}
		for _, color := range strings.Split(entry.Card.Color, ",") {
			color = strings.TrimSpace(color)
			if color != "" {
				distribution[color] += entry.Quantity
			}
		}
	}
	return distribution
}

// Snapshot captures the builder state for the agent's run-state payload.
func (d *DeckBuilder) Snapshot() DeckSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeckSnapshot{
		DeckID:      d.deckID,
		Name:        d.name,
		Description: d.description,
		Leader:      cloneLeader(d.leader),
		Cards:       append([]DeckCard(nil), d.cards...),
		TotalCards:  totalCards(d.cards),
	}
}

// Apply executes a deck action, recursing into batch updates up to
// MaxDeckActionDepth. Unknown or over-deep actions are ignored.
func (d *DeckBuilder) Apply(action DeckAction) {
	d.apply(action, 0)
}

func (d *DeckBuilder) apply(action DeckAction, depth int) {
	if depth > MaxDeckActionDepth {
		return
	}
	switch {
	case action.SetLeader != nil:
		leader := action.SetLeader.Leader
		d.SetLeader(&leader)
	case action.AddCards != nil:
		for _, entry := range action.AddCards.Cards {
			d.AddCard(entry.Card, entry.Quantity)
		}
	case action.RemoveCards != nil:
		for _, cardID := range action.RemoveCards.CardIDs {
			d.RemoveCard(cardID)
		}
	case action.Batch != nil:
		for _, sub := range action.Batch.Actions {
			d.apply(sub, depth+1)
		}
	}
}

func cloneLeader(leader *Leader) *Leader {
	if leader == nil {
		return nil
	}
	copied := *leader
	copied.Colors = append([]string(nil), leader.Colors...)
	return &copied
}

func deleteCard(cards []DeckCard, cardID string) []DeckCard {
	kept := cards[:0]
	for _, entry := range cards {
		if entry.Card.ID != cardID {
			kept = append(kept, entry)
		}
	}
	return kept
}

func totalCards(cards []DeckCard) int {
	total := 0
	for _, entry := range cards {
		total += entry.Quantity
	}
	return total
}
