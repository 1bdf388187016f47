package deckchat

import "encoding/json"

// MaxDeckActionDepth bounds recursion when applying nested batch updates so a
// malformed payload cannot drive unbounded descent.
const MaxDeckActionDepth = 8

// DeckAction is an agent-issued command to mutate the locally held deck.
// Exactly one variant is populated.
type DeckAction struct {
	SetLeader   *SetLeaderAction
	AddCards    *AddCardsAction
	RemoveCards *RemoveCardsAction
	Batch       *BatchDeckUpdateAction
}

// SetLeaderAction replaces the deck's leader.
type SetLeaderAction struct {
	Leader Leader `json:"leader"`
}

// AddCardsAction adds cards, each applied through the deck builder's add
// operation so quantity clamping holds.
type AddCardsAction struct {
	Cards []AddCardEntry `json:"cards"`
}

// AddCardEntry is one card plus the requested number of copies.
type AddCardEntry struct {
	Card     Card `json:"card"`
	Quantity int  `json:"quantity"`
}

// RemoveCardsAction removes cards by id.
type RemoveCardsAction struct {
	CardIDs []string `json:"card_ids"`
}

// BatchDeckUpdateAction applies nested sub-actions in order. Nesting is
// permitted up to MaxDeckActionDepth.
type BatchDeckUpdateAction struct {
	Actions []DeckAction `json:"actions"`
}

type baseDeckAction struct {
	Action string `json:"action"`
}

// UnmarshalJSON decodes the "action"-discriminated payload. An unknown action
// name yields an empty DeckAction, which appliers treat as a no-op.
func (a *DeckAction) UnmarshalJSON(data []byte) error {
	var base baseDeckAction
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	switch base.Action {
	case "set_leader":
		var action SetLeaderAction
		if err := json.Unmarshal(data, &action); err != nil {
			return err
		}
		a.SetLeader = &action
	case "add_cards":
		var action AddCardsAction
		if err := json.Unmarshal(data, &action); err != nil {
			return err
		}
		a.AddCards = &action
	case "remove_cards":
		var action RemoveCardsAction
		if err := json.Unmarshal(data, &action); err != nil {
			return err
		}
		a.RemoveCards = &action
	case "batch_deck_update":
		var action BatchDeckUpdateAction
		if err := json.Unmarshal(data, &action); err != nil {
			return err
		}
		a.Batch = &action
	}
	return nil
}

func (a DeckAction) MarshalJSON() ([]byte, error) {
	switch {
	case a.SetLeader != nil:
		return json.Marshal(struct {
			Action string `json:"action"`
			*SetLeaderAction
		}{Action: "set_leader", SetLeaderAction: a.SetLeader})
	case a.AddCards != nil:
		return json.Marshal(struct {
			Action string `json:"action"`
			*AddCardsAction
		}{Action: "add_cards", AddCardsAction: a.AddCards})
	case a.RemoveCards != nil:
		return json.Marshal(struct {
			Action string `json:"action"`
			*RemoveCardsAction
		}{Action: "remove_cards", RemoveCardsAction: a.RemoveCards})
	case a.Batch != nil:
		return json.Marshal(struct {
			Action string `json:"action"`
			*BatchDeckUpdateAction
		}{Action: "batch_deck_update", BatchDeckUpdateAction: a.Batch})
	default:
		return json.Marshal(baseDeckAction{})
	}
}
