package deckchat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	deckchat "github.com/optcg-tools/deckchat-go"
)

type fakeDeckFetcher struct {
	deck  *deckchat.Deck
	err   error
	calls int
}

func (f *fakeDeckFetcher) GetDeck(ctx context.Context, id string) (*deckchat.Deck, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.deck, nil
}

func dispatchAll(t *testing.T, dispatcher *deckchat.EventDispatcher, lines []string) {
	t.Helper()
	for _, line := range lines {
		dispatcher.DispatchLine(context.Background(), line)
	}
}

func TestEventDispatcher_ToolCallScenario(t *testing.T) {
	acc := deckchat.NewTurnAccumulator()
	dispatcher := deckchat.NewEventDispatcher(acc, nil, nil, "", nil)

	dispatchAll(t, dispatcher, []string{
		`{"type":"TOOL_CALL_START","toolCallId":"tc_0","toolCallName":"query_data"}`,
		`{"type":"TOOL_CALL_ARGS","toolCallId":"tc_0","delta":"{\"x\":1}"}`,
		`{"type":"TOOL_CALL_RESULT","toolCallId":"tc_0","content":"ok"}`,
		`{"type":"TEXT_MESSAGE_CONTENT","delta":"Hello"}`,
	})

	if acc.CurrentToolUse() != nil {
		t.Errorf("expected no current tool use after result")
	}
	wantLog := []deckchat.ActivityEntry{
		{ID: "tc_0", Label: "Looking things up", Status: deckchat.ActivityDone},
	}
	if diff := cmp.Diff(wantLog, acc.ActivityLog()); diff != "" {
		t.Errorf("activity log mismatch (-want +got):\n%s", diff)
	}
	if got := acc.StreamingText(); got != "Hello" {
		t.Errorf("expected streaming text %q, got %q", "Hello", got)
	}
}

func TestEventDispatcher_ToolLabelFallback(t *testing.T) {
	acc := deckchat.NewTurnAccumulator()
	dispatcher := deckchat.NewEventDispatcher(acc, nil, nil, "", nil)

	dispatchAll(t, dispatcher, []string{
		`{"type":"TOOL_CALL_START","toolCallId":"tc_0","toolCallName":"uncharted_tool"}`,
	})

	log := acc.ActivityLog()
	if len(log) != 1 || log[0].Label != "uncharted_tool" {
		t.Errorf("expected raw tool id as label, got %+v", log)
	}
}

func TestEventDispatcher_Thinking(t *testing.T) {
	acc := deckchat.NewTurnAccumulator()
	dispatcher := deckchat.NewEventDispatcher(acc, nil, nil, "", nil)

	dispatchAll(t, dispatcher, []string{
		`{"type":"CUSTOM","name":"thinking","value":{"thoughts":["first","second"]}}`,
		`{"type":"CUSTOM","name":"thinking","value":{"thoughts":["replaced"]}}`,
	})

	if diff := cmp.Diff([]string{"replaced"}, acc.Thinking()); diff != "" {
		t.Errorf("thinking mismatch (-want +got):\n%s", diff)
	}
}

func TestEventDispatcher_DeckAction(t *testing.T) {
	t.Run("applies a deck action to the builder", func(t *testing.T) {
		deck := deckchat.NewDeckBuilder()
		deck.SetDeckID("deck-1")
		acc := deckchat.NewTurnAccumulator()
		dispatcher := deckchat.NewEventDispatcher(acc, deck, nil, "deck-1", nil)

		dispatchAll(t, dispatcher, []string{
			`{"type":"CUSTOM","name":"deck_action","value":{"action":"add_cards","cards":[{"card":{"id":"C1","name":"Card"},"quantity":2}]}}`,
		})

		if deck.TotalCards() != 2 {
			t.Errorf("expected 2 cards, got %d", deck.TotalCards())
		}
	})

	t.Run("loads the bound deck first when nothing is loaded", func(t *testing.T) {
		deck := deckchat.NewDeckBuilder()
		fetcher := &fakeDeckFetcher{deck: &deckchat.Deck{
			ID:        "deck-1",
			Name:      "Saved",
			DeckCards: []deckchat.DeckCard{{ID: "dc1", Card: deckchat.Card{ID: "C9", Name: "Saved card"}, Quantity: 3}},
		}}
		acc := deckchat.NewTurnAccumulator()
		dispatcher := deckchat.NewEventDispatcher(acc, deck, fetcher, "deck-1", nil)

		dispatchAll(t, dispatcher, []string{
			`{"type":"CUSTOM","name":"deck_action","value":{"action":"remove_cards","card_ids":["C9"]}}`,
		})

		if fetcher.calls != 1 {
			t.Fatalf("expected one deck fetch, got %d", fetcher.calls)
		}
		if deck.TotalCards() != 0 {
			t.Errorf("expected removal to apply against the loaded deck, got %d cards", deck.TotalCards())
		}
	})

	t.Run("a failed deck fetch still applies against the empty builder", func(t *testing.T) {
		deck := deckchat.NewDeckBuilder()
		fetcher := &fakeDeckFetcher{err: errors.New("backend down")}
		acc := deckchat.NewTurnAccumulator()
		dispatcher := deckchat.NewEventDispatcher(acc, deck, fetcher, "deck-1", nil)

		dispatchAll(t, dispatcher, []string{
			`{"type":"CUSTOM","name":"deck_action","value":{"action":"add_cards","cards":[{"card":{"id":"C1","name":"Card"},"quantity":1}]}}`,
		})

		if deck.TotalCards() != 1 {
			t.Errorf("expected card added despite fetch failure, got %d", deck.TotalCards())
		}
	})

	t.Run("unknown action names are ignored", func(t *testing.T) {
		deck := deckchat.NewDeckBuilder()
		acc := deckchat.NewTurnAccumulator()
		dispatcher := deckchat.NewEventDispatcher(acc, deck, nil, "", nil)

		dispatchAll(t, dispatcher, []string{
			`{"type":"CUSTOM","name":"deck_action","value":{"action":"explode_deck"}}`,
		})

		if deck.Loaded() {
			t.Errorf("expected untouched deck")
		}
	})
}

func TestEventDispatcher_Tolerance(t *testing.T) {
	acc := deckchat.NewTurnAccumulator()
	dispatcher := deckchat.NewEventDispatcher(acc, nil, nil, "", nil)

	// None of these may panic or disturb the accumulated state.
	dispatchAll(t, dispatcher, []string{
		`{"type":"TEXT_MESSAGE_CONTENT","delta":"Hi"}`,
		`not json at all`,
		`{"type":"SOMETHING_NEW","delta":"x"}`,
		`{"type":"RUN_ERROR","message":"agent blew up"}`,
		`{"type":"RUN_STARTED","threadId":"t1","runId":"r1"}`,
		`{"type":"STATE_SNAPSHOT","snapshot":{"deck_id":"deck-1"}}`,
		`{"type":"TEXT_MESSAGE_END","messageId":"m1"}`,
		`{"type":"RUN_FINISHED","threadId":"t1","runId":"r1"}`,
	})

	if got := acc.StreamingText(); got != "Hi" {
		t.Errorf("expected streaming text %q, got %q", "Hi", got)
	}
}
