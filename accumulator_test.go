package deckchat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	deckchat "github.com/optcg-tools/deckchat-go"
)

func TestTurnAccumulator_Text(t *testing.T) {
	t.Run("streaming text is the concatenation of deltas in arrival order", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		for _, delta := range []string{"Hel", "lo", ", ", "world"} {
			acc.AddTextDelta(delta)
		}
		if got := acc.StreamingText(); got != "Hello, world" {
			t.Errorf("expected %q, got %q", "Hello, world", got)
		}
	})
}

func TestTurnAccumulator_ToolCalls(t *testing.T) {
	t.Run("starting a tool call discards accumulated text and closes the prior entry", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		acc.AddTextDelta("Let me think about")
		acc.StartToolCall("tc_0", "search_cards", "Searching cards")

		if got := acc.StreamingText(); got != "" {
			t.Errorf("expected discarded text, got %q", got)
		}

		acc.StartToolCall("tc_1", "validate_deck", "Validating deck")

		want := []deckchat.ActivityEntry{
			{ID: "tc_0", Label: "Searching cards", Status: deckchat.ActivityDone},
			{ID: "tc_1", Label: "Validating deck", Status: deckchat.ActivityActive},
		}
		if diff := cmp.Diff(want, acc.ActivityLog()); diff != "" {
			t.Errorf("activity log mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("at most one entry is active at any point", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		for i, tool := range []string{"a", "b", "c"} {
			acc.StartToolCall("", tool, tool)
			active := 0
			for _, entry := range acc.ActivityLog() {
				if entry.Status == deckchat.ActivityActive {
					active++
				}
			}
			if active != 1 {
				t.Fatalf("after start %d: expected exactly 1 active entry, got %d", i, active)
			}
		}
	})

	t.Run("partial JSON leaves the last valid args unchanged", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		acc.StartToolCall("tc_0", "query_data", "Looking things up")

		acc.AddToolArgsDelta(`{"x":`)
		if got := acc.CurrentToolUse().Args; got != nil {
			t.Errorf("expected nil args while JSON is partial, got %v", got)
		}

		acc.AddToolArgsDelta(`1}`)
		want := map[string]any{"x": float64(1)}
		if diff := cmp.Diff(want, acc.CurrentToolUse().Args); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}

		// Growing the buffer past valid JSON keeps the last good parse.
		acc.AddToolArgsDelta(`garbage`)
		if diff := cmp.Diff(want, acc.CurrentToolUse().Args); diff != "" {
			t.Errorf("args mismatch after trailing garbage (-want +got):\n%s", diff)
		}
	})

	t.Run("finishing a tool call clears the indicator and marks the entry done", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		acc.StartToolCall("tc_0", "query_data", "Looking things up")
		acc.FinishToolCall()

		if acc.CurrentToolUse() != nil {
			t.Errorf("expected no current tool use")
		}
		log := acc.ActivityLog()
		if len(log) != 1 || log[0].Status != deckchat.ActivityDone {
			t.Errorf("expected done entry, got %+v", log)
		}
	})
}

func TestTurnAccumulator_TurnLifecycle(t *testing.T) {
	t.Run("FinishTurn keeps the activity log but clears the indicators", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		acc.StartToolCall("tc_0", "query_data", "Looking things up")
		acc.AddTextDelta("Hello")
		acc.SetThinking([]string{"a thought"})

		acc.FinishTurn()

		if got := acc.StreamingText(); got != "" {
			t.Errorf("expected cleared text, got %q", got)
		}
		if got := acc.Thinking(); len(got) != 0 {
			t.Errorf("expected cleared thinking, got %v", got)
		}
		if acc.CurrentToolUse() != nil {
			t.Errorf("expected cleared tool use")
		}
		if got := len(acc.ActivityLog()); got != 1 {
			t.Errorf("expected activity log to survive the turn, got %d entries", got)
		}
	})

	t.Run("Reset clears everything", func(t *testing.T) {
		acc := deckchat.NewTurnAccumulator()
		acc.StartToolCall("tc_0", "query_data", "Looking things up")
		acc.Reset()
		if got := len(acc.ActivityLog()); got != 0 {
			t.Errorf("expected empty activity log, got %d entries", got)
		}
	})
}
