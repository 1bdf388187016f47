package deckchat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	deckchat "github.com/optcg-tools/deckchat-go"
)

func TestSettings_Resolve(t *testing.T) {
	t.Run("local mode pins the provider and forwards only the local key", func(t *testing.T) {
		settings := deckchat.Settings{
			Mode:     deckchat.ModeLocal,
			Provider: "anthropic",
			Model:    "llama3",
			LocalURL: "http://localhost:11434",
			APIKeys: map[string]string{
				"anthropic": "sk-cloud",
				"local":     "lm-key",
			},
		}

		want := deckchat.RequestSettings{
			Provider: "local",
			Model:    "llama3",
			LocalURL: "http://localhost:11434",
			APIKeys:  map[string]string{"local": "lm-key"},
		}
		if diff := cmp.Diff(want, settings.Resolve()); diff != "" {
			t.Errorf("resolved settings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("local mode without a local key forwards no keys", func(t *testing.T) {
		settings := deckchat.Settings{
			Mode:    deckchat.ModeLocal,
			APIKeys: map[string]string{"anthropic": "sk-cloud"},
		}
		if got := settings.Resolve().APIKeys; got != nil {
			t.Errorf("expected nil keys, got %v", got)
		}
	})

	t.Run("cloud mode strips the local key and empty keys", func(t *testing.T) {
		settings := deckchat.Settings{
			Mode:     deckchat.ModeCloud,
			Provider: "openai",
			Model:    "gpt-4o",
			LocalURL: "http://localhost:11434",
			APIKeys: map[string]string{
				"openai":    "sk-openai",
				"anthropic": "",
				"local":     "lm-key",
			},
		}

		want := deckchat.RequestSettings{
			Provider: "openai",
			Model:    "gpt-4o",
			APIKeys:  map[string]string{"openai": "sk-openai"},
		}
		if diff := cmp.Diff(want, settings.Resolve()); diff != "" {
			t.Errorf("resolved settings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("under-specified settings still resolve", func(t *testing.T) {
		resolved := deckchat.Settings{Mode: deckchat.ModeCloud}.Resolve()
		if resolved.Provider != "" || resolved.APIKeys != nil {
			t.Errorf("expected empty tuple, got %+v", resolved)
		}
	})
}

func TestSettings_ActiveAPIKeys(t *testing.T) {
	settings := deckchat.Settings{APIKeys: map[string]string{"a": "x", "b": ""}}
	want := map[string]string{"a": "x"}
	if diff := cmp.Diff(want, settings.ActiveAPIKeys()); diff != "" {
		t.Errorf("active keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_SetAPIKey(t *testing.T) {
	var settings deckchat.Settings
	settings.SetAPIKey("openai", "sk-1")
	settings.SetAPIKey("anthropic", "sk-2")
	settings.SetAPIKey("anthropic", "")
	settings.RemoveAPIKey("missing")
	want := map[string]string{"openai": "sk-1"}
	if diff := cmp.Diff(want, settings.APIKeys); diff != "" {
		t.Errorf("api keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_HasAnyKey(t *testing.T) {
	if (deckchat.Settings{}).HasAnyKey() {
		t.Errorf("expected no keys")
	}
	if !(deckchat.Settings{LocalURL: "http://localhost"}).HasAnyKey() {
		t.Errorf("expected local url to count as configured")
	}
	if !(deckchat.Settings{APIKeys: map[string]string{"a": "x"}}).HasAnyKey() {
		t.Errorf("expected key to count as configured")
	}
}
