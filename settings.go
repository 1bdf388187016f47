package deckchat

// Mode selects between cloud providers and a locally hosted model server.
type Mode string

const (
	ModeCloud Mode = "cloud"
	ModeLocal Mode = "local"
)

// ProviderLocal is the provider id used for locally hosted models.
const ProviderLocal = "local"

// ProviderInfo describes one AI provider as reported by the backend.
type ProviderInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Available    bool     `json:"available"`
	DefaultModel string   `json:"default_model"`
	Models       []string `json:"models"`
}

// Settings is the persisted AI configuration. The chat core only reads it;
// persistence belongs to the surrounding application.
type Settings struct {
	Mode     Mode              `json:"mode"`
	APIKeys  map[string]string `json:"api_keys"`
	LocalURL string            `json:"local_url"`
	Provider string            `json:"provider"`
	Model    string            `json:"model"`
}

// RequestSettings is the effective provider/model/credential tuple resolved
// for one outbound request.
type RequestSettings struct {
	Provider string
	Model    string
	APIKeys  map[string]string
	LocalURL string
}

// SetAPIKey stores or replaces the key for a provider. An empty key removes
// the entry.
func (s *Settings) SetAPIKey(provider, key string) {
	if key == "" {
		delete(s.APIKeys, provider)
		return
	}
	if s.APIKeys == nil {
		s.APIKeys = make(map[string]string)
	}
	s.APIKeys[provider] = key
}

// RemoveAPIKey deletes the key for a provider.
func (s *Settings) RemoveAPIKey(provider string) {
	delete(s.APIKeys, provider)
}

// ActiveAPIKeys returns the non-empty keys.
func (s Settings) ActiveAPIKeys() map[string]string {
	active := make(map[string]string)
	for provider, key := range s.APIKeys {
		if key != "" {
			active[provider] = key
		}
	}
	return active
}

// HasAnyKey reports whether any credential or local endpoint is configured.
func (s Settings) HasAnyKey() bool {
	for _, key := range s.APIKeys {
		if key != "" {
			return true
		}
	}
	return s.LocalURL != ""
}

// Resolve derives the effective request tuple from the persisted settings.
//
// In local mode the provider is pinned to "local" and only the local key (if
// present) is forwarded. In cloud mode the local key never leaves the client;
// every other non-empty key is forwarded. Resolution cannot fail: an
// under-specified tuple is allowed and rejected server-side if credentials
// are missing.
func (s Settings) Resolve() RequestSettings {
	if s.Mode == ModeLocal {
		resolved := RequestSettings{
			Provider: ProviderLocal,
			Model:    s.Model,
			LocalURL: s.LocalURL,
		}
		if key := s.APIKeys[ProviderLocal]; key != "" {
			resolved.APIKeys = map[string]string{ProviderLocal: key}
		}
		return resolved
	}

	keys := s.ActiveAPIKeys()
	delete(keys, ProviderLocal)
	if len(keys) == 0 {
		keys = nil
	}
	return RequestSettings{
		Provider: s.Provider,
		Model:    s.Model,
		APIKeys:  keys,
	}
}
