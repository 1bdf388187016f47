package deckchat

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/optcg-tools/deckchat-go/internal/httputil"
)

// APIClient talks to the deck-builder backend REST API. The chat core uses a
// small slice of it (conversations, decks); the rest serves the surrounding
// application (card search, analysis, settings validation).
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for the API served at baseURL, e.g.
// "http://localhost:8000/api/v1". A nil httpClient uses http.DefaultClient.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{baseURL: baseURL, client: httpClient}
}

// CardQuery filters card and leader listings.
type CardQuery struct {
	Search  string
	Color   string
	Type    string
	SetCode string
	Limit   int
	Offset  int
}

func (q CardQuery) values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Color != "" {
		values.Set("color", q.Color)
	}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	if q.SetCode != "" {
		values.Set("set_code", q.SetCode)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	return values
}

// DeckCardInput names a card and quantity for deck create/update calls.
type DeckCardInput struct {
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
}

// DeckCreateRequest is the payload for creating a deck.
type DeckCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	LeaderID    string          `json:"leader_id"`
	IsPublic    bool            `json:"is_public"`
	Cards       []DeckCardInput `json:"cards"`
}

// DeckUpdateRequest is the payload for patching a deck. Nil fields are left
// unchanged.
type DeckUpdateRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	IsPublic    *bool           `json:"is_public,omitempty"`
	LeaderID    *string         `json:"leader_id,omitempty"`
	Cards       []DeckCardInput `json:"cards,omitempty"`
}

// DeckValidation is the result of a deck legality check.
type DeckValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// DeckAnalysis is the result of a one-shot AI deck analysis.
type DeckAnalysis struct {
	DeckID          string           `json:"deck_id"`
	DeckName        string           `json:"deck_name"`
	Provider        string           `json:"provider"`
	Model           string           `json:"model,omitempty"`
	Analysis        string           `json:"analysis"`
	Synergies       []map[string]any `json:"synergies,omitempty"`
	CostAnalysis    map[string]any   `json:"cost_analysis,omitempty"`
	Recommendations []map[string]any `json:"recommendations,omitempty"`
}

// AnalyzeOptions tunes a one-shot analysis call.
type AnalyzeOptions struct {
	Provider    string
	Model       string
	Temperature *float64
}

// ProviderList is the backend's provider catalog.
type ProviderList struct {
	DefaultProvider string         `json:"default_provider"`
	Providers       []ProviderInfo `json:"providers"`
}

// KeyValidation is the result of validating an API key server-side.
type KeyValidation struct {
	Valid    bool   `json:"valid"`
	Provider string `json:"provider"`
	Error    string `json:"error,omitempty"`
}

// ModelList is the model catalog for one provider.
type ModelList struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
	Source   string   `json:"source"`
}

// ConversationCreate is the payload for explicitly creating a conversation.
type ConversationCreate struct {
	Context  ConversationContext `json:"context"`
	Provider string              `json:"provider,omitempty"`
	Model    string              `json:"model,omitempty"`
}

// classifyRequestError maps request-layer failures onto ChatError kinds so
// callers can tell an HTTP status failure from a transport one.
func classifyRequestError(err error) error {
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) {
		return NewStatusCodeError(statusErr.Code, statusErr.Body)
	}
	return NewTransportError(err)
}

func doJSON[T any](ctx context.Context, client *http.Client, config httputil.JSONRequestConfig) (*T, error) {
	result, err := httputil.DoJSON[T](ctx, client, config)
	if err != nil {
		return nil, classifyRequestError(err)
	}
	return result, nil
}

func requireID(field, value string) error {
	if value == "" {
		return NewInvalidInputError(field + " is required")
	}
	return nil
}

func (c *APIClient) get(path string, query url.Values) httputil.JSONRequestConfig {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return httputil.JSONRequestConfig{Method: http.MethodGet, URL: u}
}

// ListCards searches playable cards.
func (c *APIClient) ListCards(ctx context.Context, query CardQuery) ([]Card, error) {
	result, err := doJSON[[]Card](ctx, c.client, c.get("/cards", query.values()))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetCard fetches one card by id.
func (c *APIClient) GetCard(ctx context.Context, id string) (*Card, error) {
	if err := requireID("card id", id); err != nil {
		return nil, err
	}

	return doJSON[Card](ctx, c.client, c.get("/cards/"+url.PathEscape(id), nil))
}

// ListLeaders searches leader cards.
func (c *APIClient) ListLeaders(ctx context.Context, query CardQuery) ([]Leader, error) {
	result, err := doJSON[[]Leader](ctx, c.client, c.get("/cards/leaders/", query.values()))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetLeader fetches one leader by id.
func (c *APIClient) GetLeader(ctx context.Context, id string) (*Leader, error) {
	if err := requireID("leader id", id); err != nil {
		return nil, err
	}

	return doJSON[Leader](ctx, c.client, c.get("/cards/leaders/"+url.PathEscape(id), nil))
}

// GetSets lists known set codes.
func (c *APIClient) GetSets(ctx context.Context) ([]string, error) {
	result, err := doJSON[[]string](ctx, c.client, c.get("/cards/sets/", nil))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// ListDecks lists saved decks.
func (c *APIClient) ListDecks(ctx context.Context, isPublic *bool, limit, offset int) ([]Deck, error) {
	values := url.Values{}
	if isPublic != nil {
		values.Set("is_public", strconv.FormatBool(*isPublic))
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	result, err := doJSON[[]Deck](ctx, c.client, c.get("/decks", values))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetDeck fetches one deck by id.
func (c *APIClient) GetDeck(ctx context.Context, id string) (*Deck, error) {
	if err := requireID("deck id", id); err != nil {
		return nil, err
	}

	return doJSON[Deck](ctx, c.client, c.get("/decks/"+url.PathEscape(id), nil))
}

// CreateDeck saves a new deck.
func (c *APIClient) CreateDeck(ctx context.Context, req DeckCreateRequest) (*Deck, error) {
	return doJSON[Deck](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/decks/",
		Body:   req,
	})
}

// UpdateDeck patches an existing deck.
func (c *APIClient) UpdateDeck(ctx context.Context, id string, req DeckUpdateRequest) (*Deck, error) {
	if err := requireID("deck id", id); err != nil {
		return nil, err
	}

	return doJSON[Deck](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPatch,
		URL:    c.baseURL + "/decks/" + url.PathEscape(id),
		Body:   req,
	})
}

// DeleteDeck removes a deck.
func (c *APIClient) DeleteDeck(ctx context.Context, id string) error {
	if err := requireID("deck id", id); err != nil {
		return err
	}

	_, err := doJSON[struct{}](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodDelete,
		URL:    c.baseURL + "/decks/" + url.PathEscape(id),
	})
	return err
}

// ValidateDeck checks a saved deck against format rules.
func (c *APIClient) ValidateDeck(ctx context.Context, id string) (*DeckValidation, error) {
	if err := requireID("deck id", id); err != nil {
		return nil, err
	}

	return doJSON[DeckValidation](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/decks/" + url.PathEscape(id) + "/validate",
	})
}

// AnalyzeDeck runs a one-shot AI analysis of a saved deck.
func (c *APIClient) AnalyzeDeck(ctx context.Context, id string, opts AnalyzeOptions) (*DeckAnalysis, error) {
	if err := requireID("deck id", id); err != nil {
		return nil, err
	}

	values := url.Values{}
	if opts.Provider != "" {
		values.Set("provider", opts.Provider)
	}
	if opts.Model != "" {
		values.Set("model", opts.Model)
	}
	if opts.Temperature != nil {
		values.Set("temperature", strconv.FormatFloat(*opts.Temperature, 'f', -1, 64))
	}
	u := c.baseURL + "/ai/analyze-deck/" + url.PathEscape(id)
	if len(values) > 0 {
		u += "?" + values.Encode()
	}
	return doJSON[DeckAnalysis](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    u,
	})
}

// GetProviders lists available AI providers.
func (c *APIClient) GetProviders(ctx context.Context) (*ProviderList, error) {
	return doJSON[ProviderList](ctx, c.client, c.get("/ai/providers", nil))
}

// GetQuickTips fetches short improvement tips for a saved deck.
func (c *APIClient) GetQuickTips(ctx context.Context, id string) ([]string, error) {
	if err := requireID("deck id", id); err != nil {
		return nil, err
	}

	type tips struct {
		DeckID string   `json:"deck_id"`
		Tips   []string `json:"tips"`
	}
	result, err := doJSON[tips](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/ai/quick-tips/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, err
	}
	return result.Tips, nil
}

// CreateConversation explicitly creates a conversation with a bound context.
func (c *APIClient) CreateConversation(ctx context.Context, req ConversationCreate) (*Conversation, error) {
	return doJSON[Conversation](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/chat/conversations",
		Body:   req,
	})
}

// ListConversations lists stored conversations.
func (c *APIClient) ListConversations(ctx context.Context, limit, offset int) ([]Conversation, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		values.Set("offset", strconv.Itoa(offset))
	}
	result, err := doJSON[[]Conversation](ctx, c.client, c.get("/chat/conversations", values))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// ListConversationsByDeck lists the conversations bound to a deck, newest
// first. Used to restore a prior conversation when switching deck context.
func (c *APIClient) ListConversationsByDeck(ctx context.Context, deckID string) ([]Conversation, error) {
	if err := requireID("deck id", deckID); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("deck_id", deckID)
	result, err := doJSON[[]Conversation](ctx, c.client, c.get("/chat/conversations", values))
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetConversation fetches a conversation with its full message history.
func (c *APIClient) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	if err := requireID("conversation id", id); err != nil {
		return nil, err
	}

	return doJSON[Conversation](ctx, c.client, c.get("/chat/conversations/"+url.PathEscape(id), nil))
}

// DeleteConversation removes a stored conversation.
func (c *APIClient) DeleteConversation(ctx context.Context, id string) error {
	if err := requireID("conversation id", id); err != nil {
		return err
	}

	_, err := doJSON[struct{}](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodDelete,
		URL:    c.baseURL + "/chat/conversations/" + url.PathEscape(id),
	})
	return err
}

// RunAgent opens the streaming run endpoint for one conversation turn. The
// caller owns the returned stream and must close it.
func (c *APIClient) RunAgent(ctx context.Context, input RunAgentInput) (*httputil.SSEStream, error) {
	stream, err := httputil.DoSSE(ctx, c.client, httputil.SSERequestConfig{
		URL:  c.baseURL + "/chat/agent/run",
		Body: input,
	})
	if err != nil {
		return nil, classifyRequestError(err)
	}
	return stream, nil
}

// ValidateAPIKey checks a provider credential server-side.
func (c *APIClient) ValidateAPIKey(ctx context.Context, provider, apiKey, localURL string) (*KeyValidation, error) {
	if err := requireID("provider", provider); err != nil {
		return nil, err
	}

	body := map[string]string{"provider": provider, "api_key": apiKey}
	if localURL != "" {
		body["local_url"] = localURL
	}
	return doJSON[KeyValidation](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/settings/validate-key",
		Body:   body,
	})
}

// GetProvidersWithKeys lists providers, marking availability against the
// given credentials.
func (c *APIClient) GetProvidersWithKeys(ctx context.Context, apiKeys map[string]string) (*ProviderList, error) {
	if apiKeys == nil {
		apiKeys = map[string]string{}
	}
	return doJSON[ProviderList](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/settings/providers",
		Body:   map[string]any{"api_keys": apiKeys},
	})
}

// FetchModels lists the models a provider offers for the given credentials.
func (c *APIClient) FetchModels(ctx context.Context, provider, apiKey, localURL string) (*ModelList, error) {
	if err := requireID("provider", provider); err != nil {
		return nil, err
	}

	body := map[string]string{"provider": provider}
	if apiKey != "" {
		body["api_key"] = apiKey
	}
	if localURL != "" {
		body["local_url"] = localURL
	}
	return doJSON[ModelList](ctx, c.client, httputil.JSONRequestConfig{
		Method: http.MethodPost,
		URL:    c.baseURL + "/settings/models",
		Body:   body,
	})
}

var _ DeckFetcher = (*APIClient)(nil)
