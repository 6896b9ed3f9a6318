// Package credentials resolves the API key an LLM provider authenticates with.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Source yields the provider API key.
type Source interface {
	APIKey(ctx context.Context) (string, error)
}

// Getter is satisfied by *paramstore.Client.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Static is a key supplied directly, typically from the environment.
type Static string

func (s Static) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(string(s))
	if key == "" {
		return "", errors.New("credentials: API key is empty")
	}
	return key, nil
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// ParamStore reads the key from an SSM parameter named
// "<prefix>/<provider>-token" holding {"token": "..."}. The key is fetched on
// first use and reused afterwards; a failed fetch is retried on the next call.
type ParamStore struct {
	getter Getter
	name   string

	mu  sync.Mutex
	key string
}

// NewParamStore builds a ParamStore source for the given provider.
func NewParamStore(getter Getter, paramPrefix, provider string) (*ParamStore, error) {
	if getter == nil {
		return nil, errors.New("credentials: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("credentials: parameter prefix must not be empty")
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, errors.New("credentials: provider must not be empty")
	}
	return &ParamStore{getter: getter, name: paramPrefix + "/" + provider + "-token"}, nil
}

// ParameterName is the SSM parameter the key is read from.
func (p *ParamStore) ParameterName() string {
	return p.name
}

func (p *ParamStore) APIKey(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.key != "" {
		return p.key, nil
	}
	key, err := fetchAPIKey(ctx, p.getter, p.name)
	if err != nil {
		return "", err
	}
	p.key = key
	return key, nil
}

func fetchAPIKey(ctx context.Context, getter Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("credentials: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("credentials: unmarshal paramstore token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("credentials: API token is empty")
	}
	return strings.TrimSpace(tp.Token), nil
}
