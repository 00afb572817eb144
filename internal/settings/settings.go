// Package settings persists per-user dashboard preferences. It is an
// injected service rather than ambient global state so the orchestrator
// and handlers stay testable.
package settings

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xandalyze/xandalyze/internal/store"
)

const settingsKey = "settings"

// Settings are the persisted user preferences. CustomAPIKey, when set,
// overrides the process-wide completion credential.
type Settings struct {
	CustomAPIKey string `json:"custom_api_key,omitempty"`
	Theme        string `json:"theme,omitempty"`
}

// Service loads and stores the settings blob. A corrupt persisted blob
// is treated as absent.
type Service struct {
	mu sync.RWMutex
	kv store.KV
	s  Settings
}

// NewService restores persisted settings from kv.
func NewService(ctx context.Context, kv store.KV) *Service {
	svc := &Service{kv: kv}
	data, ok, err := kv.Get(ctx, settingsKey)
	if err != nil || !ok {
		return svc
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return svc
	}
	svc.s = s
	return svc
}

// Get returns the current settings.
func (svc *Service) Get() Settings {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.s
}

// Update merges non-zero fields of patch into the stored settings and
// persists the result.
func (svc *Service) Update(ctx context.Context, patch Settings) (Settings, error) {
	svc.mu.Lock()
	if patch.CustomAPIKey != "" {
		svc.s.CustomAPIKey = patch.CustomAPIKey
	}
	if patch.Theme != "" {
		svc.s.Theme = patch.Theme
	}
	current := svc.s
	svc.mu.Unlock()

	data, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	return current, svc.kv.Put(ctx, settingsKey, data)
}

// ClearKey removes the stored credential override.
func (svc *Service) ClearKey(ctx context.Context) (Settings, error) {
	svc.mu.Lock()
	svc.s.CustomAPIKey = ""
	current := svc.s
	svc.mu.Unlock()

	data, err := json.Marshal(current)
	if err != nil {
		return current, err
	}
	return current, svc.kv.Put(ctx, settingsKey, data)
}
