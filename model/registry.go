package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/spetersoncode/mediagen"
)

// Registry is an in-memory catalog of resolved models with one active
// model and the credentials needed to reach them. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]*mediagen.ResolvedModel
	order     []string
	active    string
	keys      map[mediagen.API]string
	modelKeys map[string]string
	baseURLs  map[mediagen.API]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		models:    make(map[string]*mediagen.ResolvedModel),
		keys:      make(map[mediagen.API]string),
		modelKeys: make(map[string]string),
		baseURLs:  make(map[mediagen.API]string),
	}
}

// Register adds or replaces a model. The first registered model becomes
// active.
func (r *Registry) Register(m *mediagen.ResolvedModel) {
	if m == nil || m.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[m.ID]; !exists {
		r.order = append(r.order, m.ID)
	}
	r.models[m.ID] = clone(m)
	if r.active == "" {
		r.active = m.ID
	}
}

// SetActive selects the model used when a call names none.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.models[id]; !ok {
		return fmt.Errorf("model %q is not registered", id)
	}
	r.active = id
	return nil
}

// SetAPIKey sets the credential for every model speaking api.
func (r *Registry) SetAPIKey(api mediagen.API, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[api] = key
}

// SetModelAPIKey sets a credential for one model, overriding its API's key.
func (r *Registry) SetModelAPIKey(id, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modelKeys[id] = key
}

// SetBaseURL sets the origin for models speaking api whose descriptor
// carries no base URL.
func (r *Registry) SetBaseURL(api mediagen.API, baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURLs[api] = baseURL
}

// ActiveImageModel returns a copy of the active model.
func (r *Registry) ActiveImageModel() (*mediagen.ResolvedModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[r.active]
	if !ok {
		return nil, false
	}
	return clone(m), true
}

// Model returns a copy of the registered model with the given id.
func (r *Registry) Model(id string) (*mediagen.ResolvedModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, false
	}
	return clone(m), true
}

// Models returns copies of all registered models in registration order.
func (r *Registry) Models() []*mediagen.ResolvedModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*mediagen.ResolvedModel, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.models[id]))
	}
	return out
}

// APIKey returns the credential for a model: its own key, then its API's
// key. Unknown models fall back to the Gemini key.
func (r *Registry) APIKey(modelID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if key := r.modelKeys[modelID]; key != "" {
		return key
	}
	return r.keys[r.apiOf(modelID)]
}

// BaseURL returns the configured origin for a model's API.
func (r *Registry) BaseURL(modelID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseURLs[r.apiOf(modelID)]
}

// apiOf must be called with r.mu held.
func (r *Registry) apiOf(modelID string) mediagen.API {
	if m, ok := r.models[modelID]; ok {
		return m.APIOrDefault()
	}
	if m, ok := Lookup(modelID); ok {
		return m.API()
	}
	return mediagen.APIGemini
}

func clone(m *mediagen.ResolvedModel) *mediagen.ResolvedModel {
	c := *m
	c.SupportedAspectRatios = slices.Clone(m.SupportedAspectRatios)
	return &c
}
