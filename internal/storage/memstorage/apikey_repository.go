package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/license-gate/internal/domain/apikey"
	"github.com/makkenzo/license-gate/internal/ierr"
)

type APIKeyRepository struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]*apikey.APIKey
}

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{
		keys: make(map[uuid.UUID]*apikey.APIKey),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) FindByPrefix(_ context.Context, prefix string) (*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, k := range r.keys {
		if k.Prefix == prefix && k.IsEnabled {
			keyCopy := *k
			return &keyCopy, nil
		}
	}
	return nil, apikey.ErrAPIKeyNotFound
}

func (r *APIKeyRepository) Create(_ context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range r.keys {
		if k.Prefix == key.Prefix {
			return uuid.Nil, ierr.ErrConflict
		}
	}

	stored := *key
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.keys[stored.ID] = &stored
	return stored.ID, nil
}

func (r *APIKeyRepository) List(_ context.Context) ([]*apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*apikey.APIKey, 0, len(r.keys))
	for _, k := range r.keys {
		keyCopy := *k
		out = append(out, &keyCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *APIKeyRepository) Disable(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[id]
	if !ok {
		return apikey.ErrAPIKeyNotFound
	}
	k.IsEnabled = false
	return nil
}

func (r *APIKeyRepository) UpdateLastUsed(_ context.Context, id uuid.UUID, lastUsed time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k, ok := r.keys[id]; ok {
		k.LastUsedAt = &lastUsed
	}
	return nil
}
