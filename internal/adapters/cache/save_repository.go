package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/timba/internal/adapters/saverepository"
	"github.com/Amund211/timba/internal/domain"
)

// saveRepository fronts a save store with a write-through cache.
//
// Writes must be serialized per player (see PlayerLocks) for the cache to stay coherent.
type saveRepository struct {
	cache Cache[domain.Save]
	store saverepository.SaveRepository
}

func NewSaveRepository(store saverepository.SaveRepository, cache Cache[domain.Save]) *saveRepository {
	return &saveRepository{
		cache: cache,
		store: store,
	}
}

func (r *saveRepository) GetSave(ctx context.Context, playerID string) (domain.Save, error) {
	save, _, err := GetOrCreate(ctx, r.cache, playerID, func() (domain.Save, error) {
		return r.store.GetSave(ctx, playerID)
	})
	if err != nil {
		return domain.Save{}, err
	}

	// Callers may mutate the maps
	save.State = save.State.Clone()
	return save, nil
}

func (r *saveRepository) StoreSave(ctx context.Context, save domain.Save) error {
	err := r.store.StoreSave(ctx, save)
	if err != nil {
		r.cache.delete(save.PlayerID)
		return fmt.Errorf("failed to store save: %w", err)
	}

	save.State = save.State.Clone()
	r.cache.set(save.PlayerID, save)
	return nil
}

func NewTTLSaveCache(ttl time.Duration) Cache[domain.Save] {
	return NewTTLCache[domain.Save](ttl)
}
