package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/timba/internal/adapters/cache"
	"github.com/Amund211/timba/internal/domain"
)

type fakeSaveRepository struct {
	mu sync.Mutex

	saves      map[string]domain.Save
	storeCalls int
	getErr     error
	storeErr   error
}

func newFakeSaveRepository(saves ...domain.Save) *fakeSaveRepository {
	repo := &fakeSaveRepository{saves: map[string]domain.Save{}}
	for _, save := range saves {
		repo.saves[save.PlayerID] = save
	}
	return repo
}

func (r *fakeSaveRepository) GetSave(ctx context.Context, playerID string) (domain.Save, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return domain.Save{}, r.getErr
	}
	save, ok := r.saves[playerID]
	if !ok {
		return domain.Save{}, domain.ErrSaveNotFound
	}
	save.State = save.State.Clone()
	return save, nil
}

func (r *fakeSaveRepository) StoreSave(ctx context.Context, save domain.Save) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeErr != nil {
		return r.storeErr
	}
	r.storeCalls++
	save.State = save.State.Clone()
	r.saves[save.PlayerID] = save
	return nil
}

func (r *fakeSaveRepository) get(playerID string) (domain.Save, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	save, ok := r.saves[playerID]
	return save, ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]PlayerEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: map[string][]PlayerEvent{}}
}

func (p *recordingPublisher) Publish(ctx context.Context, playerID string, events ...PlayerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[playerID] = append(p.events[playerID], events...)
}

func (p *recordingPublisher) typesFor(playerID string) []PlayerEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]PlayerEventType, 0, len(p.events[playerID]))
	for _, event := range p.events[playerID] {
		types = append(types, event.Type)
	}
	return types
}

func newTestDeps(t *testing.T, repo *fakeSaveRepository, publisher *recordingPublisher, now time.Time) PlayerDeps {
	t.Helper()

	locks, stop := cache.NewPlayerLocks(time.Minute)
	t.Cleanup(stop)

	return PlayerDeps{
		Repo:      repo,
		Locks:     locks,
		Publisher: publisher,
		Rules:     domain.DefaultRules(),
		NowFunc:   func() time.Time { return now },
	}
}
