// Package registry keeps the list of tracked standup users.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/store"
)

// DocumentKey is the store key of the user list.
const DocumentKey = "users"

// Registry is the set of tracked users, unique by id, persisted as a whole list.
type Registry struct {
	kv  store.Store
	log *zap.Logger

	mu    sync.RWMutex
	users []domain.TrackedUser
}

// Open loads the persisted user list; a missing document is an empty registry.
func Open(ctx context.Context, kv store.Store, log *zap.Logger) (*Registry, error) {
	r := &Registry{kv: kv, log: log}
	var users []domain.TrackedUser
	err := kv.Get(ctx, DocumentKey, &users)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := kv.Put(ctx, DocumentKey, []domain.TrackedUser{}); err != nil {
			log.Warn("write empty user list failed", zap.Error(err))
		}
	case err != nil:
		return nil, fmt.Errorf("load users: %w", err)
	}

	seen := make(map[string]bool, len(users))
	for _, u := range users {
		u.ID = strings.TrimSpace(u.ID)
		if u.ID == "" || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		r.users = append(r.users, u)
	}
	return r, nil
}

// Users returns a copy of the tracked users in registration order.
func (r *Registry) Users() []domain.TrackedUser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TrackedUser, len(r.users))
	copy(out, r.users)
	return out
}

// Get looks up a tracked user by id.
func (r *Registry) Get(id string) (domain.TrackedUser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.TrackedUser{}, false
}

// Add registers u. Adding an id twice returns ErrDuplicateUser.
func (r *Registry) Add(ctx context.Context, u domain.TrackedUser) error {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	r.mu.Lock()
	for _, existing := range r.users {
		if existing.ID == u.ID {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, existing.Name())
		}
	}
	r.users = append(r.users, u)
	snapshot := append([]domain.TrackedUser(nil), r.users...)
	r.mu.Unlock()

	r.log.Info("user added", zap.String("id", u.ID), zap.String("name", u.DisplayName))
	return r.persist(ctx, snapshot)
}

// Remove unregisters the user with id and returns the removed entry.
func (r *Registry) Remove(ctx context.Context, id string) (domain.TrackedUser, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	idx := -1
	for i, u := range r.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return domain.TrackedUser{}, fmt.Errorf("%w: %s", domain.ErrUnknownUser, id)
	}
	removed := r.users[idx]
	r.users = append(r.users[:idx:idx], r.users[idx+1:]...)
	snapshot := append([]domain.TrackedUser(nil), r.users...)
	r.mu.Unlock()

	r.log.Info("user removed", zap.String("id", removed.ID), zap.String("name", removed.DisplayName))
	return removed, r.persist(ctx, snapshot)
}

func (r *Registry) persist(ctx context.Context, users []domain.TrackedUser) error {
	if users == nil {
		users = []domain.TrackedUser{}
	}
	if err := r.kv.Put(ctx, DocumentKey, users); err != nil {
		r.log.Error("persist users failed", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrPersist, err)
	}
	return nil
}
