package repofake

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-intern-portal/credentials"
)

// FakeCredentialRepo is an in-memory credentials.Repo. It also backs CREDENTIAL_STORE=memory.
type FakeCredentialRepo struct {
	mu    sync.RWMutex
	slots map[string]string

	// Err, when set, is returned by every operation.
	Err error
}

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{slots: make(map[string]string)}
}

func (r *FakeCredentialRepo) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return "", r.Err
	}
	value, ok := r.slots[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return value, nil
}

func (r *FakeCredentialRepo) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.slots[key] = value
	return nil
}

func (r *FakeCredentialRepo) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.slots, key)
	return nil
}

// Has reports whether the slot is present, without going through Get's error path.
func (r *FakeCredentialRepo) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slots[key]
	return ok
}
