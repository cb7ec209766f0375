package catalog

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-tenant bootstrap
// setups where no external registry exists yet.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	stages  map[string]ProvisioningState
}

// ProvisioningState is the last provisioning stage a tenant reached,
// with the cause when the stage failed.
type ProvisioningState struct {
	Stage string
	Cause string
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		stages:  make(map[string]ProvisioningState),
	}
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	rec = rec.Normalized()
	return &rec, nil
}

func (s *MemoryStore) Create(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return ErrTenantExists
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return ErrTenantNotFound
	}
	rec.Active = active
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) SetProvisioningState(ctx context.Context, id, stage, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrTenantNotFound
	}
	s.stages[id] = ProvisioningState{Stage: stage, Cause: cause}
	return nil
}

// ProvisioningStateOf returns the recorded provisioning state for a tenant.
// Test helper; the durable stores persist the same fields on the row.
func (s *MemoryStore) ProvisioningStateOf(id string) (ProvisioningState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.stages[id]
	return state, ok
}
