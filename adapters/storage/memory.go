package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmscope/core/campaign"
	"filmscope/core/contacts"
)

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	campaigns map[string]campaign.Campaign
	contacts  []contacts.Contact
	now       func() time.Time
	mu        sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns: make(map[string]campaign.Campaign),
		now:       nowFunc,
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New().String()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt

	s.campaigns[c.ID] = *c
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, notFound(id)
	}
	return &c, nil
}

func (s *MemoryStore) List(ctx context.Context, filter campaign.Filter) ([]campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []campaign.Campaign{}
	for _, c := range s.campaigns {
		if filter.Match(c) {
			results = append(results, c)
		}
	}
	campaign.SortNewestFirst(results)
	return filter.Page(results), nil
}

func (s *MemoryStore) Update(ctx context.Context, c *campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.campaigns[c.ID]
	if !ok {
		return notFound(c.ID)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()

	s.campaigns[c.ID] = *c
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.campaigns[id]; !ok {
		return notFound(id)
	}
	delete(s.campaigns, id)
	return nil
}

func (s *MemoryStore) ReplaceContacts(ctx context.Context, list []contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contacts = append([]contacts.Contact(nil), list...)
	return nil
}

func (s *MemoryStore) ListContacts(ctx context.Context) ([]contacts.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]contacts.Contact{}, s.contacts...), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
