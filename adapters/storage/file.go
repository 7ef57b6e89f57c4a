package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmscope/core/campaign"
	"filmscope/core/contacts"
	"filmscope/internal/errors"
)

// FileStore is a file-based storage backend. Each campaign is one JSON
// document under campaigns/; the contact list is a single contacts.json.
type FileStore struct {
	basePath string
	now      func() time.Time
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "campaigns"), 0755); err != nil {
		return nil, errors.Storage("failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath, now: nowFunc}, nil
}

// campaignPath returns the document path for id. IDs that are not UUIDs
// never name a file, so they cannot escape the storage directory.
func (s *FileStore) campaignPath(id string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return filepath.Join(s.basePath, "campaigns", id+".json"), true
}

func (s *FileStore) Create(ctx context.Context, c *campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New().String()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt

	path, _ := s.campaignPath(c.ID)
	return writeJSON(path, c)
}

func (s *FileStore) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(id)
}

func (s *FileStore) read(id string) (*campaign.Campaign, error) {
	path, ok := s.campaignPath(id)
	if !ok {
		return nil, notFound(id)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Storage("failed to read campaign", err)
	}

	var c campaign.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Storage("failed to unmarshal campaign", err)
	}
	return &c, nil
}

func (s *FileStore) List(ctx context.Context, filter campaign.Filter) ([]campaign.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.basePath, "campaigns"))
	if err != nil {
		return nil, errors.Storage("failed to read storage", err)
	}

	results := []campaign.Campaign{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, "campaigns", entry.Name()))
		if err != nil {
			continue
		}

		var c campaign.Campaign
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}

		if filter.Match(c) {
			results = append(results, c)
		}
	}

	campaign.SortNewestFirst(results)
	return filter.Page(results), nil
}

func (s *FileStore) Update(ctx context.Context, c *campaign.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()

	path, _ := s.campaignPath(c.ID)
	return writeJSON(path, c)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.campaignPath(id)
	if !ok {
		return notFound(id)
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return errors.Storage("failed to delete campaign", err)
	}
	return nil
}

func (s *FileStore) ReplaceContacts(ctx context.Context, list []contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list == nil {
		list = []contacts.Contact{}
	}
	return writeJSON(filepath.Join(s.basePath, "contacts.json"), list)
}

func (s *FileStore) ListContacts(ctx context.Context) ([]contacts.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.basePath, "contacts.json"))
	if os.IsNotExist(err) {
		return []contacts.Contact{}, nil
	}
	if err != nil {
		return nil, errors.Storage("failed to read contacts", err)
	}

	list := []contacts.Contact{}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Storage("failed to unmarshal contacts", err)
	}
	return list, nil
}

func (s *FileStore) Close() error {
	return nil
}

// writeJSON replaces path atomically via a temp file and rename
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Storage("failed to marshal record", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Storage("failed to write record", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Storage("failed to write record", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Storage("failed to write record", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Storage("failed to write record", err)
	}
	return nil
}
