package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"FolioPulse/internal/domain/models"
)

// ErrHoldingNotFound is returned for lookups and edits on unknown ids.
var ErrHoldingNotFound = errors.New("holding not found")

// FileHoldingsStore persists the holdings list as a JSON file. Edits replace
// records wholesale and the file is rewritten atomically via temp-file +
// rename, so readers never observe a partial write.
type FileHoldingsStore struct {
	mu   sync.RWMutex
	path string
}

func NewFileHoldingsStore(path string) (*FileHoldingsStore, error) {
	s := &FileHoldingsStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, fmt.Errorf("init holdings file: %w", err)
		}
	}
	return s, nil
}

func (s *FileHoldingsStore) read() ([]models.Investment, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read holdings: %w", err)
	}
	var list []models.Investment
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse holdings: %w", err)
	}
	return list, nil
}

func (s *FileHoldingsStore) write(list []models.Investment) error {
	if list == nil {
		list = []models.Investment{}
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal holdings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".holdings-*")
	if err != nil {
		return fmt.Errorf("temp holdings file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write holdings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close holdings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace holdings: %w", err)
	}
	return nil
}

func (s *FileHoldingsStore) List(_ context.Context) ([]models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *FileHoldingsStore) Get(_ context.Context, id string) (models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, err := s.read()
	if err != nil {
		return models.Investment{}, err
	}
	for _, inv := range list {
		if inv.ID == id {
			return inv, nil
		}
	}
	return models.Investment{}, ErrHoldingNotFound
}

// Add validates and persists a new holding, minting an id when absent.
func (s *FileHoldingsStore) Add(_ context.Context, inv models.Investment) (models.Investment, error) {
	if err := inv.Validate(); err != nil {
		return models.Investment{}, err
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.Quantity = inv.AmountInvested / inv.EntryPrice

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return models.Investment{}, err
	}
	list = append(list, inv)
	if err := s.write(list); err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

// Replace swaps the record with the same id in one shot.
func (s *FileHoldingsStore) Replace(_ context.Context, inv models.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	inv.Quantity = inv.AmountInvested / inv.EntryPrice

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == inv.ID {
			list[i] = inv
			return s.write(list)
		}
	}
	return ErrHoldingNotFound
}

func (s *FileHoldingsStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.read()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list = append(list[:i], list[i+1:]...)
			return s.write(list)
		}
	}
	return ErrHoldingNotFound
}
