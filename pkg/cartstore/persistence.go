package cartstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// persistedState is the on-disk shape. The id mapping is serialized as an
// array of pairs keyed by "<productID>_<formatID>".
type persistedState struct {
	Items   []Item        `json:"items"`
	Mapping []mappingPair `json:"cartItemIdMapping"`
}

type mappingPair struct {
	Key string    `json:"key"`
	ID  uuid.UUID `json:"id"`
}

func encodeKey(key Key) string {
	return key.ProductID.String() + "_" + key.FormatID.String()
}

func decodeKey(raw string) (Key, error) {
	parts := strings.SplitN(raw, "_", 2)
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("malformed mapping key %q", raw)
	}
	productID, err := uuid.Parse(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("malformed product id in mapping key %q: %w", raw, err)
	}
	formatID, err := uuid.Parse(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("malformed format id in mapping key %q: %w", raw, err)
	}
	return Key{ProductID: productID, FormatID: formatID}, nil
}

// Load replaces the in-memory state with the persisted file. A missing file
// leaves the store empty and is not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cart file: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode cart file: %w", err)
	}

	mapping := make(map[Key]uuid.UUID, len(state.Mapping))
	for _, pair := range state.Mapping {
		key, err := decodeKey(pair.Key)
		if err != nil {
			return err
		}
		mapping[key] = pair.ID
	}

	s.items = state.Items
	s.mapping = mapping
	return nil
}

// Save writes the current state to the persistence path.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save assumes the caller holds the mutex.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	state := persistedState{
		Items:   s.items,
		Mapping: make([]mappingPair, 0, len(s.mapping)),
	}
	for key, id := range s.mapping {
		state.Mapping = append(state.Mapping, mappingPair{Key: encodeKey(key), ID: id})
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cart dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write cart file: %w", err)
	}
	return nil
}
