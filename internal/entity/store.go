// internal/entity/store.go
//
// Immutable catalogue of movable game items (letters, words, numbers, cards).
// A Store is built once per session and never changes afterwards; every other
// package refers to entities by their stable ID.

package entity

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID     = errors.New("entity: empty id")
	ErrDuplicateID = errors.New("entity: duplicate id")
)

// Entity is a single movable item. Payload is opaque to the engine.
type Entity struct {
	ID      string `json:"id" yaml:"id"`
	Payload string `json:"payload" yaml:"payload"`
}

// Store holds the entities of one session keyed by ID.
type Store struct {
	order []string
	byID  map[string]Entity
}

// New validates the entities and builds a Store that keeps declaration order.
func New(entities ...Entity) (*Store, error) {
	s := &Store{
		order: make([]string, 0, len(entities)),
		byID:  make(map[string]Entity, len(entities)),
	}
	for _, e := range entities {
		if e.ID == "" {
			return nil, ErrEmptyID
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
		}
		s.byID[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s, nil
}

// Lookup returns the entity with id.
func (s *Store) Lookup(id string) (Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Payload returns the payload of id, or "" when unknown.
func (s *Store) Payload(id string) string {
	return s.byID[id].Payload
}

// IDs returns a copy of all ids in declaration order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) Len() int { return len(s.order) }
