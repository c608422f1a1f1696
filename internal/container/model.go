// internal/container/model.go
//
// Drop destinations for the placement engine.
//
// A Topology is one of three kinds:
//   - slot: unordered capacity-1 slots (fill in the blanks, number puzzle, quiz pick).
//   - lane: ordered, unbounded lists grouped under a bucket (kanban, odd one out).
//   - link: source and sink endpoints joined by at most one link each (graph matching).
//
// Targets are the tagged variant the engine dispatches on. Each target kind only
// makes sense against the topology of the same kind.

package container

import (
	"errors"
	"fmt"
	"slices"

	"github.com/robalobadob/minigames/internal/entity"
)

// Kind names the container family of a game.
type Kind string

const (
	KindSlot Kind = "slot"
	KindLane Kind = "lane"
	KindLink Kind = "link"
)

// SlotPolicy decides what a drop onto a slot may do.
type SlotPolicy string

const (
	// PolicyExclusive ignores drops onto an occupied slot.
	PolicyExclusive SlotPolicy = "exclusive"
	// PolicyReplace swaps the occupant out; it goes back to the pool.
	PolicyReplace SlotPolicy = "replace"
	// PolicyExpectedOnly ignores drops of anything but the slot's expected entity.
	PolicyExpectedOnly SlotPolicy = "expected-only"
)

var ErrInvalidTopology = errors.New("container: invalid topology")

// Slot is a capacity-1 destination. Expected is optional; Label is display text.
type Slot struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Lane is an ordered list. Items is the initial content.
type Lane struct {
	ID     string   `json:"id" yaml:"id"`
	Bucket string   `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Items  []string `json:"items" yaml:"items"`
}

// Topology is the static container layout of one game.
type Topology struct {
	Kind    Kind       `json:"kind" yaml:"kind"`
	Policy  SlotPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
	Slots   []Slot     `json:"slots,omitempty" yaml:"slots,omitempty"`
	Lanes   []Lane     `json:"lanes,omitempty" yaml:"lanes,omitempty"`
	Sources []string   `json:"sources,omitempty" yaml:"sources,omitempty"`
	Sinks   []string   `json:"sinks,omitempty" yaml:"sinks,omitempty"`
}

// Slot returns the slot with id.
func (t *Topology) Slot(id string) (Slot, bool) {
	i := slices.IndexFunc(t.Slots, func(s Slot) bool { return s.ID == id })
	if i < 0 {
		return Slot{}, false
	}
	return t.Slots[i], true
}

// Lane returns the lane with id.
func (t *Topology) Lane(id string) (Lane, bool) {
	i := slices.IndexFunc(t.Lanes, func(l Lane) bool { return l.ID == id })
	if i < 0 {
		return Lane{}, false
	}
	return t.Lanes[i], true
}

func (t *Topology) IsSource(id string) bool { return slices.Contains(t.Sources, id) }
func (t *Topology) IsSink(id string) bool   { return slices.Contains(t.Sinks, id) }

// EffectivePolicy returns the slot policy, defaulting to PolicyExclusive.
func (t *Topology) EffectivePolicy() SlotPolicy {
	if t.Policy == "" {
		return PolicyExclusive
	}
	return t.Policy
}

// Validate checks the topology against the entity store.
// A topology that fails validation must never reach the engine.
func (t *Topology) Validate(store *entity.Store) error {
	switch t.Kind {
	case KindSlot:
		return t.validateSlots(store)
	case KindLane:
		return t.validateLanes(store)
	case KindLink:
		return t.validateLinks(store)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTopology, t.Kind)
	}
}

func (t *Topology) validateSlots(store *entity.Store) error {
	if len(t.Slots) == 0 {
		return fmt.Errorf("%w: no slots", ErrInvalidTopology)
	}
	policy := t.EffectivePolicy()
	switch policy {
	case PolicyExclusive, PolicyReplace, PolicyExpectedOnly:
	default:
		return fmt.Errorf("%w: unknown slot policy %q", ErrInvalidTopology, policy)
	}
	seen := make(map[string]struct{}, len(t.Slots))
	for _, s := range t.Slots {
		if s.ID == "" {
			return fmt.Errorf("%w: empty slot id", ErrInvalidTopology)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate slot %q", ErrInvalidTopology, s.ID)
		}
		if store.Has(s.ID) {
			return fmt.Errorf("%w: slot %q collides with an entity id", ErrInvalidTopology, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Expected != "" && !store.Has(s.Expected) {
			return fmt.Errorf("%w: slot %q expects unknown entity %q", ErrInvalidTopology, s.ID, s.Expected)
		}
		if policy == PolicyExpectedOnly && s.Expected == "" {
			return fmt.Errorf("%w: slot %q needs an expected entity", ErrInvalidTopology, s.ID)
		}
	}
	return nil
}

// validateLanes enforces that the lanes partition the entity set.
func (t *Topology) validateLanes(store *entity.Store) error {
	if len(t.Lanes) == 0 {
		return fmt.Errorf("%w: no lanes", ErrInvalidTopology)
	}
	laneIDs := make(map[string]struct{}, len(t.Lanes))
	placed := make(map[string]string, store.Len())
	for _, l := range t.Lanes {
		if l.ID == "" {
			return fmt.Errorf("%w: empty lane id", ErrInvalidTopology)
		}
		if _, dup := laneIDs[l.ID]; dup {
			return fmt.Errorf("%w: duplicate lane %q", ErrInvalidTopology, l.ID)
		}
		if store.Has(l.ID) {
			return fmt.Errorf("%w: lane %q collides with an entity id", ErrInvalidTopology, l.ID)
		}
		laneIDs[l.ID] = struct{}{}
		for _, id := range l.Items {
			if !store.Has(id) {
				return fmt.Errorf("%w: lane %q holds unknown entity %q", ErrInvalidTopology, l.ID, id)
			}
			if other, dup := placed[id]; dup {
				return fmt.Errorf("%w: entity %q in lanes %q and %q", ErrInvalidTopology, id, other, l.ID)
			}
			placed[id] = l.ID
		}
	}
	if len(placed) != store.Len() {
		return fmt.Errorf("%w: %d of %d entities placed in lanes", ErrInvalidTopology, len(placed), store.Len())
	}
	return nil
}

func (t *Topology) validateLinks(store *entity.Store) error {
	if len(t.Sources) == 0 || len(t.Sinks) == 0 {
		return fmt.Errorf("%w: link games need sources and sinks", ErrInvalidTopology)
	}
	seen := make(map[string]struct{}, len(t.Sources)+len(t.Sinks))
	for _, id := range slices.Concat(t.Sources, t.Sinks) {
		if !store.Has(id) {
			return fmt.Errorf("%w: endpoint %q is not an entity", ErrInvalidTopology, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: endpoint %q listed twice", ErrInvalidTopology, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
