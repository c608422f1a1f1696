// internal/placement/state.go
//
// Placement state variants. Exactly one variant exists per game, matching the
// topology kind:
//   - SlotState: slot id → occupant, plus the pool of unplaced entities.
//   - LaneState: lane id → ordered entity ids; a partition of all entities.
//   - LinkState: links where every source and every sink appears at most once.
//
// States are treated as values: the engine clones before changing anything, so a
// caller holding an old state never observes a later transition.

package placement

import (
	"maps"
	"slices"

	"github.com/robalobadob/minigames/internal/container"
)

// State is implemented by SlotState, LaneState and LinkState only.
type State interface {
	Kind() container.Kind
	Clone() State
}

// SlotState records slot occupants. Absence from Occupants means empty.
type SlotState struct {
	Occupants map[string]string `json:"occupants"`
	Pool      []string          `json:"pool"`
}

// LaneState keeps lanes in topology order.
type LaneState struct {
	Order []string            `json:"order"`
	Lanes map[string][]string `json:"lanes"`
}

// Link joins one source endpoint to one sink endpoint.
type Link struct {
	Source string `json:"source"`
	Sink   string `json:"sink"`
}

// LinkState holds links in creation order.
type LinkState struct {
	Links []Link `json:"links"`
}

func (SlotState) Kind() container.Kind { return container.KindSlot }
func (LaneState) Kind() container.Kind { return container.KindLane }
func (LinkState) Kind() container.Kind { return container.KindLink }

func (s SlotState) Clone() State {
	out := SlotState{
		Occupants: maps.Clone(s.Occupants),
		Pool:      slices.Clone(s.Pool),
	}
	if out.Occupants == nil {
		out.Occupants = map[string]string{}
	}
	return out
}

func (s LaneState) Clone() State {
	out := LaneState{
		Order: slices.Clone(s.Order),
		Lanes: make(map[string][]string, len(s.Lanes)),
	}
	for id, items := range s.Lanes {
		out.Lanes[id] = slices.Clone(items)
	}
	return out
}

func (s LinkState) Clone() State {
	return LinkState{Links: slices.Clone(s.Links)}
}

// SlotOf returns the slot currently holding entity.
func (s SlotState) SlotOf(entity string) (string, bool) {
	for slot, occupant := range s.Occupants {
		if occupant == entity {
			return slot, true
		}
	}
	return "", false
}

// LaneOf returns the lane and index of entity.
func (s LaneState) LaneOf(entity string) (string, int, bool) {
	for _, lane := range s.Order {
		if i := slices.Index(s.Lanes[lane], entity); i >= 0 {
			return lane, i, true
		}
	}
	return "", -1, false
}

// LinkOf returns the link that uses endpoint on either side.
func (s LinkState) LinkOf(endpoint string) (Link, bool) {
	for _, l := range s.Links {
		if l.Source == endpoint || l.Sink == endpoint {
			return l, true
		}
	}
	return Link{}, false
}
