// internal/placement/engine.go
//
// The placement transition function.
// Responsibilities:
//   - Build the start state for a topology (Initial).
//   - Apply a drop intent to a state, returning the next state (Apply).
//   - Remove one explicit link (Unlink).
//
// Rules:
//   - Every operation is total. Unknown entities, unknown targets and targets of the
//     wrong kind return the input state unchanged with changed=false.
//   - Slots are not revocable: a placed entity cannot be dragged again, and an occupied
//     slot ignores drops unless the game declares the replace policy.
//   - Lanes and links are revocable: entities move between lanes and reorder within
//     them; links are replaced (newest wins) or deleted.
//   - The input state is never mutated.

package placement

import (
	"slices"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
)

// Intent is one drop: Entity released over Target.
type Intent struct {
	Entity string
	Target container.Target
}

// Engine applies intents against a fixed entity store and topology.
type Engine struct {
	store *entity.Store
	topo  *container.Topology
}

// NewEngine binds an engine to a validated store and topology.
func NewEngine(store *entity.Store, topo *container.Topology) *Engine {
	return &Engine{store: store, topo: topo}
}

// Initial returns the start state. pool orders the unplaced entities of a slot game;
// nil means store declaration order.
func (e *Engine) Initial(pool []string) State {
	switch e.topo.Kind {
	case container.KindSlot:
		if pool == nil {
			pool = e.store.IDs()
		}
		return SlotState{Occupants: map[string]string{}, Pool: slices.Clone(pool)}
	case container.KindLane:
		st := LaneState{
			Order: make([]string, 0, len(e.topo.Lanes)),
			Lanes: make(map[string][]string, len(e.topo.Lanes)),
		}
		for _, l := range e.topo.Lanes {
			st.Order = append(st.Order, l.ID)
			st.Lanes[l.ID] = append([]string{}, l.Items...)
		}
		return st
	default:
		return LinkState{Links: []Link{}}
	}
}

// Apply returns the state after intent and whether anything changed.
func (e *Engine) Apply(state State, intent Intent) (State, bool) {
	if intent.Target == nil {
		return state, false
	}
	switch st := state.(type) {
	case SlotState:
		if t, ok := intent.Target.(container.SlotTarget); ok {
			return e.applySlot(st, intent.Entity, t)
		}
	case LaneState:
		if t, ok := intent.Target.(container.LaneTarget); ok {
			return e.applyLane(st, intent.Entity, t)
		}
	case LinkState:
		if t, ok := intent.Target.(container.LinkTarget); ok {
			if t.Source == "" {
				t.Source = intent.Entity
			}
			if intent.Entity != "" && intent.Entity != t.Source {
				return state, false
			}
			return e.applyLink(st, t)
		}
	}
	return state, false
}

func (e *Engine) applySlot(st SlotState, ent string, t container.SlotTarget) (State, bool) {
	slot, ok := e.topo.Slot(t.Slot)
	if !ok || !e.store.Has(ent) {
		return st, false
	}
	// Only unplaced entities can move; a filled slot is final until reset.
	if !slices.Contains(st.Pool, ent) {
		return st, false
	}
	occupant, occupied := st.Occupants[slot.ID]

	switch e.topo.EffectivePolicy() {
	case container.PolicyExpectedOnly:
		if occupied || ent != slot.Expected {
			return st, false
		}
	case container.PolicyReplace:
	default:
		if occupied {
			return st, false
		}
	}

	next := st.Clone().(SlotState)
	next.Pool = slices.DeleteFunc(next.Pool, func(id string) bool { return id == ent })
	if occupied {
		next.Pool = append(next.Pool, occupant)
	}
	next.Occupants[slot.ID] = ent
	return next, true
}

func (e *Engine) applyLane(st LaneState, ent string, t container.LaneTarget) (State, bool) {
	from, oldIndex, ok := st.LaneOf(ent)
	if !ok {
		return st, false
	}
	target, ok := st.Lanes[t.Lane]
	if !ok {
		return st, false
	}
	newIndex := len(target)
	if t.Before != "" {
		if t.Before == ent {
			return st, false
		}
		if newIndex = slices.Index(target, t.Before); newIndex < 0 {
			return st, false
		}
	}

	next := st.Clone().(LaneState)
	if from == t.Lane {
		items := next.Lanes[from]
		if t.Before == "" {
			newIndex = len(items) - 1
		}
		if newIndex == oldIndex {
			return st, false
		}
		next.Lanes[from] = move(items, oldIndex, newIndex)
		return next, true
	}

	next.Lanes[from] = slices.Delete(next.Lanes[from], oldIndex, oldIndex+1)
	next.Lanes[t.Lane] = slices.Insert(next.Lanes[t.Lane], newIndex, ent)
	return next, true
}

// move relocates items[from] so that it ends up at index to, shifting the rest.
func move(items []string, from, to int) []string {
	v := items[from]
	items = slices.Delete(items, from, from+1)
	return slices.Insert(items, to, v)
}

func (e *Engine) applyLink(st LinkState, t container.LinkTarget) (State, bool) {
	if !e.topo.IsSource(t.Source) || !e.topo.IsSink(t.Sink) {
		return st, false
	}
	link := Link{Source: t.Source, Sink: t.Sink}
	if slices.Contains(st.Links, link) {
		return st, false
	}
	next := st.Clone().(LinkState)
	next.Links = slices.DeleteFunc(next.Links, func(l Link) bool {
		return l.Source == link.Source || l.Sink == link.Sink
	})
	next.Links = append(next.Links, link)
	return next, true
}

// Unlink removes exactly link. Other links are untouched.
func (e *Engine) Unlink(state State, link Link) (State, bool) {
	st, ok := state.(LinkState)
	if !ok || !slices.Contains(st.Links, link) {
		return state, false
	}
	next := st.Clone().(LinkState)
	next.Links = slices.DeleteFunc(next.Links, func(l Link) bool { return l == link })
	return next, true
}
