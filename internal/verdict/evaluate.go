// internal/verdict/evaluate.go
//
// Correctness evaluation for a placement state.
// Responsibilities:
//   - Validate an answer key against the entity store and topology.
//   - Derive completion, correctness and per-item feedback from a state.
//
// Evaluation never looks at how a state was reached; it is a pure function of the
// state and the key.

package verdict

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
	"github.com/robalobadob/minigames/internal/placement"
)

var ErrInvalidKey = errors.New("verdict: invalid answer key")

// Pair is a correct (source label, sink label) connection.
type Pair struct {
	Source string `json:"source" yaml:"source"`
	Sink   string `json:"sink" yaml:"sink"`
}

// OddOne names the entity that belongs in Lane.
type OddOne struct {
	Lane   string `json:"lane" yaml:"lane"`
	Entity string `json:"entity" yaml:"entity"`
}

// AnswerKey is the externally supplied definition of a correct placement.
// Only the part matching the game's topology kind is consulted.
type AnswerKey struct {
	// Slots maps slot id to the correct entity id.
	Slots map[string]string `json:"slots,omitempty" yaml:"slots,omitempty"`
	// MatchPayload accepts any entity whose payload equals the expected one,
	// so either copy of a repeated letter counts.
	MatchPayload bool    `json:"matchPayload,omitempty" yaml:"matchPayload,omitempty"`
	Pairs        []Pair  `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	OddOne       *OddOne `json:"oddOne,omitempty" yaml:"oddOne,omitempty"`
}

// Verdict is the evaluation result.
//
// Correct reports that nothing placed so far is wrong; Solved requires both.
// Made counts placements that count toward the key, Matched the correct ones and
// Total the size of the key. Score is Matched as a percentage of Total.
type Verdict struct {
	Complete bool            `json:"complete"`
	Correct  bool            `json:"correct"`
	Solved   bool            `json:"solved"`
	Items    map[string]bool `json:"items"`
	Made     int             `json:"made"`
	Matched  int             `json:"matched"`
	Total    int             `json:"total"`
	Score    int             `json:"score"`
}

// Validate rejects keys that reference slots, lanes, entities or labels the game
// does not have.
func (k AnswerKey) Validate(store *entity.Store, topo *container.Topology) error {
	switch topo.Kind {
	case container.KindSlot:
		if len(k.Slots) == 0 {
			return fmt.Errorf("%w: slot game without slot answers", ErrInvalidKey)
		}
		for slot, ent := range k.Slots {
			if _, ok := topo.Slot(slot); !ok {
				return fmt.Errorf("%w: unknown slot %q", ErrInvalidKey, slot)
			}
			if !store.Has(ent) {
				return fmt.Errorf("%w: slot %q expects unknown entity %q", ErrInvalidKey, slot, ent)
			}
		}
	case container.KindLink:
		if len(k.Pairs) == 0 {
			return fmt.Errorf("%w: link game without pairs", ErrInvalidKey)
		}
		sources := labels(store, topo.Sources)
		sinks := labels(store, topo.Sinks)
		for _, p := range k.Pairs {
			if !slices.Contains(sources, p.Source) || !slices.Contains(sinks, p.Sink) {
				return fmt.Errorf("%w: pair %q-%q has no matching endpoints", ErrInvalidKey, p.Source, p.Sink)
			}
		}
	case container.KindLane:
		if k.OddOne == nil {
			return nil
		}
		if _, ok := topo.Lane(k.OddOne.Lane); !ok {
			return fmt.Errorf("%w: unknown lane %q", ErrInvalidKey, k.OddOne.Lane)
		}
		if !store.Has(k.OddOne.Entity) {
			return fmt.Errorf("%w: unknown odd entity %q", ErrInvalidKey, k.OddOne.Entity)
		}
	}
	return nil
}

func labels(store *entity.Store, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, store.Payload(id))
	}
	return out
}

// Evaluate computes the verdict of state against key. For odd-one-out games the
// last item of the odd-one lane stands for the most recent drop.
func Evaluate(store *entity.Store, state placement.State, key AnswerKey) Verdict {
	return EvaluateDrop(store, state, key, "")
}

// EvaluateDrop is Evaluate with the entity most recently dropped into the odd-one
// lane. An empty dropped, or one no longer in that lane, falls back to the last item.
func EvaluateDrop(store *entity.Store, state placement.State, key AnswerKey, dropped string) Verdict {
	var v Verdict
	switch st := state.(type) {
	case placement.SlotState:
		v = evaluateSlots(store, st, key)
	case placement.LaneState:
		v = evaluateLanes(st, key, dropped)
	case placement.LinkState:
		v = evaluateLinks(store, st, key)
	default:
		v = Verdict{Items: map[string]bool{}}
	}
	v.Solved = v.Complete && v.Correct
	if v.Total > 0 {
		v.Score = int(math.Round(100 * float64(v.Matched) / float64(v.Total)))
	}
	return v
}

func evaluateSlots(store *entity.Store, st placement.SlotState, key AnswerKey) Verdict {
	v := Verdict{Items: make(map[string]bool, len(st.Occupants)), Total: len(key.Slots), Correct: true}
	for slot, want := range key.Slots {
		got, ok := st.Occupants[slot]
		if !ok {
			continue
		}
		v.Made++
		right := got == want || (key.MatchPayload && store.Payload(got) == store.Payload(want))
		v.Items[slot] = right
		if right {
			v.Matched++
		} else {
			v.Correct = false
		}
	}
	v.Complete = v.Made == v.Total
	return v
}

// evaluateLanes only answers the odd-one-out question; lanes have no correct arrangement.
// The answer is the dropped entity, not whatever happens to sit at the end of the lane.
func evaluateLanes(st placement.LaneState, key AnswerKey, dropped string) Verdict {
	v := Verdict{Items: map[string]bool{}}
	if key.OddOne == nil {
		return v
	}
	v.Total = 1
	zone := st.Lanes[key.OddOne.Lane]
	for _, id := range zone {
		v.Items[id] = id == key.OddOne.Entity
	}
	v.Made = len(zone)
	if len(zone) == 0 {
		return v
	}
	if !slices.Contains(zone, dropped) {
		dropped = zone[len(zone)-1]
	}
	v.Complete = true
	v.Correct = dropped == key.OddOne.Entity
	if v.Correct {
		v.Matched = 1
	}
	return v
}

func evaluateLinks(store *entity.Store, st placement.LinkState, key AnswerKey) Verdict {
	v := Verdict{Items: make(map[string]bool, len(st.Links)), Total: len(key.Pairs), Made: len(st.Links)}
	found := make(map[Pair]struct{}, len(key.Pairs))
	for _, l := range st.Links {
		p := Pair{Source: store.Payload(l.Source), Sink: store.Payload(l.Sink)}
		right := slices.Contains(key.Pairs, p)
		v.Items[l.Source] = right
		if right {
			found[p] = struct{}{}
		}
	}
	v.Matched = len(found)
	v.Complete = v.Matched == v.Total
	v.Correct = v.Complete
	return v
}
