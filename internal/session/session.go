// internal/session/session.go
//
// Per-game interaction controller.
// Responsibilities:
//   - Validate a game configuration once, refusing to start on any inconsistency.
//   - Track the entity currently grabbed between drag-start and drag-end.
//   - Resolve raw drop target ids against the topology and hand intents to the engine.
//   - Re-evaluate the verdict after every transition and expose a combined View.
//
// States:
//   idle --DragStart(e)--> dragging(e)
//   dragging(e) --DragEnd(no target)--> idle (placement unchanged)
//   dragging(e) --DragEnd(target)--> idle (apply, then evaluate)
//   any --Reset--> idle with the initial placement
//   any --Next--> idle on the following round, wrapping after the last
//
// A Session is not safe for concurrent use; callers serialise access
// (see internal/store).

package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
	"github.com/robalobadob/minigames/internal/placement"
	"github.com/robalobadob/minigames/internal/verdict"
)

var ErrInvalidConfig = errors.New("session: invalid configuration")

// Shuffler randomises order and picks the opening round. *rand.Rand from
// math/rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
	Intn(n int) int
}

// Phase is the interaction state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

// Config is the static, game-specific input of one round.
type Config struct {
	Game string
	// Prompt, Category and Explanation are display text. Explanation is only
	// shown once the round is complete.
	Prompt      string
	Category    string
	Explanation string

	Entities []entity.Entity
	Topology container.Topology
	Key      verdict.AnswerKey
	// ShufflePool reorders the unplaced entities of a slot game on start and reset.
	ShufflePool bool
	// ShuffleEndpoints reorders link sources and sinks on start and reset.
	ShuffleEndpoints bool
}

// round is one validated configuration with its own entities and engine.
type round struct {
	cfg    Config
	store  *entity.Store
	engine *placement.Engine
}

// Session owns one game's placement state.
type Session struct {
	rounds  []round
	current int

	cfg    Config
	store  *entity.Store
	engine *placement.Engine
	rng    Shuffler

	// active is the grabbed entity; empty while idle.
	active string
	// dropped is the entity most recently dropped into the odd-one lane.
	dropped string
	state   placement.State
	verdict verdict.Verdict
	moves   int

	pool    []string
	sources []string
	sinks   []string
}

// New validates cfg and returns a single-round session in its initial state.
// rng may be nil, in which case nothing is shuffled.
func New(cfg Config, rng Shuffler) (*Session, error) {
	return NewSeries([]Config{cfg}, false, rng)
}

// NewSeries validates every round and starts on the first one, or on a random
// one when randomStart is set and rng is non-nil.
func NewSeries(cfgs []Config, randomStart bool, rng Shuffler) (*Session, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("%w: no rounds", ErrInvalidConfig)
	}
	s := &Session{rounds: make([]round, 0, len(cfgs)), rng: rng}
	for i, cfg := range cfgs {
		r, err := newRound(cfg)
		if err != nil {
			if len(cfgs) > 1 {
				return nil, fmt.Errorf("round %d: %w", i+1, err)
			}
			return nil, err
		}
		s.rounds = append(s.rounds, r)
	}
	start := 0
	if randomStart && rng != nil {
		start = rng.Intn(len(s.rounds))
	}
	s.enter(start)
	return s, nil
}

func newRound(cfg Config) (round, error) {
	store, err := entity.New(cfg.Entities...)
	if err != nil {
		return round{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Topology.Validate(store); err != nil {
		return round{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Topology.Kind == container.KindSlot && len(cfg.Key.Slots) == 0 {
		cfg.Key.Slots = expectedSlots(cfg.Topology)
	}
	if err := cfg.Key.Validate(store, &cfg.Topology); err != nil {
		return round{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	r := round{cfg: cfg, store: store}
	r.engine = placement.NewEngine(store, &r.cfg.Topology)
	return r, nil
}

// enter switches to round i and resets it.
func (s *Session) enter(i int) {
	s.current = i
	r := &s.rounds[i]
	s.cfg, s.store, s.engine = r.cfg, r.store, r.engine
	s.Reset()
}

// Next moves to the following round, wrapping after the last, and resets it.
// A single-round session simply resets.
func (s *Session) Next() {
	s.enter((s.current + 1) % len(s.rounds))
}

// Round reports the zero-based current round and the number of rounds.
func (s *Session) Round() (current, total int) { return s.current, len(s.rounds) }

// expectedSlots derives a slot answer key from per-slot expectations.
func expectedSlots(topo container.Topology) map[string]string {
	key := make(map[string]string, len(topo.Slots))
	for _, slot := range topo.Slots {
		if slot.Expected != "" {
			key[slot.ID] = slot.Expected
		}
	}
	return key
}

// Reset returns to idle with the initial placement, reshuffling where configured.
func (s *Session) Reset() {
	s.active = ""
	s.dropped = ""
	s.moves = 0
	s.pool = s.shuffled(s.store.IDs(), s.cfg.ShufflePool)
	s.sources = s.shuffled(s.cfg.Topology.Sources, s.cfg.ShuffleEndpoints)
	s.sinks = s.shuffled(s.cfg.Topology.Sinks, s.cfg.ShuffleEndpoints)
	s.state = s.engine.Initial(s.pool)
	s.evaluate()
}

func (s *Session) shuffled(ids []string, enabled bool) []string {
	out := slices.Clone(ids)
	if enabled && s.rng != nil {
		s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// DragStart marks entity as grabbed, replacing any entity already grabbed.
// Unknown entities are ignored.
func (s *Session) DragStart(entityID string) bool {
	if !s.store.Has(entityID) {
		return false
	}
	s.active = entityID
	return true
}

// DragEnd releases the grabbed entity over targetID and reports whether the
// placement changed. An empty targetID means the drop missed every target.
// entityID is only consulted when nothing is grabbed.
func (s *Session) DragEnd(entityID, targetID string) bool {
	ent := s.active
	if ent == "" {
		ent = entityID
	}
	s.active = ""
	if ent == "" || targetID == "" {
		return false
	}
	target, ok := s.resolve(ent, targetID)
	if !ok {
		return false
	}
	next, changed := s.engine.Apply(s.state, placement.Intent{Entity: ent, Target: target})
	if !changed {
		return false
	}
	s.state = next
	s.moves++
	if lt, ok := target.(container.LaneTarget); ok && s.cfg.Key.OddOne != nil && lt.Lane == s.cfg.Key.OddOne.Lane {
		s.dropped = ent
	}
	s.evaluate()
	return true
}

// Unlink deletes the link from source to sink in a link game.
func (s *Session) Unlink(source, sink string) bool {
	next, changed := s.engine.Unlink(s.state, placement.Link{Source: source, Sink: sink})
	if !changed {
		return false
	}
	s.state = next
	s.moves++
	s.evaluate()
	return true
}

// resolve maps a raw drop target id onto a typed target.
// A lane id appends; an entity id inside a lane inserts in front of that entity.
func (s *Session) resolve(ent, targetID string) (container.Target, bool) {
	topo := &s.cfg.Topology
	switch topo.Kind {
	case container.KindSlot:
		if _, ok := topo.Slot(targetID); ok {
			return container.SlotTarget{Slot: targetID}, true
		}
	case container.KindLane:
		if _, ok := topo.Lane(targetID); ok {
			return container.LaneTarget{Lane: targetID}, true
		}
		if lanes, ok := s.state.(placement.LaneState); ok {
			if lane, _, found := lanes.LaneOf(targetID); found {
				return container.LaneTarget{Lane: lane, Before: targetID}, true
			}
		}
	case container.KindLink:
		if topo.IsSink(targetID) {
			return container.LinkTarget{Source: ent, Sink: targetID}, true
		}
	}
	return nil, false
}

func (s *Session) evaluate() {
	s.verdict = verdict.EvaluateDrop(s.store, s.state, s.cfg.Key, s.dropped)
}

// Phase reports whether an entity is grabbed.
func (s *Session) Phase() Phase {
	if s.active != "" {
		return PhaseDragging
	}
	return PhaseIdle
}

func (s *Session) Game() string { return s.cfg.Game }

// State returns a copy of the current placement.
func (s *Session) State() placement.State { return s.state.Clone() }

func (s *Session) Verdict() verdict.Verdict { return s.verdict }

// SlotView is one slot with its occupant, if any.
type SlotView struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Occupant string `json:"occupant,omitempty"`
}

// LaneView is one lane with its current content.
type LaneView struct {
	ID     string   `json:"id"`
	Bucket string   `json:"bucket,omitempty"`
	Title  string   `json:"title,omitempty"`
	Items  []string `json:"items"`
}

// View is the snapshot handed to the presentation layer.
type View struct {
	Game        string           `json:"game"`
	Round       int              `json:"round"`
	Rounds      int              `json:"rounds"`
	Prompt      string           `json:"prompt,omitempty"`
	Category    string           `json:"category,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	Kind        container.Kind   `json:"kind"`
	Phase       Phase            `json:"phase"`
	Active      string           `json:"active,omitempty"`
	Entities    []entity.Entity  `json:"entities"`
	Slots       []SlotView       `json:"slots,omitempty"`
	Pool        []string         `json:"pool,omitempty"`
	Lanes       []LaneView       `json:"lanes,omitempty"`
	Sources     []string         `json:"sources,omitempty"`
	Sinks       []string         `json:"sinks,omitempty"`
	Links       []placement.Link `json:"links,omitempty"`
	Verdict     verdict.Verdict  `json:"verdict"`
	Moves       int              `json:"moves"`
}

// View builds the presentation snapshot. The result shares no memory with the session.
func (s *Session) View() View {
	v := View{
		Game:     s.cfg.Game,
		Round:    s.current,
		Rounds:   len(s.rounds),
		Prompt:   s.cfg.Prompt,
		Category: s.cfg.Category,
		Kind:     s.cfg.Topology.Kind,
		Phase:    s.Phase(),
		Active:   s.active,
		Entities: slices.Clone(s.cfg.Entities),
		Verdict:  s.verdict,
		Moves:    s.moves,
	}
	v.Verdict.Items = maps.Clone(s.verdict.Items)
	if s.verdict.Complete {
		v.Explanation = s.cfg.Explanation
	}

	switch st := s.state.(type) {
	case placement.SlotState:
		for _, slot := range s.cfg.Topology.Slots {
			v.Slots = append(v.Slots, SlotView{ID: slot.ID, Label: slot.Label, Occupant: st.Occupants[slot.ID]})
		}
		v.Pool = slices.Clone(st.Pool)
	case placement.LaneState:
		for _, lane := range s.cfg.Topology.Lanes {
			v.Lanes = append(v.Lanes, LaneView{
				ID:     lane.ID,
				Bucket: lane.Bucket,
				Title:  lane.Title,
				Items:  slices.Clone(st.Lanes[lane.ID]),
			})
		}
	case placement.LinkState:
		v.Sources = slices.Clone(s.sources)
		v.Sinks = slices.Clone(s.sinks)
		v.Links = slices.Clone(st.Links)
	}
	return v
}
