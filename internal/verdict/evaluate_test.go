package verdict_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
	"github.com/robalobadob/minigames/internal/placement"
	"github.com/robalobadob/minigames/internal/verdict"
)

func store(t *testing.T, entities ...entity.Entity) *entity.Store {
	t.Helper()
	s, err := entity.New(entities...)
	require.NoError(t, err)
	return s
}

func words(ids ...string) []entity.Entity {
	out := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.Entity{ID: id, Payload: id})
	}
	return out
}

func TestEvaluateSlots(t *testing.T) {
	s := store(t, words("cat", "dog", "mat", "hat")...)
	key := verdict.AnswerKey{Slots: map[string]string{"slot1": "cat", "slot2": "mat"}}

	tests := []struct {
		name      string
		occupants map[string]string
		want      verdict.Verdict
	}{
		{
			name:      "nothing placed",
			occupants: map[string]string{},
			want:      verdict.Verdict{Correct: true, Items: map[string]bool{}, Total: 2},
		},
		{
			name:      "incomplete yet already wrong",
			occupants: map[string]string{"slot2": "hat"},
			want: verdict.Verdict{Items: map[string]bool{"slot2": false}, Made: 1, Total: 2},
		},
		{
			name:      "cat then dog",
			occupants: map[string]string{"slot1": "cat", "slot2": "dog"},
			want: verdict.Verdict{
				Complete: true, Items: map[string]bool{"slot1": true, "slot2": false},
				Made: 2, Matched: 1, Total: 2, Score: 50,
			},
		},
		{
			name:      "solved",
			occupants: map[string]string{"slot1": "cat", "slot2": "mat"},
			want: verdict.Verdict{
				Complete: true, Correct: true, Solved: true, Items: map[string]bool{"slot1": true, "slot2": true},
				Made: 2, Matched: 2, Total: 2, Score: 100,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verdict.Evaluate(s, placement.SlotState{Occupants: tt.occupants}, key)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateSlotsByPayload(t *testing.T) {
	s := store(t,
		entity.Entity{ID: "l0", Payload: "a"},
		entity.Entity{ID: "l1", Payload: "p"},
		entity.Entity{ID: "l2", Payload: "p"},
	)
	key := verdict.AnswerKey{Slots: map[string]string{"0": "l0", "1": "l1", "2": "l2"}}
	st := placement.SlotState{Occupants: map[string]string{"0": "l0", "1": "l2", "2": "l1"}}

	require.False(t, verdict.Evaluate(s, st, key).Correct)

	key.MatchPayload = true
	got := verdict.Evaluate(s, st, key)
	require.True(t, got.Solved)
}

func TestEvaluateLinks(t *testing.T) {
	s := store(t,
		entity.Entity{ID: "left-0", Payload: "Apple"},
		entity.Entity{ID: "left-1", Payload: "Car"},
		entity.Entity{ID: "right-0", Payload: "🍎"},
		entity.Entity{ID: "right-1", Payload: "🚗"},
	)
	key := verdict.AnswerKey{Pairs: []verdict.Pair{{Source: "Apple", Sink: "🍎"}, {Source: "Car", Sink: "🚗"}}}

	t.Run("surviving wrong link", func(t *testing.T) {
		st := placement.LinkState{Links: []placement.Link{{Source: "left-0", Sink: "right-1"}}}
		got := verdict.Evaluate(s, st, key)
		require.False(t, got.Correct)
		require.False(t, got.Complete)
		require.Equal(t, map[string]bool{"left-0": false}, got.Items)
		require.Equal(t, 1, got.Made)
		require.Equal(t, 0, got.Matched)
	})

	t.Run("all pairs found", func(t *testing.T) {
		st := placement.LinkState{Links: []placement.Link{
			{Source: "left-1", Sink: "right-1"},
			{Source: "left-0", Sink: "right-0"},
		}}
		got := verdict.Evaluate(s, st, key)
		require.True(t, got.Complete)
		require.True(t, got.Correct)
		require.Equal(t, 100, got.Score)
	})

	t.Run("half found", func(t *testing.T) {
		st := placement.LinkState{Links: []placement.Link{{Source: "left-0", Sink: "right-0"}}}
		got := verdict.Evaluate(s, st, key)
		require.False(t, got.Complete)
		require.Equal(t, 50, got.Score)
	})
}

func TestEvaluateOddOne(t *testing.T) {
	s := store(t, words("apple", "orange", "carrot")...)
	key := verdict.AnswerKey{OddOne: &verdict.OddOne{Lane: "drop-zone", Entity: "carrot"}}

	st := placement.LaneState{
		Order: []string{"items", "drop-zone"},
		Lanes: map[string][]string{"items": {"apple", "orange", "carrot"}, "drop-zone": {}},
	}
	got := verdict.Evaluate(s, st, key)
	require.False(t, got.Complete)

	st.Lanes = map[string][]string{"items": {"apple", "carrot"}, "drop-zone": {"orange"}}
	got = verdict.Evaluate(s, st, key)
	require.True(t, got.Complete)
	require.False(t, got.Correct)

	st.Lanes = map[string][]string{"items": {"apple"}, "drop-zone": {"orange", "carrot"}}
	got = verdict.Evaluate(s, st, key)
	require.True(t, got.Correct)
	require.Equal(t, map[string]bool{"orange": false, "carrot": true}, got.Items)

	require.Equal(t, verdict.Verdict{Items: map[string]bool{}}, verdict.Evaluate(s, st, verdict.AnswerKey{}))
}

func TestAnswerKeyValidate(t *testing.T) {
	s := store(t,
		entity.Entity{ID: "cat", Payload: "cat"},
		entity.Entity{ID: "left-0", Payload: "Apple"},
		entity.Entity{ID: "right-0", Payload: "🍎"},
	)
	slots := &container.Topology{Kind: container.KindSlot, Slots: []container.Slot{{ID: "blank1"}}}
	links := &container.Topology{Kind: container.KindLink, Sources: []string{"left-0"}, Sinks: []string{"right-0"}}
	lanes := &container.Topology{Kind: container.KindLane, Lanes: []container.Lane{{ID: "items"}}}

	tests := []struct {
		name    string
		key     verdict.AnswerKey
		topo    *container.Topology
		wantErr bool
	}{
		{name: "slot key ok", key: verdict.AnswerKey{Slots: map[string]string{"blank1": "cat"}}, topo: slots},
		{name: "empty slot key", key: verdict.AnswerKey{}, topo: slots, wantErr: true},
		{name: "unknown slot", key: verdict.AnswerKey{Slots: map[string]string{"blank2": "cat"}}, topo: slots, wantErr: true},
		{name: "unknown entity", key: verdict.AnswerKey{Slots: map[string]string{"blank1": "dog"}}, topo: slots, wantErr: true},
		{name: "pair ok", key: verdict.AnswerKey{Pairs: []verdict.Pair{{Source: "Apple", Sink: "🍎"}}}, topo: links},
		{name: "pair reversed", key: verdict.AnswerKey{Pairs: []verdict.Pair{{Source: "🍎", Sink: "Apple"}}}, topo: links, wantErr: true},
		{name: "lanes without key", key: verdict.AnswerKey{}, topo: lanes},
		{name: "odd one in unknown lane", key: verdict.AnswerKey{OddOne: &verdict.OddOne{Lane: "zone", Entity: "cat"}}, topo: lanes, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate(s, tt.topo)
			if tt.wantErr {
				require.ErrorIs(t, err, verdict.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEvaluateOddOneUsesDroppedEntity(t *testing.T) {
	s := store(t, words("apple", "orange", "carrot")...)
	key := verdict.AnswerKey{OddOne: &verdict.OddOne{Lane: "drop-zone", Entity: "carrot"}}
	// apple was dropped in front of carrot, so it is not last
	st := placement.LaneState{
		Order: []string{"items", "drop-zone"},
		Lanes: map[string][]string{"items": {"orange"}, "drop-zone": {"apple", "carrot"}},
	}

	got := verdict.EvaluateDrop(s, st, key, "apple")
	require.True(t, got.Complete)
	require.False(t, got.Correct)
	require.Zero(t, got.Matched)
	require.Zero(t, got.Score)

	got = verdict.EvaluateDrop(s, st, key, "carrot")
	require.True(t, got.Solved)
	require.Equal(t, 100, got.Score)

	// a drop that has since left the lane falls back to the last item
	got = verdict.EvaluateDrop(s, st, key, "orange")
	require.True(t, got.Correct)
}
