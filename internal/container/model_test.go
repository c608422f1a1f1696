package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
)

func mustStore(t *testing.T, ids ...string) *entity.Store {
	t.Helper()
	es := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		es = append(es, entity.Entity{ID: id, Payload: id})
	}
	s, err := entity.New(es...)
	require.NoError(t, err)
	return s
}

func TestTopologyValidate(t *testing.T) {
	store := mustStore(t, "cat", "dog", "mat")

	tests := []struct {
		name    string
		topo    container.Topology
		wantErr bool
	}{
		{
			name: "slots with known expectations",
			topo: container.Topology{Kind: container.KindSlot, Slots: []container.Slot{
				{ID: "blank1", Expected: "cat"}, {ID: "blank2", Expected: "mat"},
			}},
		},
		{
			name: "slot expects unknown entity",
			topo: container.Topology{Kind: container.KindSlot, Slots: []container.Slot{
				{ID: "blank1", Expected: "cow"},
			}},
			wantErr: true,
		},
		{
			name: "duplicate slot",
			topo: container.Topology{Kind: container.KindSlot, Slots: []container.Slot{
				{ID: "s"}, {ID: "s"},
			}},
			wantErr: true,
		},
		{
			name: "slot id shadows entity",
			topo: container.Topology{Kind: container.KindSlot, Slots: []container.Slot{{ID: "cat"}}},
			wantErr: true,
		},
		{
			name: "expected-only slot without expectation",
			topo: container.Topology{Kind: container.KindSlot, Policy: container.PolicyExpectedOnly,
				Slots: []container.Slot{{ID: "s"}}},
			wantErr: true,
		},
		{
			name: "unknown policy",
			topo: container.Topology{Kind: container.KindSlot, Policy: "sticky",
				Slots: []container.Slot{{ID: "s"}}},
			wantErr: true,
		},
		{
			name: "lanes partition entities",
			topo: container.Topology{Kind: container.KindLane, Lanes: []container.Lane{
				{ID: "todo", Items: []string{"cat", "dog"}}, {ID: "done", Items: []string{"mat"}},
			}},
		},
		{
			name: "lanes miss an entity",
			topo: container.Topology{Kind: container.KindLane, Lanes: []container.Lane{
				{ID: "todo", Items: []string{"cat", "dog"}},
			}},
			wantErr: true,
		},
		{
			name: "lanes duplicate an entity",
			topo: container.Topology{Kind: container.KindLane, Lanes: []container.Lane{
				{ID: "todo", Items: []string{"cat", "dog"}}, {ID: "done", Items: []string{"mat", "cat"}},
			}},
			wantErr: true,
		},
		{
			name: "links with disjoint endpoints",
			topo: container.Topology{Kind: container.KindLink, Sources: []string{"cat"}, Sinks: []string{"dog", "mat"}},
		},
		{
			name:    "link endpoint on both sides",
			topo:    container.Topology{Kind: container.KindLink, Sources: []string{"cat"}, Sinks: []string{"cat"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			topo:    container.Topology{Kind: "grid"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.topo.Validate(store)
			if tt.wantErr {
				require.ErrorIs(t, err, container.ErrInvalidTopology)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTopologyLookups(t *testing.T) {
	topo := container.Topology{
		Kind:    container.KindLink,
		Sources: []string{"left-0"},
		Sinks:   []string{"right-0"},
	}
	require.True(t, topo.IsSource("left-0"))
	require.False(t, topo.IsSource("right-0"))
	require.True(t, topo.IsSink("right-0"))
	require.Equal(t, container.PolicyExclusive, topo.EffectivePolicy())

	_, ok := topo.Slot("nope")
	require.False(t, ok)
	_, ok = topo.Lane("nope")
	require.False(t, ok)
}
