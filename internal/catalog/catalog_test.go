package catalog_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/minigames/internal/catalog"
	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/session"
)

const blanksYAML = `
slug: blanks
title: Blanks
kind: slot
entities:
  - {id: cat, payload: cat}
  - {id: dog, payload: dog}
  - {id: mat, payload: mat}
slots:
  - {id: blank1, expected: cat}
  - {id: blank2, expected: mat}
`

func TestParse(t *testing.T) {
	def, err := catalog.Parse([]byte(blanksYAML))
	require.NoError(t, err)
	assert.Equal(t, "blanks", def.Slug)
	assert.Equal(t, container.KindSlot, def.Topology.Kind)
	assert.Len(t, def.Topology.Slots, 2)
	assert.Equal(t, catalog.Summary{Slug: "blanks", Title: "Blanks", Kind: container.KindSlot}, def.Summary())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown field", yaml: blanksYAML + "colour: red\n"},
		{name: "bad slug", yaml: "slug: Not A Slug\ntitle: x\nkind: slot\n"},
		{name: "missing title", yaml: "slug: x\nkind: slot\n"},
		{name: "slot expects unknown entity", yaml: `
slug: x
title: x
kind: slot
entities: [{id: a, payload: a}]
slots: [{id: s, expected: b}]
`},
		{name: "lanes drop an entity", yaml: `
slug: x
title: x
kind: lane
entities: [{id: a, payload: a}, {id: b, payload: b}]
lanes: [{id: l, items: [a]}]
`},
		{name: "pair without endpoints", yaml: `
slug: x
title: x
kind: link
entities: [{id: l, payload: Apple}, {id: r, payload: pear}]
sources: [l]
sinks: [r]
key:
  pairs: [{source: Apple, sink: apple}]
`},
		{name: "not yaml", yaml: "slug: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, catalog.ErrInvalidDefinition)
		})
	}
}

func TestValidateWrapsSessionError(t *testing.T) {
	_, err := catalog.Parse([]byte(`
slug: x
title: x
kind: slot
entities: [{id: a, payload: a}]
slots: [{id: s}]
`))
	require.ErrorIs(t, err, catalog.ErrInvalidDefinition)
	require.ErrorIs(t, err, session.ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"games/blanks.yaml": {Data: []byte(blanksYAML)},
		"games/dup.yaml":    {Data: []byte(blanksYAML)},
	}

	c, err := catalog.Load(fsys, "games/blanks.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = catalog.Load(fsys, "games/blanks.yaml", "games/dup.yaml")
	require.ErrorIs(t, err, catalog.ErrInvalidDefinition)

	_, err = catalog.Load(fsys, "games/missing.yaml")
	require.Error(t, err)
}

func TestEmbedded(t *testing.T) {
	ctx := context.Background()
	c, err := catalog.Embedded()
	require.NoError(t, err)

	list, err := c.List(ctx)
	require.NoError(t, err)
	slugs := make([]string, 0, len(list))
	for _, s := range list {
		slugs = append(slugs, s.Slug)
	}
	assert.ElementsMatch(t, []string{
		"circle-the-odd-one", "fill-in-the-blanks", "jumbled-words", "kanban-board",
		"match-the-following", "match-the-following2", "odd-one-out", "puzzles",
	}, slugs)

	_, err = c.Get(ctx, "tic-tac-toe")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// every embedded game starts a session
	for _, def := range c.Definitions() {
		_, err := session.NewSeries(def.Configs(), def.RandomStart, nil)
		assert.NoError(t, err, def.Slug)
	}
}

func TestEmbeddedJumbledWordsAcceptsEitherP(t *testing.T) {
	c, err := catalog.Embedded()
	require.NoError(t, err)
	def, err := c.Get(context.Background(), "jumbled-words")
	require.NoError(t, err)
	require.Len(t, def.Rounds, 3)

	s, err := session.NewSeries(def.Configs(), false, nil)
	require.NoError(t, err)
	require.Equal(t, "happy", s.View().Prompt)
	for _, drop := range [][2]string{
		{"letter-0", "box-0"}, {"letter-1", "box-1"},
		{"letter-3", "box-2"}, {"letter-2", "box-3"},
		{"letter-4", "box-4"},
	} {
		require.True(t, s.DragEnd(drop[0], drop[1]), drop[0])
	}
	assert.True(t, s.Verdict().Solved)
}

func TestEmbeddedMatchTheFollowingIgnoresWrongDrops(t *testing.T) {
	c, err := catalog.Embedded()
	require.NoError(t, err)
	def, err := c.Get(context.Background(), "match-the-following")
	require.NoError(t, err)

	s, err := session.New(def.Config(), nil)
	require.NoError(t, err)
	assert.False(t, s.DragEnd("word-2", "picture-1"))
	assert.True(t, s.DragEnd("word-1", "picture-1"))
	assert.Equal(t, 1, s.Verdict().Matched)
}

const quizYAML = `
slug: quiz
title: Quiz
prompt: Which one does not belong?
kind: slot
slots: [{id: answer}]
rounds:
  - category: Food
    explanation: Carrot is a vegetable.
    entities: [{id: a, payload: Apple}, {id: c, payload: Carrot}]
    key: {slots: {answer: c}}
  - category: Animals
    prompt: Which one swims?
    entities: [{id: a, payload: Cat}, {id: f, payload: Fish}]
    key: {slots: {answer: f}}
`

func TestParseRounds(t *testing.T) {
	def, err := catalog.Parse([]byte(quizYAML))
	require.NoError(t, err)

	cfgs := def.Configs()
	require.Len(t, cfgs, 2)
	assert.Equal(t, "Which one does not belong?", cfgs[0].Prompt)
	assert.Equal(t, "Which one swims?", cfgs[1].Prompt)
	assert.Equal(t, "Animals", cfgs[1].Category)
	assert.Equal(t, map[string]string{"answer": "f"}, cfgs[1].Key.Slots)
	assert.Equal(t, def.Topology.Slots, cfgs[1].Topology.Slots)

	_, err = catalog.Parse([]byte(quizYAML + "entities: [{id: x, payload: x}]\n"))
	require.ErrorIs(t, err, catalog.ErrInvalidDefinition)

	_, err = catalog.Parse([]byte(quizYAML + `  - entities: [{id: a, payload: A}]
    key: {slots: {answer: zz}}
`))
	require.ErrorIs(t, err, catalog.ErrInvalidDefinition)
	require.ErrorContains(t, err, "round 3")
}

func TestEmbeddedCircleTheOddOneCyclesQuestions(t *testing.T) {
	c, err := catalog.Embedded()
	require.NoError(t, err)
	def, err := c.Get(context.Background(), "circle-the-odd-one")
	require.NoError(t, err)

	s, err := session.NewSeries(def.Configs(), def.RandomStart, nil)
	require.NoError(t, err)

	answers := []string{"option-2", "option-2", "option-3", "option-3"}
	categories := []string{"Food", "Animals", "Space", "Shapes & Colors"}
	for i, answer := range answers {
		v := s.View()
		require.Equal(t, i, v.Round)
		require.Equal(t, 4, v.Rounds)
		require.Equal(t, categories[i], v.Category)
		require.True(t, s.DragEnd(answer, "answer"))
		v = s.View()
		require.True(t, v.Verdict.Solved, categories[i])
		require.NotEmpty(t, v.Explanation)
		s.Next()
	}
	require.Equal(t, 0, s.View().Round, "wraps to the first question")
}
