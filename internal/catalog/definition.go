// internal/catalog/definition.go
//
// Game definitions: the static dataset of one mini-game.
// Responsibilities:
//   - Decode a definition from YAML, rejecting unknown fields.
//   - Validate it by building a throwaway session from it.
//   - Convert it into the session configuration used at runtime, one per round.

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/minigames/internal/container"
	"github.com/robalobadob/minigames/internal/entity"
	"github.com/robalobadob/minigames/internal/session"
	"github.com/robalobadob/minigames/internal/verdict"
)

var (
	ErrInvalidDefinition = errors.New("catalog: invalid definition")
	ErrNotFound          = errors.New("not found")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Definition describes one game. The topology fields sit at the top level of the document.
type Definition struct {
	Slug        string `json:"slug" yaml:"slug"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Prompt      string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	Topology container.Topology `json:"topology" yaml:",inline"`
	Entities []entity.Entity    `json:"entities" yaml:"entities"`
	Key      verdict.AnswerKey  `json:"key" yaml:"key,omitempty"`

	ShufflePool      bool `json:"shufflePool,omitempty" yaml:"shufflePool,omitempty"`
	ShuffleEndpoints bool `json:"shuffleEndpoints,omitempty" yaml:"shuffleEndpoints,omitempty"`

	// Rounds, when present, replace the top-level entities. Each round may also
	// override the containers and the key; kind and policy are shared.
	Rounds      []Round `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	RandomStart bool    `json:"randomStart,omitempty" yaml:"randomStart,omitempty"`
}

// Round is one question of a multi-round game.
type Round struct {
	Prompt      string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`

	Entities []entity.Entity    `json:"entities" yaml:"entities"`
	Slots    []container.Slot   `json:"slots,omitempty" yaml:"slots,omitempty"`
	Lanes    []container.Lane   `json:"lanes,omitempty" yaml:"lanes,omitempty"`
	Sources  []string           `json:"sources,omitempty" yaml:"sources,omitempty"`
	Sinks    []string           `json:"sinks,omitempty" yaml:"sinks,omitempty"`
	Key      *verdict.AnswerKey `json:"key,omitempty" yaml:"key,omitempty"`
}

// Summary is the public listing entry of a game. It never carries the answer key.
type Summary struct {
	Slug        string         `json:"slug" db:"slug"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description,omitempty" db:"description"`
	Kind        container.Kind `json:"kind" db:"kind"`
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Marshal encodes def back into YAML.
func Marshal(def Definition) ([]byte, error) {
	return yaml.Marshal(def)
}

// Validate checks the metadata and everything session.New checks.
func (d Definition) Validate() error {
	if !slugPattern.MatchString(d.Slug) {
		return fmt.Errorf("%w: bad slug %q", ErrInvalidDefinition, d.Slug)
	}
	if d.Title == "" {
		return fmt.Errorf("%w: %s: missing title", ErrInvalidDefinition, d.Slug)
	}
	if len(d.Rounds) > 0 && len(d.Entities) > 0 {
		return fmt.Errorf("%w: %s: entities belong to rounds", ErrInvalidDefinition, d.Slug)
	}
	if _, err := session.NewSeries(d.Configs(), false, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Slug, err)
	}
	return nil
}

// Config builds the session configuration of a single-round game. Sessions never
// write to it, so slices are shared with d.
func (d Definition) Config() session.Config {
	return session.Config{
		Game:             d.Slug,
		Prompt:           d.Prompt,
		Entities:         d.Entities,
		Topology:         d.Topology,
		Key:              d.Key,
		ShufflePool:      d.ShufflePool,
		ShuffleEndpoints: d.ShuffleEndpoints,
	}
}

// Configs builds one session configuration per round.
func (d Definition) Configs() []session.Config {
	base := d.Config()
	if len(d.Rounds) == 0 {
		return []session.Config{base}
	}
	out := make([]session.Config, 0, len(d.Rounds))
	for _, r := range d.Rounds {
		cfg := base
		cfg.Entities = r.Entities
		cfg.Category = r.Category
		cfg.Explanation = r.Explanation
		if r.Prompt != "" {
			cfg.Prompt = r.Prompt
		}
		if r.Slots != nil {
			cfg.Topology.Slots = r.Slots
		}
		if r.Lanes != nil {
			cfg.Topology.Lanes = r.Lanes
		}
		if r.Sources != nil {
			cfg.Topology.Sources = r.Sources
		}
		if r.Sinks != nil {
			cfg.Topology.Sinks = r.Sinks
		}
		if r.Key != nil {
			cfg.Key = *r.Key
		}
		out = append(out, cfg)
	}
	return out
}

// Summary returns the listing entry for d.
func (d Definition) Summary() Summary {
	return Summary{Slug: d.Slug, Title: d.Title, Description: d.Description, Kind: d.Topology.Kind}
}
