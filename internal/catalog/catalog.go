// internal/catalog/catalog.go
//
// In-memory game catalogue loaded from YAML files.
// The embedded catalogue (assets/games) is what the server plays by default;
// the SQLite repository in this package can serve the same definitions.

package catalog

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minigames/assets"
)

// Source is anything that can list and fetch game definitions.
type Source interface {
	List(ctx context.Context) ([]Summary, error)
	Get(ctx context.Context, slug string) (Definition, error)
}

// Catalog is an immutable set of validated definitions.
type Catalog struct {
	order []string
	defs  map[string]Definition
}

// New builds a catalogue from already parsed definitions.
func New(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.defs[d.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidDefinition, d.Slug)
		}
		c.defs[d.Slug] = d
		c.order = append(c.order, d.Slug)
	}
	return c, nil
}

// Load parses files from fsys. Any invalid file fails the whole load.
func Load(fsys fs.FS, files ...string) (*Catalog, error) {
	defs := make([]Definition, 0, len(files))
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		def, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return New(defs...)
}

// Embedded loads the definitions compiled into the binary.
func Embedded() (*Catalog, error) {
	files, err := assets.GameFiles()
	if err != nil {
		return nil, err
	}
	c, err := Load(assets.FS, files...)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("games", c.Len()).Msg("catalog loaded")
	return c, nil
}

func (c *Catalog) List(ctx context.Context) ([]Summary, error) {
	out := make([]Summary, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.defs[slug].Summary())
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, slug string) (Definition, error) {
	d, ok := c.defs[slug]
	if !ok {
		return Definition{}, ErrNotFound
	}
	return d, nil
}

// Definitions returns every definition in load order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, c.defs[slug])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }
