package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed games/*.yaml
var FS embed.FS

// GamesDir is the directory of game definitions inside FS.
const GamesDir = "games"

// GameFiles lists the embedded definition files in lexical order.
func GameFiles() ([]string, error) {
	entries, err := fs.ReadDir(FS, GamesDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		out = append(out, path.Join(GamesDir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
