// Package geometry holds the named disk-image size presets the CLI's
// format command accepts, loaded from an embedded CSV the same way
// disko's disks/disks.go loads its predefined disk-drive geometries with
// gocarina/gocsv.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/mkch-fs/rufs"
)

type presetRow struct {
	Name          string `csv:"name"`
	Description   string `csv:"description"`
	BlockSize     uint32 `csv:"block_size"`
	MaxInodes     uint32 `csv:"max_inodes"`
	MaxDataBlocks uint32 `csv:"max_data_blocks"`
}

//go:embed presets.csv
var presetsRawCSV string

var presets map[string]rufs.Geometry

func init() {
	presets = map[string]rufs.Geometry{}
	reader := strings.NewReader(presetsRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row presetRow) error {
		if _, exists := presets[row.Name]; exists {
			return fmt.Errorf("duplicate geometry preset %q", row.Name)
		}
		presets[row.Name] = rufs.Geometry{
			Name:          row.Name,
			Description:   row.Description,
			BlockSize:     row.BlockSize,
			MaxInodes:     row.MaxInodes,
			MaxDataBlocks: row.MaxDataBlocks,
		}
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Get looks up a named geometry preset ("small", "default", "large").
func Get(name string) (rufs.Geometry, error) {
	g, ok := presets[name]
	if !ok {
		return rufs.Geometry{}, fmt.Errorf("no geometry preset named %q", name)
	}
	return g, nil
}

// Names returns the known preset names, for CLI help text.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
