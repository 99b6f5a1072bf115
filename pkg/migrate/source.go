package migrate

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration files are named 001_create_runs.up.sql / 001_create_runs.down.sql
var fileName = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// FSSource loads migrations from a directory of an fs.FS, typically an
// embed.FS compiled into the binary
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource creates a source reading dir within fsys
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	return &FSSource{fsys: fsys, dir: dir}
}

// Migrations loads every migration found in the directory
func (s *FSSource) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory %s: %w", s.dir, err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := fileName.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in file %s: %w", entry.Name(), err)
		}
		content, err := fs.ReadFile(s.fsys, path.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		migration := byVersion[version]
		if migration == nil {
			migration = &Migration{Version: version, Name: strings.ReplaceAll(matches[2], "_", " ")}
			byVersion[version] = migration
		}
		if matches[3] == "up" {
			migration.Up = string(content)
		} else {
			migration.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		migrations = append(migrations, *migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}
