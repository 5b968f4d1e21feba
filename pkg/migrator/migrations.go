package migrator

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Migration is a single migration file inside the bundle.
type Migration struct {
	// Version orders migrations; the version table stores the highest one applied.
	Version int

	// Action is "do" or "undo".
	Action string

	// Filename is the path of the file inside the bundle.
	Filename string

	// Name is the descriptive part of the filename, if any.
	Name string

	// Md5 is the checksum of the normalised file content.
	Md5 string
}

// SQL reads the migration script from fsys.
func (m Migration) SQL(fsys fs.FS) (string, error) {
	data, err := fs.ReadFile(fsys, m.Filename)
	if err != nil {
		return "", fmt.Errorf("read migration %s: %w", m.Filename, err)
	}
	return string(data), nil
}

func sortMigrationsAsc(migs []Migration) {
	sort.SliceStable(migs, func(i, j int) bool {
		return migs[i].Version < migs[j].Version
	})
}

// normalizeNewlines rewrites CRLF and CR line endings to LF so a checkout on
// another platform produces the same checksum.
func normalizeNewlines(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func checksum(content string) string {
	sum := md5.Sum([]byte(normalizeNewlines(content)))
	return hex.EncodeToString(sum[:])
}

// parseFilename splits "001.do.create-users.sql" into its version, action and name.
func parseFilename(file string) (version int, action, name string, ok bool) {
	base := path.Base(file)
	if path.Ext(base) != ".sql" {
		return 0, "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(base, ".sql"), ".")
	if len(parts) < 2 {
		return 0, "", "", false
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", "", false
	}
	action = strings.ToLower(parts[1])
	if action != "do" && action != "undo" {
		return 0, "", "", false
	}
	if len(parts) > 2 {
		name = strings.Join(parts[2:], ".")
	}
	return version, action, name, true
}

// LoadMigrations reads every migration in cfg.FS matching cfg.Pattern.
// Files that do not follow the version.action[.name].sql layout are ignored.
func LoadMigrations(cfg Config) ([]Migration, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("no migration bundle configured")
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultConfig.Pattern
	}
	files, err := fs.Glob(cfg.FS, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan migrations: %w", err)
	}

	var migrations []Migration
	seen := make(map[string]struct{})
	for _, file := range files {
		version, action, name, ok := parseFilename(file)
		if !ok {
			continue
		}
		data, err := fs.ReadFile(cfg.FS, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		key := fmt.Sprintf("%d:%s", version, action)
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("duplicate migration for version %d and action %s", version, action)
		}
		seen[key] = struct{}{}
		migrations = append(migrations, Migration{
			Version:  version,
			Action:   action,
			Filename: file,
			Name:     name,
			Md5:      checksum(string(data)),
		})
	}
	sortMigrationsAsc(migrations)
	return migrations, nil
}
