package migrator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9]+")

// Scaffold writes an empty do/undo pair for the next version into dir and
// returns their paths. Versions are zero-padded integers one past the highest
// in dir, or the Unix time when timestamp is set.
func Scaffold(dir, description string, timestamp bool) (doPath, undoPath string, err error) {
	next, err := nextVersion(dir, timestamp)
	if err != nil {
		return "", "", err
	}

	name := kebabCase(description)
	if name == "" {
		return "", "", fmt.Errorf("migration description %q has no usable characters", description)
	}

	doPath = filepath.Join(dir, fmt.Sprintf("%s.do.%s.sql", next, name))
	undoPath = filepath.Join(dir, fmt.Sprintf("%s.undo.%s.sql", next, name))

	if err := os.WriteFile(doPath, []byte("-- Write your migration SQL here\n"), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create migration file %s: %w", doPath, err)
	}
	if err := os.WriteFile(undoPath, []byte("-- Write your rollback SQL here\n"), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to create migration file %s: %w", undoPath, err)
	}
	return doPath, undoPath, nil
}

func nextVersion(dir string, timestamp bool) (string, error) {
	if timestamp {
		return strconv.FormatInt(time.Now().Unix(), 10), nil
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return "", fmt.Errorf("failed to scan migration files: %w", err)
	}
	highest := 0
	for _, file := range files {
		if version, _, _, ok := parseFilename(file); ok && version > highest {
			highest = version
		}
	}
	return fmt.Sprintf("%03d", highest+1), nil
}

// kebabCase lowercases s and joins its alphanumeric runs with hyphens.
func kebabCase(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
