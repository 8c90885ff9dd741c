// Package ldraw locates parts inside an LDraw library tree.
//
// The library layout is fixed: top-level parts live under parts/ and
// primitives under p/, both as .dat files. Part references are resolved
// case-insensitively because upstream sources disagree on casing.
package ldraw

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
)

// DefaultPath is where distribution packages install the LDraw library.
const DefaultPath = "/usr/share/ldraw/ldraw"

// Library is a handle to an LDraw library root.
type Library struct {
	Root string
}

// New returns a library rooted at path, or the default location when path
// is empty. The root is not checked here; call Check for a health probe.
func New(path string) *Library {
	if path == "" {
		path = DefaultPath
	}
	return &Library{Root: path}
}

// Check verifies that the library root looks like an LDraw tree (the parts/
// directory must exist).
func (l *Library) Check() error {
	if _, err := os.Stat(filepath.Join(l.Root, "parts")); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "LDraw library not found at %s", l.Root)
	}
	return nil
}

// FindPart resolves a part reference to a file path. A reference may be an
// explicit path to a .dat file, or a bare part number looked up under
// parts/ and p/ with lower- and upper-case variants.
func (l *Library) FindPart(ref string) (string, error) {
	if err := errors.ValidatePartRef(ref); err != nil {
		return "", err
	}

	// Explicit paths bypass library lookup.
	if strings.ContainsRune(ref, os.PathSeparator) || strings.HasSuffix(strings.ToLower(ref), ".dat") {
		if _, err := os.Stat(ref); err == nil {
			return ref, nil
		}
	}

	number := strings.TrimSuffix(strings.TrimSuffix(ref, ".dat"), ".DAT")

	// Stem case variants crossed with both extension spellings; library
	// archives ship either.
	var variants []string
	seen := make(map[string]bool)
	for _, stem := range []string{number, strings.ToLower(number), strings.ToUpper(number)} {
		for _, ext := range []string{".dat", ".DAT"} {
			v := stem + ext
			if seen[v] {
				continue
			}
			seen[v] = true
			variants = append(variants, v)
		}
	}

	for _, dir := range []string{"parts", "p"} {
		for _, v := range variants {
			path := filepath.Join(l.Root, dir, v)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", errors.New(errors.ErrCodePartNotFound, "part %s not found in %s", ref, l.Root)
}

// Part is one catalog entry: the part number and the description from the
// file's header line.
type Part struct {
	Number      string
	Description string
}

// Parts enumerates the catalog of top-level parts, sorted by part number.
// Subpart and primitive directories are skipped; unreadable files are
// listed with an empty description rather than failing the walk.
func (l *Library) Parts() ([]Part, error) {
	dir := filepath.Join(l.Root, "parts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read parts directory")
	}

	var parts []Part
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".dat") {
			continue
		}
		number := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		parts = append(parts, Part{
			Number:      number,
			Description: readDescription(filepath.Join(dir, e.Name())),
		})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return parts, nil
}

// readDescription extracts the human-readable description from an LDraw
// file. The first line is a type-0 comment holding the description, e.g.
// "0 Brick 2 x 4".
func readDescription(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ""
	}
	line := strings.TrimSpace(scanner.Text())
	return strings.TrimSpace(strings.TrimPrefix(line, "0"))
}
