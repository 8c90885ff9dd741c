package ldraw

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/breckenedge/lego-part-renderer/pkg/errors"
)

// newTestLibrary builds a minimal LDraw tree:
//
//	root/parts/3001.dat
//	root/parts/3002.DAT
//	root/p/stud.dat
func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"parts", "p"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	files := map[string]string{
		"parts/3001.dat": "0 Brick 2 x 4\n1 16 0 0 0\n",
		"parts/3002.DAT": "0 Brick 2 x 3\n",
		"p/stud.dat":     "0 Stud\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return New(root)
}

func TestNewDefaultsRoot(t *testing.T) {
	if l := New(""); l.Root != DefaultPath {
		t.Errorf("Root = %q, want %q", l.Root, DefaultPath)
	}
	if l := New("/opt/ldraw"); l.Root != "/opt/ldraw" {
		t.Errorf("Root = %q, want /opt/ldraw", l.Root)
	}
}

func TestCheck(t *testing.T) {
	l := newTestLibrary(t)
	if err := l.Check(); err != nil {
		t.Errorf("Check on valid tree: %v", err)
	}

	bad := New(filepath.Join(t.TempDir(), "nowhere"))
	err := bad.Check()
	if err == nil {
		t.Fatal("Check should fail for missing tree")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidPath {
		t.Errorf("code = %v, want ErrCodeInvalidPath", errors.GetCode(err))
	}
}

func TestFindPart(t *testing.T) {
	l := newTestLibrary(t)

	tests := []struct {
		name string
		ref  string
		want string // relative to root
	}{
		{"bare number", "3001", "parts/3001.dat"},
		{"with extension", "3001.dat", "parts/3001.dat"},
		{"upper-case file", "3002", "parts/3002.DAT"},
		{"upper-case ref", "3002.DAT", "parts/3002.DAT"},
		{"primitive", "stud", "p/stud.dat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.FindPart(tt.ref)
			if err != nil {
				t.Fatalf("FindPart(%q): %v", tt.ref, err)
			}
			if want := filepath.Join(l.Root, tt.want); got != want {
				t.Errorf("FindPart(%q) = %q, want %q", tt.ref, got, want)
			}
		})
	}
}

func TestFindPartExplicitPath(t *testing.T) {
	l := newTestLibrary(t)

	// A path to an existing .dat file outside the library resolves as-is.
	outside := filepath.Join(t.TempDir(), "custom.dat")
	if err := os.WriteFile(outside, []byte("0 Custom\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := l.FindPart(outside)
	if err != nil {
		t.Fatal(err)
	}
	if got != outside {
		t.Errorf("FindPart(%q) = %q", outside, got)
	}
}

func TestFindPartErrors(t *testing.T) {
	l := newTestLibrary(t)

	if _, err := l.FindPart("99999"); errors.GetCode(err) != errors.ErrCodePartNotFound {
		t.Errorf("missing part code = %v, want ErrCodePartNotFound", errors.GetCode(err))
	}
	if _, err := l.FindPart(""); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("empty ref code = %v, want ErrCodeInvalidInput", errors.GetCode(err))
	}
	if _, err := l.FindPart("../etc/passwd"); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("traversal ref code = %v, want ErrCodeInvalidInput", errors.GetCode(err))
	}
}

func TestParts(t *testing.T) {
	l := newTestLibrary(t)

	parts, err := l.Parts()
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2 (primitives excluded)", len(parts))
	}
	// Sorted by number.
	if parts[0].Number != "3001" || parts[1].Number != "3002" {
		t.Errorf("order = %q, %q", parts[0].Number, parts[1].Number)
	}
	if parts[0].Description != "Brick 2 x 4" {
		t.Errorf("description = %q, want %q", parts[0].Description, "Brick 2 x 4")
	}
	if parts[1].Description != "Brick 2 x 3" {
		t.Errorf("description = %q, want %q", parts[1].Description, "Brick 2 x 3")
	}
}

func TestPartsMissingRoot(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "nowhere"))
	if _, err := l.Parts(); err == nil {
		t.Error("Parts should fail for missing tree")
	}
}

func TestReadDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.dat")
	if err := os.WriteFile(path, []byte("0 Plate 1 x 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := readDescription(path); got != "Plate 1 x 1" {
		t.Errorf("readDescription = %q", got)
	}

	empty := filepath.Join(dir, "empty.dat")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := readDescription(empty); got != "" {
		t.Errorf("empty file description = %q", got)
	}

	if got := readDescription(filepath.Join(dir, "missing.dat")); got != "" {
		t.Errorf("missing file description = %q", got)
	}
}
