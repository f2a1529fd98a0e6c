package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLines(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single without newline", "kernel void k() {}", []string{"kernel void k() {}"}},
		{"keeps newlines", "a\nb\n", []string{"a\n", "b\n"}},
		{"trailing fragment", "a\n\nb", []string{"a\n", "\n", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Lines(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("Lines: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
			if strings.Join(got, "") != tc.in {
				t.Fatalf("fragments do not reassemble the input")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.cl")
	src := "__kernel void copy(__global int *a) {\n\ta[0] = 1;\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Tokenize(path)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(got))
	}

	if _, err := Tokenize(filepath.Join(dir, "missing.cl")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
