package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/cl/clfake"
	"github.com/cwbudde/clut/internal/program"
	"github.com/cwbudde/clut/internal/raster"
	"github.com/cwbudde/clut/internal/report"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI against fake and returns stdout.
func run(t *testing.T, fake *clfake.Platform, args ...string) (string, error) {
	t.Helper()
	saved := loadAPI
	t.Cleanup(func() { loadAPI = saved })
	loadAPI = func() (cl.API, error) { return fake, nil }

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--no-color"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func newFake() *clfake.Platform {
	fake := clfake.New()
	p := fake.AddPlatform("Fake Platform")
	fake.AddDevice(p, "Fake GPU", cl.DeviceTypeGPU)
	return fake
}

func TestInfoAndReports(t *testing.T) {
	t.Setenv("CLUT_REPORT_DIR", t.TempDir())
	fake := newFake()

	out, err := run(t, fake, "info", "--save", "lab")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{
		"Total number of platforms: 1.",
		"Printing info for platform #1:",
		"Platform #1 has 1 devices.",
		"Printing info for device #1:",
		"Fake GPU",
		`Saved report "lab".`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, fake, "reports", "list")
	if err != nil {
		t.Fatalf("reports list: %v", err)
	}
	if !strings.Contains(out, "lab") || !strings.Contains(out, "Total reports: 1") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, err = run(t, fake, "reports", "show", "lab")
	if err != nil {
		t.Fatalf("reports show: %v", err)
	}
	if !strings.Contains(out, "Platform #1: Fake Platform") || !strings.Contains(out, "Device #1: Fake GPU") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	if _, err := run(t, fake, "reports", "delete", "lab"); err != nil {
		t.Fatalf("reports delete: %v", err)
	}
	if _, err := run(t, fake, "reports", "show", "lab"); !errors.Is(err, report.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportsCleanRequiresPolicy(t *testing.T) {
	t.Setenv("CLUT_REPORT_DIR", t.TempDir())
	if _, err := run(t, newFake(), "reports", "clean"); err == nil {
		t.Fatalf("expected error without retention flags")
	}
}

func TestFormats(t *testing.T) {
	fake := newFake()
	fake.SetSupportedFormats(cl.MemObjectImage2D, cl.ImageFormat{Order: cl.ChannelRGBA, Type: cl.UnsignedInt8})

	out, err := run(t, fake, "formats")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	if !strings.Contains(out, "Printing supported image formats for device #1:") ||
		!strings.Contains(out, "Printing matrix for") {
		t.Fatalf("unexpected formats output:\n%s", out)
	}
	if fake.LiveContexts() != 0 {
		t.Fatalf("formats leaked a context")
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cl")
	bad := filepath.Join(dir, "bad.cl")
	if err := os.WriteFile(good, []byte("__kernel void k(void) {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(bad, []byte("#error nope\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fake := newFake()
	out, err := run(t, fake, "build", good, "--flags", "-DX=1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if fake.LastBuildOptions != program.DefaultBuildOptions+" -DX=1" {
		t.Fatalf("options = %q", fake.LastBuildOptions)
	}
	if !strings.Contains(out, "Built "+good+" for Fake GPU") {
		t.Fatalf("unexpected build output:\n%s", out)
	}

	out, err = run(t, fake, "build", bad)
	if !errors.Is(err, program.ErrBuildFailure) {
		t.Fatalf("expected ErrBuildFailure, got %v", err)
	}
	if !strings.Contains(out, "Program build log:") {
		t.Fatalf("build log not printed:\n%s", out)
	}
	if fake.LastBuildOptions != program.DefaultBuildOptions {
		t.Fatalf("flags leaked between runs: %q", fake.LastBuildOptions)
	}
	if fake.LivePrograms() != 0 || fake.LiveContexts() != 0 {
		t.Fatalf("build leaked handles")
	}
}

func TestImageCopy(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pgm")
	if err := os.WriteFile(in, []byte("P5\n2 2\n255\n\x00\xff\x80\x40"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "out.png")

	fake := newFake()
	out, err := run(t, fake, "image", "copy", in, dst)
	if err != nil {
		t.Fatalf("image copy: %v", err)
	}
	if !strings.Contains(out, "2x2, R, un-normalized unsigned 8-bit int") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	img, err := raster.Decode(dst, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 255, 128, 64}, img.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
	if fake.LiveImages() != 0 || fake.LiveContexts() != 0 {
		t.Fatalf("image copy leaked handles")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, newFake(), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "clut version ") {
		t.Fatalf("unexpected version output %q", out)
	}
}
