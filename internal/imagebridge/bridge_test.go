package imagebridge

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/cl/clfake"
	"github.com/cwbudde/clut/internal/query"
	"github.com/cwbudde/clut/internal/raster"
)

func setup(t *testing.T) (*clfake.Platform, cl.Context, cl.CommandQueue) {
	t.Helper()
	fake := clfake.New()
	p := fake.AddPlatform("p")
	d := fake.AddDevice(p, "gpu", cl.DeviceTypeGPU)
	ctx, queue := fake.NewContext(d)
	return fake, ctx, queue
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoadPGMAndDuplicate(t *testing.T) {
	fake, ctx, _ := setup(t)
	path := writeFile(t, "gray.PGM", []byte("P5\n2 2\n255\n\x00\xff\x80\x40"))

	b := New(fake, nil)
	mem, w, h, err := b.Load(ctx, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w != 2 || h != 2 {
		t.Fatalf("size = %dx%d, want 2x2", w, h)
	}

	pix, _ := fake.ImagePixels(mem)
	if diff := cmp.Diff([]byte{0, 255, 128, 64}, pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
	if flags, _ := fake.ImageFlags(mem); flags != cl.MemReadOnly|cl.MemCopyHostPtr {
		t.Fatalf("unexpected flags %#x", flags)
	}

	dup, err := b.DuplicateEmpty(ctx, mem)
	if err != nil {
		t.Fatalf("DuplicateEmpty: %v", err)
	}
	dw, dh, format, err := b.Format(dup)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := cl.ImageFormat{Order: cl.ChannelR, Type: cl.UnsignedInt8}
	if dw != 2 || dh != 2 || format != want {
		t.Fatalf("duplicate = %dx%d %+v, want 2x2 %+v", dw, dh, format, want)
	}
	if flags, _ := fake.ImageFlags(dup); flags != cl.MemWriteOnly {
		t.Fatalf("duplicate flags %#x, want write only", flags)
	}

	if err := b.Release(dup); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := b.Release(mem); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if fake.LiveImages() != 0 {
		t.Fatalf("images leaked")
	}
}

func TestLoadExpandsRGB(t *testing.T) {
	fake, ctx, _ := setup(t)
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	core, logs := observer.New(zap.DebugLevel)
	b := New(fake, zap.New(core))
	mem, _, _, err := b.Load(ctx, writePNG(t, src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dup, err := b.DuplicateEmpty(ctx, mem)
	if err != nil {
		t.Fatalf("DuplicateEmpty: %v", err)
	}
	_, _, format, err := b.Format(dup)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got, ok := format.Order.Components(); !ok || got != 4 {
		t.Fatalf("duplicate has %d components (order %#x), want 4", got, format.Order)
	}
	pix, _ := fake.ImagePixels(mem)
	if diff := cmp.Diff([]byte{10, 20, 30, 255}, pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
	if logs.FilterMessage("expanding rgb image to rgba").Len() != 1 {
		t.Fatalf("expected expansion to be logged")
	}
}

func TestLoadChannelMapping(t *testing.T) {
	cases := []struct {
		comps int
		want  cl.ChannelOrder
	}{
		{1, cl.ChannelR},
		{2, cl.ChannelRA},
		{4, cl.ChannelRGBA},
	}

	for _, tc := range cases {
		fake, ctx, _ := setup(t)
		decode := func(string, int) (*raster.Image, error) {
			return &raster.Image{Pix: make([]byte, 3*tc.comps), Width: 3, Height: 1, Components: tc.comps}, nil
		}
		b := New(fake, nil, WithDecoder(decode), Normalized(true))
		mem, _, _, err := b.Load(ctx, "virtual.png")
		if err != nil {
			t.Fatalf("%d components: Load: %v", tc.comps, err)
		}
		_, _, format, _ := b.Format(mem)
		if format.Order != tc.want || format.Type != cl.UNormInt8 {
			t.Fatalf("%d components: format %+v", tc.comps, format)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	fake, ctx, _ := setup(t)

	b := New(fake, nil, WithDecoder(func(string, int) (*raster.Image, error) {
		return &raster.Image{Pix: make([]byte, 5), Width: 1, Height: 1, Components: 5}, nil
	}))
	if _, _, _, err := b.Load(ctx, "five.png"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	b = New(fake, nil)
	if _, _, _, err := b.Load(ctx, filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, _, _, err := b.Load(ctx, writeFile(t, "bad.pgm", []byte("P6\n"))); !errors.Is(err, raster.ErrPGM) {
		t.Fatalf("expected ErrPGM, got %v", err)
	}

	fake.CreateImageStatus = cl.ImageFormatNotSupported
	path := writeFile(t, "ok.pgm", []byte("P5 1 1 255\n\x01"))
	if _, _, _, err := b.Load(ctx, path); !errors.Is(err, ErrDeviceImageCreation) {
		t.Fatalf("expected ErrDeviceImageCreation, got %v", err)
	}
	if fake.LiveImages() != 0 {
		t.Fatalf("no image expected")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fake, ctx, queue := setup(t)
	b := New(fake, nil)
	mem, _, _, err := b.Load(ctx, writeFile(t, "in.pgm", []byte("P5\n2 2\n255\n\x00\xff\x80\x40")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.png")
	if err := b.Save(out, queue, mem); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if fake.ReadImageCalls != 1 || fake.FinishCalls != 1 {
		t.Fatalf("reads=%d finishes=%d, want 1 each", fake.ReadImageCalls, fake.FinishCalls)
	}

	img, err := raster.Decode(out, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Components != 1 {
		t.Fatalf("components = %d, want 1", img.Components)
	}
	if diff := cmp.Diff([]byte{0, 255, 128, 64}, img.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRejectsWideChannelTypesWithoutReading(t *testing.T) {
	fake, ctx, queue := setup(t)
	format := cl.ImageFormat{Order: cl.ChannelRGBA, Type: cl.Float}
	desc := cl.ImageDesc{Type: cl.MemObjectImage2D, Width: 2, Height: 2}
	mem, status := fake.CreateImage(ctx, cl.MemReadWrite, format, desc, nil)
	if status != cl.Success {
		t.Fatalf("CreateImage: %v", status)
	}

	b := New(fake, nil)
	err := b.Save(filepath.Join(t.TempDir(), "out.png"), queue, mem)
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
	if fake.ReadImageCalls != 0 {
		t.Fatalf("device read before the encoding check")
	}
}

func TestSaveErrors(t *testing.T) {
	fake, ctx, queue := setup(t)
	desc := cl.ImageDesc{Type: cl.MemObjectImage2D, Width: 2, Height: 2}

	bgra, _ := fake.CreateImage(ctx, cl.MemReadWrite, cl.ImageFormat{Order: cl.ChannelBGRA, Type: cl.UnsignedInt8}, desc, nil)
	b := New(fake, nil)
	if err := b.Save(filepath.Join(t.TempDir(), "a.png"), queue, bgra); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	gray, _ := fake.CreateImage(ctx, cl.MemReadWrite, cl.ImageFormat{Order: cl.ChannelR, Type: cl.UNormInt8}, desc, nil)
	fake.ReadImageStatus = cl.OutOfResources
	if err := b.Save(filepath.Join(t.TempDir(), "b.png"), queue, gray); !errors.Is(err, ErrReadback) {
		t.Fatalf("expected ErrReadback, got %v", err)
	}

	fake.ReadImageStatus = cl.Success
	fake.FinishStatus = cl.OutOfResources
	if err := b.Save(filepath.Join(t.TempDir(), "c.png"), queue, gray); !errors.Is(err, ErrReadback) {
		t.Fatalf("expected ErrReadback from finish, got %v", err)
	}

	fake.FinishStatus = cl.Success
	missingDir := filepath.Join(t.TempDir(), "nope", "d.png")
	if err := b.Save(missingDir, queue, gray); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}

	large, _ := fake.CreateImage(ctx, cl.MemReadWrite, cl.ImageFormat{Order: cl.ChannelR, Type: cl.UNormInt8},
		cl.ImageDesc{Type: cl.MemObjectImage2D, Width: 4, Height: 4}, nil)
	saved := query.MaxValueSize
	query.MaxValueSize = 8
	defer func() { query.MaxValueSize = saved }()
	reads := fake.ReadImageCalls
	if err := b.Save(filepath.Join(t.TempDir(), "e.png"), queue, large); !errors.Is(err, query.ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if fake.ReadImageCalls != reads {
		t.Fatalf("device read despite allocation failure")
	}
}

func TestSaveDuplicateOfGrayImage(t *testing.T) {
	fake, ctx, queue := setup(t)
	b := New(fake, nil)
	mem, _, _, err := b.Load(ctx, writeFile(t, "in.pgm", []byte("P5 3 1 255\n\x01\x02\x03")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dup, err := b.DuplicateEmpty(ctx, mem)
	if err != nil {
		t.Fatalf("DuplicateEmpty: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.png")
	if err := b.Save(out, queue, dup); err != nil {
		t.Fatalf("Save: %v", err)
	}
	img, err := raster.Decode(out, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0}, img.Pix); diff != "" {
		t.Fatalf("pixels mismatch (-want +got):\n%s", diff)
	}
}
