// Package raster decodes and encodes 8-bit interleaved host rasters.
package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cwbudde/clut/internal/query"
)

// Image is an interleaved 8-bit raster with Components samples per pixel
// and no row padding.
type Image struct {
	Pix        []byte
	Width      int
	Height     int
	Components int
}

// ErrComponents reports an unsupported component count.
var ErrComponents = errors.New("unsupported component count")

// Decode reads an image file. With components 0 the raster keeps the
// file's native component count; otherwise pixels are converted to the
// requested count (1 to 4).
func Decode(path string, components int) (*Image, error) {
	if components < 0 || components > 4 {
		return nil, errors.Wrapf(ErrComponents, "%d", components)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	// Conversion goes through an 8-bit RGBA copy.
	if _, ok := bufferSize(cfg.Width, cfg.Height, 4); !ok {
		return nil, errors.Wrapf(query.ErrAllocation, "%s: %dx%d image exceeds %d bytes", path, cfg.Width, cfg.Height, query.MaxValueSize)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	native := nativeComponents(img, pngColorType(data))
	if components == 0 {
		components = native
	}
	return convert(img, components), nil
}

// pngColorType returns the IHDR colour type of PNG data, or -1.
func pngColorType(data []byte) int {
	const header = "\x89PNG\r\n\x1a\n"
	// signature, chunk length, "IHDR", width, height, bit depth, colour type
	if len(data) < 26 || string(data[:8]) != header || string(data[12:16]) != "IHDR" {
		return -1
	}
	return int(data[25])
}

func nativeComponents(img image.Image, pngType int) int {
	switch pngType {
	case 0:
		return 1
	case 4:
		return 2
	case 2:
		return 3
	case 6:
		return 4
	}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func convert(img image.Image, components int) *Image {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	out := &Image{
		Pix:        make([]byte, b.Dx()*b.Dy()*components),
		Width:      b.Dx(),
		Height:     b.Dy(),
		Components: components,
	}
	i := 0
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+out.Width*4]
		for x := 0; x < len(row); x += 4 {
			c := color.NRGBA{R: row[x], G: row[x+1], B: row[x+2], A: row[x+3]}
			switch components {
			case 1:
				out.Pix[i] = luminance(c)
			case 2:
				out.Pix[i] = luminance(c)
				out.Pix[i+1] = c.A
			case 3:
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = c.R, c.G, c.B
			case 4:
				copy(out.Pix[i:i+4], row[x:x+4])
			}
			i += components
		}
	}
	return out
}

func luminance(c color.NRGBA) byte {
	return byte((77*uint32(c.R) + 150*uint32(c.G) + 29*uint32(c.B)) >> 8)
}

// EncodePNG writes a raster of width by height pixels with the given
// component count to path. stride is the distance in bytes between rows.
func EncodePNG(path string, width, height, components int, pix []byte, stride int) (err error) {
	if components < 1 || components > 4 {
		return errors.Wrapf(ErrComponents, "%d", components)
	}
	if width <= 0 || height <= 0 || stride < width*components {
		return errors.Errorf("invalid raster geometry %dx%d stride %d", width, height, stride)
	}
	if len(pix) < stride*(height-1)+width*components {
		return errors.Errorf("raster buffer too short: %d bytes", len(pix))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close png")
		}
	}()

	w := bufio.NewWriter(f)
	if err := png.Encode(w, toImage(width, height, components, pix, stride)); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return errors.Wrap(w.Flush(), "flush png")
}

func toImage(width, height, components int, pix []byte, stride int) image.Image {
	rect := image.Rect(0, 0, width, height)
	if components == 1 {
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], pix[y*stride:])
		}
		return img
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x := 0; x < width; x++ {
			s := row[x*components:]
			d := img.Pix[y*img.Stride+x*4:]
			switch components {
			case 2:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			case 3:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xFF
			case 4:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3]
			}
		}
	}
	return img
}

// ErrPGM reports a malformed PGM file.
var ErrPGM = errors.New("malformed pgm")

// DecodePGM reads a binary (P5) or plain (P2) PGM file. Samples with a
// maximum value other than 255 are rescaled to 0..255.
func DecodePGM(path string) (pix []byte, height, width int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, "open pgm")
	}
	defer f.Close()

	img, err := ReadPGM(bufio.NewReader(f))
	if err != nil {
		return nil, 0, 0, errors.Wrapf(err, "decode %s", path)
	}
	return img.Pix, img.Height, img.Width, nil
}

// ReadPGM decodes a PGM stream into a single component raster.
func ReadPGM(r *bufio.Reader) (*Image, error) {
	magic, err := pgmToken(r)
	if err != nil {
		return nil, err
	}
	if magic != "P5" && magic != "P2" {
		return nil, errors.Wrapf(ErrPGM, "bad magic %q", magic)
	}

	var header [3]int
	for i := range header {
		tok, err := pgmToken(r)
		if err != nil {
			return nil, err
		}
		n, ok := atoi(tok)
		if !ok || n <= 0 {
			return nil, errors.Wrapf(ErrPGM, "bad header field %q", tok)
		}
		header[i] = n
	}
	width, height, maxval := header[0], header[1], header[2]
	if maxval > 65535 {
		return nil, errors.Wrapf(ErrPGM, "maxval %d out of range", maxval)
	}

	size, ok := bufferSize(width, height, 1)
	if !ok {
		return nil, errors.Wrapf(ErrPGM, "%dx%d image exceeds %d bytes", width, height, query.MaxValueSize)
	}

	out := &Image{Pix: make([]byte, size), Width: width, Height: height, Components: 1}
	for i := range out.Pix {
		var v int
		if magic == "P2" {
			tok, err := pgmToken(r)
			if err != nil {
				return nil, err
			}
			n, ok := atoi(tok)
			if !ok {
				return nil, errors.Wrapf(ErrPGM, "bad sample %q", tok)
			}
			v = n
		} else if maxval < 256 {
			b, err := r.ReadByte()
			if err != nil {
				return nil, errors.Wrap(ErrPGM, "truncated data")
			}
			v = int(b)
		} else {
			var s [2]byte
			if _, err := io.ReadFull(r, s[:]); err != nil {
				return nil, errors.Wrap(ErrPGM, "truncated data")
			}
			v = int(binary.BigEndian.Uint16(s[:]))
		}
		if v > maxval {
			v = maxval
		}
		if maxval != 255 {
			v = (v*255 + maxval/2) / maxval
		}
		out.Pix[i] = byte(v)
	}
	return out, nil
}

// pgmToken returns the next whitespace separated header token, skipping
// comments. The single whitespace byte after the token is consumed.
func pgmToken(r *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", errors.Wrap(ErrPGM, "unexpected end of header")
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := r.ReadString('\n'); err != nil {
				return "", errors.Wrap(ErrPGM, "unterminated comment")
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func atoi(s string) (int, bool) {
	if s == "" || len(s) > 9 {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// bufferSize returns width*height*components, or false when a dimension is
// not positive or the product exceeds query.MaxValueSize.
func bufferSize(width, height, components int) (int, bool) {
	if width <= 0 || height <= 0 || components <= 0 {
		return 0, false
	}
	if width > query.MaxValueSize/height/components {
		return 0, false
	}
	return width * height * components, true
}
