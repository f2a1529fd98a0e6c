// Package imagebridge moves 8-bit rasters between files on disk and 2D
// OpenCL images.
package imagebridge

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/query"
	"github.com/cwbudde/clut/internal/raster"
)

var (
	// ErrUnsupportedFormat reports a component count or channel order with
	// no mapping.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrUnsupportedEncoding reports a channel data type that cannot be
	// written as an 8-bit file.
	ErrUnsupportedEncoding = errors.New("unsupported image encoding")
	// ErrDeviceImageCreation reports a failed image creation.
	ErrDeviceImageCreation = errors.New("unable to create device image")
	// ErrReadback reports a failed device to host copy.
	ErrReadback = errors.New("unable to read image from device")
	// ErrEncode reports a failure to write the output file.
	ErrEncode = errors.New("unable to encode image")
)

// Decoder decodes an image file into a raster with the requested number of
// components. 0 keeps the file's native count.
type Decoder func(path string, components int) (*raster.Image, error)

// Bridge creates device images from files and writes them back.
type Bridge struct {
	api        cl.API
	log        *zap.Logger
	normalized bool
	decode     Decoder
}

// Option configures a Bridge.
type Option func(*Bridge)

// Normalized makes Load create UNORM_INT8 images, which kernels sample as
// floats in [0, 1], instead of UNSIGNED_INT8.
func Normalized(on bool) Option {
	return func(b *Bridge) { b.normalized = on }
}

// WithDecoder replaces the general image decoder.
func WithDecoder(d Decoder) Option {
	return func(b *Bridge) { b.decode = d }
}

// New returns a Bridge for api.
func New(api cl.API, logger *zap.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{
		api:    api,
		log:    logger.Named("imagebridge"),
		decode: raster.Decode,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// channelOrder maps a component count to the channel order used for it.
func channelOrder(components int) (cl.ChannelOrder, bool) {
	switch components {
	case 1:
		return cl.ChannelR, true
	case 2:
		return cl.ChannelRA, true
	case 4:
		return cl.ChannelRGBA, true
	}
	return 0, false
}

func (b *Bridge) dataType() cl.ChannelType {
	if b.normalized {
		return cl.UNormInt8
	}
	return cl.UnsignedInt8
}

// Load reads the image file at path and creates a read-only 2D image in ctx
// holding its pixels. Files with a .pgm extension use the PGM decoder.
// Three component files are uploaded as RGBA.
func (b *Bridge) Load(ctx cl.Context, path string) (cl.Mem, int, int, error) {
	img, err := b.read(path)
	if err != nil {
		return 0, 0, 0, err
	}

	order, ok := channelOrder(img.Components)
	if !ok {
		return 0, 0, 0, errors.Wrapf(ErrUnsupportedFormat, "%s: %d components", path, img.Components)
	}

	format := cl.ImageFormat{Order: order, Type: b.dataType()}
	desc := cl.ImageDesc{Type: cl.MemObjectImage2D, Width: img.Width, Height: img.Height}
	mem, status := b.api.CreateImage(ctx, cl.MemReadOnly|cl.MemCopyHostPtr, format, desc, img.Pix)
	if status != cl.Success {
		return 0, 0, 0, errors.Wrapf(ErrDeviceImageCreation, "%s: %s", path, cl.Describe(status))
	}

	b.log.Debug("image loaded",
		zap.String("path", path),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.String("order", describe.ChannelOrderName(order)),
		zap.String("type", describe.ChannelTypeName(format.Type)))
	return mem, img.Width, img.Height, nil
}

func (b *Bridge) read(path string) (*raster.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pgm") {
		pix, height, width, err := raster.DecodePGM(path)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load image")
		}
		return &raster.Image{Pix: pix, Width: width, Height: height, Components: 1}, nil
	}

	img, err := b.decode(path, 0)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load image")
	}
	if img.Components == 3 {
		// No three channel order is guaranteed for 8-bit images.
		b.log.Debug("expanding rgb image to rgba", zap.String("path", path))
		img, err = b.decode(path, 4)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load image")
		}
	}
	return img, nil
}

// Format returns the width, height and format of image.
func (b *Bridge) Format(image cl.Mem) (width, height int, format cl.ImageFormat, err error) {
	v, err := query.ImageInfo(b.api, image, cl.ImageFormatInfo)
	if err != nil {
		return 0, 0, format, err
	}
	if format, err = query.ImageFormat(v); err != nil {
		return 0, 0, format, err
	}
	if width, err = b.sizeInfo(image, cl.ImageWidth); err != nil {
		return 0, 0, format, err
	}
	if height, err = b.sizeInfo(image, cl.ImageHeight); err != nil {
		return 0, 0, format, err
	}
	return width, height, format, nil
}

func (b *Bridge) sizeInfo(image cl.Mem, param cl.ImageInfo) (int, error) {
	v, err := query.ImageInfo(b.api, image, param)
	if err != nil {
		return 0, err
	}
	n, err := query.Size(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, errors.Errorf("image dimension %d out of range", n)
	}
	return int(n), nil
}

// Save reads image back through queue and writes it to path as PNG. Only
// 8-bit unsigned channel types are accepted; anything else fails before the
// device is touched.
func (b *Bridge) Save(path string, queue cl.CommandQueue, image cl.Mem) error {
	width, height, format, err := b.Format(image)
	if err != nil {
		return errors.Wrap(err, "unable to query image")
	}

	if format.Type != cl.UnsignedInt8 && format.Type != cl.UNormInt8 {
		return errors.Wrapf(ErrUnsupportedEncoding, "channel type %s", describe.ChannelTypeName(format.Type))
	}
	components, ok := format.Order.Components()
	if !ok {
		return errors.Wrapf(ErrUnsupportedFormat, "channel order %s", describe.ChannelOrderName(format.Order))
	}

	stride := width * components
	if width <= 0 || height <= 0 || stride/components != width || height > math.MaxInt/stride {
		return errors.Wrapf(query.ErrAllocation, "image of %dx%d pixels", width, height)
	}
	pix, err := query.Allocate(stride * height)
	if err != nil {
		return err
	}

	origin := [3]int{0, 0, 0}
	region := [3]int{width, height, 1}
	if status := b.api.EnqueueReadImage(queue, image, true, origin, region, 0, 0, pix); status != cl.Success {
		return errors.Wrapf(ErrReadback, "%s", cl.Describe(status))
	}
	if status := b.api.Finish(queue); status != cl.Success {
		return errors.Wrapf(ErrReadback, "clFinish: %s", cl.Describe(status))
	}

	if err := raster.EncodePNG(path, width, height, components, pix, stride); err != nil {
		return errors.Wrapf(ErrEncode, "%v", err)
	}
	b.log.Debug("image saved", zap.String("path", path), zap.Int("width", width), zap.Int("height", height))
	return nil
}

// DuplicateEmpty creates a write-only image in ctx with the format and size
// of image and no initial contents.
func (b *Bridge) DuplicateEmpty(ctx cl.Context, image cl.Mem) (cl.Mem, error) {
	width, height, format, err := b.Format(image)
	if err != nil {
		return 0, errors.Wrap(err, "unable to query image")
	}

	desc := cl.ImageDesc{Type: cl.MemObjectImage2D, Width: width, Height: height}
	mem, status := b.api.CreateImage(ctx, cl.MemWriteOnly, format, desc, nil)
	if status != cl.Success {
		return 0, errors.Wrapf(ErrDeviceImageCreation, "%s", cl.Describe(status))
	}
	return mem, nil
}

// Release releases an image created by the bridge.
func (b *Bridge) Release(image cl.Mem) error {
	if status := b.api.ReleaseMemObject(image); status != cl.Success {
		return cl.StatusError("clReleaseMemObject", status)
	}
	return nil
}
