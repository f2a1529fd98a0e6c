package describe

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
)

const (
	dataTypeWidth = 36
	orderWidth    = 4
)

var matrixImageTypes = []cl.MemObjectType{
	cl.MemObjectImage1D,
	cl.MemObjectImage1DBuffer,
	cl.MemObjectImage2D,
	cl.MemObjectImage3D,
	cl.MemObjectImage1DArray,
	cl.MemObjectImage2DArray,
}

var matrixOrders = []cl.ChannelOrder{
	cl.ChannelR,
	cl.ChannelRx,
	cl.ChannelA,
	cl.ChannelIntensity,
	cl.ChannelLuminance,
	cl.ChannelRG,
	cl.ChannelRGx,
	cl.ChannelRA,
	cl.ChannelRGB,
	cl.ChannelRGBx,
	cl.ChannelRGBA,
	cl.ChannelARGB,
	cl.ChannelBGRA,
	cl.Channel1RGBApple,
	cl.ChannelABGRApple,
	cl.ChannelBGR1Apple,
	cl.ChannelCbYCrYApple,
	cl.ChannelYCbYCrApple,
}

var matrixTypes = []cl.ChannelType{
	cl.SNormInt8,
	cl.SNormInt16,
	cl.UNormInt8,
	cl.UNormInt16,
	cl.UNormShort565,
	cl.UNormShort555,
	cl.UNormInt101010,
	cl.SignedInt8,
	cl.SignedInt16,
	cl.SignedInt32,
	cl.UnsignedInt8,
	cl.UnsignedInt16,
	cl.UnsignedInt32,
	cl.HalfFloat,
	cl.Float,
}

// SupportedImageFormats lists the read/write formats of an image type.
func (d *Describer) SupportedImageFormats(ctx cl.Context, imageType cl.MemObjectType) ([]cl.ImageFormat, error) {
	n, status := d.api.SupportedImageFormats(ctx, cl.MemReadWrite, imageType, nil)
	if status != cl.Success {
		return nil, cl.StatusError("clGetSupportedImageFormats(count)", status)
	}
	if n == 0 {
		return nil, errors.Errorf("illegal number of formats: %d", n)
	}

	formats := make([]cl.ImageFormat, n)
	n, status = d.api.SupportedImageFormats(ctx, cl.MemReadWrite, imageType, formats)
	if status != cl.Success {
		return nil, cl.StatusError("clGetSupportedImageFormats(list)", status)
	}
	if n == 0 || int(n) > len(formats) {
		return nil, errors.Errorf("illegal number of formats: %d", n)
	}
	return formats[:n], nil
}

// PrintSupportedImageFormats prints an availability matrix for every image
// type supported by device. Image types that cannot be queried are skipped.
func (d *Describer) PrintSupportedImageFormats(device cl.DeviceID) (err error) {
	ctx, status := d.api.CreateContext([]cl.DeviceID{device})
	if status != cl.Success {
		return errors.Wrap(cl.StatusError("clCreateContext", status), "failed to create context")
	}
	defer func() {
		if status := d.api.ReleaseContext(ctx); status != cl.Success {
			err = multierr.Append(err, cl.StatusError("clReleaseContext", status))
		}
	}()

	for _, imageType := range matrixImageTypes {
		formats, err := d.SupportedImageFormats(ctx, imageType)
		if err != nil {
			d.log.Debug("unable to get available image formats",
				zap.String("image_type", ImageTypeName(imageType)), zap.Error(err))
			continue
		}
		fmt.Fprintf(d.out, "\nPrinting matrix for %s.\n", ImageTypeName(imageType))
		WriteFormatMatrix(d.out, formats)
	}
	return nil
}

// WriteFormatMatrix writes a channel type by channel order table marking
// the available formats with "x". Formats outside the known orders and
// types are ignored.
func WriteFormatMatrix(w io.Writer, formats []cl.ImageFormat) {
	available := make(map[cl.ImageFormat]bool, len(formats))
	for _, f := range formats {
		available[f] = true
	}

	fmt.Fprintf(w, "%-*.*s ", dataTypeWidth, dataTypeWidth, "Data Type")
	for _, order := range matrixOrders {
		fmt.Fprintf(w, "| %-*.*s ", orderWidth, orderWidth, ChannelOrderName(order))
	}
	fmt.Fprintln(w)

	for _, t := range matrixTypes {
		fmt.Fprintf(w, "%-*.*s ", dataTypeWidth, dataTypeWidth, ChannelTypeName(t))
		for _, order := range matrixOrders {
			mark := ""
			if available[cl.ImageFormat{Order: order, Type: t}] {
				mark = "x"
			}
			fmt.Fprintf(w, "| %-*.*s ", orderWidth, orderWidth, mark)
		}
		fmt.Fprintln(w)
	}
}
