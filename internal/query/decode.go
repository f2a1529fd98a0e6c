package query

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/cwbudde/clut/internal/cl"
)

// ErrShortValue reports a value too short for the requested decoding.
var ErrShortValue = errors.New("attribute value too short")

// Uint32 decodes a cl_uint value.
func Uint32(v []byte) (uint32, error) {
	if len(v) < 4 {
		return 0, errors.Wrapf(ErrShortValue, "need 4 bytes, have %d", len(v))
	}
	return binary.NativeEndian.Uint32(v), nil
}

// Uint64 decodes a cl_ulong or cl_bitfield value.
func Uint64(v []byte) (uint64, error) {
	if len(v) < 8 {
		return 0, errors.Wrapf(ErrShortValue, "need 8 bytes, have %d", len(v))
	}
	return binary.NativeEndian.Uint64(v), nil
}

// Size decodes a size_t value.
func Size(v []byte) (uint64, error) {
	return Unsigned(v, cl.SizeTSize)
}

// Unsigned decodes an unsigned integer of the given width in bytes.
func Unsigned(v []byte, width int) (uint64, error) {
	switch width {
	case 4:
		u, err := Uint32(v)
		return uint64(u), err
	case 8:
		return Uint64(v)
	default:
		return 0, errors.Errorf("unsupported integer width %d", width)
	}
}

// Handle decodes a single object handle.
func Handle(v []byte) (uintptr, error) {
	u, err := Unsigned(v, cl.HandleSize)
	return uintptr(u), err
}

// Handles decodes an array of object handles. Trailing bytes that do not
// form a whole handle are ignored.
func Handles(v []byte) []uintptr {
	n := len(v) / cl.HandleSize
	out := make([]uintptr, 0, n)
	for i := 0; i < n; i++ {
		h, _ := Handle(v[i*cl.HandleSize:])
		out = append(out, h)
	}
	return out
}

// String decodes a char[] value, stopping at the first NUL.
func String(v []byte) string {
	if i := bytes.IndexByte(v, 0); i >= 0 {
		v = v[:i]
	}
	return string(v)
}

// ImageFormat decodes a cl_image_format value.
func ImageFormat(v []byte) (cl.ImageFormat, error) {
	if len(v) < cl.ImageFormatSize {
		return cl.ImageFormat{}, errors.Wrapf(ErrShortValue, "need %d bytes, have %d", cl.ImageFormatSize, len(v))
	}
	return cl.ImageFormat{
		Order: cl.ChannelOrder(binary.NativeEndian.Uint32(v)),
		Type:  cl.ChannelType(binary.NativeEndian.Uint32(v[4:])),
	}, nil
}
