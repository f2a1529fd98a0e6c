// Package query retrieves variable-length attribute values from the OpenCL
// platform using the two-phase size/value protocol.
package query

import (
	"github.com/pkg/errors"

	"github.com/cwbudde/clut/internal/cl"
)

var (
	// ErrSizeProbe reports a failed or zero-sized size probe.
	ErrSizeProbe = errors.New("attribute size probe failed")
	// ErrAllocation reports a value buffer that cannot be allocated.
	ErrAllocation = errors.New("attribute buffer allocation failed")
	// ErrFetch reports a failed value fetch.
	ErrFetch = errors.New("attribute fetch failed")
	// ErrSizeMismatch reports a value whose size changed between probe and
	// fetch.
	ErrSizeMismatch = errors.New("attribute size changed between probe and fetch")
)

// DefaultMaxValueSize is the default value of MaxValueSize.
const DefaultMaxValueSize = 64 << 20

// MaxValueSize bounds every buffer allocated by this package. Sizes above it
// fail with ErrAllocation.
var MaxValueSize = DefaultMaxValueSize

// Fetcher performs one phase of an attribute query. A nil dst asks for the
// value size; otherwise the value is written into dst. It returns the size
// reported by the platform.
type Fetcher func(dst []byte) (int, cl.Status)

// Do runs the probe, allocate, fetch, verify sequence once. The returned
// buffer is owned by the caller and has exactly the probed length.
func Do(fetch Fetcher) ([]byte, error) {
	size, status := fetch(nil)
	if status != cl.Success {
		return nil, errors.Wrapf(ErrSizeProbe, "%s", cl.Describe(status))
	}
	if size == 0 {
		return nil, errors.Wrap(ErrSizeProbe, "invalid info size '0'")
	}

	buf, err := Allocate(size)
	if err != nil {
		return nil, err
	}

	fetched, status := fetch(buf)
	if status != cl.Success {
		return nil, errors.Wrapf(ErrFetch, "%s", cl.Describe(status))
	}
	if fetched != size {
		return nil, errors.Wrapf(ErrSizeMismatch, "info size changed from '%d' to '%d'", size, fetched)
	}
	return buf, nil
}

// Allocate returns a zeroed buffer of n bytes, or ErrAllocation when n is
// not positive or exceeds MaxValueSize.
func Allocate(n int) ([]byte, error) {
	if n <= 0 || n > MaxValueSize {
		return nil, errors.Wrapf(ErrAllocation, "cannot allocate '%d' bytes", n)
	}
	return make([]byte, n), nil
}

// PlatformInfoGetter is satisfied by cl.API.
type PlatformInfoGetter interface {
	GetPlatformInfo(platform cl.PlatformID, param cl.PlatformInfo, dst []byte) (int, cl.Status)
}

// DeviceInfoGetter is satisfied by cl.API.
type DeviceInfoGetter interface {
	GetDeviceInfo(device cl.DeviceID, param cl.DeviceInfo, dst []byte) (int, cl.Status)
}

// ProgramInfoGetter is satisfied by cl.API.
type ProgramInfoGetter interface {
	GetProgramInfo(program cl.Program, param cl.ProgramInfo, dst []byte) (int, cl.Status)
	GetProgramBuildInfo(program cl.Program, device cl.DeviceID, param cl.ProgramBuildInfo, dst []byte) (int, cl.Status)
}

// ImageInfoGetter is satisfied by cl.API.
type ImageInfoGetter interface {
	GetImageInfo(image cl.Mem, param cl.ImageInfo, dst []byte) (int, cl.Status)
}

// PlatformInfo returns the raw value of a platform attribute.
func PlatformInfo(api PlatformInfoGetter, platform cl.PlatformID, param cl.PlatformInfo) ([]byte, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetPlatformInfo(platform, param, dst)
	})
	return v, errors.Wrapf(err, "platform info 0x%04X", uint32(param))
}

// DeviceInfo returns the raw value of a device attribute.
func DeviceInfo(api DeviceInfoGetter, device cl.DeviceID, param cl.DeviceInfo) ([]byte, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetDeviceInfo(device, param, dst)
	})
	return v, errors.Wrapf(err, "device info 0x%04X", uint32(param))
}

// ProgramInfo returns the raw value of a program attribute.
func ProgramInfo(api ProgramInfoGetter, program cl.Program, param cl.ProgramInfo) ([]byte, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetProgramInfo(program, param, dst)
	})
	return v, errors.Wrapf(err, "program info 0x%04X", uint32(param))
}

// ProgramBuildInfo returns the raw value of a per-device build attribute.
func ProgramBuildInfo(api ProgramInfoGetter, program cl.Program, device cl.DeviceID, param cl.ProgramBuildInfo) ([]byte, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetProgramBuildInfo(program, device, param, dst)
	})
	return v, errors.Wrapf(err, "program build info 0x%04X", uint32(param))
}

// BuildLog returns the build log of program for device. The log is fetched
// on every call.
func BuildLog(api ProgramInfoGetter, program cl.Program, device cl.DeviceID) (string, error) {
	v, err := ProgramBuildInfo(api, program, device, cl.ProgramBuildLog)
	if err != nil {
		return "", err
	}
	return String(v), nil
}

// ImageInfo returns the raw value of an image attribute.
func ImageInfo(api ImageInfoGetter, image cl.Mem, param cl.ImageInfo) ([]byte, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetImageInfo(image, param, dst)
	})
	return v, errors.Wrapf(err, "image info 0x%04X", uint32(param))
}
