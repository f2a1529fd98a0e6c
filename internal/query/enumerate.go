package query

import (
	"time"

	"github.com/pkg/errors"

	"github.com/cwbudde/clut/internal/cl"
)

var (
	// ErrNoPlatforms reports an implementation without platforms.
	ErrNoPlatforms = errors.New("no OpenCL platforms found")
	// ErrNoDevices reports a platform without devices of the requested type.
	ErrNoDevices = errors.New("no OpenCL devices found")
	// ErrEventOrder reports an event that ended before it started.
	ErrEventOrder = errors.New("event finished before starting")
)

// PlatformLister is satisfied by cl.API.
type PlatformLister interface {
	PlatformIDs(dst []cl.PlatformID) (uint32, cl.Status)
}

// DeviceLister is satisfied by cl.API.
type DeviceLister interface {
	DeviceIDs(platform cl.PlatformID, deviceType cl.DeviceTypeFlags, dst []cl.DeviceID) (uint32, cl.Status)
}

// ProfilingInfoGetter is satisfied by cl.API.
type ProfilingInfoGetter interface {
	GetEventProfilingInfo(event cl.Event, param cl.ProfilingInfo, dst []byte) (int, cl.Status)
}

// Platforms returns every platform ID. The count is taken twice and must not
// change between the count and the fill.
func Platforms(api PlatformLister) ([]cl.PlatformID, error) {
	n, status := api.PlatformIDs(nil)
	if status == cl.PlatformNotFoundKHR {
		return nil, ErrNoPlatforms
	}
	if status != cl.Success {
		return nil, cl.StatusError("clGetPlatformIDs(count)", status)
	}
	if n == 0 {
		return nil, ErrNoPlatforms
	}

	ids := make([]cl.PlatformID, n)
	check, status := api.PlatformIDs(ids)
	if status != cl.Success {
		return nil, cl.StatusError("clGetPlatformIDs(list)", status)
	}
	if check != n {
		return nil, errors.Wrapf(ErrSizeMismatch, "platform number went from %d to %d", n, check)
	}
	return ids, nil
}

// Devices returns the IDs of the devices of the given type on platform.
func Devices(api DeviceLister, platform cl.PlatformID, deviceType cl.DeviceTypeFlags) ([]cl.DeviceID, error) {
	n, status := api.DeviceIDs(platform, deviceType, nil)
	if status == cl.DeviceNotFound {
		return nil, ErrNoDevices
	}
	if status != cl.Success {
		return nil, cl.StatusError("clGetDeviceIDs(count)", status)
	}
	if n == 0 {
		return nil, ErrNoDevices
	}

	ids := make([]cl.DeviceID, n)
	check, status := api.DeviceIDs(platform, deviceType, ids)
	if status != cl.Success {
		return nil, cl.StatusError("clGetDeviceIDs(list)", status)
	}
	if check != n {
		return nil, errors.Wrapf(ErrSizeMismatch, "device number went from %d to %d", n, check)
	}
	return ids, nil
}

// EventDuration returns the time between the start and the end of a
// profiled command.
func EventDuration(api ProfilingInfoGetter, event cl.Event) (time.Duration, error) {
	start, err := profilingTime(api, event, cl.ProfilingCommandStart)
	if err != nil {
		return 0, errors.Wrap(err, "unable to get start time")
	}
	end, err := profilingTime(api, event, cl.ProfilingCommandEnd)
	if err != nil {
		return 0, errors.Wrap(err, "unable to get end time")
	}
	if end < start {
		return 0, errors.Wrapf(ErrEventOrder, "started at %d, ended at %d", start, end)
	}
	return time.Duration(end - start), nil
}

func profilingTime(api ProfilingInfoGetter, event cl.Event, param cl.ProfilingInfo) (uint64, error) {
	v, err := Do(func(dst []byte) (int, cl.Status) {
		return api.GetEventProfilingInfo(event, param, dst)
	})
	if err != nil {
		return 0, err
	}
	return Uint64(v)
}
