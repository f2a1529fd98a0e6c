package cl

import "github.com/pkg/errors"

// ErrNotBuilt indicates the binary was built without OpenCL support.
var ErrNotBuilt = errors.New("opencl support requires building with '-tags gpu'")

// API is the subset of the OpenCL 1.2 platform API used by this module.
//
// The Get*Info methods follow the two-phase convention of the C API: a nil
// dst asks for the value size only, a non-nil dst receives the value. The
// returned int is the size of the value in bytes.
type API interface {
	PlatformIDs(dst []PlatformID) (uint32, Status)
	DeviceIDs(platform PlatformID, deviceType DeviceTypeFlags, dst []DeviceID) (uint32, Status)

	GetPlatformInfo(platform PlatformID, param PlatformInfo, dst []byte) (int, Status)
	GetDeviceInfo(device DeviceID, param DeviceInfo, dst []byte) (int, Status)
	GetProgramInfo(program Program, param ProgramInfo, dst []byte) (int, Status)
	GetProgramBuildInfo(program Program, device DeviceID, param ProgramBuildInfo, dst []byte) (int, Status)
	GetImageInfo(image Mem, param ImageInfo, dst []byte) (int, Status)
	GetEventProfilingInfo(event Event, param ProfilingInfo, dst []byte) (int, Status)

	CreateContext(devices []DeviceID) (Context, Status)
	ReleaseContext(ctx Context) Status
	CreateCommandQueue(ctx Context, device DeviceID, properties uint64) (CommandQueue, Status)
	ReleaseCommandQueue(queue CommandQueue) Status
	Finish(queue CommandQueue) Status

	CreateProgramWithSource(ctx Context, sources []string) (Program, Status)
	BuildProgram(program Program, devices []DeviceID, options string) Status
	ReleaseProgram(program Program) Status

	// CreateImage creates an image object. host may be nil unless flags
	// request the host data to be copied or used.
	CreateImage(ctx Context, flags MemFlags, format ImageFormat, desc ImageDesc, host []byte) (Mem, Status)
	ReleaseMemObject(mem Mem) Status
	SupportedImageFormats(ctx Context, flags MemFlags, imageType MemObjectType, dst []ImageFormat) (uint32, Status)

	// EnqueueReadImage copies region (width, height, depth in pixels)
	// starting at origin into dst. Zero pitches mean tightly packed rows.
	EnqueueReadImage(queue CommandQueue, image Mem, blocking bool, origin, region [3]int, rowPitch, slicePitch int, dst []byte) Status
}
