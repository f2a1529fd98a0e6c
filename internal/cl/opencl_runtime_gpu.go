//go:build gpu

package cl

/*
#cgo LDFLAGS: -lOpenCL
#define CL_TARGET_OPENCL_VERSION 120
#define CL_USE_DEPRECATED_OPENCL_1_2_APIS
#include <stdlib.h>
#include <CL/cl.h>

static cl_program clut_create_program(cl_context ctx, cl_uint count, char **sources, cl_int *status) {
	return clCreateProgramWithSource(ctx, count, (const char **) sources, NULL, status);
}

static cl_int clut_build_program(cl_program program, cl_uint n, const cl_device_id *devices, const char *options) {
	return clBuildProgram(program, n, devices, options, NULL, NULL);
}

static cl_context clut_create_context(cl_uint n, const cl_device_id *devices, cl_int *status) {
	return clCreateContext(NULL, n, devices, NULL, NULL, status);
}
*/
import "C"

import "unsafe"

// driver forwards every call to the system OpenCL library.
type driver struct{}

// Load returns the system OpenCL implementation.
func Load() (API, error) {
	return driver{}, nil
}

func (driver) PlatformIDs(dst []PlatformID) (uint32, Status) {
	var count C.cl_uint
	if len(dst) == 0 {
		status := C.clGetPlatformIDs(0, nil, &count)
		return uint32(count), Status(status)
	}

	ids := make([]C.cl_platform_id, len(dst))
	status := C.clGetPlatformIDs(C.cl_uint(len(ids)), &ids[0], &count)
	for i, id := range ids {
		dst[i] = PlatformID(uintptr(unsafe.Pointer(id)))
	}
	return uint32(count), Status(status)
}

func (driver) DeviceIDs(platform PlatformID, deviceType DeviceTypeFlags, dst []DeviceID) (uint32, Status) {
	var count C.cl_uint
	if len(dst) == 0 {
		status := C.clGetDeviceIDs(platformHandle(platform), C.cl_device_type(deviceType), 0, nil, &count)
		return uint32(count), Status(status)
	}

	ids := make([]C.cl_device_id, len(dst))
	status := C.clGetDeviceIDs(platformHandle(platform), C.cl_device_type(deviceType), C.cl_uint(len(ids)), &ids[0], &count)
	for i, id := range ids {
		dst[i] = DeviceID(uintptr(unsafe.Pointer(id)))
	}
	return uint32(count), Status(status)
}

func (driver) GetPlatformInfo(platform PlatformID, param PlatformInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetPlatformInfo(platformHandle(platform), C.cl_platform_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) GetDeviceInfo(device DeviceID, param DeviceInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetDeviceInfo(deviceHandle(device), C.cl_device_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) GetProgramInfo(program Program, param ProgramInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetProgramInfo(programHandle(program), C.cl_program_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) GetProgramBuildInfo(program Program, device DeviceID, param ProgramBuildInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetProgramBuildInfo(programHandle(program), deviceHandle(device), C.cl_program_build_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) GetImageInfo(image Mem, param ImageInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetImageInfo(memHandle(image), C.cl_image_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) GetEventProfilingInfo(event Event, param ProfilingInfo, dst []byte) (int, Status) {
	var size C.size_t
	status := C.clGetEventProfilingInfo(C.cl_event(unsafe.Pointer(event)), C.cl_profiling_info(param), C.size_t(len(dst)), bytePtr(dst), &size)
	return int(size), Status(status)
}

func (driver) CreateContext(devices []DeviceID) (Context, Status) {
	if len(devices) == 0 {
		return 0, InvalidValue
	}
	ids := deviceHandles(devices)

	var status C.cl_int
	ctx := C.clut_create_context(C.cl_uint(len(ids)), &ids[0], &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Context(uintptr(unsafe.Pointer(ctx))), Success
}

func (driver) ReleaseContext(ctx Context) Status {
	return Status(C.clReleaseContext(contextHandle(ctx)))
}

func (driver) CreateCommandQueue(ctx Context, device DeviceID, properties uint64) (CommandQueue, Status) {
	var status C.cl_int
	queue := C.clCreateCommandQueue(contextHandle(ctx), deviceHandle(device), C.cl_command_queue_properties(properties), &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return CommandQueue(uintptr(unsafe.Pointer(queue))), Success
}

func (driver) ReleaseCommandQueue(queue CommandQueue) Status {
	return Status(C.clReleaseCommandQueue(queueHandle(queue)))
}

func (driver) Finish(queue CommandQueue) Status {
	return Status(C.clFinish(queueHandle(queue)))
}

func (driver) CreateProgramWithSource(ctx Context, sources []string) (Program, Status) {
	if len(sources) == 0 {
		return 0, InvalidValue
	}

	strs := make([]*C.char, len(sources))
	for i, s := range sources {
		strs[i] = C.CString(s)
	}
	defer func() {
		for _, s := range strs {
			C.free(unsafe.Pointer(s))
		}
	}()

	var status C.cl_int
	program := C.clut_create_program(contextHandle(ctx), C.cl_uint(len(strs)), &strs[0], &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Program(uintptr(unsafe.Pointer(program))), Success
}

func (driver) BuildProgram(program Program, devices []DeviceID, options string) Status {
	opts := C.CString(options)
	defer C.free(unsafe.Pointer(opts))

	var ids []C.cl_device_id
	var idsPtr *C.cl_device_id
	if len(devices) > 0 {
		ids = deviceHandles(devices)
		idsPtr = &ids[0]
	}
	return Status(C.clut_build_program(programHandle(program), C.cl_uint(len(ids)), idsPtr, opts))
}

func (driver) ReleaseProgram(program Program) Status {
	return Status(C.clReleaseProgram(programHandle(program)))
}

func (driver) CreateImage(ctx Context, flags MemFlags, format ImageFormat, desc ImageDesc, host []byte) (Mem, Status) {
	cformat := C.cl_image_format{
		image_channel_order:     C.cl_channel_order(format.Order),
		image_channel_data_type: C.cl_channel_type(format.Type),
	}

	var cdesc C.cl_image_desc
	cdesc.image_type = C.cl_mem_object_type(desc.Type)
	cdesc.image_width = C.size_t(desc.Width)
	cdesc.image_height = C.size_t(desc.Height)
	cdesc.image_depth = C.size_t(desc.Depth)
	cdesc.image_array_size = C.size_t(desc.ArraySize)
	cdesc.image_row_pitch = C.size_t(desc.RowPitch)

	var status C.cl_int
	image := C.clCreateImage(contextHandle(ctx), C.cl_mem_flags(flags), &cformat, &cdesc, bytePtr(host), &status)
	if status != C.CL_SUCCESS {
		return 0, Status(status)
	}
	return Mem(uintptr(unsafe.Pointer(image))), Success
}

func (driver) ReleaseMemObject(mem Mem) Status {
	return Status(C.clReleaseMemObject(memHandle(mem)))
}

func (driver) SupportedImageFormats(ctx Context, flags MemFlags, imageType MemObjectType, dst []ImageFormat) (uint32, Status) {
	var count C.cl_uint
	if len(dst) == 0 {
		status := C.clGetSupportedImageFormats(contextHandle(ctx), C.cl_mem_flags(flags), C.cl_mem_object_type(imageType), 0, nil, &count)
		return uint32(count), Status(status)
	}

	formats := make([]C.cl_image_format, len(dst))
	status := C.clGetSupportedImageFormats(contextHandle(ctx), C.cl_mem_flags(flags), C.cl_mem_object_type(imageType), C.cl_uint(len(formats)), &formats[0], &count)
	for i, f := range formats {
		dst[i] = ImageFormat{Order: ChannelOrder(f.image_channel_order), Type: ChannelType(f.image_channel_data_type)}
	}
	return uint32(count), Status(status)
}

// EnqueueReadImage always performs a blocking read: dst is Go memory and
// must not be written after the call returns.
func (driver) EnqueueReadImage(queue CommandQueue, image Mem, _ bool, origin, region [3]int, rowPitch, slicePitch int, dst []byte) Status {
	corigin := [3]C.size_t{C.size_t(origin[0]), C.size_t(origin[1]), C.size_t(origin[2])}
	cregion := [3]C.size_t{C.size_t(region[0]), C.size_t(region[1]), C.size_t(region[2])}
	return Status(C.clEnqueueReadImage(queueHandle(queue), memHandle(image), C.CL_TRUE,
		&corigin[0], &cregion[0], C.size_t(rowPitch), C.size_t(slicePitch), bytePtr(dst), 0, nil, nil))
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func deviceHandles(devices []DeviceID) []C.cl_device_id {
	ids := make([]C.cl_device_id, len(devices))
	for i, d := range devices {
		ids[i] = deviceHandle(d)
	}
	return ids
}

func platformHandle(p PlatformID) C.cl_platform_id { return C.cl_platform_id(unsafe.Pointer(p)) }
func deviceHandle(d DeviceID) C.cl_device_id       { return C.cl_device_id(unsafe.Pointer(d)) }
func contextHandle(c Context) C.cl_context         { return C.cl_context(unsafe.Pointer(c)) }
func queueHandle(q CommandQueue) C.cl_command_queue {
	return C.cl_command_queue(unsafe.Pointer(q))
}
func programHandle(p Program) C.cl_program { return C.cl_program(unsafe.Pointer(p)) }
func memHandle(m Mem) C.cl_mem             { return C.cl_mem(unsafe.Pointer(m)) }
