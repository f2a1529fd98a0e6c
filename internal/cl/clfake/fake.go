// Package clfake provides an in-memory OpenCL platform for tests.
package clfake

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/cwbudde/clut/internal/cl"
)

// FailMarker makes BuildProgram fail for every device when it appears in the
// program source. The log reports the line containing the marker.
const FailMarker = "#error"

// Platform is an in-memory cl.API implementation.
type Platform struct {
	mu   sync.Mutex
	next uintptr

	platforms []*platform
	devices   map[cl.DeviceID]*device
	contexts  map[cl.Context][]cl.DeviceID
	queues    map[cl.CommandQueue]cl.Context
	programs  map[cl.Program]*program
	images    map[cl.Mem]*image
	events    map[cl.Event][2]uint64
	formats   map[cl.MemObjectType][]cl.ImageFormat

	// FetchSkew is added to the size reported by value fetches (not
	// probes) of every info query, simulating values that change between
	// the two phases.
	FetchSkew int

	// Forced failures. Zero means success.
	CreateContextStatus cl.Status
	CreateProgramStatus cl.Status
	CreateImageStatus   cl.Status
	ReadImageStatus     cl.Status
	FinishStatus        cl.Status

	// Call counters.
	ReadImageCalls   int
	FinishCalls      int
	ReleasedPrograms int
	ReleasedImages   int
	ReleasedContexts int
	BuildLogFetches  map[cl.DeviceID]int
	LastBuildOptions string
}

type platform struct {
	id      cl.PlatformID
	info    map[cl.PlatformInfo][]byte
	devices []cl.DeviceID
}

type device struct {
	id         cl.DeviceID
	platform   cl.PlatformID
	deviceType cl.DeviceTypeFlags
	info       map[cl.DeviceInfo][]byte
}

type program struct {
	ctx     cl.Context
	source  string
	devices []cl.DeviceID
	logs    map[cl.DeviceID]string
	options string
}

type image struct {
	format cl.ImageFormat
	desc   cl.ImageDesc
	flags  cl.MemFlags
	pixels []byte
}

// New returns an empty platform list.
func New() *Platform {
	return &Platform{
		next:            0x1000,
		devices:         make(map[cl.DeviceID]*device),
		contexts:        make(map[cl.Context][]cl.DeviceID),
		queues:          make(map[cl.CommandQueue]cl.Context),
		programs:        make(map[cl.Program]*program),
		images:          make(map[cl.Mem]*image),
		events:          make(map[cl.Event][2]uint64),
		formats:         make(map[cl.MemObjectType][]cl.ImageFormat),
		BuildLogFetches: make(map[cl.DeviceID]int),
	}
}

func (f *Platform) handle() uintptr {
	f.next += 0x10
	return f.next
}

// AddPlatform registers a platform with the given name and a generic
// vendor, profile and version.
func (f *Platform) AddPlatform(name string) cl.PlatformID {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := cl.PlatformID(f.handle())
	f.platforms = append(f.platforms, &platform{
		id: id,
		info: map[cl.PlatformInfo][]byte{
			cl.PlatformName:       String(name),
			cl.PlatformVendor:     String("Fake Vendor"),
			cl.PlatformProfile:    String("FULL_PROFILE"),
			cl.PlatformVersion:    String("OpenCL 1.2 fake"),
			cl.PlatformExtensions: String(""),
		},
	})
	return id
}

// AddDevice registers a device of the given type on platform p with a
// plausible set of device infos. Individual infos can be replaced with
// SetDeviceInfo.
func (f *Platform) AddDevice(p cl.PlatformID, name string, deviceType cl.DeviceTypeFlags) cl.DeviceID {
	f.mu.Lock()
	defer f.mu.Unlock()

	var owner *platform
	for _, candidate := range f.platforms {
		if candidate.id == p {
			owner = candidate
		}
	}
	if owner == nil {
		return 0
	}

	id := cl.DeviceID(f.handle())
	owner.devices = append(owner.devices, id)
	f.devices[id] = &device{
		id:         id,
		platform:   p,
		deviceType: deviceType,
		info: map[cl.DeviceInfo][]byte{
			cl.DeviceName:                     String(name),
			cl.DeviceVendor:                   String("Fake Vendor"),
			cl.DeviceType:                     Uint64(uint64(deviceType)),
			cl.DeviceVendorID:                 Uint32(0x1234),
			cl.DeviceMaxClockFrequency:        Uint32(1500),
			cl.DeviceMaxComputeUnits:          Uint32(8),
			cl.DeviceMaxWorkItemDimensions:    Uint32(3),
			cl.DeviceMaxWorkItemSizes:         Sizes(1024, 1024, 64),
			cl.DeviceMaxWorkGroupSize:         Size(1024),
			cl.DeviceGlobalMemSize:            Uint64(2 << 30),
			cl.DeviceLocalMemSize:             Uint64(32 << 10),
			cl.DeviceLocalMemType:             Uint32(uint32(cl.LocalMemLocal)),
			cl.DeviceImageSupport:             Uint32(1),
			cl.DeviceSingleFPConfig:           Uint64(cl.FPInfNaN | cl.FPRoundToNearest | cl.FPFMA),
			cl.DevicePlatform:                 Handle(uintptr(p)),
			cl.DeviceVersion:                  String("OpenCL 1.2"),
			cl.DriverVersion:                  String("1.0"),
			cl.DeviceProfile:                  String("FULL_PROFILE"),
			cl.DeviceExtensions:               String(""),
			cl.DevicePartitionAffinityDomain:  Uint64(0),
			cl.DeviceProfilingTimerResolution: Size(1),
		},
	}
	return id
}

// SetDeviceInfo replaces one device info value. A nil value removes it, so
// that queries for it fail with CL_INVALID_VALUE.
func (f *Platform) SetDeviceInfo(d cl.DeviceID, param cl.DeviceInfo, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dev, ok := f.devices[d]
	if !ok {
		return
	}
	if value == nil {
		delete(dev.info, param)
		return
	}
	dev.info[param] = value
}

// SetPlatformInfo replaces one platform info value. A nil value removes it.
func (f *Platform) SetPlatformInfo(p cl.PlatformID, param cl.PlatformInfo, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, candidate := range f.platforms {
		if candidate.id != p {
			continue
		}
		if value == nil {
			delete(candidate.info, param)
			return
		}
		candidate.info[param] = value
	}
}

// SetSupportedFormats sets the formats returned for an image type.
func (f *Platform) SetSupportedFormats(imageType cl.MemObjectType, formats ...cl.ImageFormat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formats[imageType] = append([]cl.ImageFormat(nil), formats...)
}

// AddEvent registers a completed event with profiling timestamps.
func (f *Platform) AddEvent(start, end uint64) cl.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := cl.Event(f.handle())
	f.events[id] = [2]uint64{start, end}
	return id
}

// NewContext creates a context and a command queue on the given devices.
func (f *Platform) NewContext(devices ...cl.DeviceID) (cl.Context, cl.CommandQueue) {
	ctx, _ := f.CreateContext(devices)
	var queue cl.CommandQueue
	if len(devices) > 0 {
		queue, _ = f.CreateCommandQueue(ctx, devices[0], 0)
	}
	return ctx, queue
}

// ImagePixels returns a copy of the pixel data of an image.
func (f *Platform) ImagePixels(m cl.Mem) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	img, ok := f.images[m]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), img.pixels...), true
}

// ImageFlags returns the flags an image was created with.
func (f *Platform) ImageFlags(m cl.Mem) (cl.MemFlags, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	img, ok := f.images[m]
	if !ok {
		return 0, false
	}
	return img.flags, true
}

// LivePrograms reports the number of programs not yet released.
func (f *Platform) LivePrograms() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.programs)
}

// LiveImages reports the number of images not yet released.
func (f *Platform) LiveImages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.images)
}

// LiveContexts reports the number of contexts not yet released.
func (f *Platform) LiveContexts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.contexts)
}

func (f *Platform) PlatformIDs(dst []cl.PlatformID) (uint32, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := uint32(len(f.platforms))
	if n == 0 {
		return 0, cl.PlatformNotFoundKHR
	}
	for i := range dst {
		if i >= len(f.platforms) {
			break
		}
		dst[i] = f.platforms[i].id
	}
	return n, cl.Success
}

func (f *Platform) DeviceIDs(p cl.PlatformID, deviceType cl.DeviceTypeFlags, dst []cl.DeviceID) (uint32, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var owner *platform
	for _, candidate := range f.platforms {
		if candidate.id == p {
			owner = candidate
		}
	}
	if owner == nil {
		return 0, cl.InvalidPlatform
	}

	var matched []cl.DeviceID
	for _, id := range owner.devices {
		if f.devices[id].deviceType&deviceType != 0 {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return 0, cl.DeviceNotFound
	}
	copy(dst, matched)
	return uint32(len(matched)), cl.Success
}

func (f *Platform) GetPlatformInfo(p cl.PlatformID, param cl.PlatformInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, candidate := range f.platforms {
		if candidate.id != p {
			continue
		}
		value, ok := candidate.info[param]
		if !ok {
			return 0, cl.InvalidValue
		}
		return f.infoValue(value, dst)
	}
	return 0, cl.InvalidPlatform
}

func (f *Platform) GetDeviceInfo(d cl.DeviceID, param cl.DeviceInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dev, ok := f.devices[d]
	if !ok {
		return 0, cl.InvalidDevice
	}
	value, ok := dev.info[param]
	if !ok {
		return 0, cl.InvalidValue
	}
	return f.infoValue(value, dst)
}

func (f *Platform) GetProgramInfo(p cl.Program, param cl.ProgramInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prog, ok := f.programs[p]
	if !ok {
		return 0, cl.InvalidProgram
	}

	var value []byte
	switch param {
	case cl.ProgramNumDevices:
		value = Uint32(uint32(len(prog.devices)))
	case cl.ProgramDevices:
		handles := make([]uintptr, len(prog.devices))
		for i, d := range prog.devices {
			handles[i] = uintptr(d)
		}
		value = Handle(handles...)
	case cl.ProgramContext:
		value = Handle(uintptr(prog.ctx))
	case cl.ProgramSource:
		value = String(prog.source)
	case cl.ProgramReferenceCount:
		value = Uint32(1)
	default:
		return 0, cl.InvalidValue
	}
	return f.infoValue(value, dst)
}

func (f *Platform) GetProgramBuildInfo(p cl.Program, d cl.DeviceID, param cl.ProgramBuildInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prog, ok := f.programs[p]
	if !ok {
		return 0, cl.InvalidProgram
	}
	if _, ok := f.devices[d]; !ok {
		return 0, cl.InvalidDevice
	}

	var value []byte
	switch param {
	case cl.ProgramBuildLog:
		if dst != nil {
			f.BuildLogFetches[d]++
		}
		value = String(prog.logs[d])
	case cl.ProgramBuildOptions:
		value = String(prog.options)
	default:
		return 0, cl.InvalidValue
	}
	return f.infoValue(value, dst)
}

func (f *Platform) GetImageInfo(m cl.Mem, param cl.ImageInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	img, ok := f.images[m]
	if !ok {
		return 0, cl.InvalidMemObject
	}

	elem, _ := img.format.ElementSize()
	var value []byte
	switch param {
	case cl.ImageFormatInfo:
		value = Format(img.format)
	case cl.ImageWidth:
		value = Size(uint64(img.desc.Width))
	case cl.ImageHeight:
		value = Size(uint64(img.desc.Height))
	case cl.ImageDepth:
		value = Size(uint64(img.desc.Depth))
	case cl.ImageElementSize:
		value = Size(uint64(elem))
	case cl.ImageRowPitch:
		value = Size(uint64(elem * img.desc.Width))
	case cl.ImageSlicePitch:
		value = Size(0)
	default:
		return 0, cl.InvalidValue
	}
	return f.infoValue(value, dst)
}

func (f *Platform) GetEventProfilingInfo(e cl.Event, param cl.ProfilingInfo, dst []byte) (int, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	times, ok := f.events[e]
	if !ok {
		return 0, cl.InvalidEvent
	}

	switch param {
	case cl.ProfilingCommandQueued, cl.ProfilingCommandSubmit, cl.ProfilingCommandStart:
		return f.infoValue(Uint64(times[0]), dst)
	case cl.ProfilingCommandEnd:
		return f.infoValue(Uint64(times[1]), dst)
	default:
		return 0, cl.InvalidValue
	}
}

// infoValue implements the two-phase size/value protocol. Callers hold mu.
func (f *Platform) infoValue(value, dst []byte) (int, cl.Status) {
	if dst == nil {
		return len(value), cl.Success
	}
	if len(dst) < len(value) {
		return 0, cl.InvalidValue
	}
	copy(dst, value)
	return len(value) + f.FetchSkew, cl.Success
}

func (f *Platform) CreateContext(devices []cl.DeviceID) (cl.Context, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateContextStatus != cl.Success {
		return 0, f.CreateContextStatus
	}
	if len(devices) == 0 {
		return 0, cl.InvalidValue
	}
	for _, d := range devices {
		if _, ok := f.devices[d]; !ok {
			return 0, cl.InvalidDevice
		}
	}

	id := cl.Context(f.handle())
	f.contexts[id] = append([]cl.DeviceID(nil), devices...)
	return id, cl.Success
}

func (f *Platform) ReleaseContext(ctx cl.Context) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.contexts[ctx]; !ok {
		return cl.InvalidContext
	}
	delete(f.contexts, ctx)
	f.ReleasedContexts++
	return cl.Success
}

func (f *Platform) CreateCommandQueue(ctx cl.Context, d cl.DeviceID, _ uint64) (cl.CommandQueue, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	devices, ok := f.contexts[ctx]
	if !ok {
		return 0, cl.InvalidContext
	}
	found := false
	for _, candidate := range devices {
		if candidate == d {
			found = true
		}
	}
	if !found {
		return 0, cl.InvalidDevice
	}

	id := cl.CommandQueue(f.handle())
	f.queues[id] = ctx
	return id, cl.Success
}

func (f *Platform) ReleaseCommandQueue(queue cl.CommandQueue) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.queues[queue]; !ok {
		return cl.InvalidCommandQueue
	}
	delete(f.queues, queue)
	return cl.Success
}

func (f *Platform) Finish(queue cl.CommandQueue) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.FinishCalls++
	if _, ok := f.queues[queue]; !ok {
		return cl.InvalidCommandQueue
	}
	return f.FinishStatus
}

func (f *Platform) CreateProgramWithSource(ctx cl.Context, sources []string) (cl.Program, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateProgramStatus != cl.Success {
		return 0, f.CreateProgramStatus
	}
	devices, ok := f.contexts[ctx]
	if !ok {
		return 0, cl.InvalidContext
	}
	if len(sources) == 0 {
		return 0, cl.InvalidValue
	}

	id := cl.Program(f.handle())
	f.programs[id] = &program{
		ctx:     ctx,
		source:  strings.Join(sources, ""),
		devices: append([]cl.DeviceID(nil), devices...),
		logs:    make(map[cl.DeviceID]string),
	}
	return id, cl.Success
}

func (f *Platform) BuildProgram(p cl.Program, devices []cl.DeviceID, options string) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	prog, ok := f.programs[p]
	if !ok {
		return cl.InvalidProgram
	}
	f.LastBuildOptions = options
	prog.options = options

	if len(devices) == 0 {
		devices = prog.devices
	}

	failing := ""
	for _, line := range strings.Split(prog.source, "\n") {
		if strings.Contains(line, FailMarker) {
			failing = strings.TrimSpace(line)
			break
		}
	}

	for _, d := range devices {
		if failing == "" {
			prog.logs[d] = ""
			continue
		}
		prog.logs[d] = "error: " + failing + " (" + strings.TrimSuffix(string(f.devices[d].info[cl.DeviceName]), "\x00") + ")"
	}
	if failing != "" {
		return cl.BuildProgramFailure
	}
	return cl.Success
}

func (f *Platform) ReleaseProgram(p cl.Program) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.programs[p]; !ok {
		return cl.InvalidProgram
	}
	delete(f.programs, p)
	f.ReleasedPrograms++
	return cl.Success
}

func (f *Platform) CreateImage(ctx cl.Context, flags cl.MemFlags, format cl.ImageFormat, desc cl.ImageDesc, host []byte) (cl.Mem, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateImageStatus != cl.Success {
		return 0, f.CreateImageStatus
	}
	if _, ok := f.contexts[ctx]; !ok {
		return 0, cl.InvalidContext
	}
	if desc.Type != cl.MemObjectImage2D {
		return 0, cl.InvalidImageDescriptor
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, cl.InvalidImageSize
	}
	elem, ok := format.ElementSize()
	if !ok {
		return 0, cl.InvalidImageFormatDescriptor
	}

	size := elem * desc.Width * desc.Height
	pixels := make([]byte, size)
	if flags&(cl.MemCopyHostPtr|cl.MemUseHostPtr) != 0 {
		if len(host) < size {
			return 0, cl.InvalidHostPtr
		}
		copy(pixels, host)
	} else if host != nil {
		return 0, cl.InvalidHostPtr
	}

	id := cl.Mem(f.handle())
	f.images[id] = &image{format: format, desc: desc, flags: flags, pixels: pixels}
	return id, cl.Success
}

func (f *Platform) ReleaseMemObject(m cl.Mem) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.images[m]; !ok {
		return cl.InvalidMemObject
	}
	delete(f.images, m)
	f.ReleasedImages++
	return cl.Success
}

func (f *Platform) SupportedImageFormats(ctx cl.Context, _ cl.MemFlags, imageType cl.MemObjectType, dst []cl.ImageFormat) (uint32, cl.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.contexts[ctx]; !ok {
		return 0, cl.InvalidContext
	}
	formats := f.formats[imageType]
	copy(dst, formats)
	return uint32(len(formats)), cl.Success
}

func (f *Platform) EnqueueReadImage(queue cl.CommandQueue, m cl.Mem, _ bool, origin, region [3]int, rowPitch, _ int, dst []byte) cl.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ReadImageCalls++
	if f.ReadImageStatus != cl.Success {
		return f.ReadImageStatus
	}
	if _, ok := f.queues[queue]; !ok {
		return cl.InvalidCommandQueue
	}
	img, ok := f.images[m]
	if !ok {
		return cl.InvalidMemObject
	}
	if origin[0]+region[0] > img.desc.Width || origin[1]+region[1] > img.desc.Height || region[2] != 1 {
		return cl.InvalidValue
	}

	elem, _ := img.format.ElementSize()
	rowBytes := region[0] * elem
	if rowPitch == 0 {
		rowPitch = rowBytes
	}
	if len(dst) < rowPitch*(region[1]-1)+rowBytes {
		return cl.InvalidValue
	}

	srcPitch := img.desc.Width * elem
	for y := 0; y < region[1]; y++ {
		src := (origin[1]+y)*srcPitch + origin[0]*elem
		copy(dst[y*rowPitch:y*rowPitch+rowBytes], img.pixels[src:src+rowBytes])
	}
	return cl.Success
}

// String encodes s as a NUL-terminated info value.
func String(s string) []byte {
	return append([]byte(s), 0)
}

// Uint32 encodes a cl_uint info value.
func Uint32(v uint32) []byte {
	return binary.NativeEndian.AppendUint32(nil, v)
}

// Uint64 encodes a cl_ulong or cl_bitfield info value.
func Uint64(v uint64) []byte {
	return binary.NativeEndian.AppendUint64(nil, v)
}

// Sizes encodes a size_t array.
func Sizes(vs ...uint64) []byte {
	var out []byte
	for _, v := range vs {
		out = append(out, Size(v)...)
	}
	return out
}

// Size encodes a size_t info value.
func Size(v uint64) []byte {
	if cl.SizeTSize == 4 {
		return Uint32(uint32(v))
	}
	return Uint64(v)
}

// Handle encodes one or more object handles.
func Handle(hs ...uintptr) []byte {
	var out []byte
	for _, h := range hs {
		if cl.HandleSize == 4 {
			out = binary.NativeEndian.AppendUint32(out, uint32(h))
			continue
		}
		out = binary.NativeEndian.AppendUint64(out, uint64(h))
	}
	return out
}

// Format encodes a cl_image_format info value.
func Format(format cl.ImageFormat) []byte {
	out := binary.NativeEndian.AppendUint32(nil, uint32(format.Order))
	return binary.NativeEndian.AppendUint32(out, uint32(format.Type))
}
