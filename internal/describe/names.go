package describe

import "github.com/cwbudde/clut/internal/cl"

// UnknownInfo is the name of every attribute handle without a description.
const UnknownInfo = "UNKNOWN INFO"

var platformInfoNames = map[cl.PlatformInfo]string{
	cl.PlatformProfile:    "OpenCL profile",
	cl.PlatformVersion:    "OpenCL version",
	cl.PlatformName:       "Platform name",
	cl.PlatformVendor:     "Vendor",
	cl.PlatformExtensions: "Available extensions",
}

var deviceInfoNames = map[cl.DeviceInfo]string{
	cl.DeviceAddressBits:              "Address space",
	cl.DeviceAvailable:                "Device available",
	cl.DeviceBuiltInKernels:           "Supported builtin kernels",
	cl.DeviceCompilerAvailable:        "Compiler available",
	cl.DeviceDoubleFPConfig:           "Double FP capabilities",
	cl.DeviceEndianLittle:             "Little endian",
	cl.DeviceErrorCorrectionSupport:   "Error correction available",
	cl.DeviceExecutionCapabilities:    "Execution capabilities",
	cl.DeviceExtensions:               "Available extensions",
	cl.DeviceGlobalMemCacheSize:       "Global memory cache size",
	cl.DeviceGlobalMemCacheType:       "Global memory cache type",
	cl.DeviceGlobalMemCachelineSize:   "Global memory cache line size",
	cl.DeviceGlobalMemSize:            "Global memory size",
	cl.DeviceHalfFPConfig:             "Half FP capabilities",
	cl.DeviceHostUnifiedMemory:        "Memory unified with host",
	cl.DeviceImage2DMaxHeight:         "Max 2D image height",
	cl.DeviceImage2DMaxWidth:          "Max 2D image width",
	cl.DeviceImage3DMaxDepth:          "Max 3D image depth",
	cl.DeviceImage3DMaxHeight:         "Max 3D image height",
	cl.DeviceImage3DMaxWidth:          "Max 3D image width",
	cl.DeviceImageMaxArraySize:        "Max image[] size",
	cl.DeviceImageMaxBufferSize:       "Max 1D image size",
	cl.DeviceImageSupport:             "Image support available",
	cl.DeviceLinkerAvailable:          "Linker available",
	cl.DeviceLocalMemSize:             "Local memory size",
	cl.DeviceLocalMemType:             "Local memory type",
	cl.DeviceMaxClockFrequency:        "Max clock frequency",
	cl.DeviceMaxComputeUnits:          "Max compute units",
	cl.DeviceMaxConstantArgs:          "Max kernel constant args",
	cl.DeviceMaxConstantBufferSize:    "Max constant buffer size",
	cl.DeviceMaxMemAllocSize:          "Max kernel alloc size",
	cl.DeviceMaxParameterSize:         "Max kernel parameter size",
	cl.DeviceMaxReadImageArgs:         "Max readable images",
	cl.DeviceMaxSamplers:              "Max samplers",
	cl.DeviceMaxWorkGroupSize:         "Max work group size",
	cl.DeviceMaxWorkItemDimensions:    "Max work item dimensions",
	cl.DeviceMaxWorkItemSizes:         "Max work item sizes",
	cl.DeviceMaxWriteImageArgs:        "Max writeable images",
	cl.DeviceMemBaseAddrAlign:         "Largest builtin type size",
	cl.DeviceMinDataTypeAlignSize:     "Smallest alignment [DEPRECATED]",
	cl.DeviceName:                     "Device name",
	cl.DeviceNativeVectorWidthChar:    "Native char[] size",
	cl.DeviceNativeVectorWidthDouble:  "Native double[] size",
	cl.DeviceNativeVectorWidthFloat:   "Native float[] size",
	cl.DeviceNativeVectorWidthHalf:    "Native half[] size",
	cl.DeviceNativeVectorWidthInt:     "Native int[] size",
	cl.DeviceNativeVectorWidthLong:    "Native long[] size",
	cl.DeviceNativeVectorWidthShort:   "Native short[] size",
	cl.DeviceOpenCLCVersion:           "OpenCL C version",
	cl.DeviceParentDevice:             "Parent device",
	cl.DevicePartitionAffinityDomain:  "Supported partition domains",
	cl.DevicePartitionMaxSubDevices:   "Max sub devices",
	cl.DevicePartitionProperties:      "Supported partition types",
	cl.DevicePartitionType:            "Specified partition types",
	cl.DevicePlatform:                 "Platform",
	cl.DevicePreferredInteropUserSync: "Prefers user synchronization",
	cl.DevicePreferredVectorWidthChar: "Preferred char[] size",
	cl.DevicePreferredVectorWidthDbl:  "Preferred double[] size",
	cl.DevicePreferredVectorWidthFlt:  "Preferred float[] size",
	cl.DevicePreferredVectorWidthHalf: "Preferred half[] size",
	cl.DevicePreferredVectorWidthInt:  "Preferred int[] size",
	cl.DevicePreferredVectorWidthLong: "Preferred long[] size",
	cl.DevicePreferredVectorWidthShrt: "Preferred short[] size",
	cl.DevicePrintfBufferSize:         "Printf buffer size",
	cl.DeviceProfile:                  "OpenCL profile",
	cl.DeviceProfilingTimerResolution: "Profiling timer resolution",
	cl.DeviceQueueProperties:          "Queue enabled properties",
	cl.DeviceReferenceCount:           "Reference count",
	cl.DeviceSingleFPConfig:           "Single FP capabilities",
	cl.DeviceType:                     "Device type",
	cl.DeviceVendor:                   "Vendor",
	cl.DeviceVendorID:                 "Vendor ID",
	cl.DeviceVersion:                  "OpenCL version",
	cl.DriverVersion:                  "OpenCL driver version",
}

// PlatformInfoName returns the display name of a platform attribute.
func PlatformInfoName(info cl.PlatformInfo) string {
	if name, ok := platformInfoNames[info]; ok {
		return name
	}
	return UnknownInfo
}

// DeviceInfoName returns the display name of a device attribute.
func DeviceInfoName(info cl.DeviceInfo) string {
	if name, ok := deviceInfoNames[info]; ok {
		return name
	}
	return UnknownInfo
}

// EnumTable maps the values of an enumerated attribute to names.
type EnumTable struct {
	// Width is the size in bytes of the encoded value.
	Width   int
	Names   map[uint64]string
	Unknown string
}

// Name returns the name of v, or the table's unknown label.
func (t *EnumTable) Name(v uint64) string {
	if name, ok := t.Names[v]; ok {
		return name
	}
	return t.Unknown
}

// Flag is one named bit of a FlagTable.
type Flag struct {
	Bit  uint64
	Name string
}

// FlagTable describes a bitfield attribute. Flags are rendered in table
// order; a zero value renders Zero.
type FlagTable struct {
	Width int
	Flags []Flag
	Zero  string
}

var (
	deviceTypes = &EnumTable{
		Width: 8,
		Names: map[uint64]string{
			uint64(cl.DeviceTypeCPU):         "CPU",
			uint64(cl.DeviceTypeGPU):         "GPU",
			uint64(cl.DeviceTypeAccelerator): "Accelerator",
			uint64(cl.DeviceTypeDefault):     "Default device type",
			uint64(cl.DeviceTypeCustom):      "Custom device",
		},
		Unknown: "UNKNOWN DEVICE TYPE",
	}

	cacheTypes = &EnumTable{
		Width: 4,
		Names: map[uint64]string{
			cl.CacheNone:      "no cache",
			cl.CacheReadOnly:  "read only cache",
			cl.CacheReadWrite: "read/write cache",
		},
		Unknown: "UNKNOWN CACHE TYPE",
	}

	localMemTypes = &EnumTable{
		Width: 4,
		Names: map[uint64]string{
			cl.LocalMemGlobal: "global",
			cl.LocalMemLocal:  "local",
			cl.LocalMemNone:   "no memory",
		},
		Unknown: "UNKNOWN MEMORY TYPE",
	}

	// cl_device_partition_property is an intptr_t.
	partitionProperties = &EnumTable{
		Width: cl.HandleSize,
		Names: map[uint64]string{
			cl.PartitionEqually:          "partition equally",
			cl.PartitionByCounts:         "partition by counts",
			cl.PartitionByAffinityDomain: "partition by domain",
			0:                            "no partition type supported",
		},
		Unknown: "UNKNOWN PARTITION PROPERTY",
	}

	affinityDomains = &FlagTable{
		Width: 8,
		Flags: []Flag{
			{cl.AffinityDomainNUMA, "NUMA"},
			{cl.AffinityDomainL4Cache, "L4 cache"},
			{cl.AffinityDomainL3Cache, "L3 cache"},
			{cl.AffinityDomainL2Cache, "L2 cache"},
			{cl.AffinityDomainL1Cache, "L1 cache"},
			{cl.AffinityDomainNextPartitionable, "Next Partitionable"},
		},
		Zero: "no affinity domain supported",
	}

	fpConfigs = &FlagTable{
		Width: 8,
		Flags: []Flag{
			{cl.FPDenorm, "denorms"},
			{cl.FPInfNaN, "INF and NaN values"},
			{cl.FPRoundToNearest, "rounding to nearest"},
			{cl.FPRoundToZero, "rounding to zero"},
			{cl.FPRoundToInf, "rouding to INF"},
			{cl.FPFMA, "fused multiply-add"},
			{cl.FPCorrectlyRoundedDivideSqrt, "correctly rounded divides and sqrt"},
			{cl.FPSoftFloat, "software float ops"},
		},
		Zero: "no FP capabilities",
	}

	execCapabilities = &FlagTable{
		Width: 8,
		Flags: []Flag{
			{cl.ExecKernel, "OpenCL C kernels"},
			{cl.ExecNativeKernel, "Native kernels"},
		},
	}

	queueProperties = &FlagTable{
		Width: 8,
		Flags: []Flag{
			{cl.QueueOutOfOrderExecModeEnable, "out of order execution"},
			{cl.QueueProfilingEnable, "profiling"},
		},
	}
)

// DeviceTypeName names a cl_device_type value. Combined bits are unknown.
func DeviceTypeName(t cl.DeviceTypeFlags) string { return deviceTypes.Name(uint64(t)) }

// CacheTypeName names a cl_device_mem_cache_type value.
func CacheTypeName(v uint64) string { return cacheTypes.Name(v) }

// LocalMemTypeName names a cl_device_local_mem_type value.
func LocalMemTypeName(v uint64) string { return localMemTypes.Name(v) }

// PartitionPropertyName names a cl_device_partition_property value.
func PartitionPropertyName(v uint64) string { return partitionProperties.Name(v) }

// AffinityDomainName names a single affinity domain bit, or the zero value.
func AffinityDomainName(v uint64) string {
	return flagName(affinityDomains, v, "UNKNOWN PARTITION DOMAIN")
}

// FPConfigName names a single floating point capability bit.
func FPConfigName(v uint64) string {
	return flagName(fpConfigs, v, "UNKNOWN FP CAPABILITY")
}

// ExecCapabilityName names a single execution capability bit.
func ExecCapabilityName(v uint64) string {
	return flagName(execCapabilities, v, "UNKNOWN EXEC CAPABILITY")
}

// QueuePropertyName names a single command queue property bit.
func QueuePropertyName(v uint64) string {
	return flagName(queueProperties, v, "UNKNOWN QUEUE PROPERTY")
}

func flagName(t *FlagTable, v uint64, unknown string) string {
	if v == 0 && t.Zero != "" {
		return t.Zero
	}
	for _, f := range t.Flags {
		if f.Bit == v {
			return f.Name
		}
	}
	return unknown
}

var channelOrderNames = map[cl.ChannelOrder]string{
	cl.ChannelR:           "R",
	cl.ChannelRx:          "Rx",
	cl.ChannelA:           "A",
	cl.ChannelIntensity:   "Intensity",
	cl.ChannelLuminance:   "Luminance",
	cl.ChannelRG:          "RG",
	cl.ChannelRGx:         "RGx",
	cl.ChannelRA:          "RA",
	cl.ChannelRGB:         "RGB",
	cl.ChannelRGBx:        "RGBx",
	cl.ChannelRGBA:        "RGBA",
	cl.ChannelARGB:        "ARGB",
	cl.ChannelBGRA:        "BGRA",
	cl.Channel1RGBApple:   "1RGB Apple",
	cl.ChannelABGRApple:   "ABGR Apple",
	cl.ChannelBGR1Apple:   "BGR1 Apple",
	cl.ChannelCbYCrYApple: "CbYCrY Apple",
	cl.ChannelYCbYCrApple: "YCbYCr Apple",
}

var channelTypeNames = map[cl.ChannelType]string{
	cl.SNormInt8:      "normalized signed 8-bit int",
	cl.SNormInt16:     "normalized signed 16-bit int",
	cl.UNormInt8:      "normalized unsigned 8-bit int",
	cl.UNormInt16:     "normalized unsigned 16-bit int",
	cl.UNormShort565:  "normalized 5-6-5 3chan RGB",
	cl.UNormShort555:  "normalized x-5-5-5 4chan xRGB",
	cl.UNormInt101010: "normalized x-10-10-10 4chan xRGB",
	cl.SignedInt8:     "un-normalized signed 8-bit int",
	cl.SignedInt16:    "un-normalized signed 16-bit int",
	cl.SignedInt32:    "un-normalized signed 32-bit int",
	cl.UnsignedInt8:   "un-normalized unsigned 8-bit int",
	cl.UnsignedInt16:  "un-normalized unsigned 16-bit int",
	cl.UnsignedInt32:  "un-normalized unsigned 32-bit int",
	cl.HalfFloat:      "16-bit half-float",
	cl.Float:          "single precision float",
}

var imageTypeNames = map[cl.MemObjectType]string{
	cl.MemObjectImage1D:       "1D image",
	cl.MemObjectImage1DBuffer: "1D image buffer",
	cl.MemObjectImage2D:       "2D image",
	cl.MemObjectImage3D:       "3D image",
	cl.MemObjectImage1DArray:  "1D image[]",
	cl.MemObjectImage2DArray:  "2D image[]",
}

// ChannelOrderName names a channel order.
func ChannelOrderName(o cl.ChannelOrder) string {
	if name, ok := channelOrderNames[o]; ok {
		return name
	}
	return "UNKNOWN CHANNEL ORDER"
}

// ChannelTypeName names a channel data type.
func ChannelTypeName(t cl.ChannelType) string {
	if name, ok := channelTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN CHANNEL DATA TYPE"
}

// ImageTypeName names an image object type.
func ImageTypeName(t cl.MemObjectType) string {
	if name, ok := imageTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN IMAGE FORMAT"
}
