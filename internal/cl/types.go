package cl

import "unsafe"

// Opaque handles owned by the OpenCL implementation. The zero value is the
// null handle.
type (
	PlatformID   uintptr
	DeviceID     uintptr
	Context      uintptr
	CommandQueue uintptr
	Program      uintptr
	Mem          uintptr
	Event        uintptr
)

// HandleSize is the width in bytes of an object handle as returned inside
// info values (cl_platform_id, cl_device_id, ...).
const HandleSize = int(unsafe.Sizeof(uintptr(0)))

// SizeTSize is the width in bytes of size_t on this host.
const SizeTSize = int(unsafe.Sizeof(uintptr(0)))

// Attribute handles.
type (
	PlatformInfo     uint32
	DeviceInfo       uint32
	ProgramInfo      uint32
	ProgramBuildInfo uint32
	ImageInfo        uint32
	ProfilingInfo    uint32
)

const (
	PlatformProfile    PlatformInfo = 0x0900
	PlatformVersion    PlatformInfo = 0x0901
	PlatformName       PlatformInfo = 0x0902
	PlatformVendor     PlatformInfo = 0x0903
	PlatformExtensions PlatformInfo = 0x0904
)

const (
	DeviceType                     DeviceInfo = 0x1000
	DeviceVendorID                 DeviceInfo = 0x1001
	DeviceMaxComputeUnits          DeviceInfo = 0x1002
	DeviceMaxWorkItemDimensions    DeviceInfo = 0x1003
	DeviceMaxWorkGroupSize         DeviceInfo = 0x1004
	DeviceMaxWorkItemSizes         DeviceInfo = 0x1005
	DevicePreferredVectorWidthChar DeviceInfo = 0x1006
	DevicePreferredVectorWidthShrt DeviceInfo = 0x1007
	DevicePreferredVectorWidthInt  DeviceInfo = 0x1008
	DevicePreferredVectorWidthLong DeviceInfo = 0x1009
	DevicePreferredVectorWidthFlt  DeviceInfo = 0x100A
	DevicePreferredVectorWidthDbl  DeviceInfo = 0x100B
	DeviceMaxClockFrequency        DeviceInfo = 0x100C
	DeviceAddressBits              DeviceInfo = 0x100D
	DeviceMaxReadImageArgs         DeviceInfo = 0x100E
	DeviceMaxWriteImageArgs        DeviceInfo = 0x100F
	DeviceMaxMemAllocSize          DeviceInfo = 0x1010
	DeviceImage2DMaxWidth          DeviceInfo = 0x1011
	DeviceImage2DMaxHeight         DeviceInfo = 0x1012
	DeviceImage3DMaxWidth          DeviceInfo = 0x1013
	DeviceImage3DMaxHeight         DeviceInfo = 0x1014
	DeviceImage3DMaxDepth          DeviceInfo = 0x1015
	DeviceImageSupport             DeviceInfo = 0x1016
	DeviceMaxParameterSize         DeviceInfo = 0x1017
	DeviceMaxSamplers              DeviceInfo = 0x1018
	DeviceMemBaseAddrAlign         DeviceInfo = 0x1019
	DeviceMinDataTypeAlignSize     DeviceInfo = 0x101A
	DeviceSingleFPConfig           DeviceInfo = 0x101B
	DeviceGlobalMemCacheType       DeviceInfo = 0x101C
	DeviceGlobalMemCachelineSize   DeviceInfo = 0x101D
	DeviceGlobalMemCacheSize       DeviceInfo = 0x101E
	DeviceGlobalMemSize            DeviceInfo = 0x101F
	DeviceMaxConstantBufferSize    DeviceInfo = 0x1020
	DeviceMaxConstantArgs          DeviceInfo = 0x1021
	DeviceLocalMemType             DeviceInfo = 0x1022
	DeviceLocalMemSize             DeviceInfo = 0x1023
	DeviceErrorCorrectionSupport   DeviceInfo = 0x1024
	DeviceProfilingTimerResolution DeviceInfo = 0x1025
	DeviceEndianLittle             DeviceInfo = 0x1026
	DeviceAvailable                DeviceInfo = 0x1027
	DeviceCompilerAvailable        DeviceInfo = 0x1028
	DeviceExecutionCapabilities    DeviceInfo = 0x1029
	DeviceQueueProperties          DeviceInfo = 0x102A
	DeviceName                     DeviceInfo = 0x102B
	DeviceVendor                   DeviceInfo = 0x102C
	DriverVersion                  DeviceInfo = 0x102D
	DeviceProfile                  DeviceInfo = 0x102E
	DeviceVersion                  DeviceInfo = 0x102F
	DeviceExtensions               DeviceInfo = 0x1030
	DevicePlatform                 DeviceInfo = 0x1031
	DeviceDoubleFPConfig           DeviceInfo = 0x1032
	DeviceHalfFPConfig             DeviceInfo = 0x1033
	DevicePreferredVectorWidthHalf DeviceInfo = 0x1034
	DeviceHostUnifiedMemory        DeviceInfo = 0x1035
	DeviceNativeVectorWidthChar    DeviceInfo = 0x1036
	DeviceNativeVectorWidthShort   DeviceInfo = 0x1037
	DeviceNativeVectorWidthInt     DeviceInfo = 0x1038
	DeviceNativeVectorWidthLong    DeviceInfo = 0x1039
	DeviceNativeVectorWidthFloat   DeviceInfo = 0x103A
	DeviceNativeVectorWidthDouble  DeviceInfo = 0x103B
	DeviceNativeVectorWidthHalf    DeviceInfo = 0x103C
	DeviceOpenCLCVersion           DeviceInfo = 0x103D
	DeviceLinkerAvailable          DeviceInfo = 0x103E
	DeviceBuiltInKernels           DeviceInfo = 0x103F
	DeviceImageMaxBufferSize       DeviceInfo = 0x1040
	DeviceImageMaxArraySize        DeviceInfo = 0x1041
	DeviceParentDevice             DeviceInfo = 0x1042
	DevicePartitionMaxSubDevices   DeviceInfo = 0x1043
	DevicePartitionProperties      DeviceInfo = 0x1044
	DevicePartitionAffinityDomain  DeviceInfo = 0x1045
	DevicePartitionType            DeviceInfo = 0x1046
	DeviceReferenceCount           DeviceInfo = 0x1047
	DevicePreferredInteropUserSync DeviceInfo = 0x1048
	DevicePrintfBufferSize         DeviceInfo = 0x1049
)

const (
	ProgramReferenceCount ProgramInfo = 0x1160
	ProgramContext        ProgramInfo = 0x1161
	ProgramNumDevices     ProgramInfo = 0x1162
	ProgramDevices        ProgramInfo = 0x1163
	ProgramSource         ProgramInfo = 0x1164
)

const (
	ProgramBuildStatus  ProgramBuildInfo = 0x1181
	ProgramBuildOptions ProgramBuildInfo = 0x1182
	ProgramBuildLog     ProgramBuildInfo = 0x1183
)

const (
	ImageFormatInfo  ImageInfo = 0x1110
	ImageElementSize ImageInfo = 0x1111
	ImageRowPitch    ImageInfo = 0x1112
	ImageSlicePitch  ImageInfo = 0x1113
	ImageWidth       ImageInfo = 0x1114
	ImageHeight      ImageInfo = 0x1115
	ImageDepth       ImageInfo = 0x1116
)

const (
	ProfilingCommandQueued ProfilingInfo = 0x1280
	ProfilingCommandSubmit ProfilingInfo = 0x1281
	ProfilingCommandStart  ProfilingInfo = 0x1282
	ProfilingCommandEnd    ProfilingInfo = 0x1283
)

// DeviceTypeFlags is the cl_device_type bitfield.
type DeviceTypeFlags uint64

const (
	DeviceTypeDefault     DeviceTypeFlags = 1 << 0
	DeviceTypeCPU         DeviceTypeFlags = 1 << 1
	DeviceTypeGPU         DeviceTypeFlags = 1 << 2
	DeviceTypeAccelerator DeviceTypeFlags = 1 << 3
	DeviceTypeCustom      DeviceTypeFlags = 1 << 4
	DeviceTypeAll         DeviceTypeFlags = 0xFFFFFFFF
)

// Bitfield and enum values reported by device info queries.
const (
	FPDenorm                     uint64 = 1 << 0
	FPInfNaN                     uint64 = 1 << 1
	FPRoundToNearest             uint64 = 1 << 2
	FPRoundToZero                uint64 = 1 << 3
	FPRoundToInf                 uint64 = 1 << 4
	FPFMA                        uint64 = 1 << 5
	FPSoftFloat                  uint64 = 1 << 6
	FPCorrectlyRoundedDivideSqrt uint64 = 1 << 7

	ExecKernel       uint64 = 1 << 0
	ExecNativeKernel uint64 = 1 << 1

	QueueOutOfOrderExecModeEnable uint64 = 1 << 0
	QueueProfilingEnable          uint64 = 1 << 1

	AffinityDomainNUMA              uint64 = 1 << 0
	AffinityDomainL4Cache           uint64 = 1 << 1
	AffinityDomainL3Cache           uint64 = 1 << 2
	AffinityDomainL2Cache           uint64 = 1 << 3
	AffinityDomainL1Cache           uint64 = 1 << 4
	AffinityDomainNextPartitionable uint64 = 1 << 5

	PartitionEqually          uint64 = 0x1086
	PartitionByCounts         uint64 = 0x1087
	PartitionByAffinityDomain uint64 = 0x1088

	CacheNone      uint64 = 0x0
	CacheReadOnly  uint64 = 0x1
	CacheReadWrite uint64 = 0x2

	LocalMemNone   uint64 = 0x0
	LocalMemLocal  uint64 = 0x1
	LocalMemGlobal uint64 = 0x2
)

// MemFlags is the cl_mem_flags bitfield.
type MemFlags uint64

const (
	MemReadWrite    MemFlags = 1 << 0
	MemWriteOnly    MemFlags = 1 << 1
	MemReadOnly     MemFlags = 1 << 2
	MemUseHostPtr   MemFlags = 1 << 3
	MemAllocHostPtr MemFlags = 1 << 4
	MemCopyHostPtr  MemFlags = 1 << 5
)

// MemObjectType identifies buffer and image object kinds.
type MemObjectType uint32

const (
	MemObjectBuffer        MemObjectType = 0x10F0
	MemObjectImage2D       MemObjectType = 0x10F1
	MemObjectImage3D       MemObjectType = 0x10F2
	MemObjectImage2DArray  MemObjectType = 0x10F3
	MemObjectImage1D       MemObjectType = 0x10F4
	MemObjectImage1DArray  MemObjectType = 0x10F5
	MemObjectImage1DBuffer MemObjectType = 0x10F6
)

// ChannelOrder is cl_channel_order.
type ChannelOrder uint32

const (
	ChannelR         ChannelOrder = 0x10B0
	ChannelA         ChannelOrder = 0x10B1
	ChannelRG        ChannelOrder = 0x10B2
	ChannelRA        ChannelOrder = 0x10B3
	ChannelRGB       ChannelOrder = 0x10B4
	ChannelRGBA      ChannelOrder = 0x10B5
	ChannelBGRA      ChannelOrder = 0x10B6
	ChannelARGB      ChannelOrder = 0x10B7
	ChannelIntensity ChannelOrder = 0x10B8
	ChannelLuminance ChannelOrder = 0x10B9
	ChannelRx        ChannelOrder = 0x10BA
	ChannelRGx       ChannelOrder = 0x10BB
	ChannelRGBx      ChannelOrder = 0x10BC

	// Apple extensions.
	Channel1RGBApple   ChannelOrder = 0x10000006
	ChannelBGR1Apple   ChannelOrder = 0x10000007
	ChannelYCbYCrApple ChannelOrder = 0x10000008
	ChannelCbYCrYApple ChannelOrder = 0x10000009
	ChannelABGRApple   ChannelOrder = 0x1000000A
)

// Components returns the number of samples per pixel for the channel orders
// that map onto a host raster layout.
func (o ChannelOrder) Components() (int, bool) {
	switch o {
	case ChannelR, ChannelRx, ChannelA, ChannelIntensity, ChannelLuminance:
		return 1, true
	case ChannelRG, ChannelRGx, ChannelRA:
		return 2, true
	case ChannelRGB, ChannelRGBx:
		return 3, true
	case ChannelRGBA:
		return 4, true
	default:
		return 0, false
	}
}

// ChannelType is cl_channel_type.
type ChannelType uint32

const (
	SNormInt8      ChannelType = 0x10D0
	SNormInt16     ChannelType = 0x10D1
	UNormInt8      ChannelType = 0x10D2
	UNormInt16     ChannelType = 0x10D3
	UNormShort565  ChannelType = 0x10D4
	UNormShort555  ChannelType = 0x10D5
	UNormInt101010 ChannelType = 0x10D6
	SignedInt8     ChannelType = 0x10D7
	SignedInt16    ChannelType = 0x10D8
	SignedInt32    ChannelType = 0x10D9
	UnsignedInt8   ChannelType = 0x10DA
	UnsignedInt16  ChannelType = 0x10DB
	UnsignedInt32  ChannelType = 0x10DC
	HalfFloat      ChannelType = 0x10DD
	Float          ChannelType = 0x10DE
)

// ImageFormat mirrors cl_image_format.
type ImageFormat struct {
	Order ChannelOrder
	Type  ChannelType
}

// ImageFormatSize is sizeof(cl_image_format).
const ImageFormatSize = 8

// ElementSize returns the size in bytes of one pixel of the format.
func (f ImageFormat) ElementSize() (int, bool) {
	switch f.Type {
	case UNormShort565, UNormShort555:
		return 2, true
	case UNormInt101010:
		return 4, true
	}

	var sample int
	switch f.Type {
	case SNormInt8, UNormInt8, SignedInt8, UnsignedInt8:
		sample = 1
	case SNormInt16, UNormInt16, SignedInt16, UnsignedInt16, HalfFloat:
		sample = 2
	case SignedInt32, UnsignedInt32, Float:
		sample = 4
	default:
		return 0, false
	}

	comps, ok := f.Order.Components()
	if !ok {
		switch f.Order {
		case ChannelBGRA, ChannelARGB, Channel1RGBApple, ChannelBGR1Apple, ChannelABGRApple:
			comps = 4
		case ChannelYCbYCrApple, ChannelCbYCrYApple:
			comps = 2
		default:
			return 0, false
		}
	}
	return comps * sample, true
}

// ImageDesc mirrors the fields of cl_image_desc used by this package.
type ImageDesc struct {
	Type      MemObjectType
	Width     int
	Height    int
	Depth     int
	ArraySize int
	RowPitch  int
}
