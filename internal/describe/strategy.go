package describe

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/clut/internal/cl"
)

// Kind selects how an attribute value is decoded and rendered.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindDouble
	KindSize
	KindBool
	KindUint
	KindUintBytes
	KindUlongBytes
	KindUintFrequency
	KindBitfield
	KindEnum
	KindVector
	KindPlatformName
	KindDeviceName
	KindUnimplemented
)

// Strategy is a decoding strategy for one attribute.
type Strategy struct {
	Kind Kind
	// Unit is appended to Size and Uint values.
	Unit  string
	Flags *FlagTable
	Enum  *EnumTable
	// Elem decodes the elements of a Vector.
	Elem *Strategy
}

// NotAvailable is rendered for empty strings, values shorter than their
// decoding requires and names that cannot be resolved.
const NotAvailable = "N.A."

// Unimplemented is rendered for attributes whose decoding is not provided.
const Unimplemented = "[PRINT NOT IMPLEMENTED]"

var (
	stringStrategy = Strategy{Kind: KindString}
	sizeStrategy   = Strategy{Kind: KindSize}
	boolStrategy   = Strategy{Kind: KindBool}
	uintStrategy   = Strategy{Kind: KindUint}
)

var platformStrategies = map[cl.PlatformInfo]Strategy{
	cl.PlatformProfile:    stringStrategy,
	cl.PlatformVersion:    stringStrategy,
	cl.PlatformName:       stringStrategy,
	cl.PlatformVendor:     stringStrategy,
	cl.PlatformExtensions: stringStrategy,
}

var deviceStrategies = map[cl.DeviceInfo]Strategy{
	cl.DeviceBuiltInKernels: stringStrategy,
	cl.DeviceExtensions:     stringStrategy,
	cl.DeviceName:           stringStrategy,
	cl.DeviceOpenCLCVersion: stringStrategy,
	cl.DeviceProfile:        stringStrategy,
	cl.DeviceVendor:         stringStrategy,
	cl.DeviceVersion:        stringStrategy,
	cl.DriverVersion:        stringStrategy,

	cl.DeviceImageMaxArraySize: sizeStrategy,
	cl.DeviceMaxParameterSize:  sizeStrategy,
	cl.DeviceMaxWorkGroupSize:  sizeStrategy,
	cl.DevicePrintfBufferSize:  sizeStrategy,

	cl.DeviceProfilingTimerResolution: {Kind: KindSize, Unit: "ns"},

	cl.DeviceImage2DMaxHeight:   {Kind: KindSize, Unit: "pixels"},
	cl.DeviceImage2DMaxWidth:    {Kind: KindSize, Unit: "pixels"},
	cl.DeviceImage3DMaxDepth:    {Kind: KindSize, Unit: "pixels"},
	cl.DeviceImage3DMaxHeight:   {Kind: KindSize, Unit: "pixels"},
	cl.DeviceImage3DMaxWidth:    {Kind: KindSize, Unit: "pixels"},
	cl.DeviceImageMaxBufferSize: {Kind: KindSize, Unit: "pixels"},

	cl.DeviceAvailable:                boolStrategy,
	cl.DeviceCompilerAvailable:        boolStrategy,
	cl.DeviceEndianLittle:             boolStrategy,
	cl.DeviceErrorCorrectionSupport:   boolStrategy,
	cl.DeviceHostUnifiedMemory:        boolStrategy,
	cl.DeviceImageSupport:             boolStrategy,
	cl.DeviceLinkerAvailable:          boolStrategy,
	cl.DevicePreferredInteropUserSync: boolStrategy,

	cl.DeviceMaxComputeUnits:          uintStrategy,
	cl.DeviceMaxConstantArgs:          uintStrategy,
	cl.DeviceMaxReadImageArgs:         uintStrategy,
	cl.DeviceMaxSamplers:              uintStrategy,
	cl.DeviceMaxWorkItemDimensions:    uintStrategy,
	cl.DeviceMaxWriteImageArgs:        uintStrategy,
	cl.DeviceMemBaseAddrAlign:         uintStrategy,
	cl.DeviceMinDataTypeAlignSize:     uintStrategy,
	cl.DeviceNativeVectorWidthChar:    uintStrategy,
	cl.DeviceNativeVectorWidthDouble:  uintStrategy,
	cl.DeviceNativeVectorWidthFloat:   uintStrategy,
	cl.DeviceNativeVectorWidthHalf:    uintStrategy,
	cl.DeviceNativeVectorWidthInt:     uintStrategy,
	cl.DeviceNativeVectorWidthLong:    uintStrategy,
	cl.DeviceNativeVectorWidthShort:   uintStrategy,
	cl.DevicePartitionMaxSubDevices:   uintStrategy,
	cl.DevicePreferredVectorWidthChar: uintStrategy,
	cl.DevicePreferredVectorWidthDbl:  uintStrategy,
	cl.DevicePreferredVectorWidthFlt:  uintStrategy,
	cl.DevicePreferredVectorWidthHalf: uintStrategy,
	cl.DevicePreferredVectorWidthInt:  uintStrategy,
	cl.DevicePreferredVectorWidthLong: uintStrategy,
	cl.DevicePreferredVectorWidthShrt: uintStrategy,
	cl.DeviceReferenceCount:           uintStrategy,
	cl.DeviceVendorID:                 uintStrategy,

	cl.DeviceAddressBits: {Kind: KindUint, Unit: "bits"},

	cl.DeviceGlobalMemCachelineSize: {Kind: KindUintBytes},
	cl.DeviceMaxConstantBufferSize:  {Kind: KindUintBytes},
	cl.DeviceMaxMemAllocSize:        {Kind: KindUintBytes},

	cl.DeviceMaxClockFrequency: {Kind: KindUintFrequency},

	cl.DeviceGlobalMemCacheSize: {Kind: KindUlongBytes},
	cl.DeviceGlobalMemSize:      {Kind: KindUlongBytes},
	cl.DeviceLocalMemSize:       {Kind: KindUlongBytes},

	cl.DeviceQueueProperties:         {Kind: KindBitfield, Flags: queueProperties},
	cl.DevicePartitionAffinityDomain: {Kind: KindBitfield, Flags: affinityDomains},
	cl.DeviceExecutionCapabilities:   {Kind: KindBitfield, Flags: execCapabilities},
	cl.DeviceDoubleFPConfig:          {Kind: KindBitfield, Flags: fpConfigs},
	cl.DeviceHalfFPConfig:            {Kind: KindBitfield, Flags: fpConfigs},
	cl.DeviceSingleFPConfig:          {Kind: KindBitfield, Flags: fpConfigs},

	cl.DeviceMaxWorkItemSizes:    {Kind: KindVector, Elem: &sizeStrategy},
	cl.DevicePartitionProperties: {Kind: KindVector, Elem: &Strategy{Kind: KindEnum, Enum: partitionProperties}},

	cl.DeviceGlobalMemCacheType: {Kind: KindEnum, Enum: cacheTypes},
	cl.DeviceLocalMemType:       {Kind: KindEnum, Enum: localMemTypes},
	cl.DeviceType:               {Kind: KindEnum, Enum: deviceTypes},

	cl.DeviceParentDevice: {Kind: KindDeviceName},
	cl.DevicePlatform:     {Kind: KindPlatformName},

	cl.DevicePartitionType: {Kind: KindUnimplemented},
}

// PlatformStrategy returns the decoding strategy of a platform attribute.
func PlatformStrategy(info cl.PlatformInfo) (Strategy, bool) {
	s, ok := platformStrategies[info]
	return s, ok
}

// DeviceStrategy returns the decoding strategy of a device attribute.
func DeviceStrategy(info cl.DeviceInfo) (Strategy, bool) {
	s, ok := deviceStrategies[info]
	return s, ok
}

// Width returns the size in bytes of one encoded value, or 0 for variable
// length strategies.
func (s Strategy) Width() int {
	switch s.Kind {
	case KindInt, KindFloat, KindBool, KindUint, KindUintBytes, KindUintFrequency:
		return 4
	case KindDouble, KindUlongBytes:
		return 8
	case KindSize:
		return cl.SizeTSize
	case KindPlatformName, KindDeviceName:
		return cl.HandleSize
	case KindBitfield:
		return s.Flags.Width
	case KindEnum:
		return s.Enum.Width
	case KindVector:
		return s.Elem.Width()
	default:
		return 0
	}
}

// NameResolver resolves object handles for the indirect strategies. A
// false result renders NotAvailable.
type NameResolver interface {
	PlatformName(id cl.PlatformID) (string, bool)
	DeviceName(id cl.DeviceID) (string, bool)
}

// Render decodes value with s. It never reads past the end of value.
func Render(s Strategy, value []byte, names NameResolver) string {
	switch s.Kind {
	case KindString:
		return renderString(value)
	case KindUnimplemented:
		return Unimplemented
	case KindVector:
		return renderVector(s, value, names)
	}

	width := s.Width()
	if width == 0 || len(value) < width {
		return NotAvailable
	}
	v := unsigned(value, width)

	switch s.Kind {
	case KindInt:
		return strconv.FormatInt(int64(int32(v)), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v))), 'f', 6, 32)
	case KindDouble:
		return strconv.FormatFloat(math.Float64frombits(v), 'f', 6, 64)
	case KindSize, KindUint:
		return withUnit(strconv.FormatUint(v, 10), s.Unit)
	case KindBool:
		if v == 0 {
			return "FALSE"
		}
		return "TRUE"
	case KindUintBytes:
		return FormatBytes32(uint32(v))
	case KindUlongBytes:
		return FormatBytes64(v)
	case KindUintFrequency:
		return FormatMegahertz(uint32(v))
	case KindBitfield:
		return FormatFlags(s.Flags, v)
	case KindEnum:
		return s.Enum.Name(v)
	case KindPlatformName:
		if names == nil {
			return NotAvailable
		}
		if name, ok := names.PlatformName(cl.PlatformID(v)); ok {
			return name
		}
		return NotAvailable
	case KindDeviceName:
		if names == nil {
			return NotAvailable
		}
		if name, ok := names.DeviceName(cl.DeviceID(v)); ok {
			return name
		}
		return NotAvailable
	default:
		return NotAvailable
	}
}

func renderString(value []byte) string {
	for i, b := range value {
		if b == 0 {
			value = value[:i]
			break
		}
	}
	if len(value) == 0 {
		return NotAvailable
	}
	return string(value)
}

func renderVector(s Strategy, value []byte, names NameResolver) string {
	width := s.Elem.Width()
	if width == 0 {
		return NotAvailable
	}
	n := len(value) / width
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, Render(*s.Elem, value[i*width:(i+1)*width], names))
	}
	return strings.Join(parts, ", ")
}

func unsigned(value []byte, width int) uint64 {
	if width == 4 {
		return uint64(binary.NativeEndian.Uint32(value))
	}
	return binary.NativeEndian.Uint64(value)
}

func withUnit(v, unit string) string {
	if unit == "" {
		return v
	}
	return v + " " + unit
}

var (
	uintByteUnits  = []string{"KB", "MB", "GB"}
	ulongByteUnits = []string{"KB", "MB", "GB", "TB", "PB"}
)

// FormatBytes32 renders a cl_uint byte count.
func FormatBytes32(n uint32) string {
	return formatBytes(uint64(n), uintByteUnits)
}

// FormatBytes64 renders a cl_ulong byte count.
func FormatBytes64(n uint64) string {
	return formatBytes(n, ulongByteUnits)
}

func formatBytes(n uint64, units []string) string {
	scaled := float64(n)
	unit := -1
	for scaled >= 1024 && unit < len(units)-1 {
		scaled /= 1024
		unit++
	}
	if unit < 0 {
		return fmt.Sprintf("%d bytes", n)
	}
	return fmt.Sprintf("%.2f %s (%d bytes)", scaled, units[unit], n)
}

// FormatMegahertz renders a clock frequency given in MHz.
func FormatMegahertz(mhz uint32) string {
	if mhz < 1000 {
		return fmt.Sprintf("%d MHz", mhz)
	}
	return fmt.Sprintf("%.2f GHz (%d MHz)", float64(mhz)/1000, mhz)
}

// FormatFlags renders the set bits of v in table order.
func FormatFlags(t *FlagTable, v uint64) string {
	if v == 0 {
		return t.Zero
	}
	var parts []string
	for _, f := range t.Flags {
		if v&f.Bit != 0 {
			parts = append(parts, f.Name)
		}
	}
	return strings.Join(parts, ", ")
}
