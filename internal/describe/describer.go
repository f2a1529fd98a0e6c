// Package describe renders OpenCL platform and device attributes as human
// readable text.
package describe

import (
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/query"
)

// Entry is one rendered attribute.
type Entry struct {
	Code  uint32 `json:"code"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

var platformInfoList = []cl.PlatformInfo{
	cl.PlatformName,
	cl.PlatformVendor,
	cl.PlatformProfile,
	cl.PlatformVersion,
}

var deviceInfoList = []cl.DeviceInfo{
	// basic
	cl.DeviceName,
	cl.DeviceType,
	cl.DeviceVendor,
	cl.DeviceVendorID,
	cl.DeviceMaxClockFrequency,
	cl.DeviceMaxComputeUnits,
	cl.DeviceMaxWorkGroupSize,
	cl.DeviceMaxWorkItemDimensions,
	cl.DeviceMaxWorkItemSizes,
	// versions
	cl.DeviceProfile,
	cl.DriverVersion,
	cl.DeviceVersion,
	cl.DeviceOpenCLCVersion,
	cl.DevicePlatform,
	// capabilities
	cl.DeviceAvailable,
	cl.DeviceCompilerAvailable,
	cl.DeviceLinkerAvailable,
	cl.DeviceErrorCorrectionSupport,
	cl.DeviceEndianLittle,
	cl.DevicePreferredInteropUserSync,
	cl.DeviceProfilingTimerResolution,
	// memory
	cl.DeviceAddressBits,
	cl.DeviceHostUnifiedMemory,
	cl.DeviceGlobalMemSize,
	cl.DeviceGlobalMemCacheSize,
	cl.DeviceGlobalMemCachelineSize,
	cl.DeviceGlobalMemCacheType,
	cl.DeviceLocalMemSize,
	cl.DeviceLocalMemType,
	cl.DevicePrintfBufferSize,
	// images
	cl.DeviceImageSupport,
	cl.DeviceImageMaxArraySize,
	cl.DeviceImageMaxBufferSize,
	cl.DeviceImage2DMaxHeight,
	cl.DeviceImage2DMaxWidth,
	cl.DeviceImage3DMaxDepth,
	cl.DeviceImage3DMaxHeight,
	cl.DeviceImage3DMaxWidth,
	cl.DeviceMaxReadImageArgs,
	cl.DeviceMaxWriteImageArgs,
	// kernels
	cl.DeviceMaxConstantArgs,
	cl.DeviceMaxConstantBufferSize,
	cl.DeviceMaxMemAllocSize,
	cl.DeviceMaxParameterSize,
	cl.DeviceMaxSamplers,
	cl.DeviceMemBaseAddrAlign,
	cl.DeviceMinDataTypeAlignSize,
	// partitioning
	cl.DevicePartitionMaxSubDevices,
	cl.DevicePartitionProperties,
	cl.DevicePartitionAffinityDomain,
	cl.DevicePartitionType,
	// vector widths
	cl.DeviceNativeVectorWidthChar,
	cl.DeviceNativeVectorWidthDouble,
	cl.DeviceNativeVectorWidthFloat,
	cl.DeviceNativeVectorWidthHalf,
	cl.DeviceNativeVectorWidthInt,
	cl.DeviceNativeVectorWidthLong,
	cl.DeviceNativeVectorWidthShort,
	cl.DevicePreferredVectorWidthChar,
	cl.DevicePreferredVectorWidthDbl,
	cl.DevicePreferredVectorWidthFlt,
	cl.DevicePreferredVectorWidthHalf,
	cl.DevicePreferredVectorWidthInt,
	cl.DevicePreferredVectorWidthLong,
	cl.DevicePreferredVectorWidthShrt,
	// everything else
	cl.DeviceSingleFPConfig,
	cl.DeviceDoubleFPConfig,
	cl.DeviceQueueProperties,
	cl.DeviceReferenceCount,
	cl.DeviceExecutionCapabilities,
	cl.DeviceBuiltInKernels,
}

// PlatformInfoList returns the platform attributes printed by
// PrintPlatformInfos, in order.
func PlatformInfoList() []cl.PlatformInfo { return slices.Clone(platformInfoList) }

// DeviceInfoList returns the device attributes printed by PrintDeviceInfos,
// in order.
func DeviceInfoList() []cl.DeviceInfo { return slices.Clone(deviceInfoList) }

// Describer queries attributes and writes their descriptions.
type Describer struct {
	api cl.API
	log *zap.Logger
	out io.Writer
}

// New returns a Describer writing to out. A nil out writes to stdout and a
// nil logger discards diagnostics.
func New(api cl.API, logger *zap.Logger, out io.Writer) *Describer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Describer{api: api, log: logger.Named("describe"), out: out}
}

// RenderPlatformInfo decodes a platform attribute value.
func (d *Describer) RenderPlatformInfo(info cl.PlatformInfo, value []byte) string {
	s, ok := platformStrategies[info]
	if !ok {
		return "UNKNOWN PLATFORM INFO"
	}
	return Render(s, value, d)
}

// RenderDeviceInfo decodes a device attribute value.
func (d *Describer) RenderDeviceInfo(info cl.DeviceInfo, value []byte) string {
	s, ok := deviceStrategies[info]
	if !ok {
		return "UNKNOWN DEVICE INFO"
	}
	return Render(s, value, d)
}

// PlatformName resolves the name of a platform.
func (d *Describer) PlatformName(id cl.PlatformID) (string, bool) {
	v, err := query.PlatformInfo(d.api, id, cl.PlatformName)
	if err != nil {
		d.log.Debug("platform name unavailable", zap.Error(err))
		return "", false
	}
	return renderString(v), true
}

// DeviceName resolves the name of a device.
func (d *Describer) DeviceName(id cl.DeviceID) (string, bool) {
	v, err := query.DeviceInfo(d.api, id, cl.DeviceName)
	if err != nil {
		d.log.Debug("device name unavailable", zap.Error(err))
		return "", false
	}
	return renderString(v), true
}

// PlatformInfo queries and renders one platform attribute.
func (d *Describer) PlatformInfo(platform cl.PlatformID, info cl.PlatformInfo) (Entry, error) {
	v, err := query.PlatformInfo(d.api, platform, info)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Code: uint32(info), Name: PlatformInfoName(info), Value: d.RenderPlatformInfo(info, v)}, nil
}

// DeviceInfo queries and renders one device attribute.
func (d *Describer) DeviceInfo(device cl.DeviceID, info cl.DeviceInfo) (Entry, error) {
	v, err := query.DeviceInfo(d.api, device, info)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Code: uint32(info), Name: DeviceInfoName(info), Value: d.RenderDeviceInfo(info, v)}, nil
}

// PrintPlatformInfo prints one platform attribute. Nothing is printed when
// the query fails.
func (d *Describer) PrintPlatformInfo(platform cl.PlatformID, info cl.PlatformInfo) error {
	e, err := d.PlatformInfo(platform, info)
	if err != nil {
		d.log.Debug("unable to print platform info", zap.String("info", PlatformInfoName(info)), zap.Error(err))
		return err
	}
	d.printEntry(e)
	return nil
}

// PrintDeviceInfo prints one device attribute. Nothing is printed when the
// query fails.
func (d *Describer) PrintDeviceInfo(device cl.DeviceID, info cl.DeviceInfo) error {
	e, err := d.DeviceInfo(device, info)
	if err != nil {
		d.log.Debug("unable to print device info", zap.String("info", DeviceInfoName(info)), zap.Error(err))
		return err
	}
	d.printEntry(e)
	return nil
}

// PrintPlatformInfos prints every attribute of PlatformInfoList, skipping
// those that cannot be queried.
func (d *Describer) PrintPlatformInfos(platform cl.PlatformID) {
	for _, info := range platformInfoList {
		_ = d.PrintPlatformInfo(platform, info)
	}
}

// PrintDeviceInfos prints every attribute of DeviceInfoList, skipping those
// that cannot be queried.
func (d *Describer) PrintDeviceInfos(device cl.DeviceID) {
	for _, info := range deviceInfoList {
		_ = d.PrintDeviceInfo(device, info)
	}
}

// CollectPlatformInfos renders every attribute of PlatformInfoList.
func (d *Describer) CollectPlatformInfos(platform cl.PlatformID) []Entry {
	entries := make([]Entry, 0, len(platformInfoList))
	for _, info := range platformInfoList {
		e, err := d.PlatformInfo(platform, info)
		if err != nil {
			d.log.Debug("skipping platform info", zap.String("info", PlatformInfoName(info)), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// CollectDeviceInfos renders every attribute of DeviceInfoList.
func (d *Describer) CollectDeviceInfos(device cl.DeviceID) []Entry {
	entries := make([]Entry, 0, len(deviceInfoList))
	for _, info := range deviceInfoList {
		e, err := d.DeviceInfo(device, info)
		if err != nil {
			d.log.Debug("skipping device info", zap.String("info", DeviceInfoName(info)), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func (d *Describer) printEntry(e Entry) {
	fmt.Fprintf(d.out, "\t%-32s %s\n", e.Name, e.Value)
}
