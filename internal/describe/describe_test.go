package describe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/cl/clfake"
)

func TestInfoNames(t *testing.T) {
	if got := PlatformInfoName(cl.PlatformName); got != "Platform name" {
		t.Errorf("PlatformInfoName = %q", got)
	}
	if got := DeviceInfoName(cl.DeviceMaxClockFrequency); got != "Max clock frequency" {
		t.Errorf("DeviceInfoName = %q", got)
	}
	if got := DeviceInfoName(cl.DeviceInfo(0xFFFF)); got != UnknownInfo {
		t.Errorf("DeviceInfoName(unknown) = %q", got)
	}
	if got := PlatformInfoName(cl.PlatformInfo(0x0999)); got != UnknownInfo {
		t.Errorf("PlatformInfoName(unknown) = %q", got)
	}
}

func TestEveryListedInfoHasNameAndStrategy(t *testing.T) {
	for _, info := range DeviceInfoList() {
		if DeviceInfoName(info) == UnknownInfo {
			t.Errorf("device info 0x%04X has no name", uint32(info))
		}
		if _, ok := DeviceStrategy(info); !ok {
			t.Errorf("device info 0x%04X has no strategy", uint32(info))
		}
	}
	for _, info := range PlatformInfoList() {
		if _, ok := PlatformStrategy(info); !ok {
			t.Errorf("platform info 0x%04X has no strategy", uint32(info))
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.00 KB (1024 bytes)"},
		{1536, "1.50 KB (1536 bytes)"},
		{3 << 20, "3.00 MB (3145728 bytes)"},
		{2 << 30, "2.00 GB (2147483648 bytes)"},
		{5 << 40, "5.00 TB (5497558138880 bytes)"},
		{2048 << 50, "2048.00 PB (2305843009213693952 bytes)"},
	}
	for _, tc := range cases {
		if got := FormatBytes64(tc.n); got != tc.want {
			t.Errorf("FormatBytes64(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}

	if got := FormatBytes32(1023); got != "1023 bytes" {
		t.Errorf("FormatBytes32(1023) = %q", got)
	}
	if got := FormatBytes32(65536); got != "64.00 KB (65536 bytes)" {
		t.Errorf("FormatBytes32(65536) = %q", got)
	}
	if got := FormatBytes32(4294967295); got != "4.00 GB (4294967295 bytes)" {
		t.Errorf("FormatBytes32(max) = %q", got)
	}
}

func TestFormatMegahertz(t *testing.T) {
	cases := map[uint32]string{
		0:    "0 MHz",
		999:  "999 MHz",
		1000: "1.00 GHz (1000 MHz)",
		2500: "2.50 GHz (2500 MHz)",
	}
	for mhz, want := range cases {
		if got := FormatMegahertz(mhz); got != want {
			t.Errorf("FormatMegahertz(%d) = %q, want %q", mhz, got, want)
		}
	}
}

func TestFormatFlags(t *testing.T) {
	v := cl.FPFMA | cl.FPDenorm | cl.FPRoundToNearest
	if got := FormatFlags(fpConfigs, v); got != "denorms, rounding to nearest, fused multiply-add" {
		t.Errorf("FormatFlags = %q", got)
	}
	if got := FormatFlags(fpConfigs, 0); got != "no FP capabilities" {
		t.Errorf("FormatFlags(0) = %q", got)
	}
	if got := FormatFlags(affinityDomains, 0); got != "no affinity domain supported" {
		t.Errorf("FormatFlags(affinity 0) = %q", got)
	}
	if got := FormatFlags(execCapabilities, 0); got != "" {
		t.Errorf("FormatFlags(exec 0) = %q", got)
	}
}

func TestSingleValueNames(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{DeviceTypeName(cl.DeviceTypeGPU), "GPU"},
		{DeviceTypeName(cl.DeviceTypeGPU | cl.DeviceTypeDefault), "UNKNOWN DEVICE TYPE"},
		{CacheTypeName(cl.CacheReadWrite), "read/write cache"},
		{LocalMemTypeName(cl.LocalMemNone), "no memory"},
		{PartitionPropertyName(0), "no partition type supported"},
		{PartitionPropertyName(7), "UNKNOWN PARTITION PROPERTY"},
		{AffinityDomainName(0), "no affinity domain supported"},
		{AffinityDomainName(cl.AffinityDomainL2Cache), "L2 cache"},
		{AffinityDomainName(1 << 40), "UNKNOWN PARTITION DOMAIN"},
		{FPConfigName(cl.FPRoundToInf), "rouding to INF"},
		{ExecCapabilityName(cl.ExecNativeKernel), "Native kernels"},
		{QueuePropertyName(cl.QueueProfilingEnable), "profiling"},
		{ChannelOrderName(cl.ChannelRGBA), "RGBA"},
		{ChannelOrderName(cl.ChannelOrder(1)), "UNKNOWN CHANNEL ORDER"},
		{ChannelTypeName(cl.UnsignedInt8), "un-normalized unsigned 8-bit int"},
		{ImageTypeName(cl.MemObjectImage2DArray), "2D image[]"},
		{ImageTypeName(cl.MemObjectBuffer), "UNKNOWN IMAGE FORMAT"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestRenderDeviceInfo(t *testing.T) {
	fake := clfake.New()
	p := fake.AddPlatform("Fake Platform")
	gpu := fake.AddDevice(p, "Fake GPU", cl.DeviceTypeGPU)
	d := New(fake, nil, &bytes.Buffer{})

	cases := []struct {
		name  string
		info  cl.DeviceInfo
		value []byte
		want  string
	}{
		{"string", cl.DeviceName, clfake.String("Tahiti"), "Tahiti"},
		{"empty string", cl.DeviceName, []byte{0}, NotAvailable},
		{"zero length string", cl.DeviceBuiltInKernels, []byte{}, NotAvailable},
		{"bool false", cl.DeviceAvailable, clfake.Uint32(0), "FALSE"},
		{"bool true", cl.DeviceAvailable, clfake.Uint32(1), "TRUE"},
		{"uint", cl.DeviceMaxComputeUnits, clfake.Uint32(32), "32"},
		{"uint bits", cl.DeviceAddressBits, clfake.Uint32(64), "64 bits"},
		{"size ns", cl.DeviceProfilingTimerResolution, clfake.Size(80), "80 ns"},
		{"size pixels", cl.DeviceImage2DMaxWidth, clfake.Size(16384), "16384 pixels"},
		{"uint bytes", cl.DeviceMaxMemAllocSize, clfake.Uint32(1023), "1023 bytes"},
		{"ulong bytes", cl.DeviceGlobalMemSize, clfake.Uint64(1536), "1.50 KB (1536 bytes)"},
		{"frequency", cl.DeviceMaxClockFrequency, clfake.Uint32(999), "999 MHz"},
		{"frequency ghz", cl.DeviceMaxClockFrequency, clfake.Uint32(1000), "1.00 GHz (1000 MHz)"},
		{"fp bits", cl.DeviceSingleFPConfig, clfake.Uint64(cl.FPFMA | cl.FPDenorm), "denorms, fused multiply-add"},
		{"fp zero", cl.DeviceDoubleFPConfig, clfake.Uint64(0), "no FP capabilities"},
		{"affinity zero", cl.DevicePartitionAffinityDomain, clfake.Uint64(0), "no affinity domain supported"},
		{"queue", cl.DeviceQueueProperties, clfake.Uint64(cl.QueueProfilingEnable), "profiling"},
		{"cache enum", cl.DeviceGlobalMemCacheType, clfake.Uint32(uint32(cl.CacheReadOnly)), "read only cache"},
		{"device type", cl.DeviceType, clfake.Uint64(uint64(cl.DeviceTypeCPU)), "CPU"},
		{"work item sizes", cl.DeviceMaxWorkItemSizes, clfake.Sizes(1024, 1024, 64), "1024, 1024, 64"},
		{"work item sizes ragged", cl.DeviceMaxWorkItemSizes, append(clfake.Sizes(8, 4), 1), "8, 4"},
		{"partition props", cl.DevicePartitionProperties, clfake.Handle(uintptr(cl.PartitionEqually), uintptr(cl.PartitionByCounts)), "partition equally, partition by counts"},
		{"partition none", cl.DevicePartitionProperties, clfake.Handle(0), "no partition type supported"},
		{"partition type", cl.DevicePartitionType, clfake.Handle(0), Unimplemented},
		{"platform name", cl.DevicePlatform, clfake.Handle(uintptr(p)), "Fake Platform"},
		{"platform unknown", cl.DevicePlatform, clfake.Handle(0xDEAD), NotAvailable},
		{"parent device", cl.DeviceParentDevice, clfake.Handle(uintptr(gpu)), "Fake GPU"},
		{"short uint", cl.DeviceMaxComputeUnits, []byte{1, 2}, NotAvailable},
		{"short ulong", cl.DeviceGlobalMemSize, clfake.Uint32(7), NotAvailable},
		{"unknown", cl.DeviceInfo(0x1FFF), clfake.Uint32(1), "UNKNOWN DEVICE INFO"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.RenderDeviceInfo(tc.info, tc.value); got != tc.want {
				t.Fatalf("RenderDeviceInfo = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderScalarKinds(t *testing.T) {
	if got := Render(Strategy{Kind: KindInt}, clfake.Uint32(0xFFFFFFFF), nil); got != "-1" {
		t.Errorf("int = %q", got)
	}
	if got := Render(Strategy{Kind: KindFloat}, clfake.Uint32(0x3FC00000), nil); got != "1.500000" {
		t.Errorf("float = %q", got)
	}
	if got := Render(Strategy{Kind: KindDouble}, clfake.Uint64(0x4004000000000000), nil); got != "2.500000" {
		t.Errorf("double = %q", got)
	}
	if got := Render(Strategy{Kind: KindPlatformName}, clfake.Handle(1), nil); got != NotAvailable {
		t.Errorf("platform name without resolver = %q", got)
	}
}

func TestRenderPlatformInfo(t *testing.T) {
	d := New(clfake.New(), nil, &bytes.Buffer{})
	if got := d.RenderPlatformInfo(cl.PlatformVendor, clfake.String("ACME")); got != "ACME" {
		t.Errorf("RenderPlatformInfo = %q", got)
	}
	if got := d.RenderPlatformInfo(cl.PlatformInfo(0x0999), clfake.String("x")); got != "UNKNOWN PLATFORM INFO" {
		t.Errorf("RenderPlatformInfo(unknown) = %q", got)
	}
}

func TestPrintDeviceInfosSkipsFailures(t *testing.T) {
	fake := clfake.New()
	p := fake.AddPlatform("p")
	dev := fake.AddDevice(p, "Fake GPU", cl.DeviceTypeGPU)

	core, logs := observer.New(zap.DebugLevel)
	var out bytes.Buffer
	d := New(fake, zap.New(core), &out)
	d.PrintDeviceInfos(dev)

	text := out.String()
	if !strings.HasPrefix(text, "\tDevice name                      Fake GPU\n") {
		t.Fatalf("unexpected first line in:\n%s", text)
	}
	if !strings.Contains(text, "\tDevice type                      GPU\n") {
		t.Fatalf("device type missing in:\n%s", text)
	}
	if !strings.Contains(text, "\tPlatform                         p\n") {
		t.Fatalf("platform missing in:\n%s", text)
	}
	if strings.Contains(text, "Supported builtin kernels") {
		t.Fatalf("unavailable info should be skipped:\n%s", text)
	}
	if logs.FilterMessage("unable to print device info").Len() == 0 {
		t.Fatalf("expected skipped infos to be logged")
	}
	for _, entry := range logs.All() {
		if entry.LoggerName != "describe" {
			t.Fatalf("unexpected logger name %q", entry.LoggerName)
		}
	}
}

func TestPrintPlatformInfos(t *testing.T) {
	fake := clfake.New()
	p := fake.AddPlatform("Fake Platform")
	var out bytes.Buffer
	New(fake, nil, &out).PrintPlatformInfos(p)

	want := "\tPlatform name                    Fake Platform\n" +
		"\tVendor                           Fake Vendor\n" +
		"\tOpenCL profile                   FULL_PROFILE\n" +
		"\tOpenCL version                   OpenCL 1.2 fake\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectDeviceInfos(t *testing.T) {
	fake := clfake.New()
	p := fake.AddPlatform("p")
	dev := fake.AddDevice(p, "Fake CPU", cl.DeviceTypeCPU)

	entries := New(fake, nil, &bytes.Buffer{}).CollectDeviceInfos(dev)
	if len(entries) == 0 {
		t.Fatalf("expected entries")
	}
	want := Entry{Code: uint32(cl.DeviceName), Name: "Device name", Value: "Fake CPU"}
	if diff := cmp.Diff(want, entries[0]); diff != "" {
		t.Fatalf("first entry mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintSupportedImageFormats(t *testing.T) {
	fake := clfake.New()
	p := fake.AddPlatform("p")
	dev := fake.AddDevice(p, "d", cl.DeviceTypeGPU)
	fake.SetSupportedFormats(cl.MemObjectImage2D,
		cl.ImageFormat{Order: cl.ChannelRGBA, Type: cl.UnsignedInt8},
		cl.ImageFormat{Order: cl.ChannelR, Type: cl.Float},
	)

	var out bytes.Buffer
	if err := New(fake, nil, &out).PrintSupportedImageFormats(dev); err != nil {
		t.Fatalf("PrintSupportedImageFormats: %v", err)
	}

	text := out.String()
	if strings.Count(text, "Printing matrix for") != 1 {
		t.Fatalf("expected exactly one matrix:\n%s", text)
	}
	if !strings.Contains(text, "Printing matrix for 2D image.") {
		t.Fatalf("missing 2D heading:\n%s", text)
	}
	if strings.Count(text, "| x    ") != 2 {
		t.Fatalf("expected two available formats:\n%s", text)
	}
	if fake.LiveContexts() != 0 {
		t.Fatalf("context not released")
	}
}

func TestWriteFormatMatrixLayout(t *testing.T) {
	var out bytes.Buffer
	WriteFormatMatrix(&out, []cl.ImageFormat{{Order: cl.ChannelR, Type: cl.SNormInt8}})
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 1+len(matrixTypes) {
		t.Fatalf("expected %d lines, got %d", 1+len(matrixTypes), len(lines))
	}
	if !strings.HasPrefix(lines[0], "Data Type                            | R    | Rx   ") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "normalized signed 8-bit int          | x    | ") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[0], "| 1RGB ") {
		t.Fatalf("order names should be truncated to 4 characters: %q", lines[0])
	}
}
