// Package program compiles OpenCL programs from source files.
package program

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/query"
	"github.com/cwbudde/clut/internal/source"
)

// DefaultBuildOptions are passed to every build.
const DefaultBuildOptions = "-cl-std=CL1.2 -cl-kernel-arg-info -Werror"

var (
	// ErrSourceParse reports an unreadable or empty source file.
	ErrSourceParse = errors.New("unable to parse program source")
	// ErrProgramCreation reports a program object that could not be created.
	ErrProgramCreation = errors.New("unable to create program")
	// ErrBuildFailure reports a failed compilation.
	ErrBuildFailure = errors.New("failed to build program")
)

// ComposeOptions returns the build options for optional caller flags: the
// defaults alone, or the defaults and the flags separated by one space.
func ComposeOptions(extraFlags *string) string {
	if extraFlags == nil {
		return DefaultBuildOptions
	}
	return DefaultBuildOptions + " " + *extraFlags
}

// Builder creates and builds programs.
type Builder struct {
	api      cl.API
	log      *zap.Logger
	out      io.Writer
	tokenize func(path string) ([]string, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithOutput sets where build logs are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(b *Builder) { b.out = w }
}

// WithTokenizer replaces the source tokenizer.
func WithTokenizer(fn func(path string) ([]string, error)) Option {
	return func(b *Builder) { b.tokenize = fn }
}

// NewBuilder returns a Builder for api.
func NewBuilder(api cl.API, logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{
		api:      api,
		log:      logger.Named("program"),
		out:      os.Stdout,
		tokenize: source.Tokenize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates a program in ctx from the source file at path and builds
// it for every device of the context. On build failure the log of each
// device is printed and the program is released.
func (b *Builder) Build(ctx cl.Context, path string, extraFlags *string) (cl.Program, error) {
	fragments, err := b.tokenize(path)
	if err != nil {
		return 0, errors.Wrapf(ErrSourceParse, "%s: %v", path, err)
	}
	if len(fragments) == 0 {
		return 0, errors.Wrapf(ErrSourceParse, "%s: empty source", path)
	}

	program, status := b.api.CreateProgramWithSource(ctx, fragments)
	if status != cl.Success {
		return 0, errors.Wrapf(ErrProgramCreation, "%s", cl.Describe(status))
	}
	if program == 0 {
		return 0, errors.Wrap(ErrProgramCreation, "null program handle")
	}
	b.log.Debug("program source created", zap.String("path", path), zap.Int("fragments", len(fragments)))

	options := ComposeOptions(extraFlags)
	b.log.Debug("build options", zap.String("options", options))

	if status := b.api.BuildProgram(program, nil, options); status != cl.Success {
		buildErr := errors.Wrapf(ErrBuildFailure, "%s", cl.Describe(status))
		b.log.Debug("failed to build program", zap.String("path", path), zap.Error(buildErr))
		if err := b.PrintBuildLog(program); err != nil {
			b.log.Debug("unable to print build log", zap.Error(err))
		}
		if status := b.api.ReleaseProgram(program); status != cl.Success {
			buildErr = multierr.Append(buildErr, cl.StatusError("clReleaseProgram", status))
		}
		return 0, buildErr
	}

	b.log.Debug("program built", zap.String("path", path))
	return program, nil
}

// DeviceLog is the build log of a program for one device.
type DeviceLog struct {
	Device cl.DeviceID
	Log    string
	Err    error
}

// Devices returns the devices associated with program.
func (b *Builder) Devices(program cl.Program) ([]cl.DeviceID, error) {
	v, err := query.ProgramInfo(b.api, program, cl.ProgramNumDevices)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch device number")
	}
	n, err := query.Uint32(v)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch device number")
	}
	if n == 0 {
		return nil, errors.Errorf("illegal number of devices (%d)", n)
	}

	v, err = query.ProgramInfo(b.api, program, cl.ProgramDevices)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch devices")
	}
	handles := query.Handles(v)
	if len(handles) != int(n) {
		return nil, errors.Errorf("program reports %d devices but lists %d", n, len(handles))
	}

	devices := make([]cl.DeviceID, len(handles))
	for i, h := range handles {
		devices[i] = cl.DeviceID(h)
	}
	return devices, nil
}

// BuildLogs fetches the build log of program for each of its devices. A
// failure for one device is recorded in its entry and does not stop the
// others.
func (b *Builder) BuildLogs(program cl.Program) ([]DeviceLog, error) {
	devices, err := b.Devices(program)
	if err != nil {
		return nil, err
	}

	logs := make([]DeviceLog, len(devices))
	for i, device := range devices {
		log, err := query.BuildLog(b.api, program, device)
		logs[i] = DeviceLog{Device: device, Log: log, Err: err}
	}
	return logs, nil
}

// PrintBuildLog prints the build log of program for each of its devices.
func (b *Builder) PrintBuildLog(program cl.Program) error {
	logs, err := b.BuildLogs(program)
	if err != nil {
		return err
	}

	for _, l := range logs {
		if l.Err != nil {
			b.log.Debug("unable to fetch program build log", zap.Uintptr("device", uintptr(l.Device)), zap.Error(l.Err))
			continue
		}
		fmt.Fprintf(b.out, "Program build log:\n%s\n", l.Log)
		b.log.Warn("program build log", zap.Uintptr("device", uintptr(l.Device)), zap.String("log", l.Log))
	}
	return nil
}

// Release releases a program built by Build.
func (b *Builder) Release(program cl.Program) error {
	if status := b.api.ReleaseProgram(program); status != cl.Success {
		return cl.StatusError("clReleaseProgram", status)
	}
	return nil
}
