// Package session selects an OpenCL device and owns a context and command
// queue on it.
package session

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/query"
)

// Session owns the context and command queue of one device.
type Session struct {
	api cl.API
	log *zap.Logger

	Platform cl.PlatformID
	Device   cl.DeviceID
	Context  cl.Context
	Queue    cl.CommandQueue
}

// Candidate is a device together with its platform and type.
type Candidate struct {
	Platform cl.PlatformID
	Device   cl.DeviceID
	Type     cl.DeviceTypeFlags
}

// Candidates lists every device of every platform. Platforms without
// devices are skipped.
func Candidates(api cl.API) ([]Candidate, error) {
	platforms, err := query.Platforms(api)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, p := range platforms {
		devices, err := query.Devices(api, p, cl.DeviceTypeAll)
		if errors.Is(err, query.ErrNoDevices) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			v, err := query.DeviceInfo(api, d, cl.DeviceType)
			if err != nil {
				return nil, err
			}
			t, err := query.Uint64(v)
			if err != nil {
				return nil, err
			}
			out = append(out, Candidate{Platform: p, Device: d, Type: cl.DeviceTypeFlags(t)})
		}
	}
	return out, nil
}

// Pick returns the first GPU, else the first CPU, else the first device.
func Pick(candidates []Candidate) (Candidate, bool) {
	for _, want := range []cl.DeviceTypeFlags{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, c := range candidates {
			if c.Type&want != 0 {
				return c, true
			}
		}
	}
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

// Open picks a device and creates a context and command queue on it.
func Open(api cl.API, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("session")

	candidates, err := Candidates(api)
	if err != nil {
		return nil, err
	}
	chosen, ok := Pick(candidates)
	if !ok {
		return nil, query.ErrNoDevices
	}

	ctx, status := api.CreateContext([]cl.DeviceID{chosen.Device})
	if status != cl.Success {
		return nil, cl.StatusError("clCreateContext", status)
	}

	queue, status := api.CreateCommandQueue(ctx, chosen.Device, 0)
	if status != cl.Success {
		err := cl.StatusError("clCreateCommandQueue", status)
		if status := api.ReleaseContext(ctx); status != cl.Success {
			err = multierr.Append(err, cl.StatusError("clReleaseContext", status))
		}
		return nil, err
	}

	log.Debug("session opened",
		zap.Uintptr("platform", uintptr(chosen.Platform)),
		zap.Uintptr("device", uintptr(chosen.Device)),
		zap.Uint64("type", uint64(chosen.Type)))

	return &Session{
		api:      api,
		log:      log,
		Platform: chosen.Platform,
		Device:   chosen.Device,
		Context:  ctx,
		Queue:    queue,
	}, nil
}

// Close releases the command queue and the context.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	var err error
	if s.Queue != 0 {
		if status := s.api.ReleaseCommandQueue(s.Queue); status != cl.Success {
			err = multierr.Append(err, cl.StatusError("clReleaseCommandQueue", status))
		}
		s.Queue = 0
	}
	if s.Context != 0 {
		if status := s.api.ReleaseContext(s.Context); status != cl.Success {
			err = multierr.Append(err, cl.StatusError("clReleaseContext", status))
		}
		s.Context = 0
	}
	s.log.Debug("session closed")
	return err
}
