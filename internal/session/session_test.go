package session

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/cl/clfake"
	"github.com/cwbudde/clut/internal/query"
)

func TestPick(t *testing.T) {
	cpu := Candidate{Device: 1, Type: cl.DeviceTypeCPU}
	gpu := Candidate{Device: 2, Type: cl.DeviceTypeGPU | cl.DeviceTypeDefault}
	acc := Candidate{Device: 3, Type: cl.DeviceTypeAccelerator}

	cases := []struct {
		name string
		in   []Candidate
		want cl.DeviceID
		ok   bool
	}{
		{"gpu preferred", []Candidate{cpu, acc, gpu}, 2, true},
		{"cpu fallback", []Candidate{acc, cpu}, 1, true},
		{"first otherwise", []Candidate{acc}, 3, true},
		{"none", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Pick(tc.in)
			if ok != tc.ok || got.Device != tc.want {
				t.Fatalf("Pick = %v %v, want %v %v", got.Device, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestOpenPrefersGPUAcrossPlatforms(t *testing.T) {
	fake := clfake.New()
	fake.AddPlatform("empty")
	p1 := fake.AddPlatform("cpu only")
	fake.AddDevice(p1, "cpu", cl.DeviceTypeCPU)
	p2 := fake.AddPlatform("gpu")
	gpu := fake.AddDevice(p2, "gpu", cl.DeviceTypeGPU)

	s, err := Open(fake, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Device != gpu || s.Platform != p2 {
		t.Fatalf("picked device %x on %x, want %x on %x", s.Device, s.Platform, gpu, p2)
	}
	if s.Context == 0 || s.Queue == 0 {
		t.Fatalf("expected context and queue")
	}
	if fake.LiveContexts() != 1 {
		t.Fatalf("expected one live context")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fake.LiveContexts() != 0 {
		t.Fatalf("context leaked")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	fake := clfake.New()
	if _, err := Open(fake, nil); !errors.Is(err, query.ErrNoPlatforms) {
		t.Fatalf("expected ErrNoPlatforms, got %v", err)
	}

	fake.AddPlatform("empty")
	if _, err := Open(fake, nil); !errors.Is(err, query.ErrNoDevices) {
		t.Fatalf("expected ErrNoDevices, got %v", err)
	}

	p := fake.AddPlatform("p")
	fake.AddDevice(p, "gpu", cl.DeviceTypeGPU)
	fake.CreateContextStatus = cl.OutOfHostMemory
	_, err := Open(fake, nil)
	if err == nil || !errors.Is(err, cl.OutOfHostMemory) {
		t.Fatalf("expected context creation failure, got %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var s *Session
	if err := s.Close(); err != nil {
		t.Fatalf("Close on nil session: %v", err)
	}
}
