// Package audiosrc captures microphone audio via malgo, the cross-platform
// miniaudio binding, converting whatever native format the device captures
// in into normalized mono float32 samples for the ingress queue.
package audiosrc

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/orangepi5/micasr/internal/errors"
	"github.com/orangepi5/micasr/internal/resample"
)

// candidateRates lists the preferred capture rates. When no explicit sample
// rate is configured the first entry (16 kHz) is used; the rates the device
// actually supports are not queried.
var candidateRates = []uint32{16000, 48000, 44100, 32000, 22050, 8000}

// Chunk is one buffer of captured audio, already normalized to mono float32.
type Chunk struct {
	Samples    []float32
	SampleRate int
	Timestamp  time.Time
}

// Config selects and configures the capture device.
type Config struct {
	// DeviceNameHint, if non-empty, is matched case-insensitively as a
	// substring against available device names; "default" or "" picks
	// the system default input.
	DeviceNameHint string
	SampleRate     uint32 // 0 selects candidateRates[0]
	Channels       uint8
	BufferFrames   uint32
}

// Source captures microphone audio and delivers normalized chunks on a
// channel, isolating all malgo lifecycle management from the pipeline.
type Source struct {
	cfg Config

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	outputChan chan Chunk
	errorChan  chan error

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc

	formatType malgo.FormatType
	actualRate uint32
}

// New constructs a Source with defaults filled in for zero-valued fields.
func New(cfg Config) *Source {
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	if cfg.BufferFrames == 0 {
		cfg.BufferFrames = 1024
	}
	return &Source{
		cfg:        cfg,
		outputChan: make(chan Chunk, 10),
		errorChan:  make(chan error, 10),
	}
}

// Start initializes the capture device and begins delivering audio.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New(nil).Component("audiosrc").Category(errors.CategoryInit).
			Context("error", "source already running").Build()
	}

	malgoCtx, err := malgo.InitContext([]malgo.Backend{s.backend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return errors.New(err).Component("audiosrc").Category(errors.CategoryInit).
			Context("backend", runtime.GOOS).Context("operation", "init_context").Build()
	}
	s.ctx = malgoCtx

	deviceInfo, rate, err := s.selectDeviceAndRate(malgoCtx)
	if err != nil {
		_ = malgoCtx.Uninit()
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Channels = uint32(s.cfg.Channels)
	deviceConfig.Capture.DeviceID = deviceInfo.ID.Pointer()
	deviceConfig.SampleRate = rate
	deviceConfig.PeriodSizeInFrames = s.cfg.BufferFrames

	captureCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onAudioData,
		Stop: s.onDeviceStop,
	})
	if err != nil {
		s.cancel()
		_ = malgoCtx.Uninit()
		return errors.New(err).Component("audiosrc").Category(errors.CategoryAudioUnavail).
			Context("device_name", deviceInfo.Name()).Context("operation", "init_device").Build()
	}
	s.device = device
	s.formatType = device.CaptureFormat()
	s.actualRate = device.SampleRate()

	if err := device.Start(); err != nil {
		device.Uninit()
		s.cancel()
		_ = malgoCtx.Uninit()
		return errors.New(err).Component("audiosrc").Category(errors.CategoryAudioUnavail).
			Context("operation", "start_device").Build()
	}

	s.running.Store(true)
	go s.monitor(captureCtx)
	return nil
}

// Stop halts capture and releases device resources.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx = nil
	}

	s.running.Store(false)
	close(s.outputChan)
	close(s.errorChan)
	return nil
}

// Output returns the channel of captured, normalized audio chunks.
func (s *Source) Output() <-chan Chunk { return s.outputChan }

// Errors returns the channel of asynchronous capture errors.
func (s *Source) Errors() <-chan error { return s.errorChan }

// IsActive reports whether the device is currently capturing.
func (s *Source) IsActive() bool { return s.running.Load() }

func (s *Source) monitor(ctx context.Context) {
	<-ctx.Done()
	_ = s.Stop()
}

func (s *Source) backend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// selectDeviceAndRate finds a matching capture device and, if no sample
// rate was configured, returns the first candidate rate. It does not check
// that the device supports that rate.
func (s *Source) selectDeviceAndRate(ctx *malgo.AllocatedContext) (malgo.DeviceInfo, uint32, error) {
	devices, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceInfo{}, 0, errors.New(err).Component("audiosrc").Category(errors.CategoryInit).
			Context("operation", "enumerate_devices").Build()
	}
	if len(devices) == 0 {
		return malgo.DeviceInfo{}, 0, errors.New(nil).Component("audiosrc").Category(errors.CategoryAudioUnavail).
			Context("error", "no capture devices found").Build()
	}

	device := selectDevice(devices, s.cfg.DeviceNameHint)

	rate := s.cfg.SampleRate
	if rate == 0 {
		rate = candidateRates[0]
	}
	return device, rate, nil
}

func selectDevice(devices []malgo.DeviceInfo, hint string) malgo.DeviceInfo {
	if hint == "" || strings.EqualFold(hint, "default") {
		for _, d := range devices {
			if d.IsDefault == 1 {
				return d
			}
		}
		return devices[0]
	}

	upperHint := strings.ToUpper(hint)
	for _, d := range devices {
		if strings.Contains(strings.ToUpper(d.Name()), upperHint) {
			return d
		}
	}

	for _, d := range devices {
		if d.IsDefault == 1 {
			return d
		}
	}
	return devices[0]
}

func (s *Source) onAudioData(_, samples []byte, frameCount uint32) {
	floats, err := toFloat32Mono(samples, s.formatType)
	if err != nil {
		s.pushError(errors.New(err).Component("audiosrc").Category(errors.CategoryAudioTransient).Build())
		return
	}

	select {
	case s.outputChan <- Chunk{Samples: floats, SampleRate: int(s.actualRate), Timestamp: time.Now()}:
	default:
		s.pushError(errors.New(nil).Component("audiosrc").Category(errors.CategoryBackpressure).
			Context("error", "audio output channel full, dropping frame").Build())
	}
}

func (s *Source) onDeviceStop() {
	s.pushError(errors.New(nil).Component("audiosrc").Category(errors.CategoryAudioUnavail).
		Context("error", "device stopped unexpectedly").Build())
}

func (s *Source) pushError(err error) {
	select {
	case s.errorChan <- err:
	default:
	}
}

// toFloat32Mono converts raw captured bytes to normalized float32 samples.
func toFloat32Mono(samples []byte, format malgo.FormatType) ([]float32, error) {
	switch format {
	case malgo.FormatS16:
		n := len(samples) / 2
		ints := make([]int16, n)
		for i := 0; i < n; i++ {
			ints[i] = int16(samples[2*i]) | int16(samples[2*i+1])<<8
		}
		return resample.NormalizeInt16(ints), nil
	case malgo.FormatF32:
		n := len(samples) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			bits := uint32(samples[4*i]) | uint32(samples[4*i+1])<<8 |
				uint32(samples[4*i+2])<<16 | uint32(samples[4*i+3])<<24
			out[i] = math.Float32frombits(bits)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported capture format: %v", format)
	}
}
