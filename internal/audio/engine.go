// Package audio owns the output audio stream and the active-voice
// list, and runs the real-time mix loop inside the device's
// pull-callback (spec.md §4.6, §5). This is a near-direct adaptation
// of the teacher's former capture-side device wiring: the same
// malgo-backed device lifecycle and atomic/mutex discipline, turned
// around from capture into playback and from a sample-forwarding
// callback into a polyphonic mixer.
package audio

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/ColonelBlimp/cwdecoder/internal/release"
	"github.com/ColonelBlimp/cwdecoder/internal/voice"
)

const (
	// DefaultPeriodSizeInFrames sizes the pre-allocated mix scratch so
	// the hot path does not allocate under normal operation.
	DefaultPeriodSizeInFrames = 1024
	// DefaultChannels is the output channel count this engine
	// requests; the teacher's default config similarly hardcodes its
	// channel count rather than deriving it from device negotiation
	// (see DESIGN.md).
	DefaultChannels = 2
)

// Engine owns the output device and the active voices it mixes.
type Engine struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device

	channels int

	voicesMu sync.Mutex
	voices   []*voice.Voice

	sustainMu sync.Mutex
	sustain   bool

	releases *release.Registry

	scratch []float64
}

// New constructs an engine bound to the given release-rate registry.
// The registry is snapshotted once per callback (spec.md §4.6 step 2).
func New(releases *release.Registry) *Engine {
	return &Engine{releases: releases}
}

// Open selects the default output device and starts the real-time
// pull-callback stream. It must be called once before any note-on
// reaches PlayNote.
func (e *Engine) Open() error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoOutputDevice, err)
	}
	e.ctx = ctx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = DefaultChannels
	deviceConfig.PeriodSizeInFrames = DefaultPeriodSizeInFrames

	if deviceConfig.Playback.Channels == 0 {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: channel count must be positive", ErrConfigError)
	}
	e.channels = int(deviceConfig.Playback.Channels)
	e.scratch = make([]float64, DefaultPeriodSizeInFrames)

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: e.onSendFrames,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrBuildError, err)
	}
	e.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrStartError, err)
	}

	return nil
}

// Close stops the stream and releases device resources. Teardown only
// happens at process exit (spec.md §5); there is no user-visible
// suspend.
func (e *Engine) Close() error {
	if e.device != nil {
		_ = e.device.Stop()
		e.device.Uninit()
		e.device = nil
	}
	if e.ctx != nil {
		if err := e.ctx.Uninit(); err != nil {
			return err
		}
		e.ctx.Free()
		e.ctx = nil
	}
	return nil
}

// PlayNote appends a new voice to the active list. No per-note
// deduplication or voice limit is applied (spec.md §4.5): repeated
// presses of the same key simply stack voices.
func (e *Engine) PlayNote(v *voice.Voice) {
	e.voicesMu.Lock()
	defer e.voicesMu.Unlock()
	e.voices = append(e.voices, v)
}

// StopNote marks every active voice originating from midi as
// releasing. Voices for other notes are untouched; a call with no
// matching voices is a no-op (spec.md §4.5, §8).
func (e *Engine) StopNote(midi uint8) {
	e.voicesMu.Lock()
	defer e.voicesMu.Unlock()
	for _, v := range e.voices {
		if v.OriginNote == midi {
			v.Release()
		}
	}
}

// SetSustain atomically overwrites the sustain flag read by the mix
// loop.
func (e *Engine) SetSustain(active bool) {
	e.sustainMu.Lock()
	e.sustain = active
	e.sustainMu.Unlock()
}

// VoiceCount reports the number of active voices, mainly for tests and
// discovery/diagnostics commands.
func (e *Engine) VoiceCount() int {
	e.voicesMu.Lock()
	defer e.voicesMu.Unlock()
	return len(e.voices)
}

// Voices returns a snapshot copy of the active voice list. It briefly
// takes the same lock the mix callback try-locks, so it is meant for
// control-thread diagnostics and tests, never the audio thread.
func (e *Engine) Voices() []*voice.Voice {
	e.voicesMu.Lock()
	defer e.voicesMu.Unlock()
	out := make([]*voice.Voice, len(e.voices))
	copy(out, e.voices)
	return out
}

// onSendFrames is the real-time mix callback (spec.md §4.6). It never
// blocks and never propagates an error: a missing interpolation point
// just retires the voice, and lock contention yields silence for one
// buffer. It allocates only when the device asks for more frames than
// the scratch holds, in which case the scratch is grown.
func (e *Engine) onSendFrames(output, _ []byte, frameCount uint32) {
	frames := int(frameCount)
	channels := e.channels

	if !e.voicesMu.TryLock() {
		// Contention on the voice list: leave the (already-silent)
		// output buffer as-is for this callback (spec.md §4.6 step 1).
		return
	}
	defer e.voicesMu.Unlock()

	sustain := false
	if e.sustainMu.TryLock() {
		sustain = e.sustain
		e.sustainMu.Unlock()
	}

	fast, slow := e.releases.Snapshot()

	if cap(e.scratch) < frames {
		e.scratch = make([]float64, frames)
	}
	mix := e.scratch[:frames]
	for i := range mix {
		mix[i] = 0
	}

	for _, v := range e.voices {
		for f := 0; f < frames; f++ {
			if v.Exhausted() {
				break
			}
			mix[f] += v.Sample()
			v.Advance(fast, slow, sustain)
		}
	}

	gain := voice.PolyphonyGain(len(e.voices))
	out := bytesAsFloat32(output)
	for f := 0; f < frames; f++ {
		y := float32(voice.SoftClip(mix[f] * gain))
		base := f * channels
		for ch := 0; ch < channels; ch++ {
			out[base+ch] = y
		}
	}

	remaining := e.voices[:0]
	for _, v := range e.voices {
		if !v.Retired() {
			remaining = append(remaining, v)
		}
	}
	e.voices = remaining
}

// bytesAsFloat32 reinterprets a malgo playback buffer as a float32
// slice for zero-copy writes, mirroring the teacher's own capture-side
// byte/float reinterpretation helper.
func bytesAsFloat32(data []byte) []float32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4)
}
