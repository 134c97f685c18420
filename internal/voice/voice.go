// Package voice implements the per-note Voice model and the pure math
// the audio engine's mix loop applies to it each callback: linear
// interpolation, pitch ratio, and the exponential release envelope
// (spec.md §3 "Voice", §4.6).
package voice

import (
	"math"

	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
)

// RetireAmplitude is the amplitude floor below which a voice is
// considered silent and retired (spec.md §3).
const RetireAmplitude = 5e-4

// Voice is a single sounding note.
type Voice struct {
	Buffer      *buffer.Buffer
	Playhead    float64
	PitchRatio  float64
	OriginNote  uint8
	IsReleasing bool
	Volume      float64
}

// New constructs a voice at note-on time. velocity is clamped to
// [0, 127] before being scaled to a [0, 1] volume.
func New(buf *buffer.Buffer, originNote uint8, pitchRatio float64, velocity int) *Voice {
	return &Voice{
		Buffer:     buf,
		PitchRatio: pitchRatio,
		OriginNote: originNote,
		Volume:     ClampVelocity(velocity),
	}
}

// ClampVelocity converts a MIDI velocity (expected 0-127) to a
// normalized [0, 1] volume, clamping out-of-range input.
func ClampVelocity(velocity int) float64 {
	v := float64(velocity) / 127.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PitchRatioFor computes the playhead stride multiplier to transpose a
// sample recorded at `recorded` so it sounds at `target` (spec.md
// §4.5): 2^((target-recorded)/12).
func PitchRatioFor(target, recorded uint8) float64 {
	semitones := float64(int(target) - int(recorded))
	return math.Pow(2, semitones/12.0)
}

// Exhausted reports whether the voice has played past the end of its
// source buffer and the interpolation point can no longer be read.
func (v *Voice) Exhausted() bool {
	if v.Buffer == nil {
		return true
	}
	p := int(math.Floor(v.Playhead))
	return p+1 >= v.Buffer.Len()
}

// Silent reports whether the voice's amplitude has decayed below the
// retirement floor.
func (v *Voice) Silent() bool {
	return v.Volume <= RetireAmplitude
}

// Retired reports whether the voice should be dropped at the end of
// the current callback (spec.md §3 voice invariant).
func (v *Voice) Retired() bool {
	return v.Exhausted() || v.Silent()
}

// Sample linearly interpolates the current playhead position and
// scales by Volume, returning 0 if the voice is already exhausted.
func (v *Voice) Sample() float64 {
	if v.Exhausted() {
		return 0
	}
	samples := v.Buffer.Samples
	p := int(math.Floor(v.Playhead))
	frac := v.Playhead - float64(p)
	s := float64(samples[p])*(1-frac) + float64(samples[p+1])*frac
	return s * v.Volume
}

// Advance applies one output sample's worth of release decay (if
// releasing) and moves the playhead by PitchRatio. fast/slow are the
// release.Registry snapshot for this callback; sustain selects slow
// over fast (spec.md §4.6 step 4).
func (v *Voice) Advance(fast, slow float64, sustain bool) {
	if v.IsReleasing {
		if sustain {
			v.Volume *= slow
		} else {
			v.Volume *= fast
		}
	}
	v.Playhead += v.PitchRatio
}

// Release marks the voice as releasing; subsequent Advance calls decay
// its amplitude instead of holding steady.
func (v *Voice) Release() {
	v.IsReleasing = true
}
