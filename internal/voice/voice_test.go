package voice

import (
	"math"
	"testing"

	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestPitchRatioFor_SameNote_IsOne(t *testing.T) {
	if got := PitchRatioFor(60, 60); !almostEqual(got, 1.0, 1e-12) {
		t.Errorf("PitchRatioFor(60, 60) = %v, want 1.0", got)
	}
}

func TestPitchRatioFor_OctaveUp_Doubles(t *testing.T) {
	// spec.md §8: transposing 12 semitones up renders twice as fast.
	got := PitchRatioFor(72, 60)
	if !almostEqual(got, 2.0, 1e-9) {
		t.Errorf("PitchRatioFor(72, 60) = %v, want 2.0", got)
	}
}

func TestPitchRatioFor_OctaveDown_Halves(t *testing.T) {
	got := PitchRatioFor(48, 60)
	if !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("PitchRatioFor(48, 60) = %v, want 0.5", got)
	}
}

func TestPitchRatioFor_IsReciprocal(t *testing.T) {
	// spec.md §8: pitch_ratio(a,b) * pitch_ratio(b,a) = 1.
	for _, pair := range [][2]uint8{{60, 67}, {40, 90}, {21, 21}, {0, 127}} {
		up := PitchRatioFor(pair[0], pair[1])
		down := PitchRatioFor(pair[1], pair[0])
		if !almostEqual(up*down, 1.0, 1e-9) {
			t.Errorf("PitchRatioFor(%d,%d)*PitchRatioFor(%d,%d) = %v, want 1.0",
				pair[0], pair[1], pair[1], pair[0], up*down)
		}
	}
}

func TestClampVelocity_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		velocity int
		want     float64
	}{
		{"zero velocity is silent", 0, 0},
		{"max velocity is full volume", 127, 1.0},
		{"negative clamps to zero", -5, 0},
		{"over range clamps to one", 200, 1.0},
		{"mid velocity scales linearly", 80, 80.0 / 127.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampVelocity(tt.velocity); !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("ClampVelocity(%d) = %v, want %v", tt.velocity, got, tt.want)
			}
		})
	}
}

func TestVoice_Retired_OnExhaustion(t *testing.T) {
	buf := buffer.New("", []float32{0, 0.5, 1.0})
	v := New(buf, 60, 1.0, 100)
	v.Playhead = 1.5 // floor+1 = 2, len=3, not yet exhausted

	if v.Retired() {
		t.Fatalf("voice should not be retired at playhead %v with buffer len %d", v.Playhead, buf.Len())
	}

	v.Playhead = 2.0 // floor+1 = 3 >= len(3): exhausted
	if !v.Retired() {
		t.Fatalf("voice should be retired once playhead exceeds buffer bounds")
	}
}

func TestVoice_Retired_OnSilence(t *testing.T) {
	buf := buffer.New("", make([]float32, 1000))
	v := New(buf, 60, 1.0, 100)
	v.Volume = RetireAmplitude / 2

	if !v.Retired() {
		t.Fatalf("voice below retire amplitude should be retired")
	}
}

func TestVoice_ReleaseEnvelope_NoPedal(t *testing.T) {
	// spec.md §8 scenario 4: fast=0.9998, 2000 frames -> ~0.6704.
	// 0.9998^n crosses the 5e-4 retire floor around n≈38000, not the
	// 20000 spec.md's prose suggests (ln(5e-4)/ln(0.9998)≈37998) - this
	// test follows the arithmetic rather than that approximation.
	buf := buffer.New("", make([]float32, 1_000_000))
	v := New(buf, 60, 1.0, 127)
	v.Release()

	const fast = 0.9998
	const slow = 0.99999

	for i := 0; i < 2000; i++ {
		v.Advance(fast, slow, false)
	}
	if !almostEqual(v.Volume, 0.6704, 1e-3) {
		t.Errorf("volume after 2000 fast-release frames = %v, want ~0.6704", v.Volume)
	}

	for i := 0; i < 40000; i++ {
		v.Advance(fast, slow, false)
	}
	if v.Volume > RetireAmplitude {
		t.Errorf("volume after 42000 fast-release frames = %v, want < %v", v.Volume, RetireAmplitude)
	}
	if !v.Retired() {
		t.Errorf("voice should be retired after decaying past the amplitude floor")
	}
}

func TestVoice_ReleaseEnvelope_Sustained(t *testing.T) {
	// spec.md §8 scenario 5: slow=0.99999, 2000 frames -> ~0.9802,
	// 600000 frames -> ~0.0025.
	buf := buffer.New("", make([]float32, 1_000_000))
	v := New(buf, 60, 1.0, 127)
	v.Release()

	const fast = 0.9998
	const slow = 0.99999

	for i := 0; i < 2000; i++ {
		v.Advance(fast, slow, true)
	}
	if !almostEqual(v.Volume, 0.9802, 1e-3) {
		t.Errorf("volume after 2000 sustained frames = %v, want ~0.9802", v.Volume)
	}

	for i := 0; i < 598000; i++ {
		v.Advance(fast, slow, true)
	}
	if !almostEqual(v.Volume, 0.0025, 2e-3) {
		t.Errorf("volume after 600000 sustained frames = %v, want ~0.0025", v.Volume)
	}
}

func TestVoice_SustainToggleTakesEffectNextFrame(t *testing.T) {
	buf := buffer.New("", make([]float32, 1000))
	v := New(buf, 60, 1.0, 127)
	v.Release()

	const fast = 0.9
	const slow = 0.999

	before := v.Volume
	v.Advance(fast, slow, false)
	afterFast := v.Volume
	if !almostEqual(afterFast, before*fast, 1e-12) {
		t.Fatalf("expected fast coefficient applied, got %v", afterFast)
	}

	v.Advance(fast, slow, true)
	afterSlow := v.Volume
	if !almostEqual(afterSlow, afterFast*slow, 1e-12) {
		t.Fatalf("expected slow coefficient applied on the following frame, got %v", afterSlow)
	}
}

func TestVoice_StopOnNoteWithNoVoices_IsNoop(t *testing.T) {
	// Documents that Release() on an already-released or nonexistent
	// voice set is inert - the caller (control API) is responsible for
	// finding zero matching voices and doing nothing.
	var voices []*Voice
	for _, v := range voices {
		v.Release()
	}
	if len(voices) != 0 {
		t.Fatalf("expected no voices")
	}
}

func TestPolyphonyGain_SingleVoice(t *testing.T) {
	got := PolyphonyGain(1)
	want := 0.8
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("PolyphonyGain(1) = %v, want %v", got, want)
	}
}

func TestPolyphonyGain_FourVoices(t *testing.T) {
	got := PolyphonyGain(4)
	want := 0.4 // 1/sqrt(4) * 0.8
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("PolyphonyGain(4) = %v, want %v", got, want)
	}
}

func TestPolyphonyGain_ZeroVoicesTreatedAsOne(t *testing.T) {
	got := PolyphonyGain(0)
	want := 0.8
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("PolyphonyGain(0) = %v, want %v", got, want)
	}
}

func TestSoftClip_PolyphonyScenario(t *testing.T) {
	// spec.md §8 scenario 6.
	gain4 := PolyphonyGain(4)
	mix4 := 4 * 0.5 * gain4
	got4 := SoftClip(mix4)
	if !almostEqual(got4, 0.6640, 1e-3) {
		t.Errorf("4-voice mix = %v, want ~0.6640 (gain=%v, mix=%v)", got4, gain4, mix4)
	}

	gain1 := PolyphonyGain(1)
	mix1 := 1 * 0.5 * gain1
	got1 := SoftClip(mix1)
	if !almostEqual(got1, 0.3799, 1e-3) {
		t.Errorf("1-voice mix = %v, want ~0.3799", got1)
	}
}

func TestVoice_Sample_LinearInterpolation(t *testing.T) {
	buf := buffer.New("", []float32{0.0, 1.0, 0.0})
	v := New(buf, 60, 1.0, 127)
	v.Playhead = 0.5

	got := v.Sample()
	want := 0.5 * 1.0 // interpolated between 0.0 and 1.0, full volume
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("Sample() at playhead 0.5 = %v, want %v", got, want)
	}
}
