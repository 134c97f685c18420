package audio

import (
	"testing"

	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
	"github.com/ColonelBlimp/cwdecoder/internal/release"
	"github.com/ColonelBlimp/cwdecoder/internal/voice"
)

func newTestEngine(frameCapacity, channels int) *Engine {
	e := New(release.New())
	e.channels = channels
	e.scratch = make([]float64, frameCapacity)
	return e
}

func TestEngine_PlayNote_AddsVoice(t *testing.T) {
	e := newTestEngine(64, 2)
	buf := buffer.New("", make([]float32, 100))
	e.PlayNote(voice.New(buf, 60, 1.0, 100))

	if got := e.VoiceCount(); got != 1 {
		t.Fatalf("VoiceCount() = %d, want 1", got)
	}
}

func TestEngine_StopNote_ReleasesMatchingVoicesOnly(t *testing.T) {
	e := newTestEngine(64, 2)
	buf := buffer.New("", make([]float32, 1_000_000))
	v60 := voice.New(buf, 60, 1.0, 100)
	v64 := voice.New(buf, 64, 1.0, 100)
	e.PlayNote(v60)
	e.PlayNote(v64)

	e.StopNote(60)

	if !v60.IsReleasing {
		t.Errorf("voice for note 60 should be releasing")
	}
	if v64.IsReleasing {
		t.Errorf("voice for note 64 should be untouched")
	}
}

func TestEngine_StopNote_NoMatchingVoices_IsNoop(t *testing.T) {
	e := newTestEngine(64, 2)
	buf := buffer.New("", make([]float32, 100))
	e.PlayNote(voice.New(buf, 60, 1.0, 100))

	e.StopNote(72) // spec.md §8: stop on a note with no voices is a no-op.

	if got := e.VoiceCount(); got != 1 {
		t.Fatalf("VoiceCount() = %d, want 1 (untouched)", got)
	}
}

func TestEngine_SetSustain_IsReadableByMixLoop(t *testing.T) {
	e := newTestEngine(64, 2)
	e.SetSustain(true)
	e.sustainMu.Lock()
	got := e.sustain
	e.sustainMu.Unlock()
	if !got {
		t.Errorf("sustain flag should be true after SetSustain(true)")
	}
}

func TestEngine_OnSendFrames_FillsEveryChannelIdentically(t *testing.T) {
	const frames = 8
	const channels = 2
	e := newTestEngine(frames, channels)

	buf := buffer.New("", []float32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	e.PlayNote(voice.New(buf, 60, 1.0, 127))

	output := make([]byte, frames*channels*4)
	e.onSendFrames(output, nil, frames)

	samples := bytesAsFloat32(output)
	if len(samples) != frames*channels {
		t.Fatalf("expected %d float32 samples, got %d", frames*channels, len(samples))
	}
	for f := 0; f < frames; f++ {
		left := samples[f*channels]
		right := samples[f*channels+1]
		if left != right {
			t.Errorf("frame %d: left=%v right=%v, want identical across channels", f, left, right)
		}
	}
}

func TestEngine_OnSendFrames_RetiresExhaustedVoices(t *testing.T) {
	const frames = 16
	e := newTestEngine(frames, 1)

	buf := buffer.New("", []float32{1, 1, 1}) // exhausts within a few frames at ratio 1.
	e.PlayNote(voice.New(buf, 60, 1.0, 127))

	output := make([]byte, frames*1*4)
	e.onSendFrames(output, nil, frames)

	if got := e.VoiceCount(); got != 0 {
		t.Errorf("VoiceCount() after exhausting buffer = %d, want 0", got)
	}
}

func TestEngine_OnSendFrames_ContentionLeavesBufferUntouched(t *testing.T) {
	e := newTestEngine(4, 1)
	e.voicesMu.Lock() // simulate the mix loop racing a PlayNote/StopNote call
	defer e.voicesMu.Unlock()

	output := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	before := append([]byte(nil), output...)

	e.onSendFrames(output, nil, 4)

	for i := range output {
		if output[i] != before[i] {
			t.Fatalf("output buffer modified despite lock contention at index %d", i)
		}
	}
}
