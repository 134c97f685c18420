// Package decoder decodes one compressed audio file into a normalized
// mono float32 buffer in [-1, 1]. FLAC is the primary container; any
// other extension falls back to the generic WAV container. Decoding is
// a pure function of the file's bytes - it never touches the cache or
// any other process-wide state.
package decoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
)

// DecodeError reports that a sample file could not be decoded.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

// Decode probes path by extension and decodes it into a mono,
// normalized float32 buffer. FLAC is tried for a ".flac" extension;
// every other extension is handed to the generic container decoder.
// Multichannel sources are averaged down to mono at this stage so that
// the pitch math downstream stays self-consistent regardless of the
// recorded channel count (see SPEC_FULL.md §4.1).
func Decode(path string) (*buffer.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var samples []float32
	var err error

	switch ext {
	case ".flac":
		samples, err = decodeFLAC(path)
	default:
		samples, err = decodeContainer(path)
	}
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		return nil, &DecodeError{Path: path, Reason: "decoded output is empty"}
	}

	return buffer.New(normalizeSourcePath(path), samples), nil
}

func normalizeSourcePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return strings.ToLower(path)
	}
	return strings.ToLower(abs)
}

// normalizeFixedPoint converts a signed fixed-point sample to [-1, 1]
// using the canonical 1 / (1 << (bits-1)) scale factor.
func normalizeFixedPoint(sample int, bitsPerSample int) float32 {
	if bitsPerSample <= 0 {
		bitsPerSample = 16
	}
	scale := float32(1 << uint(bitsPerSample-1))
	return float32(sample) / scale
}

// mixToMono averages one frame's worth of per-channel samples into a
// single float32, the policy SPEC_FULL.md §4.1 adopts in place of
// straight concatenation.
func mixToMono(frame []float32) float32 {
	if len(frame) == 0 {
		return 0
	}
	var sum float32
	for _, s := range frame {
		sum += s
	}
	return sum / float32(len(frame))
}
