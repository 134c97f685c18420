// Package buffer holds the immutable, shared-ownership sample data
// produced by the decoder and consumed by the cache, voices, and the
// audio engine's mix loop.
package buffer

// Buffer is a decoded, mono, normalized-to-[-1,1] sequence of audio
// samples at the output device's native rate. Once constructed it is
// never mutated; any number of Voices and the Cache may hold a
// reference to the same Buffer concurrently.
type Buffer struct {
	// Source is the path the samples were decoded from, lowercased and
	// absolute, used by the loader to deduplicate decodes.
	Source string
	// Samples is the decoded, interleaved-to-mono PCM data.
	Samples []float32
}

// New wraps a decoded sample slice. source should already be a
// normalized (lowercased, absolute) path for deduplication purposes;
// callers that don't care about dedup (e.g. tests) may pass "".
func New(source string, samples []float32) *Buffer {
	return &Buffer{Source: source, Samples: samples}
}

// Len returns the number of samples in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Empty reports whether the buffer holds no samples.
func (b *Buffer) Empty() bool {
	return b.Len() == 0
}
