package decoder

import (
	"os"

	"github.com/go-audio/wav"
)

// decodeContainer is the generic-container fallback decoder: any
// sample file whose extension isn't ".flac" is handed to go-audio/wav,
// which covers the other container shapes an instrument folder is
// likely to carry (WAV-wrapped PCM).
func decodeContainer(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: "open file: " + err.Error()}
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, &DecodeError{Path: path, Reason: "not a recognized audio container"}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: "decode pcm: " + err.Error()}
	}
	if buf == nil || buf.Format == nil {
		return nil, &DecodeError{Path: path, Reason: "decoder returned no format"}
	}

	nCh := buf.Format.NumChannels
	if nCh <= 0 {
		nCh = 1
	}
	bitsPerSample := buf.SourceBitDepth
	if bitsPerSample <= 0 {
		bitsPerSample = 16
	}

	nFrames := len(buf.Data) / nCh
	out := make([]float32, 0, nFrames)
	channelFrame := make([]float32, 0, nCh)

	for i := 0; i < nFrames; i++ {
		channelFrame = channelFrame[:0]
		base := i * nCh
		for ch := 0; ch < nCh; ch++ {
			channelFrame = append(channelFrame, normalizeFixedPoint(buf.Data[base+ch], bitsPerSample))
		}
		out = append(out, mixToMono(channelFrame))
	}

	return out, nil
}
