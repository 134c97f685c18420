package decoder

import (
	"errors"
	"io"

	"github.com/mewkiz/flac"
)

// decodeFLAC decodes a FLAC file into mono float32 samples using
// mewkiz/flac, iterating frames to EOF exactly as SPEC_FULL.md §4.1
// describes: probe, select the codec, decode frame by frame, treat
// unexpected-EOF as clean termination.
func decodeFLAC(path string) ([]float32, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: "open flac stream: " + err.Error()}
	}
	defer func() { _ = stream.Close() }()

	bitsPerSample := int(stream.Info.BitsPerSample)

	var out []float32
	channelFrame := make([]float32, 0, 8)

	for {
		f, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, &DecodeError{Path: path, Reason: "parse flac frame: " + err.Error()}
		}

		nCh := len(f.Subframes)
		if nCh == 0 {
			continue
		}
		nSamples := int(f.Subframes[0].NSamples)

		for i := 0; i < nSamples; i++ {
			channelFrame = channelFrame[:0]
			for ch := 0; ch < nCh; ch++ {
				sample := int(f.Subframes[ch].Samples[i])
				channelFrame = append(channelFrame, normalizeFixedPoint(sample, bitsPerSample))
			}
			out = append(out, mixToMono(channelFrame))
		}
	}

	return out, nil
}
