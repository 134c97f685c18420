package voice

import "math"

// PolyphonyGain computes the mix attenuation factor for a given voice
// count, per spec.md §4.6 step 5: min(1, 1/sqrt(max(1,|voices|))) * 0.8.
func PolyphonyGain(voiceCount int) float64 {
	n := float64(voiceCount)
	if n < 1 {
		n = 1
	}
	g := 1.0 / math.Sqrt(n)
	if g > 1 {
		g = 1
	}
	return g * 0.8
}

// SoftClip applies the tanh soft saturator used to turn the raw mix
// into an output sample (spec.md §4.6 step 6).
func SoftClip(mix float64) float64 {
	return math.Tanh(mix)
}
