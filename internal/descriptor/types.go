package descriptor

import "sort"

// Contribution carries the instrument's attribution metadata, passed
// through untouched to the discovery summary (SPEC_FULL.md §5).
type Contribution struct {
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"published_date"`
	Licenses      []string `json:"licenses"`
}

// Layer is one velocity layer: an uppercase name and its velocity
// range. LoVel/HiVel are inclusive bounds in [0, 127].
type Layer struct {
	Name  string
	LoVel uint8
	HiVel uint8
}

// SampleRef is one sample entry within a KeyEntry: the file path
// relative to the instrument folder and the velocity layer it was
// recorded at.
type SampleRef struct {
	Path  string
	Layer string
}

// KeyEntry is the ordered list of samples recorded for one MIDI note,
// plus the note's recorded-pitch metadata.
type KeyEntry struct {
	MIDI    uint8
	Note    string
	Pitch   string // recorded pitch, e.g. "C3"; may be empty
	LoKey   string
	HiKey   string
	Samples []SampleRef
}

// Descriptor is the parsed, schema-normalized form of an instrument's
// instrument.json document (SPEC_FULL.md §3, §4.4).
type Descriptor struct {
	Name         string
	Description  string
	Contribution Contribution
	FilesFormat  string
	Settings     map[string]interface{}

	layers     map[string]Layer
	layerOrder []string // ascending lovel; index is the layer_index
	keys       map[uint8]KeyEntry
}

// Layers returns the layer names in ascending-lovel order. The
// position in this slice is the layer_index that Layer reports. The
// loader keys the cache by each sample's position in KeyEntry.Samples,
// which equals this index when a key lists one sample per layer in
// this order.
func (d *Descriptor) Layers() []string {
	out := make([]string, len(d.layerOrder))
	copy(out, d.layerOrder)
	return out
}

// Layer looks up a layer by name, case-insensitively, and reports its
// layer_index (its position in Layers()).
func (d *Descriptor) Layer(name string) (Layer, int, bool) {
	upper := upperASCII(name)
	for i, n := range d.layerOrder {
		if n == upper {
			return d.layers[n], i, true
		}
	}
	return Layer{}, -1, false
}

// Key looks up the key entry for a MIDI note number.
func (d *Descriptor) Key(midi uint8) (KeyEntry, bool) {
	k, ok := d.keys[midi]
	return k, ok
}

// Keys returns every MIDI number with a key entry, ascending.
func (d *Descriptor) Keys() []uint8 {
	out := make([]uint8, 0, len(d.keys))
	for midi := range d.keys {
		out = append(out, midi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
