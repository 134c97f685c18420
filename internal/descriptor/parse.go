package descriptor

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// layerRaw is the wire shape of one entry in general.layers, for both
// schemas: name-keyed map to {lovel, hivel}, with an optional
// redundant "name" field (SPEC_FULL.md §4.4).
type layerRaw struct {
	Name  string `json:"name,omitempty"`
	LoVel uint8  `json:"lovel"`
	HiVel uint8  `json:"hivel"`
}

type sampleRaw struct {
	Path  string `json:"path"`
	Layer string `json:"layer"`
}

type keyRaw struct {
	Note    string      `json:"note"`
	MIDI    string      `json:"midi"`
	Pitch   string      `json:"pitch"`
	LoKey   string      `json:"lokey"`
	HiKey   string      `json:"hikey"`
	Samples []sampleRaw `json:"samples"`
}

type generalCurrent struct {
	Layers      map[string]layerRaw `json:"layers"`
	FilesFormat string              `json:"files_format"`
}

type generalLegacy struct {
	Layers      map[string]layerRaw `json:"layers"`
	FilesFormat string              `json:"files_format"`
	FastRelease string              `json:"fast_release"`
	SlowRelease string              `json:"slow_release"`
}

type documentCurrent struct {
	Instrument   string                 `json:"instrument"`
	Description  string                 `json:"description"`
	Contribution Contribution           `json:"contribution"`
	General      generalCurrent         `json:"general"`
	Settings     map[string]interface{} `json:"settings"`
	PianoKeys    []map[string]keyRaw    `json:"piano_keys"`
}

type documentLegacy struct {
	Instrument   string                 `json:"instrument"`
	Contribution Contribution           `json:"contribution"`
	General      generalLegacy          `json:"general"`
	Settings     map[string]interface{} `json:"settings"`
	PianoKeys    []map[string]keyRaw    `json:"piano_keys"`
}

// Parse parses an instrument.json document. It first attempts the
// current schema (settings-held release coefficients); if that fails
// because of fields the current schema doesn't recognize (the legacy
// general.fast_release/slow_release strings), it retries against the
// legacy schema and migrates those fields into the settings bag
// (SPEC_FULL.md §4.4, spec.md §9 "lenient parsing").
func Parse(data []byte) (*Descriptor, error) {
	var cur documentCurrent
	if err := strictUnmarshal(data, &cur); err == nil {
		return build(cur.Instrument, cur.Description, cur.Contribution, cur.General.Layers, cur.General.FilesFormat, cur.Settings, cur.PianoKeys)
	}

	var legacy documentLegacy
	if err := strictUnmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("parse instrument descriptor: %w", err)
	}

	settings := legacy.Settings
	if settings == nil {
		settings = make(map[string]interface{})
	}
	if legacy.General.FastRelease != "" {
		settings["fast_release"] = coerceNumericString(legacy.General.FastRelease)
	}
	if legacy.General.SlowRelease != "" {
		settings["slow_release"] = coerceNumericString(legacy.General.SlowRelease)
	}

	return build(legacy.Instrument, "", legacy.Contribution, legacy.General.Layers, legacy.General.FilesFormat, settings, legacy.PianoKeys)
}

// strictUnmarshal rejects documents containing fields the target
// struct doesn't declare, used to distinguish the current schema from
// the legacy one by the presence of general.fast_release/slow_release.
func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// coerceNumericString returns a float64 when s parses as one,
// otherwise returns s unchanged - Descriptor.Float performs the
// final string/float coercion, this just normalizes what the legacy
// schema handed us.
func coerceNumericString(s string) interface{} {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func build(name, description string, contribution Contribution, layersRaw map[string]layerRaw, filesFormat string, settings map[string]interface{}, pianoKeys []map[string]keyRaw) (*Descriptor, error) {
	d := &Descriptor{
		Name:         name,
		Description:  description,
		Contribution: contribution,
		FilesFormat:  filesFormat,
		Settings:     settings,
		layers:       make(map[string]Layer),
		keys:         make(map[uint8]KeyEntry),
	}
	if d.Settings == nil {
		d.Settings = make(map[string]interface{})
	}

	type ordered struct {
		name  string
		lovel uint8
	}
	var names []ordered
	for key, raw := range layersRaw {
		name := raw.Name
		if name == "" {
			name = key
		}
		name = upperASCII(name)
		d.layers[name] = Layer{Name: name, LoVel: raw.LoVel, HiVel: raw.HiVel}
		names = append(names, ordered{name: name, lovel: raw.LoVel})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].lovel < names[j].lovel })
	for _, o := range names {
		d.layerOrder = append(d.layerOrder, o.name)
	}

	for _, wrapper := range pianoKeys {
		for outerKey, raw := range wrapper {
			midi, ok := parseMIDI(raw.MIDI)
			if !ok {
				midi, ok = parseMIDI(outerKey)
			}
			if !ok {
				log.Warn("piano key has no parseable midi number, using 0", "key", outerKey, "midi", raw.MIDI)
				midi = 0
			}

			entry := KeyEntry{
				MIDI:  midi,
				Note:  raw.Note,
				Pitch: raw.Pitch,
				LoKey: raw.LoKey,
				HiKey: raw.HiKey,
			}
			for _, s := range raw.Samples {
				entry.Samples = append(entry.Samples, SampleRef{Path: s.Path, Layer: upperASCII(s.Layer)})
			}
			d.keys[midi] = entry
		}
	}

	return d, nil
}

func parseMIDI(s string) (uint8, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}
