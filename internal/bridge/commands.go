package bridge

import (
	"encoding/json"
	"fmt"
)

type playNoteParams struct {
	MIDI     uint8  `json:"midi"`
	Velocity int    `json:"velocity"`
	Layer    string `json:"layer"`
}

type stopNoteParams struct {
	MIDI uint8 `json:"midi"`
}

type setSustainParams struct {
	Active bool `json:"active"`
}

type loadInstrumentParams struct {
	Folder string `json:"folder"`
}

// dispatch routes one request to the Control API by method name,
// matching the command table in spec.md §6 verbatim.
func (b *Bridge) dispatch(req Request) (interface{}, error) {
	switch req.Method {
	case "play_midi_note":
		var p playNoteParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		if err := b.control.PlayNote(p.MIDI, p.Velocity, p.Layer); err != nil {
			return nil, err
		}
		return "ok", nil

	case "stop_midi_note":
		var p stopNoteParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		b.control.StopNote(p.MIDI)
		return "ok", nil

	case "set_sustain":
		var p setSustainParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		b.control.SetSustain(p.Active)
		return "ok", nil

	case "load_instrument":
		var p loadInstrumentParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		if err := b.control.LoadInstrument(p.Folder, b.EmitProgress); err != nil {
			return nil, err
		}
		summary, _ := b.control.CurrentInstrument()
		return summary, nil

	case "get_available_instruments":
		return b.control.AvailableInstruments(), nil

	case "get_instrument_info":
		summary, ok := b.control.CurrentInstrument()
		if !ok {
			return nil, nil
		}
		return summary, nil

	case "get_app_state":
		return b.control.AppState()

	case "clear_last_instrument":
		if err := b.control.ClearLastInstrument(); err != nil {
			return nil, err
		}
		return "ok", nil

	default:
		return nil, fmt.Errorf("unknown method: %q", req.Method)
	}
}
