package control

import (
	"errors"
	"fmt"
)

// Sentinel and parameterized errors surfaced across the Control API
// (spec.md §7).
var (
	ErrNoInstrument   = errors.New("no instrument loaded")
	ErrLoadInProgress = errors.New("an instrument load is already in progress")
)

// NoteNotFoundError reports that the current descriptor has no key
// entry for the requested MIDI note.
type NoteNotFoundError struct {
	MIDI uint8
}

func (e *NoteNotFoundError) Error() string {
	return fmt.Sprintf("note not found: midi=%d", e.MIDI)
}

// NotCachedError reports a cache miss for the (midi, layer) pair
// PlayNote selected, for example a key entry that lists no samples.
type NotCachedError struct {
	MIDI  uint8
	Layer int
}

func (e *NotCachedError) Error() string {
	return fmt.Sprintf("not cached: midi=%d layer=%d", e.MIDI, e.Layer)
}

// InstrumentError reports that an instrument folder's descriptor is
// missing, unparseable, or references a sample that failed to decode.
type InstrumentError struct {
	Reason string
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("instrument error: %s", e.Reason)
}
