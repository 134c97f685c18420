package audio

import "errors"

// Sentinel errors surfaced from engine setup, named to match
// spec.md §7's error kinds for startup failures.
var (
	ErrNoOutputDevice = errors.New("no default audio output device available")
	ErrConfigError    = errors.New("invalid audio device configuration")
	ErrBuildError     = errors.New("failed to build audio output device")
	ErrStartError     = errors.New("failed to start audio output device")
)
