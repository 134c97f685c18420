package descriptor

import "strconv"

// pitchClass maps an uppercase note letter to its semitone offset
// within an octave (C=0 .. B=11).
var pitchClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// ParseNoteName parses a scientific-pitch-notation note name such as
// "C3", "C#4", "Db5", "A0" into a MIDI number, where C4 is middle C
// (MIDI 60). Returns ok=false if name doesn't parse to a valid note in
// [0, 127].
func ParseNoteName(name string) (uint8, bool) {
	if len(name) < 2 {
		return 0, false
	}

	letter := name[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	class, ok := pitchClass[letter]
	if !ok {
		return 0, false
	}

	i := 1
	switch {
	case i < len(name) && name[i] == '#':
		class++
		i++
	case i < len(name) && (name[i] == 'b' || name[i] == 'B'):
		class--
		i++
	}

	if i >= len(name) {
		return 0, false
	}
	octave, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, false
	}

	midi := (octave+1)*12 + class
	if midi < 0 || midi > 127 {
		return 0, false
	}
	return uint8(midi), true
}
