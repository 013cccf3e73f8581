// Package midimodel normalizes decoded Standard MIDI Files into the
// in-memory representation the notation encoders and summary reporter
// consume. Container decoding itself is delegated to gomidi/smf.
package midimodel

import "fmt"

// Note is a single transcribed note event.
type Note struct {
	PitchName       string  `json:"pitchName"`       // e.g. "C#5", sharps only
	MidiNumber      int     `json:"midiNumber"`      // 0-127
	TimeSeconds     float64 `json:"timeSeconds"`     // onset
	DurationSeconds float64 `json:"durationSeconds"` // sounding length
	Velocity        float64 `json:"velocity"`        // normalized 0-1
}

// Track holds the notes of one MIDI track in file order.
// Note order is NOT guaranteed chronological; consumers sort a copy.
type Track struct {
	Name       string `json:"name,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Notes      []Note `json:"notes"`
}

// Model is the normalized decode result for one MIDI file.
// It is treated as immutable once Parse returns it.
type Model struct {
	Name            string  `json:"name"`
	DurationSeconds float64 `json:"durationSeconds"`
	Tracks          []Track `json:"tracks"`
}

// NoteCount returns the total number of notes across all tracks.
func (m *Model) NoteCount() int {
	total := 0
	for _, t := range m.Tracks {
		total += len(t.Notes)
	}
	return total
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName converts a MIDI note number to scientific pitch notation
// with sharps (middle C, 60, is "C4").
func PitchName(midiNumber int) string {
	if midiNumber < 0 || midiNumber > 127 {
		return ""
	}
	return fmt.Sprintf("%s%d", noteNames[midiNumber%12], midiNumber/12-1)
}
