package notation

import (
	"fmt"

	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
)

// NoteDescriptor is one VexFlow-ready note. Keys holds a single pitch key
// like "C#/5"; Duration is a VexFlow duration code ("16", "8", "q", "h",
// "w").
type NoteDescriptor struct {
	Keys        []string `json:"keys"`
	Duration    string   `json:"duration"`
	MidiNumber  int      `json:"midiNumber"`
	TimeSeconds float64  `json:"timeSeconds"`
}

// ToVexFlow renders the model's first track as a VexFlow note-descriptor
// sequence. Source selection and ordering match ToABC: first track only,
// stable sort by onset. It never fails visibly: a nil model, a malformed
// note or any internal fault yields an empty (non-nil) sequence.
func ToVexFlow(m *midimodel.Model) (out []NoteDescriptor) {
	defer func() {
		if r := recover(); r != nil {
			out = []NoteDescriptor{}
		}
	}()

	out = []NoteDescriptor{}
	if m == nil || len(m.Tracks) == 0 {
		return out
	}

	notes := sortedByTime(m.Tracks[0].Notes)
	descriptors := make([]NoteDescriptor, 0, len(notes))
	for _, n := range notes {
		letter, accidental, octave, err := parsePitch(n.PitchName)
		if err != nil {
			return []NoteDescriptor{}
		}
		descriptors = append(descriptors, NoteDescriptor{
			Keys:        []string{fmt.Sprintf("%s%s/%d", letter, accidental, octave)},
			Duration:    classifyDuration(n.DurationSeconds, vexDurations),
			MidiNumber:  n.MidiNumber,
			TimeSeconds: n.TimeSeconds,
		})
	}

	return descriptors
}
