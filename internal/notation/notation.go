// Package notation renders a midimodel.Model into the input formats the
// sheet-music renderers expect: ABC notation text and VexFlow note
// descriptors. Both encoders are pure and fail closed, so a renderer never
// receives malformed input.
package notation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
)

var pitchPattern = regexp.MustCompile(`^([A-G])(#?)(\d+)$`)

// parsePitch splits a pitch name like "C#5" into letter, accidental and
// octave. Flats never occur in the model; sharps are the only accidental.
func parsePitch(name string) (letter, accidental string, octave int, err error) {
	m := pitchPattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, fmt.Errorf("malformed pitch name %q", name)
	}
	octave, err = strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("malformed pitch name %q", name)
	}
	return m[1], m[2], octave, nil
}

// sortedByTime returns a copy of notes ordered by onset time. The sort is
// stable: notes with equal onsets keep their input order. The input slice
// is never mutated.
func sortedByTime(notes []midimodel.Note) []midimodel.Note {
	sorted := make([]midimodel.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeSeconds < sorted[j].TimeSeconds
	})
	return sorted
}
