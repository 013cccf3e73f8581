package notation

import (
	"fmt"
	"strings"

	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
)

// tokensPerLine is where the ABC body wraps. Purely cosmetic; renderers
// treat the line break like a space.
const tokensPerLine = 8

// FallbackABC is the document returned whenever encoding cannot proceed.
// It is a valid empty-measure tune, so the renderer shows a blank staff
// instead of crashing.
const FallbackABC = `X: 1
T: Transcription Error
M: 4/4
L: 1/4
K: C
z4 |
`

// ToABC renders the model's first track as an ABC notation document.
// It never fails visibly: a nil model, a malformed note or any internal
// fault yields FallbackABC. Meter, unit length and key are fixed defaults.
func ToABC(m *midimodel.Model) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = FallbackABC
		}
	}()

	if m == nil {
		return FallbackABC
	}

	title := m.Name
	if title == "" {
		title = "Transcribed Audio"
	}

	var sb strings.Builder
	sb.WriteString("X: 1\n")
	fmt.Fprintf(&sb, "T: %s\n", title)
	sb.WriteString("M: 4/4\n")
	sb.WriteString("L: 1/4\n")
	sb.WriteString("K: C\n")

	if len(m.Tracks) == 0 {
		return sb.String()
	}

	notes := sortedByTime(m.Tracks[0].Notes)
	for i, n := range notes {
		token, err := abcToken(n)
		if err != nil {
			return FallbackABC
		}
		if i > 0 {
			if i%tokensPerLine == 0 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(token)
	}
	sb.WriteString("\n")

	return sb.String()
}

// abcToken renders one note as an ABC pitch plus duration suffix.
// Octave 4 is the unmarked register; octave 5 and up use lower-case with
// one apostrophe per octave above 5, octave 3 and down add one comma per
// octave below 4.
func abcToken(n midimodel.Note) (string, error) {
	letter, accidental, octave, err := parsePitch(n.PitchName)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if accidental == "#" {
		sb.WriteString("^")
	}
	if octave >= 5 {
		sb.WriteString(strings.ToLower(letter))
		sb.WriteString(strings.Repeat("'", octave-5))
	} else {
		sb.WriteString(letter)
		if octave < 4 {
			sb.WriteString(strings.Repeat(",", 4-octave))
		}
	}
	sb.WriteString(classifyDuration(n.DurationSeconds, abcDurations))

	return sb.String(), nil
}
