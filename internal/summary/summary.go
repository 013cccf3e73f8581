// Package summary derives the display statistics the result views show
// for a transcription.
package summary

import (
	"fmt"
	"strings"

	"github.com/sergiecode/audio-to-sheet/internal/midimodel"
)

// defaultInstrument labels tracks that carry no instrument of their own.
const defaultInstrument = "Piano"

// Summary holds display statistics for one transcription result.
type Summary struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	TrackCount  int    `json:"trackCount"`
	TotalNotes  int    `json:"totalNotes"`
	Instruments string `json:"instruments"`
}

// Summarize derives a Summary from the model. It fails closed: a nil
// model yields the fixed all-default Summary so the result view always
// has something to show.
func Summarize(m *midimodel.Model) Summary {
	if m == nil {
		return Summary{
			Name:        "Unknown",
			Duration:    "0 seconds",
			Instruments: "Unknown",
		}
	}

	name := m.Name
	if name == "" {
		name = "Unknown"
	}

	var instruments []string
	for _, t := range m.Tracks {
		instrument := t.Instrument
		if instrument == "" {
			instrument = defaultInstrument
		}
		instruments = append(instruments, instrument)
	}
	instrumentList := strings.Join(instruments, ", ")
	if instrumentList == "" {
		instrumentList = "Unknown"
	}

	return Summary{
		Name:        name,
		Duration:    fmt.Sprintf("%.2f seconds", m.DurationSeconds),
		TrackCount:  len(m.Tracks),
		TotalNotes:  m.NoteCount(),
		Instruments: instrumentList,
	}
}
